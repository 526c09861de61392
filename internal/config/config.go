// Package config provides configuration types for lspframe.
//
// lspframe's configuration surface is deliberately small: the engine is
// sans-I/O, so there is no listener, no upstream, no auth to configure.
// What remains is the framing/instrumentation surface an embedder tunes
// per deployment: default header values, how strictly inbound headers
// are parsed, the optional CEL header policy, and where metrics/traces
// go.
package config

import (
	"os"

	"github.com/spf13/viper"
)

// Config is the top-level configuration for an lspframe deployment.
type Config struct {
	// Log configures the structured logger.
	Log LogConfig `yaml:"log" mapstructure:"log"`

	// Header configures default and accepted wire header values.
	Header HeaderConfig `yaml:"header" mapstructure:"header"`

	// Policy optionally rejects inbound headers via a CEL expression.
	Policy PolicyConfig `yaml:"policy" mapstructure:"policy"`

	// Metrics configures the Prometheus metrics surface.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`

	// Tracing configures the OpenTelemetry tracing surface.
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`

	// DevMode enables development features (verbose logging, pretty
	// stdout exporters instead of silence).
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	// Level sets the minimum log level.
	// Valid values: "debug", "info", "warn" (or "warning"), "error".
	// Defaults to "info" if empty. DevMode=true overrides to "debug".
	Level string `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`

	// Format selects "text" or "json" output. Defaults to "text".
	Format string `yaml:"format" mapstructure:"format" validate:"omitempty,oneof=text json"`
}

// HeaderConfig configures the default and accepted header values a
// Connection uses when it builds or parses wire headers.
type HeaderConfig struct {
	// DefaultContentType is the configured default Content-Type, checked
	// for a type/subtype shape by Validate. Defaults to
	// "application/vscode-jsonrpc; charset=utf-8". Connection does not
	// read it: headers built by Connection.SendJSON always carry
	// lspevent.DefaultContentType.
	DefaultContentType string `yaml:"default_content_type" mapstructure:"default_content_type"`

	// StrictUnknownFields rejects inbound headers carrying fields other
	// than Content-Length/Content-Type instead of warning and dropping
	// them. Defaults to false.
	StrictUnknownFields bool `yaml:"strict_unknown_fields" mapstructure:"strict_unknown_fields"`

	// MaxContentLength caps the Content-Length an inbound header may
	// declare; 0 means unbounded (besides int range). Protects an
	// embedder from a peer announcing an absurd body size.
	MaxContentLength int `yaml:"max_content_length" mapstructure:"max_content_length" validate:"omitempty,min=1"`
}

// PolicyConfig configures the optional CEL header policy.
type PolicyConfig struct {
	// Expression, when non-empty, is compiled as a CEL header policy
	// (see internal/lsppolicy) and every inbound header is evaluated
	// against it before the Connection accepts it.
	Expression string `yaml:"expression" mapstructure:"expression"`
}

// MetricsConfig configures the Prometheus metrics surface.
type MetricsConfig struct {
	// Enabled turns on metrics recording.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Namespace prefixes every exported metric name. Defaults to
	// "lspframe".
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
}

// TracingConfig configures the OpenTelemetry tracing surface.
type TracingConfig struct {
	// Enabled turns on span emission around Send/Receive/NextEvent.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Exporter selects the trace exporter. Only "stdout" is supported
	// by this module; other values are rejected so an embedder doesn't
	// silently get no tracing when they meant to wire a collector.
	Exporter string `yaml:"exporter" mapstructure:"exporter" validate:"omitempty,oneof=stdout"`
}

// SetDevDefaults applies permissive defaults for development mode.
// These defaults are applied BEFORE validation so required fields are
// satisfied without a config file.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	if c.Log.Level == "" {
		c.Log.Level = "debug"
	}
	if !viper.IsSet("tracing.enabled") {
		c.Tracing.Enabled = true
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = "stdout"
	}
}

// SetDefaults applies sensible default values to the configuration.
func (c *Config) SetDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Header.DefaultContentType == "" {
		c.Header.DefaultContentType = "application/vscode-jsonrpc; charset=utf-8"
	}
	if !viper.IsSet("metrics.enabled") {
		c.Metrics.Enabled = true
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "lspframe"
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = "stdout"
	}
}

// configDirHome returns the user's config home, used by loader.go's
// standard-location search.
func configDirHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
