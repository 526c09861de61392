package config

import (
	"strings"
	"testing"
)

func minimalValidConfig() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Log.Level = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Log.Level") {
		t.Errorf("error = %q, want to contain 'Log.Level'", err.Error())
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Log.Format") {
		t.Errorf("error = %q, want to contain 'Log.Format'", err.Error())
	}
}

func TestValidate_InvalidMediaType(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Header.DefaultContentType = "not-a-media-type"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "default_content_type") {
		t.Errorf("error = %q, want to contain 'default_content_type'", err.Error())
	}
}

func TestValidate_ValidMediaTypeWithParameters(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Header.DefaultContentType = "application/vscode-jsonrpc; charset=utf-8"

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidate_InvalidTracingExporter(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Tracing.Exporter = "jaeger"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Tracing.Exporter") {
		t.Errorf("error = %q, want to contain 'Tracing.Exporter'", err.Error())
	}
}

func TestValidate_NegativeMaxContentLengthRejected(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Header.MaxContentLength = -1

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() expected error for negative MaxContentLength, got nil")
	}
}

func TestValidate_ZeroConfig(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() zero-config unexpected error: %v", err)
	}
	if cfg.Metrics.Namespace != "lspframe" {
		t.Errorf("default metrics namespace = %q, want 'lspframe'", cfg.Metrics.Namespace)
	}
}
