// Package config provides configuration loading for lspframe.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. If configFile is empty, it searches for lspframe.yaml/.yml
// in standard locations. The search requires an explicit YAML extension
// to avoid matching a binary of the same base name.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		viper.SetConfigName("lspframe")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: LSPFRAME_LOG_LEVEL, LSPFRAME_POLICY_EXPRESSION, ...
	viper.SetEnvPrefix("LSPFRAME")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for an lspframe config file
// with an explicit YAML extension.
func findConfigFile() string {
	paths := []string{"."}
	if home := configDirHome(); home != "" {
		paths = append(paths, filepath.Join(home, ".lspframe"))
	}
	paths = append(paths, "/etc/lspframe")
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths searches the given directories for lspframe.yaml
// or .yml. Returns the full path of the first match, or "" if none found.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "lspframe"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds config keys for environment variable support.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("log.level")
	_ = viper.BindEnv("log.format")
	_ = viper.BindEnv("header.default_content_type")
	_ = viper.BindEnv("header.strict_unknown_fields")
	_ = viper.BindEnv("header.max_content_length")
	_ = viper.BindEnv("policy.expression")
	_ = viper.BindEnv("metrics.enabled")
	_ = viper.BindEnv("metrics.namespace")
	_ = viper.BindEnv("tracing.enabled")
	_ = viper.BindEnv("tracing.exporter")
	_ = viper.BindEnv("dev_mode")
}

// LoadConfig reads the configuration file, applies environment
// overrides, sets defaults, and returns the Config. Note: callers that
// need CLI flags to override DevMode before validation should use
// LoadConfigRaw instead, then call SetDevDefaults/Validate themselves.
func LoadConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file -- continue with env vars and defaults only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDevDefaults()
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigRaw reads the configuration file and applies defaults, but
// does NOT apply dev defaults or validate. Use this when CLI flags may
// override DevMode before validation.
func LoadConfigRaw() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was
// loaded, or "" if none was found (env vars only mode).
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
