// Package cmd provides the lspframe CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lspframe/lspframe/internal/config"
)

var cfgFile string

// logger is built in PersistentPreRunE once the config is loaded, so
// every subcommand sees the configured level/format.
var logger *slog.Logger

var rootCmd = &cobra.Command{
	Use:   "lspframe",
	Short: "lspframe - a sans-I/O LSP base protocol framing engine",
	Long: `lspframe implements the Language Server Protocol's base framing
layer: Content-Length/Content-Type headers over a byte stream, plus the
request/response state machine that governs who may send what when.

The engine itself performs no I/O -- it is a pure state machine that a
caller feeds bytes into and pulls bytes out of. This CLI exists for
inspection and config validation, not as a long-running server.

Configuration:
  Config is loaded from lspframe.yaml in the current directory,
  $HOME/.lspframe/, or /etc/lspframe/.

  Environment variables can override config values with the LSPFRAME_
  prefix. Example: LSPFRAME_LOG_LEVEL=debug

Commands:
  inspect     Decode a framed message from a file or stdin
  config      Print the resolved configuration
  version     Print version information`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.InitViper(cfgFile)
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: parseLogLevel(cfg.Log.Level),
		}))
		if cfg.Log.Format == "json" {
			logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: parseLogLevel(cfg.Log.Level),
			}))
		}
		if configFile := config.ConfigFileUsed(); configFile != "" {
			logger.Debug("loaded config", "file", configFile)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./lspframe.yaml)")
}

// parseLogLevel converts a string log level to slog.Level, defaulting
// to Info for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
