package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lspframe/lspframe/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Long: `Prints the configuration lspframe would run with: defaults,
merged with any config file and LSPFRAME_-prefixed environment
variables, after validation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}
		if configFile := config.ConfigFileUsed(); configFile != "" {
			fmt.Printf("# loaded from %s\n", configFile)
		} else {
			fmt.Println("# no config file found, using defaults and environment")
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
