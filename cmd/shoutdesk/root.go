package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"shoutdesk/internal/config"
)

const version = "0.1.0"

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "shoutdesk",
		Short:         "Shoutout intake, review dashboard, and publish automation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is fine; environment overrides stay optional.
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newServeCommand(&configFlag))
	rootCmd.AddCommand(newPublishCommand(&configFlag))
	rootCmd.AddCommand(newConfigCommand(&configFlag))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the shoutdesk version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "shoutdesk "+version)
		},
	}
}

// loadConfig resolves and validates the effective configuration.
func loadConfig(path string) (*config.Config, error) {
	cfg, resolved, _, err := config.Load(path)
	if err != nil {
		if resolved != "" {
			return nil, fmt.Errorf("load config %s: %w", resolved, err)
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
