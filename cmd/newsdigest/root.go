package main

import (
	"github.com/spf13/cobra"

	"NewsDigest/internal/app"
	"NewsDigest/internal/config"
	"NewsDigest/internal/logging"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "newsdigest",
		Short:         "Personalized news digest pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newScheduleCommand())
	rootCmd.AddCommand(newProfileCommand())
	rootCmd.AddCommand(newDigestsCommand())
	rootCmd.AddCommand(newDeliveriesCommand())

	return rootCmd
}

// buildApp loads configuration and wires the application.
func buildApp() (*app.Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Logging.Level)
	return app.New(cfg, logger)
}
