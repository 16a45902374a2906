// Package commands implements the recruit command line.
package commands

import (
	"fmt"

	"github.com/ncobase/recruit/config"
	"github.com/ncobase/recruit/internal/app"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "recruit",
		Short:         "Job postings, paid publication and candidate screening",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: search ./config.yaml)")

	rootCmd.AddCommand(
		newServeCommand(&configFile),
		newSweepCommand(&configFile),
		newMigrateCommand(&configFile),
		newVersionCommand(),
	)
	return rootCmd
}

// initialize loads the configuration, lets mutate adjust it, and wires the
// application.
func initialize(configFile string, mutate func(*config.Config)) (*app.App, func(), error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if mutate != nil {
		mutate(cfg)
	}
	a, cleanup, err := app.InitializeApp(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return a, cleanup, nil
}
