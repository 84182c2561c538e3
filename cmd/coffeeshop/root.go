package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fsnd/coffee-shop/config"
)

// cli carries state shared by every subcommand once the root pre-run has loaded it
type cli struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "coffeeshop",
		Short: "Coffee shop menu API",
		Long: `coffeeshop serves the drinks menu over HTTP and guards the barista and
manager endpoints with bearer tokens issued by the configured identity provider.

Configuration is read from the environment, optionally from a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			logger, err := initLogger(cfg.Log)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			c.cfg = cfg
			c.logger = logger.With(zap.String("environment", cfg.Environment))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.AddCommand(
		newServeCmd(c),
		newMigrateCmd(c),
		newSeedCmd(c),
		newDrinksCmd(c),
		newTokenCmd(c),
	)

	return root
}
