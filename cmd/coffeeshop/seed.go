package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fsnd/coffee-shop/repositories/sqldb"
	"github.com/fsnd/coffee-shop/seed"
	"github.com/fsnd/coffee-shop/services"
)

func newSeedCmd(c *cli) *cobra.Command {
	var (
		file  string
		reset bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load drinks from a YAML fixture",
		Long: `Load drinks from a YAML fixture. Without --file the built-in menu is used.
Drinks whose title is already on the menu are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := seed.Load(file)
			if err != nil {
				return err
			}

			return withDrinkService(cmd.Context(), c, func(svc *services.DrinkService) error {
				res, err := seed.NewSeeder(svc, c.logger).Apply(cmd.Context(), fixture, reset)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d, created %d, skipped %d\n", res.Removed, res.Created, res.Skipped)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture file (default: built-in menu)")
	cmd.Flags().BoolVar(&reset, "reset", false, "delete every drink before seeding")

	return cmd
}

// withDrinkService opens the store, migrating first when enabled, and runs fn against
// a drinks service backed by it.
func withDrinkService(ctx context.Context, c *cli, fn func(svc *services.DrinkService) error) error {
	if c.cfg.Database.AutoMigrate {
		if err := migrateUp(c.cfg.Database, c.logger); err != nil {
			return err
		}
	}

	factory, err := sqldb.NewRepositoryFactory(c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := factory.Close(); err != nil {
			c.logger.Warn("failed to close database", zap.Error(err))
		}
	}()

	if err := factory.GetDB().HealthCheck(ctx); err != nil {
		return fmt.Errorf("database unavailable: %w", err)
	}

	repos := factory.NewRepositories()
	return fn(services.NewDrinkService(repos.Drinks, factory.GetTransactionManager(), c.logger))
}
