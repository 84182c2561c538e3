package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fsnd/coffee-shop/repositories/sqldb"
)

func newMigrateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrateUp(c.cfg.Database, c.logger)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration, dropping the drinks table",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(c, func(m *sqldb.Migrator) error { return m.Down() })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(c, func(m *sqldb.Migrator) error {
					version, dirty, ok, err := m.Version()
					if err != nil {
						return err
					}
					out := cmd.OutOrStdout()
					if !ok {
						fmt.Fprintln(out, "no migrations applied")
						return nil
					}
					if dirty {
						fmt.Fprintf(out, "%d (dirty)\n", version)
						return nil
					}
					fmt.Fprintln(out, version)
					return nil
				})
			},
		},
	)

	return cmd
}

func withMigrator(c *cli, fn func(m *sqldb.Migrator) error) error {
	migrator, err := sqldb.NewMigrator(c.cfg.Database, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			c.logger.Warn("failed to close migrator", zap.Error(err))
		}
	}()
	return fn(migrator)
}
