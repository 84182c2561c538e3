package sqldb

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/fsnd/coffee-shop/config"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrator applies the embedded schema migrations for the configured driver.
// It owns a dedicated connection that is released by Close.
type Migrator struct {
	m      *migrate.Migrate
	driver string
	logger *zap.Logger
}

// NewMigrator opens a migration connection for cfg
func NewMigrator(cfg config.DatabaseConfig, logger *zap.Logger) (*Migrator, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open migration connection: %w", err)
	}

	m, err := newMigrate(db, cfg.Driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Migrator{m: m, driver: cfg.Driver, logger: logger}, nil
}

func newMigrate(db *sql.DB, driverName string) (*migrate.Migrate, error) {
	var (
		driver database.Driver
		err    error
	)
	switch driverName {
	case config.DriverPostgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	case config.DriverSQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driverName)
	}
	if err != nil {
		return nil, fmt.Errorf("could not create database driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+driverName)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize migrate instance: %w", err)
	}
	return m, nil
}

// Up applies all pending migrations. An up-to-date schema is not an error.
func (mg *Migrator) Up() error {
	err := mg.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.logger.Info("no new migrations to apply", zap.String("driver", mg.driver))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	mg.logger.Info("migrations applied successfully", zap.String("driver", mg.driver))
	return nil
}

// Down rolls back every migration
func (mg *Migrator) Down() error {
	err := mg.m.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}

	mg.logger.Info("migrations rolled back", zap.String("driver", mg.driver))
	return nil
}

// Version returns the current schema version. ok is false when no migration has run.
func (mg *Migrator) Version() (version uint, dirty bool, ok bool, err error) {
	version, dirty, err = mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, true, nil
}

// Close releases the migration connection
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
