package sqldb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fsnd/coffee-shop/config"
	"github.com/fsnd/coffee-shop/models"
	"github.com/fsnd/coffee-shop/repositories"
)

func sqliteConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "coffee.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
}

func TestMigrator_SQLite(t *testing.T) {
	cfg := sqliteConfig(t)
	logger := zap.NewNop()

	mg, err := NewMigrator(cfg, logger)
	require.NoError(t, err)

	_, _, ok, err := mg.Version()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mg.Up())
	// Applying again is a no-op
	require.NoError(t, mg.Up())

	version, dirty, ok, err := mg.Version()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)

	require.NoError(t, mg.Close())

	db, err := NewDB(cfg, logger)
	require.NoError(t, err)
	defer db.Close()

	factory := NewRepositoryFactoryFromDB(db, logger)
	repos := factory.NewRepositories()
	ctx := context.Background()

	water := models.NewDrink("Water", []models.Ingredient{{Name: "water", Color: "blue", Parts: 1}})
	require.NoError(t, repos.Drinks.Create(ctx, water))
	assert.NotZero(t, water.ID)

	err = repos.Drinks.Create(ctx, models.NewDrink("Water", []models.Ingredient{{Name: "water", Color: "clear", Parts: 1}}))
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	water.Title = "Sparkling Water"
	require.NoError(t, repos.Drinks.Update(ctx, water))

	got, err := repos.Drinks.GetByID(ctx, water.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sparkling Water", got.Title)
	assert.Equal(t, water.Recipe, got.Recipe)

	count, err := repos.Drinks.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repos.Drinks.Delete(ctx, water.ID))
	assert.ErrorIs(t, repos.Drinks.Delete(ctx, water.ID), repositories.ErrNotFound)

	mg, err = NewMigrator(cfg, logger)
	require.NoError(t, err)
	require.NoError(t, mg.Down())
	require.NoError(t, mg.Close())
}

func TestNewMigrator_UnknownDriver(t *testing.T) {
	_, err := NewMigrator(config.DatabaseConfig{Driver: "mysql"}, zap.NewNop())
	assert.Error(t, err)
}
