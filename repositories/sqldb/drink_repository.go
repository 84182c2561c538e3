package sqldb

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fsnd/coffee-shop/models"
	"github.com/fsnd/coffee-shop/repositories"
)

// Placeholders stay in ascending order so the same statements bind positionally on
// both lib/pq and go-sqlite3.

// DrinkRepository implements the repositories.DrinkRepository interface
type DrinkRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDrinkRepository creates a new drink repository
func NewDrinkRepository(db *DB, logger *zap.Logger) repositories.DrinkRepository {
	return &DrinkRepository{
		db:     db,
		logger: logger,
	}
}

// List retrieves all drinks ordered by id
func (r *DrinkRepository) List(ctx context.Context) ([]*models.Drink, error) {
	query := `
		SELECT id, title, recipe
		FROM drinks
		ORDER BY id
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list drinks: %w", classify(err))
	}
	defer rows.Close()

	drinks := []*models.Drink{}
	for rows.Next() {
		var (
			drink  models.Drink
			recipe string
		)
		if err := rows.Scan(&drink.ID, &drink.Title, &recipe); err != nil {
			return nil, fmt.Errorf("failed to scan drink: %w", err)
		}
		if drink.Recipe, err = models.DecodeRecipe(recipe); err != nil {
			return nil, fmt.Errorf("drink %d: %w", drink.ID, err)
		}
		drinks = append(drinks, &drink)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating drink rows: %w", classify(err))
	}

	return drinks, nil
}

// GetByID retrieves a drink by id
func (r *DrinkRepository) GetByID(ctx context.Context, id int64) (*models.Drink, error) {
	query := `
		SELECT id, title, recipe
		FROM drinks
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)

	var (
		drink  models.Drink
		recipe string
	)
	err := executor.QueryRowContext(ctx, query, id).Scan(&drink.ID, &drink.Title, &recipe)
	if err != nil {
		return nil, fmt.Errorf("failed to get drink %d: %w", id, classify(err))
	}

	if drink.Recipe, err = models.DecodeRecipe(recipe); err != nil {
		return nil, fmt.Errorf("drink %d: %w", id, err)
	}

	return &drink, nil
}

// Create inserts a drink and sets its ID
func (r *DrinkRepository) Create(ctx context.Context, drink *models.Drink) error {
	query := `
		INSERT INTO drinks (title, recipe)
		VALUES ($1, $2)
		RETURNING id
	`

	recipe, err := drink.EncodeRecipe()
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, query, drink.Title, recipe).Scan(&drink.ID); err != nil {
		return fmt.Errorf("failed to create drink: %w", classify(err))
	}

	r.logger.Debug("drink created", zap.Int64("id", drink.ID), zap.String("title", drink.Title))
	return nil
}

// Update replaces the title and recipe of an existing drink
func (r *DrinkRepository) Update(ctx context.Context, drink *models.Drink) error {
	query := `
		UPDATE drinks
		SET title = $1,
		    recipe = $2
		WHERE id = $3
	`

	recipe, err := drink.EncodeRecipe()
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, drink.Title, recipe, drink.ID)
	if err != nil {
		return fmt.Errorf("failed to update drink %d: %w", drink.ID, classify(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("drink %d: %w", drink.ID, repositories.ErrNotFound)
	}

	r.logger.Debug("drink updated", zap.Int64("id", drink.ID))
	return nil
}

// Delete removes a drink by id
func (r *DrinkRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM drinks WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete drink %d: %w", id, classify(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("drink %d: %w", id, repositories.ErrNotFound)
	}

	r.logger.Debug("drink deleted", zap.Int64("id", id))
	return nil
}

// Count returns the number of drinks
func (r *DrinkRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	executor := GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM drinks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count drinks: %w", classify(err))
	}
	return count, nil
}
