package repositories

import (
	"context"

	"github.com/fsnd/coffee-shop/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error
}

// DrinkRepository handles drink data operations.
// Failures are classified with the kinds in errors.go.
type DrinkRepository interface {
	// List retrieves all drinks ordered by id
	List(ctx context.Context) ([]*models.Drink, error)

	// GetByID retrieves a drink by id
	GetByID(ctx context.Context, id int64) (*models.Drink, error)

	// Create inserts a drink and sets its ID
	Create(ctx context.Context, drink *models.Drink) error

	// Update replaces the title and recipe of an existing drink
	Update(ctx context.Context, drink *models.Drink) error

	// Delete removes a drink by id
	Delete(ctx context.Context, id int64) error

	// Count returns the number of drinks
	Count(ctx context.Context) (int64, error)
}

// Repositories holds all repository instances
type Repositories struct {
	Drinks DrinkRepository
}
