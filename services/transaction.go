package services

import (
	"context"

	"github.com/fsnd/coffee-shop/repositories"
)

// WithTransaction runs fn inside a transaction carried by ctx.
// The transaction commits when fn returns nil and rolls back otherwise.
func WithTransaction(ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context) error) error {
	return txMgr.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		return fn(ctx)
	})
}

// WithTransactionResult is WithTransaction for functions that produce a value.
// The zero value is returned whenever the transaction does not commit.
func WithTransactionResult[T any](ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := WithTransaction(ctx, txMgr, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
