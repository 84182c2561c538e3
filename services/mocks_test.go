package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fsnd/coffee-shop/models"
	"github.com/fsnd/coffee-shop/repositories"
)

// MockDrinkRepository is a mock implementation of DrinkRepository
type MockDrinkRepository struct {
	mock.Mock
}

func (m *MockDrinkRepository) List(ctx context.Context) ([]*models.Drink, error) {
	args := m.Called(ctx)
	if drinks := args.Get(0); drinks != nil {
		return drinks.([]*models.Drink), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDrinkRepository) GetByID(ctx context.Context, id int64) (*models.Drink, error) {
	args := m.Called(ctx, id)
	if drink := args.Get(0); drink != nil {
		return drink.(*models.Drink), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDrinkRepository) Create(ctx context.Context, drink *models.Drink) error {
	args := m.Called(ctx, drink)
	return args.Error(0)
}

func (m *MockDrinkRepository) Update(ctx context.Context, drink *models.Drink) error {
	args := m.Called(ctx, drink)
	return args.Error(0)
}

func (m *MockDrinkRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDrinkRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockTransactionManager runs fn against a MockTransaction and records the outcome
type MockTransactionManager struct {
	mock.Mock
	tx *MockTransaction
}

func newMockTxManager() *MockTransactionManager {
	return &MockTransactionManager{tx: new(MockTransaction)}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(repositories.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}

	if err := fn(ctx, m.tx); err != nil {
		m.tx.rolledback = true
		return err
	}
	m.tx.committed = true
	return nil
}

// MockTransaction is a mock implementation of Transaction
type MockTransaction struct {
	mock.Mock
	committed  bool
	rolledback bool
}

func (m *MockTransaction) Commit() error {
	m.committed = true
	return nil
}

func (m *MockTransaction) Rollback() error {
	m.rolledback = true
	return nil
}

