package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fsnd/coffee-shop/models"
	"github.com/fsnd/coffee-shop/repositories"
	"github.com/fsnd/coffee-shop/utils"
)

// CreateDrinkInput carries the fields of a new drink
type CreateDrinkInput struct {
	Title  string
	Recipe []models.Ingredient
}

// UpdateDrinkInput carries a partial update. Nil fields keep their stored value.
type UpdateDrinkInput struct {
	Title  *string
	Recipe *[]models.Ingredient
}

// Empty reports whether the update changes nothing
func (in UpdateDrinkInput) Empty() bool {
	return in.Title == nil && in.Recipe == nil
}

// drinkRules is the shape a drink must satisfy before it is stored
type drinkRules struct {
	Title  string              `json:"title" validate:"required,max=80"`
	Recipe []models.Ingredient `json:"recipe" validate:"required,min=1,dive"`
}

// DrinkService handles menu operations
type DrinkService struct {
	drinks repositories.DrinkRepository
	txMgr  repositories.TransactionManager
	logger *zap.Logger
}

// NewDrinkService creates a new DrinkService instance
func NewDrinkService(drinks repositories.DrinkRepository, txMgr repositories.TransactionManager, logger *zap.Logger) *DrinkService {
	return &DrinkService{
		drinks: drinks,
		txMgr:  txMgr,
		logger: logger,
	}
}

// ListDrinks returns every drink on the menu ordered by id
func (s *DrinkService) ListDrinks(ctx context.Context) ([]*models.Drink, error) {
	drinks, err := s.drinks.List(ctx)
	if err != nil {
		s.logger.Error("failed to list drinks", zap.Error(err))
		return nil, fromRepository("failed to list drinks", err)
	}
	return drinks, nil
}

// GetDrink returns a single drink
func (s *DrinkService) GetDrink(ctx context.Context, id int64) (*models.Drink, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}

	drink, err := s.drinks.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepository("failed to get drink", err)
	}
	return drink, nil
}

// CreateDrink validates and stores a new drink
func (s *DrinkService) CreateDrink(ctx context.Context, input CreateDrinkInput) (*models.Drink, error) {
	drink := models.NewDrink(strings.TrimSpace(input.Title), input.Recipe)
	if err := validateDrink(drink); err != nil {
		return nil, err
	}

	if err := s.drinks.Create(ctx, drink); err != nil {
		s.logger.Warn("failed to create drink",
			zap.String("title", drink.Title),
			zap.Error(err))
		return nil, fromRepository("failed to create drink", err)
	}

	s.logger.Info("drink created",
		zap.Int64("drink_id", drink.ID),
		zap.String("title", drink.Title))

	return drink, nil
}

// UpdateDrink applies a partial update inside a single transaction.
// An empty update returns the stored drink unchanged.
func (s *DrinkService) UpdateDrink(ctx context.Context, id int64, input UpdateDrinkInput) (*models.Drink, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}

	drink, err := WithTransactionResult(ctx, s.txMgr, func(ctx context.Context) (*models.Drink, error) {
		current, err := s.drinks.GetByID(ctx, id)
		if err != nil {
			return nil, fromRepository("failed to get drink", err)
		}

		if input.Empty() {
			return current, nil
		}

		updated := *current
		if input.Title != nil {
			updated.Title = strings.TrimSpace(*input.Title)
		}
		if input.Recipe != nil {
			updated.Recipe = *input.Recipe
		}

		if err := validateDrink(&updated); err != nil {
			return nil, err
		}

		if err := s.drinks.Update(ctx, &updated); err != nil {
			s.logger.Warn("failed to update drink",
				zap.Int64("drink_id", id),
				zap.Error(err))
			return nil, fromRepository("failed to update drink", err)
		}

		s.logger.Info("drink updated", zap.Int64("drink_id", id))
		return &updated, nil
	})
	if err != nil {
		return nil, asDomainError("failed to update drink", err)
	}
	return drink, nil
}

// DeleteDrink removes a drink by id
func (s *DrinkService) DeleteDrink(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}

	if err := s.drinks.Delete(ctx, id); err != nil {
		return fromRepository("failed to delete drink", err)
	}

	s.logger.Info("drink deleted", zap.Int64("drink_id", id))
	return nil
}

// ResetMenu deletes every drink in one transaction and reports how many were removed
func (s *DrinkService) ResetMenu(ctx context.Context) (int, error) {
	removed, err := WithTransactionResult(ctx, s.txMgr, func(ctx context.Context) (int, error) {
		drinks, err := s.drinks.List(ctx)
		if err != nil {
			return 0, fromRepository("failed to list drinks", err)
		}
		for _, d := range drinks {
			if err := s.drinks.Delete(ctx, d.ID); err != nil {
				return 0, fromRepository("failed to delete drink", err)
			}
		}
		return len(drinks), nil
	})
	if err != nil {
		return 0, asDomainError("failed to reset menu", err)
	}
	return removed, nil
}

func validateDrink(drink *models.Drink) error {
	err := utils.ValidateStruct(drinkRules{Title: drink.Title, Recipe: drink.Recipe})
	if err == nil {
		return nil
	}
	if !utils.IsValidationError(err) {
		return WrapInternal("failed to validate drink", err)
	}

	return NewDomainError(ErrorTypeValidation, "invalid drink", err).
		WithDetail("fields", utils.GetValidationFields(err))
}
