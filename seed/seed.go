// Package seed loads menu fixtures from YAML.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/fsnd/coffee-shop/models"
	"github.com/fsnd/coffee-shop/services"
)

//go:embed default.yaml
var defaultFixture []byte

// Fixture is a menu document
type Fixture struct {
	Drinks []DrinkFixture `yaml:"drinks"`
}

// DrinkFixture describes one drink
type DrinkFixture struct {
	Title  string              `yaml:"title"`
	Recipe []IngredientFixture `yaml:"recipe"`
}

// IngredientFixture describes one recipe component
type IngredientFixture struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
	Parts int    `yaml:"parts"`
}

// Default returns the built-in fixture
func Default() (*Fixture, error) {
	return Parse(defaultFixture)
}

// Load reads a fixture file. An empty path selects the built-in fixture.
func Load(path string) (*Fixture, error) {
	if path == "" {
		return Default()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a fixture, rejecting unknown keys
func Parse(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.UnmarshalStrict(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &f, nil
}

// Menu is the subset of the drinks service used for seeding
type Menu interface {
	CreateDrink(ctx context.Context, input services.CreateDrinkInput) (*models.Drink, error)
	ResetMenu(ctx context.Context) (int, error)
}

// Result summarizes a seeding run
type Result struct {
	Removed int
	Created int
	Skipped int
}

// Seeder applies fixtures through the drinks service so the usual validation applies
type Seeder struct {
	menu   Menu
	logger *zap.Logger
}

// NewSeeder creates a new Seeder
func NewSeeder(menu Menu, logger *zap.Logger) *Seeder {
	return &Seeder{menu: menu, logger: logger}
}

// Apply creates every drink in the fixture. Titles already on the menu are skipped.
// With reset, the menu is emptied first.
func (s *Seeder) Apply(ctx context.Context, fixture *Fixture, reset bool) (Result, error) {
	var res Result

	if reset {
		removed, err := s.menu.ResetMenu(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to reset menu: %w", err)
		}
		res.Removed = removed
		s.logger.Info("menu reset", zap.Int("removed", removed))
	}

	for _, d := range fixture.Drinks {
		_, err := s.menu.CreateDrink(ctx, services.CreateDrinkInput{
			Title:  d.Title,
			Recipe: d.ingredients(),
		})
		switch {
		case err == nil:
			res.Created++
		case services.IsConflictError(err):
			s.logger.Info("drink already on menu", zap.String("title", d.Title))
			res.Skipped++
		default:
			return res, fmt.Errorf("failed to seed %q: %w", d.Title, err)
		}
	}

	return res, nil
}

func (d DrinkFixture) ingredients() []models.Ingredient {
	out := make([]models.Ingredient, 0, len(d.Recipe))
	for _, ing := range d.Recipe {
		out = append(out, models.Ingredient{Name: ing.Name, Color: ing.Color, Parts: ing.Parts})
	}
	return out
}
