package models

import (
	"encoding/json"
	"fmt"
)

// Ingredient is one component of a drink's recipe
type Ingredient struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"required"`
	Parts int    `json:"parts" validate:"gte=1"`
}

// Drink represents a menu entry. Titles are unique.
type Drink struct {
	ID     int64        `json:"id" db:"id"`
	Title  string       `json:"title" db:"title"`
	Recipe []Ingredient `json:"recipe" db:"recipe"`
}

// ShortIngredient is the public view of an ingredient, without its name
type ShortIngredient struct {
	Color string `json:"color"`
	Parts int    `json:"parts"`
}

// DrinkShort is the public representation served by GET /drinks
type DrinkShort struct {
	ID     int64             `json:"id"`
	Title  string            `json:"title"`
	Recipe []ShortIngredient `json:"recipe"`
}

// DrinkLong is the detailed representation, including ingredient names
type DrinkLong struct {
	ID     int64        `json:"id"`
	Title  string       `json:"title"`
	Recipe []Ingredient `json:"recipe"`
}

// TableName returns the table name for the Drink model
func (Drink) TableName() string {
	return "drinks"
}

// NewDrink creates a new, unsaved Drink
func NewDrink(title string, recipe []Ingredient) *Drink {
	return &Drink{
		Title:  title,
		Recipe: recipe,
	}
}

// Short returns the public representation
func (d *Drink) Short() DrinkShort {
	recipe := make([]ShortIngredient, 0, len(d.Recipe))
	for _, ing := range d.Recipe {
		recipe = append(recipe, ShortIngredient{Color: ing.Color, Parts: ing.Parts})
	}
	return DrinkShort{ID: d.ID, Title: d.Title, Recipe: recipe}
}

// Long returns the detailed representation
func (d *Drink) Long() DrinkLong {
	recipe := make([]Ingredient, len(d.Recipe))
	copy(recipe, d.Recipe)
	return DrinkLong{ID: d.ID, Title: d.Title, Recipe: recipe}
}

// EncodeRecipe serializes the recipe for the text column
func (d *Drink) EncodeRecipe() (string, error) {
	recipe := d.Recipe
	if recipe == nil {
		recipe = []Ingredient{}
	}
	raw, err := json.Marshal(recipe)
	if err != nil {
		return "", fmt.Errorf("failed to encode recipe: %w", err)
	}
	return string(raw), nil
}

// DecodeRecipe parses a stored recipe column
func DecodeRecipe(raw string) ([]Ingredient, error) {
	var recipe []Ingredient
	if err := json.Unmarshal([]byte(raw), &recipe); err != nil {
		return nil, fmt.Errorf("failed to decode recipe: %w", err)
	}
	if recipe == nil {
		recipe = []Ingredient{}
	}
	return recipe, nil
}

// ShortList maps drinks to their public representation
func ShortList(drinks []*Drink) []DrinkShort {
	out := make([]DrinkShort, 0, len(drinks))
	for _, d := range drinks {
		out = append(out, d.Short())
	}
	return out
}

// LongList maps drinks to their detailed representation
func LongList(drinks []*Drink) []DrinkLong {
	out := make([]DrinkLong, 0, len(drinks))
	for _, d := range drinks {
		out = append(out, d.Long())
	}
	return out
}
