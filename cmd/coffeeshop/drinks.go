package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fsnd/coffee-shop/models"
	"github.com/fsnd/coffee-shop/services"
)

func newDrinksCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drinks",
		Short: "Inspect the menu",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one drink ingredient by ingredient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid drink id %q", args[0])
			}

			return withDrinkService(cmd.Context(), c, func(svc *services.DrinkService) error {
				drink, err := svc.GetDrink(cmd.Context(), id)
				if err != nil {
					return err
				}

				t := table.NewWriter()
				t.SetOutputMirror(cmd.OutOrStdout())
				t.SetTitle(fmt.Sprintf("#%d %s", drink.ID, drink.Title))
				t.AppendHeader(table.Row{"Ingredient", "Color", "Parts"})
				for _, ing := range drink.Recipe {
					t.AppendRow(table.Row{ing.Name, ing.Color, ing.Parts})
				}
				t.Render()
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every drink with its full recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDrinkService(cmd.Context(), c, func(svc *services.DrinkService) error {
				drinks, err := svc.ListDrinks(cmd.Context())
				if err != nil {
					return err
				}

				t := table.NewWriter()
				t.SetOutputMirror(cmd.OutOrStdout())
				t.AppendHeader(table.Row{"ID", "Title", "Recipe"})
				for _, d := range drinks {
					t.AppendRow(table.Row{d.ID, d.Title, formatRecipe(d.Recipe)})
				}
				t.AppendFooter(table.Row{"", "Total", len(drinks)})
				t.Render()
				return nil
			})
		},
	})

	return cmd
}

func formatRecipe(recipe []models.Ingredient) string {
	parts := make([]string, 0, len(recipe))
	for _, ing := range recipe {
		parts = append(parts, fmt.Sprintf("%d %s (%s)", ing.Parts, ing.Name, ing.Color))
	}
	return strings.Join(parts, ", ")
}
