package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCategoriesCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage spending categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := deps.Store.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range categories {
				fmt.Printf("%4d  %-20s %s\n", c.ID, c.Name, c.Color)
			}
			return nil
		},
	})

	var color string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			existing, err := deps.Store.GetCategoryByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("category %q already exists (id %d)", existing.Name, existing.ID)
			}
			id, err := deps.Store.CreateCategory(cmd.Context(), args[0], color)
			if err != nil {
				return err
			}
			fmt.Printf("Created category %q (id %d)\n", args[0], id)
			return nil
		},
	}
	add.Flags().StringVar(&color, "color", "#9e9e9e", "display color as a hex code")
	cmd.AddCommand(add)

	return cmd
}
