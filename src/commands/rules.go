package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newRulesCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage categorization keyword rules",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := deps.Store.ListRules(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range rules {
				fmt.Printf("%4d  %-24s -> %s\n", r.ID, r.Keyword, r.CategoryName)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <keyword> <category>",
		Short: "Create a rule mapping a keyword to a category (by name or id)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := resolveCategory(cmd.Context(), deps, args[1])
			if err != nil {
				return err
			}
			keyword := strings.ToLower(strings.TrimSpace(args[0]))
			if existing, err := deps.Store.FindRuleByKeyword(cmd.Context(), keyword); err != nil {
				return err
			} else if existing != nil {
				return fmt.Errorf("rule for %q already exists (id %d, category %s)",
					existing.Keyword, existing.ID, existing.CategoryName)
			}
			id, err := deps.Store.CreateRule(cmd.Context(), keyword, categoryID)
			if err != nil {
				return err
			}
			fmt.Printf("Created rule %q (id %d)\n", keyword, id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "learn <description> <category>",
		Short: "Learn a rule from a transaction description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := resolveCategory(cmd.Context(), deps, args[1])
			if err != nil {
				return err
			}
			result, err := deps.Engine.LearnRule(cmd.Context(), args[0], categoryID)
			if err != nil {
				return err
			}
			if result.AlreadyExists {
				fmt.Printf("Rule for %q already exists (id %d)\n", result.Keyword, result.RuleID)
				return nil
			}
			fmt.Printf("Learned rule %q (id %d)\n", result.Keyword, result.RuleID)
			return nil
		},
	})

	return cmd
}

// resolveCategory accepts either a category name or a numeric id.
func resolveCategory(ctx context.Context, deps *Deps, ref string) (int64, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		exists, err := deps.Store.CategoryExists(ctx, id)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, fmt.Errorf("no category with id %d", id)
		}
		return id, nil
	}

	category, err := deps.Store.GetCategoryByName(ctx, ref)
	if err != nil {
		return 0, err
	}
	if category == nil {
		return 0, fmt.Errorf("no category named %q", ref)
	}
	return category.ID, nil
}
