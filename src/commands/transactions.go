package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/username/moneyfolio/src/models"
)

func newTransactionsCommand(deps *Deps) *cobra.Command {
	var limit int
	var uncategorized bool

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List stored transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var txns []models.Transaction
			var err error
			if uncategorized {
				txns, err = deps.Store.ListUncategorized(cmd.Context())
			} else {
				txns, err = deps.Store.ListTransactions(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			for _, t := range txns {
				category := t.CategoryName
				if category == "" {
					category = "-"
				}
				fmt.Printf("%4d  %s  %10.2f %s  %-16s %s\n",
					t.ID, t.Date, t.Amount, models.BaseCurrency, category, t.Description)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of transactions to list")
	cmd.Flags().BoolVar(&uncategorized, "uncategorized", false, "list only transactions without a category")
	return cmd
}
