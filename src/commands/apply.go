package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newApplyCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Re-run every rule over uncategorized transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := deps.Engine.BulkApply(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Categorized %d transaction(s)\n", count)
			return nil
		},
	}
}
