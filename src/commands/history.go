package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCommand(deps *Deps) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := deps.Store.ListImportHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%s  %-12s %4d new  %s\n",
					e.CreatedAt.Format("2006-01-02 15:04"), e.Source, e.ImportedCount, e.Filename)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries to show")
	return cmd
}

func newSourcesCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List supported institutions in detection order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, source := range deps.Registry.Sources() {
				fmt.Println(source)
			}
			return nil
		},
	}
}
