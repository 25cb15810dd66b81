package commands

import (
	"github.com/spf13/cobra"

	"github.com/username/moneyfolio/src/categorizer"
	"github.com/username/moneyfolio/src/parsers"
	"github.com/username/moneyfolio/src/services"
	"github.com/username/moneyfolio/src/storage"
)

// Deps carries the wired application services into the commands. Built
// once in main; commands hold no state of their own.
type Deps struct {
	Store    *storage.Store
	Registry *parsers.Registry
	Engine   *categorizer.Engine
	Importer *services.ImportService
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(deps *Deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "moneyfolio",
		Short: "Consolidate bank statement exports into one categorized dataset",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newImportCommand(deps))
	rootCmd.AddCommand(newCategoriesCommand(deps))
	rootCmd.AddCommand(newRulesCommand(deps))
	rootCmd.AddCommand(newApplyCommand(deps))
	rootCmd.AddCommand(newTransactionsCommand(deps))
	rootCmd.AddCommand(newHistoryCommand(deps))
	rootCmd.AddCommand(newSourcesCommand(deps))

	return rootCmd
}
