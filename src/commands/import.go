package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/username/moneyfolio/src/services"
)

func newImportCommand(deps *Deps) *cobra.Command {
	var rateFlags []string

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import statement files into the dataset",
		Long: `Import parses each statement file with the matching institution
extractor, deduplicates against what is already stored, converts foreign
currencies to the base currency and categorizes by keyword rules.

Without --rate the conversion rates come from the configured rate
source. With --rate the import runs in two phases: the files are parsed
first, then completed with exactly the rates you supplied.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readFiles(args)
			if err != nil {
				return err
			}

			rates, err := parseRateFlags(rateFlags)
			if err != nil {
				return err
			}

			var summary *services.ImportSummary
			if rates == nil {
				summary, err = deps.Importer.ImportBatch(cmd.Context(), files)
			} else {
				var begin *services.BeginResult
				begin, err = deps.Importer.BeginImport(cmd.Context(), files)
				if err != nil {
					return err
				}
				summary, err = deps.Importer.CompleteImport(cmd.Context(), begin.SessionID, rates)
			}
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d new transaction(s), skipped %d duplicate(s)\n",
				summary.Imported, summary.Duplicates)
			for _, source := range sortedKeys(summary.BySource) {
				fmt.Printf("  %-12s %d\n", source, summary.BySource[source])
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&rateFlags, "rate", nil,
		"conversion rate as CUR=R, e.g. --rate USD=0.92 (repeatable; switches to confirmed two-phase import)")
	return cmd
}

func readFiles(paths []string) ([]services.InputFile, error) {
	files := make([]services.InputFile, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, services.InputFile{
			Filename: filepath.Base(path),
			Content:  content,
		})
	}
	return files, nil
}

func parseRateFlags(flags []string) (map[string]float64, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	rates := make(map[string]float64, len(flags))
	for _, flag := range flags {
		currency, value, ok := strings.Cut(flag, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --rate %q, expected CUR=R", flag)
		}
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil || rate <= 0 {
			return nil, fmt.Errorf("invalid --rate %q, rate must be a positive number", flag)
		}
		rates[strings.ToUpper(strings.TrimSpace(currency))] = rate
	}
	return rates, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
