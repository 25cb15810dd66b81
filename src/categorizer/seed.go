package categorizer

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/username/moneyfolio/src/logger"
	"github.com/username/moneyfolio/src/storage"
)

//go:embed seeds.yaml
var seedsYAML []byte

type seedDocument struct {
	Categories []struct {
		Name     string   `yaml:"name"`
		Color    string   `yaml:"color"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"categories"`
}

// EnsureSeedData installs the default category taxonomy and its starter
// keyword rules on a database with no categories yet. A database that
// already has any category is left alone, so user edits survive
// restarts.
func EnsureSeedData(ctx context.Context, store *storage.Store) error {
	count, err := store.CountCategories(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var doc seedDocument
	if err := yaml.Unmarshal(seedsYAML, &doc); err != nil {
		return fmt.Errorf("parse embedded seeds: %w", err)
	}

	var rules int
	for _, c := range doc.Categories {
		id, err := store.CreateCategory(ctx, c.Name, c.Color)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		for _, keyword := range c.Keywords {
			if _, err := store.CreateRule(ctx, keyword, id); err != nil {
				return fmt.Errorf("seed rule %q: %w", keyword, err)
			}
			rules++
		}
	}
	logger.L.Info("Seeded default categories", "categories", len(doc.Categories), "rules", rules)
	return nil
}
