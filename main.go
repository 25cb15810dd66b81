package main

import (
	"context"
	"os"

	"github.com/username/moneyfolio/src/categorizer"
	"github.com/username/moneyfolio/src/commands"
	"github.com/username/moneyfolio/src/config"
	"github.com/username/moneyfolio/src/database"
	"github.com/username/moneyfolio/src/logger"
	"github.com/username/moneyfolio/src/parsers"
	"github.com/username/moneyfolio/src/rates"
	"github.com/username/moneyfolio/src/services"
	"github.com/username/moneyfolio/src/sessions"
	"github.com/username/moneyfolio/src/storage"
)

func main() {
	cfg := config.LoadConfig()
	logger.InitLogger(cfg.LogLevel)

	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		logger.L.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	store := storage.NewStore(db)
	if err := categorizer.EnsureSeedData(ctx, store); err != nil {
		logger.L.Error("Failed to seed default categories", "error", err)
		os.Exit(1)
	}

	sessionStore := sessions.NewStore(cfg.SessionCapacity, cfg.SessionTTL)
	sessionStore.StartSweeper(ctx, cfg.SessionSweepInterval)

	rateProvider := rates.NewProvider(cfg.RatesURL, cfg.RatesCacheTTL, cfg.RatesTimeout)
	registry := parsers.Default()
	engine := categorizer.NewEngine(store)
	importer := services.NewImportService(store, registry, sessionStore, rateProvider)

	root := commands.NewRootCommand(&commands.Deps{
		Store:    store,
		Registry: registry,
		Engine:   engine,
		Importer: importer,
	})
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
