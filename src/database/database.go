package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/username/moneyfolio/src/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// InitDB opens the SQLite database at the given path, applies pending
// schema migrations and returns the connection pool.
func InitDB(databasePath string) (*sql.DB, error) {
	if err := RunMigrations(databasePath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("open database at %s: %w", databasePath, err)
	}
	// Single-writer store: one connection sidesteps SQLITE_BUSY between
	// readers and an open import transaction.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	logger.L.Info("Database ready", "databasePath", databasePath)
	return db, nil
}

// RunMigrations applies the embedded migrations on a dedicated connection
// so the main pool never sees a half-migrated schema.
func RunMigrations(databasePath string) error {
	migrateDB, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
