package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/username/moneyfolio/src/models"
)

// timestampLayout is how SQLite's CURRENT_TIMESTAMP renders.
const timestampLayout = "2006-01-02 15:04:05"

// Store wraps the SQLite database with the queries the rest of the
// application needs. All amounts pass through unchanged; the store does
// no normalization of its own.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Begin opens the single writable transaction an import call runs under.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// --- categories ---

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color, created_at FROM categories ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &createdAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.CreatedAt = parseTimestamp(createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CountCategories(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

func (s *Store) CreateCategory(ctx context.Context, name, color string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, color) VALUES (?, ?)`, name, color)
	if err != nil {
		return 0, fmt.Errorf("create category %q: %w", name, err)
	}
	return res.LastInsertId()
}

func (s *Store) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check category %d: %w", id, err)
	}
	return true, nil
}

// GetCategoryByName matches case-insensitively. Returns nil when absent.
func (s *Store) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, color, created_at FROM categories WHERE name = ? COLLATE NOCASE`,
		name).Scan(&c.ID, &c.Name, &c.Color, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category %q: %w", name, err)
	}
	c.CreatedAt = parseTimestamp(createdAt)
	return &c, nil
}

// --- category rules ---

const ruleColumns = `r.id, r.keyword, r.category_id, c.name, r.created_at`

// ListRules returns rules in insertion order, the order categorization
// during import evaluates them in.
func (s *Store) ListRules(ctx context.Context) ([]models.CategoryRule, error) {
	return s.queryRules(ctx, `SELECT `+ruleColumns+` FROM category_rules r
		JOIN categories c ON c.id = r.category_id ORDER BY r.id`)
}

// ListRulesByKeyword returns rules ordered by ascending keyword, the
// fixed evaluation order of the bulk re-categorization pass.
func (s *Store) ListRulesByKeyword(ctx context.Context) ([]models.CategoryRule, error) {
	return s.queryRules(ctx, `SELECT `+ruleColumns+` FROM category_rules r
		JOIN categories c ON c.id = r.category_id ORDER BY r.keyword`)
}

func (s *Store) queryRules(ctx context.Context, query string) ([]models.CategoryRule, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var out []models.CategoryRule
	for rows.Next() {
		var r models.CategoryRule
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Keyword, &r.CategoryID, &r.CategoryName, &createdAt); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		r.CreatedAt = parseTimestamp(createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// FindRuleByKeyword matches case-insensitively. Returns nil when absent.
func (s *Store) FindRuleByKeyword(ctx context.Context, keyword string) (*models.CategoryRule, error) {
	var r models.CategoryRule
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM category_rules r
		 JOIN categories c ON c.id = r.category_id WHERE r.keyword = ? COLLATE NOCASE`,
		keyword).Scan(&r.ID, &r.Keyword, &r.CategoryID, &r.CategoryName, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find rule %q: %w", keyword, err)
	}
	r.CreatedAt = parseTimestamp(createdAt)
	return &r, nil
}

func (s *Store) CreateRule(ctx context.Context, keyword string, categoryID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO category_rules (keyword, category_id) VALUES (?, ?)`, keyword, categoryID)
	if err != nil {
		return 0, fmt.Errorf("create rule %q: %w", keyword, err)
	}
	return res.LastInsertId()
}

// --- transactions ---

const transactionColumns = `t.id, t.date, t.amount, t.description, t.source, t.category_id,
	c.name, t.original_amount, t.original_currency, t.exchange_rate, t.created_at`

// ListUncategorized returns every transaction without a category, in
// insertion order.
func (s *Store) ListUncategorized(ctx context.Context) ([]models.Transaction, error) {
	return s.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.category_id IS NULL ORDER BY t.id`)
}

// ListTransactions returns the most recent transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	return s.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		ORDER BY t.date DESC, t.id DESC LIMIT ?`, limit)
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTransaction(rows *sql.Rows) (models.Transaction, error) {
	var t models.Transaction
	var categoryID sql.NullInt64
	var categoryName sql.NullString
	var createdAt string
	if err := rows.Scan(&t.ID, &t.Date, &t.Amount, &t.Description, &t.Source,
		&categoryID, &categoryName, &t.OriginalAmount, &t.OriginalCurrency,
		&t.ExchangeRate, &createdAt); err != nil {
		return t, fmt.Errorf("scan transaction: %w", err)
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	t.CategoryName = categoryName.String
	t.CreatedAt = parseTimestamp(createdAt)
	return t, nil
}

// CountBySignature returns how many persisted transactions share the
// given deduplication signature.
func (s *Store) CountBySignature(ctx context.Context, sig models.Signature) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions
		 WHERE date = ? AND original_amount = ? AND description = ? AND source = ? AND original_currency = ?`,
		sig.Date, sig.Amount, sig.Description, sig.Source, sig.Currency).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count signature: %w", err)
	}
	return n, nil
}

// --- import history ---

func (s *Store) ListImportHistory(ctx context.Context, limit int) ([]models.ImportEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, source, imported_count, created_at
		 FROM import_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list import history: %w", err)
	}
	defer rows.Close()

	var out []models.ImportEntry
	for rows.Next() {
		var e models.ImportEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Filename, &e.Source, &e.ImportedCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan import entry: %w", err)
		}
		e.CreatedAt = parseTimestamp(createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
