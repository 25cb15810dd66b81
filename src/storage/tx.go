package storage

import (
	"database/sql"
	"fmt"

	"github.com/username/moneyfolio/src/models"
)

// Tx is the single atomic write phase of an import or re-categorization
// call. All classification happens before it opens; a failure inside it
// rolls the whole call back.
type Tx struct {
	tx         *sql.Tx
	insertStmt *sql.Stmt
}

// InsertTransaction writes one normalized transaction and returns its id.
// The insert statement is prepared once and reused across the batch.
func (t *Tx) InsertTransaction(txn *models.Transaction) (int64, error) {
	if t.insertStmt == nil {
		stmt, err := t.tx.Prepare(`INSERT INTO transactions
			(date, amount, description, source, category_id, original_amount, original_currency, exchange_rate)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("prepare transaction insert: %w", err)
		}
		t.insertStmt = stmt
	}

	var categoryID any
	if txn.CategoryID != nil {
		categoryID = *txn.CategoryID
	}
	res, err := t.insertStmt.Exec(txn.Date, txn.Amount, txn.Description, txn.Source,
		categoryID, txn.OriginalAmount, txn.OriginalCurrency, txn.ExchangeRate)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return res.LastInsertId()
}

// CountBySignature counts persisted transactions with the signature,
// including rows written earlier in this same transaction. The import
// pipeline relies on that visibility for cross-file deduplication.
func (t *Tx) CountBySignature(sig models.Signature) (int, error) {
	var n int
	err := t.tx.QueryRow(
		`SELECT COUNT(*) FROM transactions
		 WHERE date = ? AND original_amount = ? AND description = ? AND source = ? AND original_currency = ?`,
		sig.Date, sig.Amount, sig.Description, sig.Source, sig.Currency).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count signature: %w", err)
	}
	return n, nil
}

// InsertImportEntry records one source file's contribution.
func (t *Tx) InsertImportEntry(filename, source string, importedCount int) error {
	if _, err := t.tx.Exec(
		`INSERT INTO import_history (filename, source, imported_count) VALUES (?, ?, ?)`,
		filename, source, importedCount); err != nil {
		return fmt.Errorf("insert import entry: %w", err)
	}
	return nil
}

// AssignCategory sets the category of an existing transaction.
func (t *Tx) AssignCategory(transactionID, categoryID int64) error {
	if _, err := t.tx.Exec(
		`UPDATE transactions SET category_id = ? WHERE id = ?`,
		categoryID, transactionID); err != nil {
		return fmt.Errorf("assign category: %w", err)
	}
	return nil
}

func (t *Tx) Commit() error {
	if t.insertStmt != nil {
		t.insertStmt.Close()
	}
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Rollback is safe to defer; after a successful Commit it is a no-op.
func (t *Tx) Rollback() error {
	if t.insertStmt != nil {
		t.insertStmt.Close()
	}
	err := t.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}
