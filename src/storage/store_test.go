package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/moneyfolio/src/database"
	"github.com/username/moneyfolio/src/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func sampleTransaction(description string) *models.Transaction {
	return &models.Transaction{
		Date:             "2025-03-01",
		Amount:           -12.50,
		Description:      description,
		Source:           "revolut",
		OriginalAmount:   -12.50,
		OriginalCurrency: "EUR",
		ExchangeRate:     1.0,
	}
}

func TestCategoryNameUniqueCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateCategory(ctx, "Groceries", "#4caf50")
	require.NoError(t, err)

	_, err = store.CreateCategory(ctx, "GROCERIES", "#ffffff")
	assert.Error(t, err, "category names collide case-insensitively")

	got, err := store.GetCategoryByName(ctx, "groceries")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Groceries", got.Name)
}

func TestRuleKeywordUniqueCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	catID, err := store.CreateCategory(ctx, "Groceries", "#4caf50")
	require.NoError(t, err)

	_, err = store.CreateRule(ctx, "kaufland", catID)
	require.NoError(t, err)
	_, err = store.CreateRule(ctx, "KAUFLAND", catID)
	assert.Error(t, err)

	rule, err := store.FindRuleByKeyword(ctx, "KaufLand")
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, "kaufland", rule.Keyword)
	assert.Equal(t, "Groceries", rule.CategoryName)
}

func TestRuleRejectsUnknownCategory(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CreateRule(context.Background(), "orphan", 999)
	assert.Error(t, err, "foreign keys are enforced")
}

func TestCountBySignatureSeesUncommittedWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	txn := sampleTransaction("KAUFLAND 1210")
	sig := models.Signature{
		Date:        txn.Date,
		Amount:      txn.OriginalAmount,
		Description: txn.Description,
		Source:      txn.Source,
		Currency:    txn.OriginalCurrency,
	}

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	n, err := tx.CountBySignature(sig)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = tx.InsertTransaction(txn)
	require.NoError(t, err)

	// A later file's snapshot in the same import call must count this
	// row even though nothing committed yet.
	n, err = tx.CountBySignature(sig)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, tx.Commit())

	n, err = store.CountBySignature(ctx, sig)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRollbackLeavesNoPartialState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.InsertTransaction(sampleTransaction("doomed"))
	require.NoError(t, err)
	require.NoError(t, tx.InsertImportEntry("doomed.csv", "revolut", 1))
	require.NoError(t, tx.Rollback())

	txns, err := store.ListTransactions(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, txns)

	history, err := store.ListImportHistory(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestListUncategorizedAndAssign(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	catID, err := store.CreateCategory(ctx, "Groceries", "#4caf50")
	require.NoError(t, err)

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	id, err := tx.InsertTransaction(sampleTransaction("KAUFLAND 1210"))
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	uncategorized, err := store.ListUncategorized(ctx)
	require.NoError(t, err)
	require.Len(t, uncategorized, 1)
	assert.Nil(t, uncategorized[0].CategoryID)

	tx, err = store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.AssignCategory(id, catID))
	require.NoError(t, tx.Commit())

	uncategorized, err = store.ListUncategorized(ctx)
	require.NoError(t, err)
	assert.Empty(t, uncategorized)

	txns, err := store.ListTransactions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "Groceries", txns[0].CategoryName)
}
