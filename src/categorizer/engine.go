package categorizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/username/moneyfolio/src/logger"
	"github.com/username/moneyfolio/src/storage"
)

var (
	// ErrCategoryNotFound is returned when a rule references a category
	// id that does not exist. Checked before any write.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrNoKeyword is returned when no usable keyword can be extracted
	// from the description.
	ErrNoKeyword = errors.New("no usable keyword in description")
)

// Engine learns and applies keyword rules against the store.
type Engine struct {
	store *storage.Store
}

func NewEngine(store *storage.Store) *Engine {
	return &Engine{store: store}
}

// LearnResult reports the outcome of a LearnRule call. When the keyword
// already had a rule, RuleID points at the existing rule and
// AlreadyExists is set instead of Created.
type LearnResult struct {
	Created       bool   `json:"created"`
	AlreadyExists bool   `json:"already_exists"`
	Keyword       string `json:"keyword"`
	RuleID        int64  `json:"rule_id"`
}

// LearnRule extracts a keyword from the description and stores it as a
// rule for the category. No side effect on failure: the category must
// exist and the description must yield a keyword before anything is
// written, and a pre-existing rule for the same keyword is reported, not
// overwritten.
func (e *Engine) LearnRule(ctx context.Context, description string, categoryID int64) (*LearnResult, error) {
	exists, err := e.store.CategoryExists(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", ErrCategoryNotFound, categoryID)
	}

	keyword := ExtractKeyword(description)
	if keyword == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoKeyword, description)
	}

	existing, err := e.store.FindRuleByKeyword(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &LearnResult{AlreadyExists: true, Keyword: existing.Keyword, RuleID: existing.ID}, nil
	}

	id, err := e.store.CreateRule(ctx, keyword, categoryID)
	if err != nil {
		return nil, err
	}
	logger.L.Info("Learned categorization rule", "keyword", keyword, "categoryID", categoryID)
	return &LearnResult{Created: true, Keyword: keyword, RuleID: id}, nil
}

// BulkApply re-evaluates every uncategorized transaction against the
// full rule set, rules ordered by ascending keyword so the outcome does
// not depend on insertion order. Already-categorized transactions are
// never touched. Returns how many transactions got a category.
func (e *Engine) BulkApply(ctx context.Context) (int, error) {
	rules, err := e.store.ListRulesByKeyword(ctx)
	if err != nil {
		return 0, err
	}
	if len(rules) == 0 {
		return 0, nil
	}

	uncategorized, err := e.store.ListUncategorized(ctx)
	if err != nil {
		return 0, err
	}

	// Match everything up front; the writes below are a single atomic
	// transaction.
	type assignment struct {
		transactionID int64
		categoryID    int64
	}
	var assignments []assignment
	for _, txn := range uncategorized {
		if id := Categorize(txn.Description, rules); id != nil {
			assignments = append(assignments, assignment{transactionID: txn.ID, categoryID: *id})
		}
	}
	if len(assignments) == 0 {
		return 0, nil
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, a := range assignments {
		if err := tx.AssignCategory(a.transactionID, a.categoryID); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	logger.L.Info("Bulk categorization applied",
		"evaluated", len(uncategorized), "categorized", len(assignments), "rules", len(rules))
	return len(assignments), nil
}

// CategorizeNow resolves a description against the current rule set in
// insertion order, the same way the import pipeline does.
func (e *Engine) CategorizeNow(ctx context.Context, description string) (*int64, error) {
	rules, err := e.store.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	return Categorize(description, rules), nil
}
