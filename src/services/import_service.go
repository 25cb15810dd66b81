package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/username/moneyfolio/src/categorizer"
	"github.com/username/moneyfolio/src/logger"
	"github.com/username/moneyfolio/src/models"
	"github.com/username/moneyfolio/src/parsers"
	"github.com/username/moneyfolio/src/sessions"
	"github.com/username/moneyfolio/src/storage"
)

var (
	// ErrParsingFailed wraps any extractor failure; the whole batch is
	// rejected, nothing is written.
	ErrParsingFailed = errors.New("error parsing file data")

	// ErrSessionExpired is returned when phase 2 names a token the
	// session store no longer holds. The caller resubmits the files.
	ErrSessionExpired = errors.New("import session expired or unknown, resubmit the files")
)

// RateSource supplies currency → base-currency conversion rates for
// single-phase imports, where the caller confirms nothing.
type RateSource interface {
	Rates(ctx context.Context) map[string]float64
}

// InputFile is one uploaded statement file.
type InputFile struct {
	Filename string
	Content  []byte
}

// ImportSummary reports one reconciliation call.
type ImportSummary struct {
	Imported   int            `json:"imported"`
	Duplicates int            `json:"duplicates"`
	BySource   map[string]int `json:"by_source"`
}

// BeginResult reports phase 1 of a two-phase import: what was parsed and
// which currencies need a confirmed rate before phase 2.
type BeginResult struct {
	SessionID   string         `json:"session_id"`
	ParsedCount int            `json:"parsed_count"`
	Currencies  []string       `json:"currencies"`
	BySource    map[string]int `json:"by_source"`
	ByCurrency  map[string]int `json:"by_currency"`
}

// ImportService reconciles parsed statement files into the store:
// exact-multiplicity deduplication, currency normalization,
// categorization, and one atomic write per call.
type ImportService struct {
	store    *storage.Store
	registry *parsers.Registry
	sessions *sessions.Store
	rates    RateSource
}

func NewImportService(store *storage.Store, registry *parsers.Registry, sessionStore *sessions.Store, rates RateSource) *ImportService {
	return &ImportService{
		store:    store,
		registry: registry,
		sessions: sessionStore,
		rates:    rates,
	}
}

// ImportBatch is the single-phase protocol: parse every file, look up
// conversion rates from the rate source, and reconcile immediately.
func (s *ImportService) ImportBatch(ctx context.Context, files []InputFile) (*ImportSummary, error) {
	batches, err := s.parseFiles(files)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, batches, s.rates.Rates(ctx))
}

// BeginImport is phase 1 of the two-phase protocol: parse every file and
// park the records under a session token until the caller confirms the
// conversion rates.
func (s *ImportService) BeginImport(ctx context.Context, files []InputFile) (*BeginResult, error) {
	batches, err := s.parseFiles(files)
	if err != nil {
		return nil, err
	}

	result := &BeginResult{
		SessionID:  s.sessions.Put(batches),
		BySource:   make(map[string]int),
		ByCurrency: make(map[string]int),
	}
	for _, batch := range batches {
		for _, r := range batch.Records {
			result.ParsedCount++
			result.BySource[r.Source]++
			result.ByCurrency[r.Signature().Currency]++
		}
	}
	for currency := range result.ByCurrency {
		result.Currencies = append(result.Currencies, currency)
	}
	sort.Strings(result.Currencies)

	logger.L.Info("Import session opened",
		"sessionID", result.SessionID, "files", len(files), "records", result.ParsedCount)
	return result, nil
}

// CompleteImport is phase 2: consume the session and reconcile with the
// caller-confirmed rates. A token can only complete once.
func (s *ImportService) CompleteImport(ctx context.Context, sessionID string, rateMap map[string]float64) (*ImportSummary, error) {
	batches, ok := s.sessions.Take(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionExpired, sessionID)
	}
	return s.reconcile(ctx, batches, rateMap)
}

func (s *ImportService) parseFiles(files []InputFile) ([]models.FileBatch, error) {
	batches := make([]models.FileBatch, 0, len(files))
	for _, file := range files {
		extractor, err := s.registry.Resolve(file.Content, file.Filename)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
		}
		records, err := extractor.Parse(file.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParsingFailed, file.Filename, err)
		}
		logger.L.Debug("Parsed statement file",
			"filename", file.Filename, "source", extractor.Source(), "records", len(records))
		batches = append(batches, models.FileBatch{
			Filename: file.Filename,
			Source:   extractor.Source(),
			Records:  records,
		})
	}
	return batches, nil
}

// reconcile runs deduplication, conversion and categorization for every
// batch and commits the whole call as one storage transaction. Files are
// processed strictly in order: a later file's existing-count snapshot is
// taken inside the same transaction, so it sees rows an earlier file
// already wrote.
func (s *ImportService) reconcile(ctx context.Context, batches []models.FileBatch, rateMap map[string]float64) (*ImportSummary, error) {
	// Rules are loaded once per call, in insertion order.
	rules, err := s.store.ListRules(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	summary := &ImportSummary{BySource: make(map[string]int)}
	for _, batch := range batches {
		imported, duplicates, err := s.reconcileBatch(tx, batch, rateMap, rules)
		if err != nil {
			return nil, err
		}
		summary.Imported += imported
		summary.Duplicates += duplicates
		if imported > 0 {
			summary.BySource[batch.Source] += imported
			if err := tx.InsertImportEntry(batch.Filename, batch.Source, imported); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	logger.L.Info("Import committed",
		"files", len(batches), "imported", summary.Imported, "duplicates", summary.Duplicates)
	return summary, nil
}

func (s *ImportService) reconcileBatch(tx *storage.Tx, batch models.FileBatch, rateMap map[string]float64, rules []models.CategoryRule) (imported, duplicates int, err error) {
	// Multiplicity of each signature within this batch, and the count
	// already persisted, snapshotted before this batch writes anything.
	batchCount := make(map[models.Signature]int)
	for _, record := range batch.Records {
		batchCount[record.Signature()]++
	}
	existing := make(map[models.Signature]int, len(batchCount))
	for sig := range batchCount {
		n, err := tx.CountBySignature(sig)
		if err != nil {
			return 0, 0, err
		}
		existing[sig] = n
	}

	// For each signature, the first max(0, batchCount-existing)
	// occurrences are new; every occurrence beyond that is a duplicate.
	// This keeps legitimate repeats (two identical coffees in one file)
	// while re-importing the same file adds nothing.
	seen := make(map[models.Signature]int, len(batchCount))
	for _, record := range batch.Records {
		sig := record.Signature()
		seen[sig]++
		if seen[sig] <= batchCount[sig]-existing[sig] {
			if err := s.insertRecord(tx, record, rateMap, rules); err != nil {
				return 0, 0, err
			}
			imported++
		} else {
			duplicates++
		}
	}

	logger.L.Debug("Reconciled statement file",
		"filename", batch.Filename, "imported", imported, "duplicates", duplicates)
	return imported, duplicates, nil
}

func (s *ImportService) insertRecord(tx *storage.Tx, record models.ParsedRecord, rateMap map[string]float64, rules []models.CategoryRule) error {
	currency := record.Signature().Currency
	rate := 1.0
	if currency != models.BaseCurrency {
		if r, ok := rateMap[currency]; ok {
			rate = r
		} else {
			logger.L.Warn("No conversion rate supplied, storing at 1.0",
				"currency", currency, "description", record.Description)
		}
	}

	_, err := tx.InsertTransaction(&models.Transaction{
		Date:             record.Date,
		Amount:           record.Amount * rate,
		Description:      record.Description,
		Source:           record.Source,
		CategoryID:       categorizer.Categorize(record.Description, rules),
		OriginalAmount:   record.Amount,
		OriginalCurrency: currency,
		ExchangeRate:     rate,
	})
	return err
}
