package models

import "time"

// BaseCurrency is the currency every persisted amount is normalized to.
const BaseCurrency = "EUR"

// DateFormat is the canonical calendar date layout used across the store.
const DateFormat = "2006-01-02"

// ParsedRecord is the unified output of every statement extractor.
// Each extractor populates these fields directly from the source file;
// the record is never persisted as-is, the import pipeline turns it
// into a Transaction.
type ParsedRecord struct {
	Date        string  `json:"date"`        // canonical calendar date (DateFormat)
	Description string  `json:"description"` // free text, already cleaned up by the extractor
	Amount      float64 `json:"amount"`      // signed, in Currency
	Currency    string  `json:"currency"`    // ISO code; empty means BaseCurrency
	Source      string  `json:"source"`      // institution identifier, e.g. "revolut"
	RawCategory string  `json:"raw_category,omitempty"` // institution's own category label, when the format carries one
}

// Signature is the deduplication key of a record: two records with equal
// signatures are occurrences of the same real-world transaction.
type Signature struct {
	Date        string
	Amount      float64
	Description string
	Source      string
	Currency    string
}

// Signature returns the record's deduplication key. The currency is
// normalized so a blank code and the base currency compare equal.
func (r ParsedRecord) Signature() Signature {
	currency := r.Currency
	if currency == "" {
		currency = BaseCurrency
	}
	return Signature{
		Date:        r.Date,
		Amount:      r.Amount,
		Description: r.Description,
		Source:      r.Source,
		Currency:    currency,
	}
}

// FileBatch groups the records extracted from a single uploaded file,
// preserving their original order.
type FileBatch struct {
	Filename string         `json:"filename"`
	Source   string         `json:"source"`
	Records  []ParsedRecord `json:"records"`
}

// Transaction is a persisted, normalized transaction row.
// Created by the import pipeline; only the category assignment is
// mutated afterwards.
type Transaction struct {
	ID               int64     `json:"id"`
	Date             string    `json:"date"`
	Amount           float64   `json:"amount"` // in BaseCurrency, OriginalAmount * ExchangeRate
	Description      string    `json:"description"`
	Source           string    `json:"source"`
	CategoryID       *int64    `json:"category_id,omitempty"`
	CategoryName     string    `json:"category_name,omitempty"` // joined on read, not stored
	OriginalAmount   float64   `json:"original_amount"`
	OriginalCurrency string    `json:"original_currency"`
	ExchangeRate     float64   `json:"exchange_rate"`
	CreatedAt        time.Time `json:"created_at"`
}

// Category is a user-visible spending category.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"` // unique, case-insensitive
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryRule maps a keyword to a category. Keywords are stored
// lowercase and are unique case-insensitively.
type CategoryRule struct {
	ID           int64     `json:"id"`
	Keyword      string    `json:"keyword"`
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"` // joined on read
	CreatedAt    time.Time `json:"created_at"`
}

// ImportEntry records one file's contribution to an import call.
// Files that contributed no new records get no entry.
type ImportEntry struct {
	ID            int64     `json:"id"`
	Filename      string    `json:"filename"`
	Source        string    `json:"source"`
	ImportedCount int       `json:"imported_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ExchangeRate represents the structure of the exchange rate observation
// document served by the rate source.
type ExchangeRate struct {
	Root struct {
		Obs []struct {
			TimePeriod string `json:"_TIME_PERIOD"`
			ObsValue   string `json:"_OBS_VALUE"`
			Ccy        string `json:"_CCY"`
		} `json:"Obs"`
	} `json:"root"`
}
