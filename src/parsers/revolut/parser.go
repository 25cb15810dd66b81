package revolut

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/username/moneyfolio/src/models"
	"github.com/username/moneyfolio/src/utils"
)

const source = "revolut"

// ErrHeaderMismatch is returned for a file that looks like this export
// but whose header row matches none of the recognized vocabularies.
var ErrHeaderMismatch = errors.New("no matching header vocabulary")

// vocabulary names one language's headers for the semantic columns.
type vocabulary struct {
	name        string
	typ         string
	startedDate string
	description string
	amount      string
	fee         string
	currency    string
}

func (v vocabulary) headers() []string {
	return []string{v.typ, v.startedDate, v.description, v.amount, v.fee, v.currency}
}

// The export header language follows the account locale. Matching is
// case-insensitive and order-independent; the first vocabulary with all
// columns present wins.
var vocabularies = []vocabulary{
	{name: "english", typ: "Type", startedDate: "Started Date", description: "Description", amount: "Amount", fee: "Fee", currency: "Currency"},
	{name: "slovak", typ: "Typ", startedDate: "Dátum začatia", description: "Popis", amount: "Suma", fee: "Poplatok", currency: "Mena"},
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Source() string {
	return source
}

// Detect accepts the bank's own export naming, or any file whose first
// line carries a recognized header keyword.
func (p *Parser) Detect(content []byte, filename string) bool {
	name := strings.ToLower(filename)
	if strings.Contains(name, "revolut") || strings.HasPrefix(name, "account-statement_") {
		return true
	}
	// Field-wise comparison: a substring scan would false-positive on
	// binary content (an XLSX file leads with "[Content_Types].xml").
	for _, f := range strings.Split(firstLine(content), ",") {
		f = strings.TrimSpace(strings.TrimPrefix(f, "\uFEFF"))
		for _, v := range vocabularies {
			for _, h := range v.headers() {
				if strings.EqualFold(f, h) {
					return true
				}
			}
		}
	}
	return false
}

// Parse reads the export. A row yields a primary record when its amount
// is non-zero and an extra fee record when its fee is non-zero; rows
// with both zero contribute nothing.
func (p *Parser) Parse(content []byte) ([]models.ParsedRecord, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}
	cols, err := matchVocabulary(header)
	if err != nil {
		return nil, err
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read data rows: %w", err)
	}

	var records []models.ParsedRecord
	for _, row := range rows {
		date := field(row, cols.date)
		description := field(row, cols.description)
		if date == "" || description == "" {
			continue
		}
		// A combined date-time field: the calendar date is the first
		// 10 characters.
		if len(date) > 10 {
			date = date[:10]
		}

		amount := parseOrZero(field(row, cols.amount))
		fee := parseOrZero(field(row, cols.fee))
		currency := strings.ToUpper(field(row, cols.currency))

		if amount != 0 {
			records = append(records, models.ParsedRecord{
				Date:        date,
				Description: description,
				Amount:      amount,
				Currency:    currency,
				Source:      source,
			})
		}
		if fee != 0 {
			// Fees are always an expense, whatever sign the export uses.
			records = append(records, models.ParsedRecord{
				Date:        date,
				Description: "Fee: " + description,
				Amount:      -math.Abs(fee),
				Currency:    currency,
				Source:      source,
			})
		}
	}
	return records, nil
}

// columns holds the resolved index of each semantic column.
type columns struct {
	date        int
	description int
	amount      int
	fee         int
	currency    int
}

func matchVocabulary(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\uFEFF")
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	for _, v := range vocabularies {
		ok := true
		lookup := func(name string) int {
			i, found := index[strings.ToLower(name)]
			if !found {
				ok = false
			}
			return i
		}
		lookup(v.typ)
		cols := columns{
			date:        lookup(v.startedDate),
			description: lookup(v.description),
			amount:      lookup(v.amount),
			fee:         lookup(v.fee),
			currency:    lookup(v.currency),
		}
		if ok {
			return cols, nil
		}
	}

	var expected []string
	for _, v := range vocabularies {
		expected = append(expected, fmt.Sprintf("%s (%s)", v.name, strings.Join(v.headers(), ", ")))
	}
	return columns{}, fmt.Errorf("%w: expected %s", ErrHeaderMismatch, strings.Join(expected, " or "))
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseOrZero(raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := utils.ParseAmount(raw)
	if err != nil {
		log.Printf("Skipping unparseable amount %q", raw)
		return 0
	}
	return v
}

func firstLine(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	return string(content)
}
