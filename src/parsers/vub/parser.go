package vub

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/username/moneyfolio/src/models"
	"github.com/username/moneyfolio/src/utils"
)

const source = "vub"

// ErrHeaderMismatch is returned when no header row is found in the
// leading rows of the workbook.
var ErrHeaderMismatch = errors.New("no recognized header row")

// The header row may sit under a preamble of account details.
const headerScanRows = 10

// xlsxMagic is the ZIP signature every XLSX file starts with.
var xlsxMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// Column keys of the internet-banking export; a header cell matches when
// it contains the key. Kategória and Mena are optional.
const (
	dateKey        = "dátum"
	descriptionKey = "popis"
	amountKey      = "suma"
	currencyKey    = "mena"
	categoryKey    = "kategória"
)

// Date layouts seen in the export, tried in order.
var dateLayouts = []string{"02.01.2006", "2.1.2006", "2. 1. 2006", "2006-01-02", "02/01/2006"}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Source() string {
	return source
}

// Detect requires the XLSX signature plus a filename hint.
func (p *Parser) Detect(content []byte, filename string) bool {
	if !bytes.HasPrefix(content, xlsxMagic) {
		return false
	}
	name := strings.ToLower(filename)
	return strings.Contains(name, "vub") || strings.HasSuffix(name, ".xlsx")
}

// Parse reads the first sheet. Rows above the header row are account
// preamble; rows missing a date, description or amount are skipped.
func (p *Parser) Parse(content []byte) ([]models.ParsedRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	cols, headerRow, err := findColumns(rows)
	if err != nil {
		return nil, err
	}

	var records []models.ParsedRecord
	for _, row := range rows[headerRow+1:] {
		date, ok := parseDate(cell(row, cols.date))
		description := cell(row, cols.description)
		if !ok || description == "" {
			continue
		}

		rawAmount := cell(row, cols.amount)
		if rawAmount == "" {
			continue
		}
		amount, err := utils.ParseAmount(rawAmount)
		if err != nil {
			log.Printf("Skipping row with unparseable amount %q", rawAmount)
			continue
		}
		if amount == 0 {
			continue
		}

		currency := models.BaseCurrency
		if cols.currency >= 0 {
			if c := strings.ToUpper(cell(row, cols.currency)); c != "" {
				currency = c
			}
		}
		rawCategory := ""
		if cols.category >= 0 {
			rawCategory = cell(row, cols.category)
		}

		records = append(records, models.ParsedRecord{
			Date:        date,
			Description: description,
			Amount:      amount,
			Currency:    currency,
			Source:      source,
			RawCategory: rawCategory,
		})
	}
	return records, nil
}

type columns struct {
	date        int
	description int
	amount      int
	currency    int
	category    int
}

func findColumns(rows [][]string) (columns, int, error) {
	limit := min(len(rows), headerScanRows)
	for i := 0; i < limit; i++ {
		cols := columns{date: -1, description: -1, amount: -1, currency: -1, category: -1}
		for j, h := range rows[i] {
			switch h := strings.ToLower(strings.TrimSpace(h)); {
			case cols.date < 0 && strings.Contains(h, dateKey):
				cols.date = j
			case cols.description < 0 && strings.Contains(h, descriptionKey):
				cols.description = j
			case cols.amount < 0 && strings.Contains(h, amountKey):
				cols.amount = j
			case cols.currency < 0 && strings.Contains(h, currencyKey):
				cols.currency = j
			case cols.category < 0 && strings.Contains(h, categoryKey):
				cols.category = j
			}
		}
		if cols.date >= 0 && cols.description >= 0 && cols.amount >= 0 {
			return cols, i, nil
		}
	}
	return columns{}, 0, fmt.Errorf("%w: expected columns %s, %s and %s in the first %d rows",
		ErrHeaderMismatch, dateKey, descriptionKey, amountKey, headerScanRows)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseDate(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(models.DateFormat), true
		}
	}
	log.Printf("Skipping row with unparseable date %q", raw)
	return "", false
}
