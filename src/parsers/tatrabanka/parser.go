package tatrabanka

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/username/moneyfolio/src/models"
	"github.com/username/moneyfolio/src/utils"
)

const source = "tatrabanka"

// PlaceholderDescription is used when a block yields no usable text at all.
const PlaceholderDescription = "Unknown transaction"

// How many leading lines may carry the statement-period marker.
const headLines = 15

// Patterns for reconstructing the tabular layout from linearized page text.
var (
	// Booking date starting a transaction block: "2. 3. 2025", or "2. 3."
	// with the year recovered from the statement period.
	datePattern = regexp.MustCompile(`^(\d{1,2})\.\s*(\d{1,2})\.(?:\s*(\d{4}))?\s*(.*)$`)

	// Statement period near the document head: "Obdobie: 1. 3. 2025 - 31. 3. 2025"
	periodPattern = regexp.MustCompile(`(?i)obdobie\D*\d{1,2}\.\s*\d{1,2}\.\s*(\d{4})`)

	// Amount closing a block: optional sign, space-grouped thousands,
	// comma or dot decimals, the currency last: "-1 234,56 EUR"
	amountPattern = regexp.MustCompile(`([+-]?\d{1,3}(?:[ \x{00A0}]?\d{3})*(?:[.,]\d{1,2})?)\s*` + models.BaseCurrency + `\s*$`)

	// Page furniture; skipped wherever it appears, blocks included.
	noisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^strana\s+\d+\s*/\s*\d+`),
		regexp.MustCompile(`(?i)pokračovanie na ďalšej strane`),
		regexp.MustCompile(`(?i)^tatra banka, a\.\s?s\.`),
		regexp.MustCompile(`(?i)www\.tatrabanka\.sk`),
		regexp.MustCompile(`(?i)^výpis z účtu`),
	}

	// Leading payment-reference codes stripped from descriptions.
	referencePattern = regexp.MustCompile(`(?i)^/?(?:(?:VS|SS|ŠS|KS):?\s*\d+[\s,/]*)+`)

	// Lines that cannot serve as a description on their own.
	numericLinePattern = regexp.MustCompile(`^[\d\s./:-]+$`)
	ibanLinePattern    = regexp.MustCompile(`^[A-Z]{2}\d{2}[\d ]{10,}\s*$`)
	referenceLine      = regexp.MustCompile(`(?i)^/?(?:(?:VS|SS|ŠS|KS):?\s*\d+[\s,/]*)+$`)
)

// Transaction-type labels as the statement prints them.
var typeLabels = []string{
	"Platba kartou",
	"Prevod z účtu",
	"Prevod na účet",
	"Trvalý príkaz",
	"Inkaso",
	"Výber z bankomatu",
	"Poplatok",
}

// Category words the layout fuses directly onto the following merchant
// name ("PotravinyKAUFLAND").
var categoryWords = []string{
	"Potraviny",
	"Reštaurácie",
	"Doprava",
	"Drogéria",
	"Oblečenie",
	"Zábava",
	"Služby",
	"Zdravie",
	"Domácnosť",
	"Elektronika",
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Source() string {
	return source
}

// Detect looks for the bank's BIC or name in the document's leading
// text, or the bank's usual statement file naming.
func (p *Parser) Detect(content []byte, filename string) bool {
	name := strings.ToLower(filename)
	if strings.Contains(name, "tatra") || strings.HasPrefix(name, "vypis") {
		return true
	}
	head := content
	if len(head) > 2048 {
		head = head[:2048]
	}
	text := string(head)
	return strings.Contains(text, "TATRSKBX") || strings.Contains(strings.ToLower(text), "tatra banka")
}

// block accumulates one transaction's lines between its booking date and
// its amount.
type block struct {
	date            string
	lines           []string
	typeLabel       string
	expectValueDate bool
}

func (b *block) accumulate(line string) {
	if b.typeLabel == "" {
		if label, ok := matchTypeLabel(line); ok {
			b.typeLabel = label
		}
	}
	b.lines = append(b.lines, line)
}

// Parse reconstructs transactions from the linearized page text. Blocks
// that never reach an amount are dropped; the rest of the document still
// parses.
func (p *Parser) Parse(content []byte) ([]models.ParsedRecord, error) {
	text := utils.StripUnprintable(strings.ReplaceAll(string(content), "\r\n", "\n"))
	lines := strings.Split(text, "\n")

	year := statementYear(lines)

	var records []models.ParsedRecord
	var cur *block

	finish := func(amountToken string) {
		amount, err := utils.ParseAmount(amountToken)
		if err != nil {
			log.Printf("Dropping block at %s: unparseable amount %q", cur.date, amountToken)
			cur = nil
			return
		}
		if amount == 0 {
			cur = nil
			return
		}
		records = append(records, assemble(cur, amount))
		cur = nil
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || isNoise(line) {
			continue
		}

		if day, month, yearToken, rest, ok := matchDate(line); ok {
			if cur != nil && cur.expectValueDate && rest == "" {
				// The value date printed under the booking date carries
				// no transaction content.
				cur.expectValueDate = false
				continue
			}
			if cur != nil {
				log.Printf("Dropping block at %s: no amount before next date", cur.date)
			}
			cur = &block{date: canonicalDate(day, month, yearToken, year), expectValueDate: true}
			if rest != "" {
				if m := amountPattern.FindStringSubmatch(rest); m != nil {
					if fragment := strings.TrimSpace(strings.TrimSuffix(rest, m[0])); fragment != "" {
						cur.accumulate(fragment)
					}
					finish(m[1])
				} else {
					cur.accumulate(rest)
				}
			}
			continue
		}

		if cur == nil {
			continue
		}
		cur.expectValueDate = false

		if m := amountPattern.FindStringSubmatch(line); m != nil {
			if fragment := strings.TrimSpace(strings.TrimSuffix(line, m[0])); fragment != "" {
				cur.accumulate(fragment)
			}
			finish(m[1])
			continue
		}

		cur.accumulate(line)
	}

	if cur != nil {
		log.Printf("Dropping block at %s: document ended without amount", cur.date)
	}
	return records, nil
}

// statementYear recovers the year from the period marker, falling back
// to the current calendar year.
func statementYear(lines []string) int {
	limit := min(len(lines), headLines)
	for _, line := range lines[:limit] {
		if m := periodPattern.FindStringSubmatch(line); m != nil {
			if y, err := strconv.Atoi(m[1]); err == nil {
				return y
			}
		}
	}
	return time.Now().Year()
}

func matchDate(line string) (day, month int, yearToken, rest string, ok bool) {
	m := datePattern.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, "", "", false
	}
	day, _ = strconv.Atoi(m[1])
	month, _ = strconv.Atoi(m[2])
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return 0, 0, "", "", false
	}
	return day, month, m[3], strings.TrimSpace(m[4]), true
}

func canonicalDate(day, month int, yearToken string, fallbackYear int) string {
	year := fallbackYear
	if yearToken != "" {
		if y, err := strconv.Atoi(yearToken); err == nil {
			year = y
		}
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func isNoise(line string) bool {
	for _, re := range noisePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func matchTypeLabel(line string) (string, bool) {
	for _, label := range typeLabels {
		if strings.EqualFold(line, label) {
			return label, true
		}
	}
	return "", false
}

// descriptionNoise reports lines that cannot describe a transaction:
// bare numbers, payment references, account numbers.
func descriptionNoise(line string) bool {
	return numericLinePattern.MatchString(line) ||
		referenceLine.MatchString(line) ||
		ibanLinePattern.MatchString(line)
}

func assemble(b *block, amount float64) models.ParsedRecord {
	description, rawCategory := deriveDescription(b)
	return models.ParsedRecord{
		Date:        b.date,
		Description: description,
		Amount:      amount,
		Currency:    models.BaseCurrency,
		Source:      source,
		RawCategory: rawCategory,
	}
}

// deriveDescription picks the best description the block offers:
// a semicolon-delimited merchant record first, then the first free-text
// line, then the transaction-type label, then whatever line remains,
// and finally a placeholder.
func deriveDescription(b *block) (string, string) {
	var description string

	for _, line := range b.lines {
		if i := strings.Index(line, ";"); i >= 0 {
			if merchant := strings.TrimSpace(line[:i]); merchant != "" {
				description = merchant
				break
			}
		}
	}
	if description == "" {
		for _, line := range b.lines {
			if descriptionNoise(line) {
				continue
			}
			if _, ok := matchTypeLabel(line); ok {
				continue
			}
			description = line
			break
		}
	}
	if description == "" {
		description = b.typeLabel
	}
	if description == "" && len(b.lines) > 0 {
		description = b.lines[0]
	}
	if description == "" {
		return PlaceholderDescription, ""
	}

	description = utils.CollapseWhitespace(description)
	description = strings.TrimSpace(referencePattern.ReplaceAllString(description, ""))
	description, rawCategory := splitFusedCategory(description)
	if description == "" {
		description = PlaceholderDescription
	}
	return description, rawCategory
}

// splitFusedCategory repairs the layout artifact where the bank's
// category word is fused onto the merchant name ("PotravinyKAUFLAND")
// and surfaces the category word on its own.
func splitFusedCategory(description string) (string, string) {
	for _, word := range categoryWords {
		rest, found := strings.CutPrefix(description, word)
		if !found || rest == "" {
			continue
		}
		if r, size := utf8.DecodeRuneInString(rest); size > 0 && unicode.IsUpper(r) {
			return word + " " + rest, word
		}
	}
	return description, ""
}
