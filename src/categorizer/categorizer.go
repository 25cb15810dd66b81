package categorizer

import (
	"strings"
	"unicode"

	"github.com/username/moneyfolio/src/models"
)

// Categorize matches the description against the rules in the order
// supplied; the first rule whose keyword appears in the description
// (case-insensitively) wins. Returns nil when nothing matches.
func Categorize(description string, rules []models.CategoryRule) *int64 {
	lower := strings.ToLower(description)
	for _, rule := range rules {
		if strings.Contains(lower, strings.ToLower(rule.Keyword)) {
			id := rule.CategoryID
			return &id
		}
	}
	return nil
}

// Words that never identify a merchant: transaction jargon as the
// supported statements print it, prepositions and articles, currency
// codes, and generic corporate suffixes.
var stopWords = map[string]struct{}{
	// transaction jargon
	"payment": {}, "purchase": {}, "transfer": {}, "card": {}, "fee": {},
	"debit": {}, "credit": {}, "refund": {}, "exchange": {}, "topup": {},
	"platba": {}, "prevod": {}, "kartou": {}, "poplatok": {}, "inkaso": {},
	"vyber": {}, "výber": {}, "trvalý": {}, "trvaly": {}, "príkaz": {}, "prikaz": {},
	"účtu": {}, "uctu": {}, "účet": {}, "ucet": {}, "bankomatu": {},
	// prepositions and articles
	"the": {}, "and": {}, "for": {}, "from": {}, "with": {}, "via": {},
	// currency codes
	"eur": {}, "usd": {}, "gbp": {}, "czk": {}, "chf": {}, "pln": {}, "huf": {},
	// corporate suffixes
	"ltd": {}, "llc": {}, "inc": {}, "gmbh": {}, "plc": {}, "corp": {},
	"sro": {}, "group": {}, "company": {},
}

// ExtractKeyword pulls the first usable merchant token out of a
// transaction description: lowercased, at least three characters, not a
// stop word, not all digits. Returns "" when the description has no
// usable token.
func ExtractKeyword(description string) string {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, description)

	for _, token := range strings.Fields(normalized) {
		if len([]rune(token)) < 3 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		if allDigits(token) {
			continue
		}
		return token
	}
	return ""
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
