package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a statement amount string to a float64.
// Statement exports disagree on locale conventions, so the separator
// appearing rightmost in the string is taken as the decimal separator;
// the other separator, along with any space grouping, is stripped as
// thousands grouping.
func ParseAmount(raw string) (float64, error) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', ' ':
			// Spaces only ever group thousands.
			return -1
		case '−':
			return '-'
		}
		return r
	}, strings.TrimSpace(raw))
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')
	var dec byte
	switch {
	case lastComma > lastDot:
		dec = ','
	case lastDot > lastComma:
		dec = '.'
	}
	if dec != 0 {
		other := ","
		if dec == ',' {
			other = "."
		}
		s = strings.ReplaceAll(s, other, "")
		// The same character may also group thousands; only the final
		// occurrence is the decimal point.
		last := strings.LastIndexByte(s, dec)
		s = strings.ReplaceAll(s[:last], string(dec), "") + "." + s[last+1:]
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return d.InexactFloat64(), nil
}
