package tatrabanka

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statement = `Tatra banka, a.s.
Výpis z účtu
Obdobie: 1. 3. 2025 - 31. 3. 2025

2. 3. 2025
2. 3.
Platba kartou
KAUFLAND 1150;BRATISLAVA;SK
-12,30 EUR
3. 3. 2025
3. 3.
Prevod z účtu
VS:123456
Strana 1/2
Jan Novak
+2 191,90 EUR
4. 3. 2025
Trvalý príkaz
5. 3. 2025
5. 3.
Výber z bankomatu
SK45 1100 0000 0012 3456 7890
-50,00 EUR
www.tatrabanka.sk | DIALOG Live
`

func TestDetect(t *testing.T) {
	p := NewParser()
	assert.True(t, p.Detect(nil, "vypis_2025_03.txt"))
	assert.True(t, p.Detect(nil, "marec-tatra.txt"))
	assert.True(t, p.Detect([]byte("Výpis z účtu\nBIC: TATRSKBX\n"), "statement.txt"))
	assert.True(t, p.Detect([]byte(statement), "statement.txt"))
	assert.False(t, p.Detect([]byte("Type,Started Date\n"), "export.csv"))
}

func TestParseStatement(t *testing.T) {
	records, err := NewParser().Parse([]byte(statement))
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Card payment: merchant record before the first semicolon wins.
	assert.Equal(t, "2025-03-02", records[0].Date)
	assert.Equal(t, "KAUFLAND 1150", records[0].Description)
	assert.Equal(t, -12.30, records[0].Amount)
	assert.Equal(t, "EUR", records[0].Currency)
	assert.Equal(t, "tatrabanka", records[0].Source)

	// Incoming transfer: the reference line cannot be the description,
	// the first free-text line is.
	assert.Equal(t, "2025-03-03", records[1].Date)
	assert.Equal(t, "Jan Novak", records[1].Description)
	assert.Equal(t, 2191.90, records[1].Amount)

	// The 4.3. block has no amount before the next date and is dropped.
	// Cash withdrawal: only the type label is usable.
	assert.Equal(t, "2025-03-05", records[2].Date)
	assert.Equal(t, "Výber z bankomatu", records[2].Description)
	assert.Equal(t, -50.00, records[2].Amount)
}

func TestParseRecoversYearFromPeriodMarker(t *testing.T) {
	text := "Obdobie: 1. 1. 2019 - 31. 1. 2019\n15. 1.\nPoplatok\n-2,00 EUR\n"
	records, err := NewParser().Parse([]byte(text))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2019-01-15", records[0].Date)
}

func TestParseFallsBackToCurrentYear(t *testing.T) {
	text := "15. 1.\nPoplatok\n-2,00 EUR\n"
	records, err := NewParser().Parse([]byte(text))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, fmt.Sprintf("%04d-01-15", time.Now().Year()), records[0].Date)
}

func TestParseEmbeddedYearBeatsRecoveredYear(t *testing.T) {
	text := "Obdobie: 1. 12. 2024 - 31. 12. 2024\n2. 1. 2025\nPoplatok\n-2,00 EUR\n"
	records, err := NewParser().Parse([]byte(text))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2025-01-02", records[0].Date)
}

func TestParseRepairsFusedCategoryWord(t *testing.T) {
	text := "Obdobie: 1. 3. 2025 - 31. 3. 2025\n8. 3. 2025\n8. 3.\nPlatba kartou\nPotravinyKAUFLAND\n-30,00 EUR\n"
	records, err := NewParser().Parse([]byte(text))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Potraviny KAUFLAND", records[0].Description)
	assert.Equal(t, "Potraviny", records[0].RawCategory)
}

func TestParseStripsLeadingReference(t *testing.T) {
	text := "Obdobie: 1. 3. 2025 - 31. 3. 2025\n9. 3. 2025\nVS:777888 STARBUCKS BRATISLAVA\n-4,20 EUR\n"
	records, err := NewParser().Parse([]byte(text))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "STARBUCKS BRATISLAVA", records[0].Description)
}

func TestParseAmountFormats(t *testing.T) {
	text := "Obdobie: 1. 3. 2025 - 31. 3. 2025\n" +
		"10. 3. 2025\nPrevod na účet\n-1 234.56 EUR\n" +
		"11. 3. 2025\nInkaso\n+500,00 EUR\n"
	records, err := NewParser().Parse([]byte(text))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, -1234.56, records[0].Amount)
	assert.Equal(t, 500.00, records[1].Amount)
}

func TestParseDropsZeroAmountBlock(t *testing.T) {
	text := "Obdobie: 1. 3. 2025 - 31. 3. 2025\n12. 3. 2025\nPoplatok\n0,00 EUR\n"
	records, err := NewParser().Parse([]byte(text))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParsePlaceholderDescription(t *testing.T) {
	text := "Obdobie: 1. 3. 2025 - 31. 3. 2025\n13. 3. 2025\n-7,00 EUR\n"
	records, err := NewParser().Parse([]byte(text))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, PlaceholderDescription, records[0].Description)
}

func TestParseAmountOnDateLine(t *testing.T) {
	text := "Obdobie: 1. 3. 2025 - 31. 3. 2025\n14. 3. 2025 Poplatok 2,00 EUR\n"
	records, err := NewParser().Parse([]byte(text))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2025-03-14", records[0].Date)
	assert.Equal(t, "Poplatok", records[0].Description)
	assert.Equal(t, 2.00, records[0].Amount)
}

func TestParseNoiseInsideBlockDoesNotEndIt(t *testing.T) {
	text := "Obdobie: 1. 3. 2025 - 31. 3. 2025\n" +
		"15. 3. 2025\nPlatba kartou\nStrana 2/3\nPokračovanie na ďalšej strane\nLIDL;NITRA;SK\n-8,15 EUR\n"
	records, err := NewParser().Parse([]byte(text))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "LIDL", records[0].Description)
}
