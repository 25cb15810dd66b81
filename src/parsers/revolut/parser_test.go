package revolut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/moneyfolio/src/models"
)

const englishExport = `Type,Product,Started Date,Completed Date,Description,Amount,Fee,Currency,State,Balance
CARD_PAYMENT,Current,2025-03-01 14:22:08,2025-03-02 10:00:41,OpenAI,-505.05,0.00,EUR,COMPLETED,1200.44
`

const slovakExport = `Typ,Produkt,Dátum začatia,Dátum dokončenia,Popis,Suma,Poplatok,Mena,Stav,Zostatok
CARD_PAYMENT,Current,2025-03-01 14:22:08,2025-03-02 10:00:41,OpenAI,-505.05,0.00,EUR,COMPLETED,1200.44
`

func TestDetectByFilename(t *testing.T) {
	p := NewParser()
	assert.True(t, p.Detect(nil, "revolut-march.csv"))
	assert.True(t, p.Detect(nil, "account-statement_2025-03-01_2025-03-31_en_abc123.csv"))
	assert.False(t, p.Detect([]byte("just some text"), "notes.txt"))
}

func TestDetectByHeaderContent(t *testing.T) {
	p := NewParser()
	assert.True(t, p.Detect([]byte(englishExport), "export.csv"))
	assert.True(t, p.Detect([]byte(slovakExport), "export.csv"))
}

func TestParseEnglishExport(t *testing.T) {
	records, err := NewParser().Parse([]byte(englishExport))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, models.ParsedRecord{
		Date:        "2025-03-01",
		Description: "OpenAI",
		Amount:      -505.05,
		Currency:    "EUR",
		Source:      "revolut",
	}, records[0])
}

func TestParseVocabularyEquivalence(t *testing.T) {
	english, err := NewParser().Parse([]byte(englishExport))
	require.NoError(t, err)
	slovak, err := NewParser().Parse([]byte(slovakExport))
	require.NoError(t, err)

	assert.Equal(t, english, slovak)
}

func TestParseSplitsFeeIntoOwnRecord(t *testing.T) {
	export := `Type,Started Date,Description,Amount,Fee,Currency
FEE,2025-03-05 09:00:00,Plan fee,0,349.99,EUR
`
	records, err := NewParser().Parse([]byte(export))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, -349.99, records[0].Amount)
	assert.Equal(t, "Fee: Plan fee", records[0].Description)
}

func TestParseRowWithAmountAndFee(t *testing.T) {
	export := `Type,Started Date,Description,Amount,Fee,Currency
EXCHANGE,2025-03-06 12:00:00,Exchanged to USD,-100.00,1.50,EUR
`
	records, err := NewParser().Parse([]byte(export))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, -100.00, records[0].Amount)
	assert.Equal(t, "Exchanged to USD", records[0].Description)
	assert.Equal(t, -1.50, records[1].Amount)
	assert.Equal(t, "Fee: Exchanged to USD", records[1].Description)
}

func TestParseSkipsIncompleteAndEmptyRows(t *testing.T) {
	export := `Type,Started Date,Description,Amount,Fee,Currency
CARD_PAYMENT,,missing date,-5.00,0,EUR
CARD_PAYMENT,2025-03-07 10:00:00,,-5.00,0,EUR
TOPUP,2025-03-07 11:00:00,Zero row,0,0,EUR
CARD_PAYMENT,2025-03-07 12:00:00,Kept,-5.00,0,EUR
`
	records, err := NewParser().Parse([]byte(export))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Kept", records[0].Description)
}

func TestParseQuotedDelimiters(t *testing.T) {
	export := `Type,Started Date,Description,Amount,Fee,Currency
CARD_PAYMENT,2025-03-08 09:30:00,"Amazon, ""Order 1""","1 234,56",0,USD
`
	records, err := NewParser().Parse([]byte(export))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, `Amazon, "Order 1"`, records[0].Description)
	assert.Equal(t, 1234.56, records[0].Amount)
	assert.Equal(t, "USD", records[0].Currency)
}

func TestParseHeaderOrderAndCaseInsensitive(t *testing.T) {
	export := `currency,FEE,amount,DESCRIPTION,started date,type
EUR,0,-9.99,Netflix,2025-03-09 20:15:00,CARD_PAYMENT
`
	records, err := NewParser().Parse([]byte(export))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Netflix", records[0].Description)
	assert.Equal(t, -9.99, records[0].Amount)
}

func TestParseUnknownHeaderReportsVocabularies(t *testing.T) {
	export := `Datum,Betrag,Beschreibung
2025-03-01,-5.00,Kaffee
`
	_, err := NewParser().Parse([]byte(export))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHeaderMismatch)
	assert.Contains(t, err.Error(), "english")
	assert.Contains(t, err.Error(), "slovak")
}
