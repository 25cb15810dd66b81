package categorizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/moneyfolio/src/models"
)

func TestExtractKeyword(t *testing.T) {
	tests := []struct {
		description string
		want        string
	}{
		{"Payment STARBUCKS Coffee", "starbucks"},
		{"123 456", ""},
		{"AB CD EFGH", "efgh"},
		{"KAUFLAND 1210 BRATISLAVA", "kaufland"},
		{"Platba kartou LIDL", "lidl"},
		{"Transfer from EUR account", "account"},
		{"", ""},
		{"!!! ???", ""},
		{"Fee: Plan fee", "plan"},
		{"ACME Ltd", "acme"},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractKeyword(tt.description))
		})
	}
}

func TestCategorizeFirstRuleInOrderWins(t *testing.T) {
	rules := []models.CategoryRule{
		{ID: 1, Keyword: "coffee", CategoryID: 10},
		{ID: 2, Keyword: "starbucks", CategoryID: 20},
	}

	got := Categorize("STARBUCKS Coffee Shop", rules)
	require.NotNil(t, got)
	assert.Equal(t, int64(10), *got, "the first matching rule in supplied order wins")
}

func TestCategorizeCaseInsensitive(t *testing.T) {
	rules := []models.CategoryRule{{ID: 1, Keyword: "kaufland", CategoryID: 3}}

	got := Categorize("Potraviny KAUFLAND Bratislava", rules)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), *got)
}

func TestCategorizeNoMatch(t *testing.T) {
	rules := []models.CategoryRule{{ID: 1, Keyword: "netflix", CategoryID: 5}}
	assert.Nil(t, Categorize("KAUFLAND 1210", rules))
}

func TestCategorizeEmptyRules(t *testing.T) {
	assert.Nil(t, Categorize("anything", nil))
}
