package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountDotDecimal(t *testing.T) {
	got, err := ParseAmount("-505.05")
	require.NoError(t, err)
	assert.Equal(t, -505.05, got)
}

func TestParseAmountCommaDecimal(t *testing.T) {
	got, err := ParseAmount("-505,05")
	require.NoError(t, err)
	assert.Equal(t, -505.05, got)
}

func TestParseAmountRightmostSeparatorWins(t *testing.T) {
	got, err := ParseAmount("1.234,56")
	require.NoError(t, err)
	assert.Equal(t, 1234.56, got)

	got, err = ParseAmount("1,234.56")
	require.NoError(t, err)
	assert.Equal(t, 1234.56, got)
}

func TestParseAmountSpaceGrouping(t *testing.T) {
	got, err := ParseAmount("2 191,90")
	require.NoError(t, err)
	assert.Equal(t, 2191.90, got)

	got, err = ParseAmount("-1 234,00")
	require.NoError(t, err)
	assert.Equal(t, -1234.0, got)
}

func TestParseAmountExplicitSign(t *testing.T) {
	got, err := ParseAmount("+349.99")
	require.NoError(t, err)
	assert.Equal(t, 349.99, got)

	got, err = ParseAmount("−2,50")
	require.NoError(t, err)
	assert.Equal(t, -2.50, got)
}

func TestParseAmountRepeatedGroupingCharacter(t *testing.T) {
	got, err := ParseAmount("1.234.567")
	require.NoError(t, err)
	assert.Equal(t, 1234.567, got)
}

func TestParseAmountInteger(t *testing.T) {
	got, err := ParseAmount("42")
	require.NoError(t, err)
	assert.Equal(t, 42.0, got)
}

func TestParseAmountRejectsGarbage(t *testing.T) {
	_, err := ParseAmount("")
	assert.Error(t, err)

	_, err = ParseAmount("12x40")
	assert.Error(t, err)
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "KAUFLAND 1150 BRATISLAVA", CollapseWhitespace("  KAUFLAND   1150\tBRATISLAVA "))
	assert.Equal(t, "", CollapseWhitespace("   "))
}

func TestStripUnprintable(t *testing.T) {
	assert.Equal(t, "Coffee shop", StripUnprintable("Coffee\x00 shop\x1b"))
	assert.Equal(t, "a\tb\nc", StripUnprintable("a\tb\nc"))
}
