package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/clothy/internal/models"
)

func TestParseStockFormOrdersByIndex(t *testing.T) {
	entries, err := parseStockForm(map[string][]string{
		"stock[2].size":     {"L"},
		"stock[2].quantity": {"1"},
		"stock[0].size":     {"S"},
		"stock[0].quantity": {"4"},
		"stock[1].size":     {"M"},
		"stock[1].quantity": {"2"},
		"name":              {"ignored"},
	})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "S", entries[0].Size)
	assert.Equal(t, 4, entries[0].Quantity)
	assert.Equal(t, "M", entries[1].Size)
	assert.Equal(t, "L", entries[2].Size)
}

func TestParseStockFormRejectsDuplicateSizesIgnoringCase(t *testing.T) {
	_, err := parseStockForm(map[string][]string{
		"stock[0].size":     {"M"},
		"stock[0].quantity": {"1"},
		"stock[1].size":     {"m"},
		"stock[1].quantity": {"2"},
	})
	assert.ErrorIs(t, err, models.ErrDuplicateStockSizes)
}

func TestParseStockFormRejectsBadQuantity(t *testing.T) {
	for _, quantity := range []string{"", "abc", "-1", "1.5"} {
		_, err := parseStockForm(map[string][]string{
			"stock[0].size":     {"M"},
			"stock[0].quantity": {quantity},
		})
		assert.Error(t, err, "quantity %q should be rejected", quantity)
	}
}

func TestParseStockFormRejectsMissingSize(t *testing.T) {
	_, err := parseStockForm(map[string][]string{
		"stock[0].quantity": {"3"},
	})
	assert.Error(t, err)
}

func TestParseStockFormEmptyFormYieldsNoEntries(t *testing.T) {
	entries, err := parseStockForm(map[string][]string{
		"name":  {"Denim Jacket"},
		"price": {"59.99"},
	})
	require.NoError(t, err)
	assert.Empty(t, entries)
}
