package nlp

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ManourasM/TavernAI-sub000/internal/model"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		name       string
		in         string
		qty        string
		unit       string
		kind       model.UnitKind
		multiplier string
		remainder  string
	}{
		{"bare leading integer", "2 μπυρεσ", "2", "", model.UnitPortion, "1", "μπυρεσ"},
		{"no quantity", "χωριατικη", "1", "", model.UnitPortion, "1", "χωριατικη"},
		{"fused kg", "1.5kg παιδακια", "1.5", "kg", model.UnitWeight, "1", "παιδακια"},
		{"fused ml", "500ml κρασι", "500", "ml", model.UnitVolume, "0.001", "κρασι"},
		{"fused liter", "2l ρετσινα", "2", "l", model.UnitVolume, "1", "ρετσινα"},
		{"spaced unit word", "2 κιλα μπριζολεσ", "2", "κιλα", model.UnitWeight, "1", "μπριζολεσ"},
		{"spaced latin unit", "0.5 lt κρασι", "0.5", "lt", model.UnitVolume, "1", "κρασι"},
		{"unit after the item", "παιδακια 2kg", "2", "kg", model.UnitWeight, "1", "παιδακια"},
		{"mid-line bare number stays", "τραπεζι 12 σαλατα", "1", "", model.UnitPortion, "1", "τραπεζι 12 σαλατα"},
		{"unknown fused suffix", "3x μπυρεσ", "1", "", model.UnitPortion, "1", "3x μπυρεσ"},
		{"unknown fused then real unit", "παιδακια 3x 2kg", "2", "kg", model.UnitWeight, "1", "παιδακια 3x"},
		{"unknown fused before spaced unit", "3x 2 κιλα μπριζολεσ", "2", "κιλα", model.UnitWeight, "1", "3x μπριζολεσ"},
		{"decimal leading quantity", "2.5 σουβλακια", "2.5", "", model.UnitPortion, "1", "σουβλακια"},
		{"empty", "", "1", "", model.UnitPortion, "1", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseQuantity(tc.in)
			assert.True(t, got.Quantity.Equal(decimal.RequireFromString(tc.qty)),
				"quantity: want %s, got %s", tc.qty, got.Quantity)
			assert.Equal(t, tc.unit, got.Unit)
			assert.Equal(t, tc.kind, got.Kind)
			assert.True(t, got.Multiplier.Equal(decimal.RequireFromString(tc.multiplier)),
				"multiplier: want %s, got %s", tc.multiplier, got.Multiplier)
			assert.Equal(t, tc.remainder, got.Remainder)
		})
	}
}

func TestSplitNumericPrefix(t *testing.T) {
	num, unit := splitNumericPrefix("2kg")
	assert.Equal(t, "2", num)
	assert.Equal(t, "kg", unit)

	num, unit = splitNumericPrefix("1.5")
	assert.Equal(t, "1.5", num)
	assert.Equal(t, "", unit)

	num, _ = splitNumericPrefix("παιδακια")
	assert.Equal(t, "", num)
}
