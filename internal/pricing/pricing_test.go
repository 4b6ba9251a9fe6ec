package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManourasM/TavernAI-sub000/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLinePortion(t *testing.T) {
	item := &model.MenuItem{ID: "beer_01", Price: dec("3.00"), Unit: model.UnitPortion}
	eff, unitPrice, total := Line(item, dec("2"), dec("1"))

	assert.True(t, eff.Equal(dec("2")))
	require.NotNil(t, unitPrice)
	require.NotNil(t, total)
	assert.True(t, unitPrice.Equal(dec("3.00")))
	assert.True(t, total.Equal(dec("6.00")))
}

func TestLineWeight(t *testing.T) {
	item := &model.MenuItem{ID: "paidakia_01", Price: dec("12.00"), Unit: model.UnitWeight}
	eff, _, total := Line(item, dec("1.5"), dec("1"))

	assert.True(t, eff.Equal(dec("1.5")))
	require.NotNil(t, total)
	assert.True(t, total.Equal(dec("18.00")))
}

func TestLineVolumeMilliliters(t *testing.T) {
	item := &model.MenuItem{ID: "wine_01", Price: dec("8.00"), Unit: model.UnitVolume}
	eff, _, total := Line(item, dec("500"), dec("0.001"))

	assert.True(t, eff.Equal(dec("0.5")), "effective quantity: got %s", eff)
	require.NotNil(t, total)
	assert.True(t, total.Equal(dec("4.00")), "total: got %s", total)
}

// Portion items count servings; the unit multiplier never applies.
func TestLinePortionIgnoresMultiplier(t *testing.T) {
	item := &model.MenuItem{ID: "beer_01", Price: dec("3.00"), Unit: model.UnitPortion}
	eff, _, total := Line(item, dec("2"), dec("0.001"))

	assert.True(t, eff.Equal(dec("2")))
	assert.True(t, total.Equal(dec("6.00")))
}

func TestLineUnmatched(t *testing.T) {
	eff, unitPrice, total := Line(nil, dec("2"), dec("1"))
	assert.True(t, eff.Equal(dec("2")))
	assert.Nil(t, unitPrice)
	assert.Nil(t, total)
}
