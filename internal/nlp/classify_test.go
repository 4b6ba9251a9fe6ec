package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManourasM/TavernAI-sub000/internal/model"
)

func TestClassifyBeerOrder(t *testing.T) {
	m := NewMatcher(testMenu())
	lines := Classify("2 μπύρες", m, nil)
	require.Len(t, lines, 1)

	l := lines[0]
	assert.Equal(t, "beer_01", l.MenuItemID)
	assert.Equal(t, "drinks", l.Station)
	assert.Equal(t, "", l.Unit)
	assert.True(t, l.Quantity.Equal(price("2")))
	assert.True(t, l.EffectiveQty.Equal(price("2")))
	require.NotNil(t, l.LineTotal)
	assert.True(t, l.LineTotal.Equal(price("6.00")), "got %s", l.LineTotal)
}

func TestClassifyWeightOrder(t *testing.T) {
	m := NewMatcher(testMenu())
	lines := Classify("1.5kg παϊδάκια", m, nil)
	require.Len(t, lines, 1)

	l := lines[0]
	assert.Equal(t, "paidakia_01", l.MenuItemID)
	assert.Equal(t, "grill", l.Station)
	assert.Equal(t, "kg", l.Unit)
	assert.True(t, l.EffectiveQty.Equal(price("1.5")))
	require.NotNil(t, l.LineTotal)
	assert.True(t, l.LineTotal.Equal(price("18.00")), "got %s", l.LineTotal)
}

func TestClassifyVolumeOrderInMilliliters(t *testing.T) {
	m := NewMatcher(testMenu())
	lines := Classify("500ml κρασί", m, nil)
	require.Len(t, lines, 1)

	l := lines[0]
	assert.Equal(t, "wine_01", l.MenuItemID)
	assert.True(t, l.EffectiveQty.Equal(price("0.5")), "got %s", l.EffectiveQty)
	require.NotNil(t, l.LineTotal)
	assert.True(t, l.LineTotal.Equal(price("4.00")), "got %s", l.LineTotal)
}

func TestClassifyUnknownItem(t *testing.T) {
	m := NewMatcher(testMenu())
	lines := Classify("πιτσα μαργαριτα", m, nil)
	require.Len(t, lines, 1)

	l := lines[0]
	assert.True(t, l.Unclassified())
	assert.Empty(t, l.MenuItemID)
	assert.Nil(t, l.UnitPrice)
	assert.Nil(t, l.LineTotal)
	assert.Equal(t, model.StationKitchen, l.Station) // default routing
}

func TestClassifyMultiLineWithNotes(t *testing.T) {
	m := NewMatcher(testMenu())
	lines := Classify("2 μπύρες\n\nχωριάτικη (χωρίς κρεμμύδι)\n", m, nil)
	require.Len(t, lines, 2)
	assert.Equal(t, "beer_01", lines[0].MenuItemID)
	assert.Equal(t, "salad_01", lines[1].MenuItemID)
	assert.Equal(t, "χωρίς κρεμμύδι", lines[1].Note)
}

// effective_qty × unit_price == line_total must hold for every
// classified line that matched an item.
func TestClassifyPricingInvariant(t *testing.T) {
	m := NewMatcher(testMenu())
	text := "2 μπύρες\n1.5kg παϊδάκια\n500ml κρασί\nχωριάτικη\n3 σουβλάκια χοιρινά"
	for _, l := range Classify(text, m, NewRuleTable()) {
		if l.Unclassified() || l.Hidden {
			continue
		}
		require.NotNil(t, l.UnitPrice)
		require.NotNil(t, l.LineTotal)
		assert.True(t, l.LineTotal.Equal(l.UnitPrice.Mul(l.EffectiveQty)),
			"line %q: %s * %s != %s", l.RawText, l.UnitPrice, l.EffectiveQty, l.LineTotal)
	}
}

func TestClassifyHiddenFlagged(t *testing.T) {
	m := NewMatcher(testMenu())
	lines := Classify("κοτόπουλο σχάρας", m, nil)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Hidden)
	assert.Equal(t, "offmenu_01", lines[0].MenuItemID)
}
