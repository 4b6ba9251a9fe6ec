package nlp

import (
	"github.com/shopspring/decimal"

	"github.com/ManourasM/TavernAI-sub000/internal/model"
	"github.com/ManourasM/TavernAI-sub000/internal/pricing"
)

// ClassifiedLine is the full interpretation of one raw order line,
// ready to become an OrderLine or to be shown in a preview.
type ClassifiedLine struct {
	RawText      string           `json:"text"`
	Norm         string           `json:"normalized_text"`
	Note         string           `json:"note,omitempty"`
	Quantity     decimal.Decimal  `json:"qty"`
	Unit         string           `json:"unit,omitempty"`
	EffectiveQty decimal.Decimal  `json:"effective_qty"`
	MenuItemID   string           `json:"menu_id,omitempty"`
	MenuItemName string           `json:"menu_name,omitempty"`
	Station      string           `json:"category"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	LineTotal    *decimal.Decimal `json:"line_total,omitempty"`
	Hidden       bool             `json:"hidden,omitempty"`
	ByCorrection bool             `json:"by_correction,omitempty"`
}

// Unclassified reports that no menu item matched the line.
func (c *ClassifiedLine) Unclassified() bool { return c.MenuItemID == "" }

// Classify runs the whole interpretation pipeline over a multi-line
// order text: normalize, parse quantity/unit, match against the menu
// and price the result.  It never mutates anything and never fails;
// hidden or unclassified lines come back flagged for the caller to
// surface.  Lines that normalize to nothing are skipped.
func Classify(orderText string, m *Matcher, rules RuleLookup) []ClassifiedLine {
	var out []ClassifiedLine
	for _, raw := range SplitLines(orderText) {
		norm, note := Normalize(raw)
		if norm == "" {
			continue
		}
		pq := ParseQuantity(norm)

		cl := ClassifiedLine{
			RawText:  raw,
			Norm:     norm,
			Note:     note,
			Quantity: pq.Quantity,
			Unit:     pq.Unit,
			Station:  model.StationKitchen,
		}

		res := m.Match(pq.Remainder, rules)
		if res.Item != nil {
			cl.MenuItemID = res.Item.ID
			cl.MenuItemName = res.Item.Name
			cl.Station = res.Item.Station
			cl.Hidden = res.Hidden
			cl.ByCorrection = res.ByCorrection
		}
		cl.EffectiveQty, cl.UnitPrice, cl.LineTotal = pricing.Line(res.Item, pq.Quantity, pq.Multiplier)
		out = append(out, cl)
	}
	return out
}
