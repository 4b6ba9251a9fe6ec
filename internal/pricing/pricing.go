// Package pricing turns a matched menu item and a parsed quantity into
// a frozen line price.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/ManourasM/TavernAI-sub000/internal/model"
)

// Line computes the effective quantity and total for one order line.
//
// Weight and volume items interpret the price as per-kilogram or
// per-liter, so the unit multiplier scales the quantity into the
// canonical base first.  Portion items ignore the multiplier and treat
// the quantity as a serving count.  A nil item yields nil price and
// total: the line is still recorded, it just cannot contribute to a
// subtotal.
func Line(item *model.MenuItem, qty, multiplier decimal.Decimal) (effective decimal.Decimal, unitPrice, total *decimal.Decimal) {
	effective = qty
	if item == nil {
		return effective, nil, nil
	}
	if item.Unit == model.UnitWeight || item.Unit == model.UnitVolume {
		effective = qty.Mul(multiplier)
	}
	p := item.Price
	t := p.Mul(effective)
	return effective, &p, &t
}
