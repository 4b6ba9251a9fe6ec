package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptLine is the frozen snapshot of one order line at finalize
// time.  Cancelled lines are retained with a zero contribution so the
// receipt mirrors the full session history.
type ReceiptLine struct {
	LineID    string           `json:"line_id"`
	Text      string           `json:"text"`
	MenuName  string           `json:"menu_name,omitempty"`
	Quantity  decimal.Decimal  `json:"qty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	LineTotal *decimal.Decimal `json:"line_total,omitempty"`
	Status    LineStatus       `json:"status"`
	Station   string           `json:"category"`
	CreatedAt time.Time        `json:"created_at"`
}

// Receipt is the read-only archive of a finalized table session.
// Total sums only done lines with known prices; HasUnpriced flags that
// at least one done line had no menu match and is missing from Total.
//
// Fields:
//  ID          – uuid assigned at finalize.
//  Table       – table label of the archived session.
//  People      – people count from session meta, nil if never set.
//  Bread       – bread flag from session meta.
//  Lines       – frozen line snapshots.
//  Total       – sum of priced done lines.
//  HasUnpriced – true when a done line had no price.
//  OpenedAt    – when the session was opened.
//  ClosedAt    – finalize timestamp.
type Receipt struct {
	ID          string          `json:"id"`
	Table       string          `json:"table"`
	People      *int            `json:"people,omitempty"`
	Bread       bool            `json:"bread"`
	Lines       []ReceiptLine   `json:"lines"`
	Total       decimal.Decimal `json:"total"`
	HasUnpriced bool            `json:"has_unpriced"`
	OpenedAt    time.Time       `json:"opened_at"`
	ClosedAt    time.Time       `json:"closed_at"`
}
