package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineStatus is the lifecycle state of one order line.  pending is the
// only non-terminal state.
type LineStatus string

const (
	StatusPending   LineStatus = "pending"
	StatusDone      LineStatus = "done"
	StatusCancelled LineStatus = "cancelled"
)

// OrderLine is one parsed, priced entry in a table's order.  Everything
// except Status is fixed at creation time; in particular UnitPrice and
// LineTotal are frozen and never recomputed when the menu changes.
//
// Fields:
//  ID            – uuid assigned at creation.
//  Table         – table label this line belongs to.
//  RawText       – exactly what the waiter typed.
//  Text          – normalized text used for matching.
//  Note          – parenthetical note stripped during normalization.
//  Quantity      – parsed quantity (defaults to 1).
//  Unit          – recognized unit token, empty when none.
//  MenuItemID    – matched menu item key, empty when unclassified.
//  MenuItemName  – matched item display name, empty when unclassified.
//  Station       – station key the line is routed to.
//  UnitPrice     – item price at order time, nil when unclassified.
//  LineTotal     – UnitPrice × effective quantity, nil when unclassified.
//  Status        – pending/done/cancelled.
//  CreatedAt     – monotonic ordering key within the session.
type OrderLine struct {
	ID           string           `json:"id"`
	Table        string           `json:"table"`
	RawText      string           `json:"text"`
	Text         string           `json:"normalized_text"`
	Note         string           `json:"note,omitempty"`
	Quantity     decimal.Decimal  `json:"qty"`
	Unit         string           `json:"unit,omitempty"`
	MenuItemID   string           `json:"menu_id,omitempty"`
	MenuItemName string           `json:"menu_name,omitempty"`
	Station      string           `json:"category"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	LineTotal    *decimal.Decimal `json:"line_total,omitempty"`
	Status       LineStatus       `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
}

// Pending reports whether the line can still be mutated.
func (l *OrderLine) Pending() bool { return l.Status == StatusPending }

// TableMeta carries table-level metadata attached to broadcasts so
// station displays can render headers without extra lookups.
type TableMeta struct {
	People *int `json:"people"`
	Bread  bool `json:"bread"`
}

// SessionState is the lifecycle state of a table session.
type SessionState string

const (
	SessionOpen      SessionState = "open"
	SessionFinalized SessionState = "finalized"
)

// TableSession groups the order lines of one occupied table.  A table
// has at most one open session; finalizing archives it into a receipt.
//
// Fields:
//  Table    – unique label among open sessions.
//  Meta     – people count and bread flag.
//  Lines    – insertion-ordered order lines.
//  State    – open or finalized.
//  OpenedAt – when the first order arrived.
type TableSession struct {
	Table    string       `json:"table"`
	Meta     TableMeta    `json:"meta"`
	Lines    []*OrderLine `json:"lines"`
	State    SessionState `json:"state"`
	OpenedAt time.Time    `json:"opened_at"`
}

// PendingLines returns the still-pending lines in creation order.
func (s *TableSession) PendingLines() []*OrderLine {
	out := make([]*OrderLine, 0, len(s.Lines))
	for _, l := range s.Lines {
		if l.Pending() {
			out = append(out, l)
		}
	}
	return out
}

// HasUnpriced reports whether any line in the session lacks a price,
// which the UI must warn about before finalizing.
func (s *TableSession) HasUnpriced() bool {
	for _, l := range s.Lines {
		if l.Status != StatusCancelled && l.LineTotal == nil {
			return true
		}
	}
	return false
}
