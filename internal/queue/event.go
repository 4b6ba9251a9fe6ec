// Package queue defines message payloads exchanged over the message broker.
package queue

// ReceiptFinalizedEvent is published when a table is finalized and its
// receipt stored.  It carries enough for downstream consumers to log or
// feed analytics without querying the primary database.
type ReceiptFinalizedEvent struct {
	ReceiptID   string `json:"receipt_id"`
	Table       string `json:"table"`
	People      *int   `json:"people,omitempty"`
	Bread       bool   `json:"bread"`
	LineCount   int    `json:"line_count"`
	Total       string `json:"total"`
	HasUnpriced bool   `json:"has_unpriced"`
	OpenedAt    string `json:"opened_at"`
	ClosedAt    string `json:"closed_at"`
}
