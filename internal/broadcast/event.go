// Package broadcast fans ledger mutations out to the station displays
// over WebSocket.  Each station key is a channel; clients subscribe to
// one station and receive an init snapshot followed by ordered deltas.
package broadcast

import "github.com/ManourasM/TavernAI-sub000/internal/model"

// Action names the event kinds a station client can receive.
type Action string

const (
	ActionInit           Action = "init"
	ActionNew            Action = "new"
	ActionUpdate         Action = "update"
	ActionDelete         Action = "delete"
	ActionTableFinalized Action = "table_finalized"
	ActionMetaUpdate     Action = "meta_update"
	ActionNotify         Action = "notify"
)

// SnapshotItem is one pending line inside an init snapshot, with the
// table meta attached so displays can render headers directly.
type SnapshotItem struct {
	model.OrderLine
	Meta model.TableMeta `json:"meta"`
}

// Event is the wire message pushed to station clients.  Only the
// fields relevant to the action are set.
type Event struct {
	Action    Action           `json:"action"`
	Item      *model.OrderLine `json:"item,omitempty"`
	Items     []SnapshotItem   `json:"items,omitempty"`
	ItemID    string           `json:"item_id,omitempty"`
	Table     string           `json:"table,omitempty"`
	Meta      *model.TableMeta `json:"meta,omitempty"`
	ReceiptID string           `json:"receipt_id,omitempty"`
	Message   string           `json:"message,omitempty"`
	NotifyID  string           `json:"notify_id,omitempty"`
}
