package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ManourasM/TavernAI-sub000/internal/broadcast"
	"github.com/ManourasM/TavernAI-sub000/internal/model"
	"github.com/ManourasM/TavernAI-sub000/internal/nlp"
)

// ReceiptWriter persists the receipt produced by a finalize.  The
// write is the durability point: if it fails the session stays open
// and the error surfaces to the caller.
type ReceiptWriter interface {
	SaveReceipt(ctx context.Context, r *model.Receipt) error
}

// FinalizeHook runs after a successful finalize, outside the table
// lock.  Used to publish the receipt event to the message broker.
type FinalizeHook func(r *model.Receipt)

// tableState wraps one open session with its own mutex so mutations
// to different tables never contend.
type tableState struct {
	mu       sync.Mutex
	session  *model.TableSession
	archived bool
	lastTS   time.Time
}

// nextTimestamp hands out strictly increasing creation times within a
// session so CreatedAt stays a usable ordering key.
func (ts *tableState) nextTimestamp() time.Time {
	now := time.Now().UTC()
	if !now.After(ts.lastTS) {
		now = ts.lastTS.Add(time.Microsecond)
	}
	ts.lastTS = now
	return now
}

// Ledger is the authoritative in-memory order book: open sessions by
// table label, receipts written through on finalize and every
// mutation broadcast to the station channels in apply order.
type Ledger struct {
	mu       sync.Mutex // guards tables; per-table locks serialize mutations
	tables   map[string]*tableState
	hub      *broadcast.Registry
	receipts ReceiptWriter
	onFinal  FinalizeHook
}

// New constructs an empty ledger.  hook may be nil.
func New(hub *broadcast.Registry, receipts ReceiptWriter, hook FinalizeHook) *Ledger {
	return &Ledger{
		tables:   make(map[string]*tableState),
		hub:      hub,
		receipts: receipts,
		onFinal:  hook,
	}
}

// acquireTable returns the locked state for a table, creating an open
// session when create is set.  The caller must unlock it.  States
// archived by a concurrent finalize are retried so a submit racing a
// finalize lands on a fresh session instead of a dead one.
func (l *Ledger) acquireTable(table string, create bool) (*tableState, bool) {
	for {
		l.mu.Lock()
		ts, ok := l.tables[table]
		if !ok {
			if !create {
				l.mu.Unlock()
				return nil, false
			}
			ts = &tableState{
				session: &model.TableSession{
					Table:    table,
					State:    model.SessionOpen,
					OpenedAt: time.Now().UTC(),
				},
			}
			l.tables[table] = ts
		}
		l.mu.Unlock()
		ts.mu.Lock()
		if ts.archived {
			ts.mu.Unlock()
			continue // finalized underneath us, look again
		}
		return ts, true
	}
}

// dropTable removes an archived state from the live set.
func (l *Ledger) dropTable(table string, ts *tableState) {
	l.mu.Lock()
	if cur, ok := l.tables[table]; ok && cur == ts {
		delete(l.tables, table)
	}
	l.mu.Unlock()
}

// SubmitResult reports what a submit changed, plus the diagnostics the
// caller is expected to have confirmed via preview.
type SubmitResult struct {
	Created   []*model.OrderLine `json:"created"`
	Kept      []*model.OrderLine `json:"kept"`
	Cancelled []*model.OrderLine `json:"cancelled"`
	// Unclassified lists raw texts that matched no menu item.
	Unclassified []string `json:"unclassified_items"`
	// Hidden lists raw texts whose best match is a hidden item; they
	// are recorded unpriced, never silently substituted.
	Hidden []string `json:"hidden_items"`
}

// Submit commits a classified order to the table.  The first submit
// for a table opens its session; a re-submit replaces the pending set
// with the new lines, reusing pending lines whose normalized text and
// station are unchanged (so their ids stay stable on the displays) and
// cancelling the rest.  Done and cancelled lines are never touched.
// Diagnostics are reported, not enforced.
func (l *Ledger) Submit(table string, classified []nlp.ClassifiedLine, people *int, bread bool) *SubmitResult {
	ts, _ := l.acquireTable(table, true)
	defer ts.mu.Unlock()

	sess := ts.session
	sess.Meta = model.TableMeta{People: people, Bread: bread}

	metaEv := broadcast.Event{Action: broadcast.ActionMetaUpdate, Table: table, Meta: &sess.Meta}
	l.hub.BroadcastAll(metaEv)

	type record struct {
		line *model.OrderLine
		used bool
	}
	var records []record
	for _, line := range sess.PendingLines() {
		records = append(records, record{line: line})
	}

	res := &SubmitResult{}
	for _, cl := range classified {
		if cl.Hidden {
			res.Hidden = append(res.Hidden, cl.RawText)
		} else if cl.Unclassified() {
			res.Unclassified = append(res.Unclassified, cl.RawText)
		}

		matched := -1
		for i := range records {
			r := &records[i]
			if !r.used && r.line.Text == cl.Norm && r.line.Station == cl.Station {
				matched = i
				break
			}
		}
		if matched >= 0 {
			records[matched].used = true
			res.Kept = append(res.Kept, records[matched].line)
			continue
		}
		line := l.newLine(ts, table, cl)
		sess.Lines = append(sess.Lines, line)
		res.Created = append(res.Created, line)
	}

	for i := range records {
		if records[i].used {
			continue
		}
		line := records[i].line
		line.Status = model.StatusCancelled
		res.Cancelled = append(res.Cancelled, line)
	}

	// deltas in apply order: removals first, then the new lines
	for _, line := range res.Cancelled {
		l.hub.Broadcast(line.Station, broadcast.Event{
			Action: broadcast.ActionDelete, ItemID: line.ID, Table: table,
		})
	}
	for _, line := range res.Created {
		l.hub.Broadcast(line.Station, broadcast.Event{
			Action: broadcast.ActionNew, Item: line, Meta: &sess.Meta,
		})
	}
	for _, line := range res.Kept {
		l.hub.Broadcast(line.Station, broadcast.Event{
			Action: broadcast.ActionUpdate, Item: line, Meta: &sess.Meta,
		})
	}
	return res
}

// newLine freezes one classified line into an order line.  Hidden
// matches are recorded unclassified: the caller was told and must not
// get a hidden item silently priced in.
func (l *Ledger) newLine(ts *tableState, table string, cl nlp.ClassifiedLine) *model.OrderLine {
	line := &model.OrderLine{
		ID:        uuid.NewString(),
		Table:     table,
		RawText:   cl.RawText,
		Text:      cl.Norm,
		Note:      cl.Note,
		Quantity:  cl.Quantity,
		Unit:      cl.Unit,
		Station:   cl.Station,
		Status:    model.StatusPending,
		CreatedAt: ts.nextTimestamp(),
	}
	if !cl.Hidden && !cl.Unclassified() {
		line.MenuItemID = cl.MenuItemID
		line.MenuItemName = cl.MenuItemName
		line.UnitPrice = cl.UnitPrice
		line.LineTotal = cl.LineTotal
	}
	return line
}

// findLine locates a pending or terminal line by id across all open
// sessions, returning its locked table state.
func (l *Ledger) findLine(itemID string) (*tableState, *model.OrderLine, bool) {
	l.mu.Lock()
	states := make([]*tableState, 0, len(l.tables))
	for _, ts := range l.tables {
		states = append(states, ts)
	}
	l.mu.Unlock()

	for _, ts := range states {
		ts.mu.Lock()
		if ts.archived {
			ts.mu.Unlock()
			continue
		}
		for _, line := range ts.session.Lines {
			if line.ID == itemID {
				return ts, line, true
			}
		}
		ts.mu.Unlock()
	}
	return nil, nil, false
}

// MarkDone transitions a pending line to done and notifies every
// channel, including a waiter notification in the original's wording.
func (l *Ledger) MarkDone(itemID string) (*model.OrderLine, error) {
	ts, line, ok := l.findLine(itemID)
	if !ok {
		return nil, ErrItemNotFound
	}
	defer ts.mu.Unlock()
	if !line.Pending() {
		return nil, ErrNotPending
	}
	line.Status = model.StatusDone
	meta := ts.session.Meta
	l.hub.BroadcastAll(broadcast.Event{Action: broadcast.ActionUpdate, Item: line, Meta: &meta})
	l.hub.Broadcast(model.StationWaiter, broadcast.Event{
		Action:   broadcast.ActionNotify,
		Message:  fmt.Sprintf("ετοιμα %s τραπεζι %s", line.RawText, line.Table),
		NotifyID: uuid.NewString(),
	})
	return line, nil
}

// Cancel transitions a pending line to cancelled and tells its station
// to drop it.
func (l *Ledger) Cancel(itemID string) (*model.OrderLine, error) {
	return l.cancel("", itemID)
}

// CancelInTable is Cancel with the table verified first, so a mismatch
// between path and line performs no mutation.
func (l *Ledger) CancelInTable(table, itemID string) (*model.OrderLine, error) {
	return l.cancel(table, itemID)
}

func (l *Ledger) cancel(table, itemID string) (*model.OrderLine, error) {
	ts, line, ok := l.findLine(itemID)
	if !ok {
		return nil, ErrItemNotFound
	}
	defer ts.mu.Unlock()
	if table != "" && line.Table != table {
		return nil, ErrItemNotFound
	}
	if !line.Pending() {
		return nil, ErrNotPending
	}
	line.Status = model.StatusCancelled
	meta := ts.session.Meta
	l.hub.Broadcast(line.Station, broadcast.Event{Action: broadcast.ActionDelete, ItemID: line.ID, Table: line.Table})
	l.hub.Broadcast(model.StationWaiter, broadcast.Event{Action: broadcast.ActionUpdate, Item: line, Meta: &meta})
	return line, nil
}

// Finalize archives a table whose lines are all done or cancelled and
// returns the receipt snapshot.  The receipt write is the durability
// point: it happens before the session leaves the live set, and a
// storage error aborts the whole operation with the session untouched.
func (l *Ledger) Finalize(ctx context.Context, table string) (*model.Receipt, error) {
	ts, ok := l.acquireTable(table, false)
	if !ok {
		return nil, ErrTableNotFound
	}
	defer ts.mu.Unlock()

	sess := ts.session
	if pending := sess.PendingLines(); len(pending) > 0 {
		return nil, &PendingError{Count: len(pending)}
	}

	receipt := buildReceipt(sess)
	if err := l.receipts.SaveReceipt(ctx, receipt); err != nil {
		return nil, fmt.Errorf("save receipt: %w", err)
	}

	sess.State = model.SessionFinalized
	ts.archived = true
	l.dropTable(table, ts)

	for _, line := range sess.Lines {
		l.hub.Broadcast(line.Station, broadcast.Event{Action: broadcast.ActionDelete, ItemID: line.ID, Table: table})
	}
	l.hub.BroadcastAll(broadcast.Event{Action: broadcast.ActionTableFinalized, Table: table, ReceiptID: receipt.ID})
	l.hub.BroadcastAll(broadcast.Event{Action: broadcast.ActionMetaUpdate, Table: table, Meta: &model.TableMeta{}})

	if l.onFinal != nil {
		l.onFinal(receipt)
	}
	return receipt, nil
}

func buildReceipt(sess *model.TableSession) *model.Receipt {
	r := &model.Receipt{
		ID:          uuid.NewString(),
		Table:       sess.Table,
		People:      sess.Meta.People,
		Bread:       sess.Meta.Bread,
		Total:       decimal.Zero,
		HasUnpriced: sess.HasUnpriced(),
		OpenedAt:    sess.OpenedAt,
		ClosedAt:    time.Now().UTC(),
	}
	for _, line := range sess.Lines {
		r.Lines = append(r.Lines, model.ReceiptLine{
			LineID:    line.ID,
			Text:      line.RawText,
			MenuName:  line.MenuItemName,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
			Status:    line.Status,
			Station:   line.Station,
			CreatedAt: line.CreatedAt,
		})
		if line.Status == model.StatusDone && line.LineTotal != nil {
			r.Total = r.Total.Add(*line.LineTotal)
		}
	}
	return r
}

// Snapshot assembles the init payload for one station: every pending
// line routed to it (every line of every open table for a catch-all
// channel), in creation order, with table meta attached.
func (l *Ledger) Snapshot(station string, catchAll bool) []broadcast.SnapshotItem {
	l.mu.Lock()
	states := make([]*tableState, 0, len(l.tables))
	for _, ts := range l.tables {
		states = append(states, ts)
	}
	l.mu.Unlock()

	var items []broadcast.SnapshotItem
	for _, ts := range states {
		ts.mu.Lock()
		if ts.archived {
			ts.mu.Unlock()
			continue
		}
		for _, line := range ts.session.Lines {
			if catchAll || (line.Pending() && line.Station == station) {
				cp := *line
				items = append(items, broadcast.SnapshotItem{OrderLine: cp, Meta: ts.session.Meta})
			}
		}
		ts.mu.Unlock()
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items
}

// Meta returns the metadata of an open table.
func (l *Ledger) Meta(table string) (model.TableMeta, error) {
	ts, ok := l.acquireTable(table, false)
	if !ok {
		return model.TableMeta{}, ErrTableNotFound
	}
	defer ts.mu.Unlock()
	return ts.session.Meta, nil
}

// Tables returns the current lines grouped by table.  With history off
// only pending lines are included, matching the original listing.
func (l *Ledger) Tables(includeHistory bool) map[string][]model.OrderLine {
	l.mu.Lock()
	states := make(map[string]*tableState, len(l.tables))
	for t, ts := range l.tables {
		states[t] = ts
	}
	l.mu.Unlock()

	out := make(map[string][]model.OrderLine, len(states))
	for t, ts := range states {
		ts.mu.Lock()
		if ts.archived {
			ts.mu.Unlock()
			continue
		}
		lines := make([]model.OrderLine, 0, len(ts.session.Lines))
		for _, line := range ts.session.Lines {
			if includeHistory || line.Pending() {
				lines = append(lines, *line)
			}
		}
		ts.mu.Unlock()
		out[t] = lines
	}
	return out
}

// Purge permanently removes done/cancelled lines older than the cutoff
// from every open session.  A zero cutoff removes all of them.
func (l *Ledger) Purge(olderThan time.Duration) int {
	l.mu.Lock()
	states := make([]*tableState, 0, len(l.tables))
	for _, ts := range l.tables {
		states = append(states, ts)
	}
	l.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	removed := 0
	for _, ts := range states {
		ts.mu.Lock()
		if ts.archived {
			ts.mu.Unlock()
			continue
		}
		kept := ts.session.Lines[:0]
		for _, line := range ts.session.Lines {
			terminal := line.Status == model.StatusDone || line.Status == model.StatusCancelled
			if terminal && (olderThan == 0 || line.CreatedAt.Before(cutoff)) {
				removed++
				continue
			}
			kept = append(kept, line)
		}
		ts.session.Lines = kept
		ts.mu.Unlock()
	}
	return removed
}
