package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManourasM/TavernAI-sub000/internal/broadcast"
	"github.com/ManourasM/TavernAI-sub000/internal/model"
	"github.com/ManourasM/TavernAI-sub000/internal/nlp"
	"github.com/ManourasM/TavernAI-sub000/internal/repository"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testMatcher() *nlp.Matcher {
	return nlp.NewMatcher([]model.MenuItem{
		{ID: "beer_01", Name: "μπύρα", Price: dec("3.00"), Station: "drinks", Unit: model.UnitPortion},
		{ID: "salad_01", Name: "χωριάτικη σαλάτα", Price: dec("6.50"), Station: "kitchen", Unit: model.UnitPortion},
		{ID: "paidakia_01", Name: "παϊδάκια", Price: dec("12.00"), Station: "grill", Unit: model.UnitWeight},
	})
}

func classify(t *testing.T, text string) []nlp.ClassifiedLine {
	t.Helper()
	return nlp.Classify(text, testMatcher(), nil)
}

func newTestLedger() (*Ledger, *repository.MemoryReceiptRepo) {
	receipts := repository.NewMemoryReceiptRepo()
	hub := broadcast.NewRegistry()
	hub.SetCatchAll([]string{model.StationWaiter})
	return New(hub, receipts, nil), receipts
}

func TestSubmitOpensSession(t *testing.T) {
	led, _ := newTestLedger()

	people := 4
	res := led.Submit("12", classify(t, "2 μπύρες\nχωριάτικη"), &people, true)
	require.Len(t, res.Created, 2)
	assert.Empty(t, res.Kept)
	assert.Empty(t, res.Cancelled)
	assert.Empty(t, res.Unclassified)

	meta, err := led.Meta("12")
	require.NoError(t, err)
	require.NotNil(t, meta.People)
	assert.Equal(t, 4, *meta.People)
	assert.True(t, meta.Bread)

	tables := led.Tables(false)
	require.Contains(t, tables, "12")
	assert.Len(t, tables["12"], 2)
	for _, line := range tables["12"] {
		assert.Equal(t, model.StatusPending, line.Status)
		assert.Equal(t, "12", line.Table)
		assert.NotEmpty(t, line.ID)
	}
}

func TestResubmitKeepsUnchangedLineIDs(t *testing.T) {
	led, _ := newTestLedger()

	first := led.Submit("7", classify(t, "2 μπύρες\nχωριάτικη"), nil, false)
	require.Len(t, first.Created, 2)
	var beerID string
	for _, l := range first.Created {
		if l.MenuItemID == "beer_01" {
			beerID = l.ID
		}
	}
	require.NotEmpty(t, beerID)

	second := led.Submit("7", classify(t, "2 μπύρες\n1.5kg παϊδάκια"), nil, false)
	require.Len(t, second.Kept, 1)
	assert.Equal(t, beerID, second.Kept[0].ID, "unchanged line keeps its id")
	require.Len(t, second.Created, 1)
	assert.Equal(t, "paidakia_01", second.Created[0].MenuItemID)
	require.Len(t, second.Cancelled, 1)
	assert.Equal(t, "salad_01", second.Cancelled[0].MenuItemID)
	assert.Equal(t, model.StatusCancelled, second.Cancelled[0].Status)

	pending := led.Tables(false)["7"]
	assert.Len(t, pending, 2)
}

func TestResubmitDoesNotTouchDoneLines(t *testing.T) {
	led, _ := newTestLedger()

	first := led.Submit("3", classify(t, "2 μπύρες"), nil, false)
	require.Len(t, first.Created, 1)
	_, err := led.MarkDone(first.Created[0].ID)
	require.NoError(t, err)

	// the same text again: the done line is not reusable, a fresh
	// pending line is created
	second := led.Submit("3", classify(t, "2 μπύρες"), nil, false)
	require.Len(t, second.Created, 1)
	assert.NotEqual(t, first.Created[0].ID, second.Created[0].ID)
	assert.Empty(t, second.Cancelled)

	all := led.Tables(true)["3"]
	assert.Len(t, all, 2)
}

func TestSubmitReportsDiagnostics(t *testing.T) {
	led, _ := newTestLedger()

	res := led.Submit("5", classify(t, "πιτσα μαργαριτα\n2 μπύρες"), nil, false)
	assert.Equal(t, []string{"πιτσα μαργαριτα"}, res.Unclassified)
	require.Len(t, res.Created, 2)

	// the unclassified line is still recorded, unpriced, on the
	// default station
	var unpriced *model.OrderLine
	for _, l := range res.Created {
		if l.MenuItemID == "" {
			unpriced = l
		}
	}
	require.NotNil(t, unpriced)
	assert.Nil(t, unpriced.LineTotal)
	assert.Equal(t, model.StationKitchen, unpriced.Station)
}

func TestMarkDoneAndCancelTransitions(t *testing.T) {
	led, _ := newTestLedger()

	res := led.Submit("9", classify(t, "2 μπύρες\nχωριάτικη"), nil, false)
	require.Len(t, res.Created, 2)
	a, b := res.Created[0], res.Created[1]

	done, err := led.MarkDone(a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, done.Status)

	_, err = led.MarkDone(a.ID)
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = led.Cancel(a.ID)
	assert.ErrorIs(t, err, ErrNotPending)

	cancelled, err := led.Cancel(b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)

	_, err = led.MarkDone("no-such-id")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestCancelInTableVerifiesOwnership(t *testing.T) {
	led, _ := newTestLedger()
	res := led.Submit("9", classify(t, "2 μπύρες"), nil, false)
	require.Len(t, res.Created, 1)
	id := res.Created[0].ID

	_, err := led.CancelInTable("1", id)
	assert.ErrorIs(t, err, ErrItemNotFound)
	line, err := led.CancelInTable("9", id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, line.Status)
}

func TestFinalizeRefusedWhilePending(t *testing.T) {
	led, receipts := newTestLedger()

	res := led.Submit("4", classify(t, "2 μπύρες\nχωριάτικη"), nil, false)
	require.Len(t, res.Created, 2)
	_, err := led.MarkDone(res.Created[0].ID)
	require.NoError(t, err)

	_, err = led.Finalize(context.Background(), "4")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrItemsPending)
	var pending *PendingError
	require.True(t, errors.As(err, &pending))
	assert.Equal(t, 1, pending.Count)

	// no mutation happened: session still open, nothing stored
	assert.Equal(t, 0, receipts.Count())
	_, err = led.Meta("4")
	assert.NoError(t, err)
}

func TestFinalizeArchivesSession(t *testing.T) {
	led, receipts := newTestLedger()

	people := 2
	res := led.Submit("4", classify(t, "2 μπύρες\nχωριάτικη"), &people, false)
	require.Len(t, res.Created, 2)
	for _, l := range res.Created {
		_, err := led.MarkDone(l.ID)
		require.NoError(t, err)
	}

	receipt, err := led.Finalize(context.Background(), "4")
	require.NoError(t, err)
	assert.Equal(t, "4", receipt.Table)
	assert.Len(t, receipt.Lines, 2)
	assert.True(t, receipt.Total.Equal(dec("12.50")), "total: got %s", receipt.Total)
	assert.False(t, receipt.HasUnpriced)
	require.NotNil(t, receipt.People)
	assert.Equal(t, 2, *receipt.People)

	assert.Equal(t, 1, receipts.Count())
	stored, err := receipts.GetByID(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(receipt.Total))

	_, err = led.Meta("4")
	assert.ErrorIs(t, err, ErrTableNotFound)
	_, err = led.Finalize(context.Background(), "4")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestFinalizeCancelledLinesDoNotCount(t *testing.T) {
	led, _ := newTestLedger()

	res := led.Submit("6", classify(t, "2 μπύρες\nπιτσα μαργαριτα"), nil, false)
	_, err := led.MarkDone(res.Created[0].ID)
	require.NoError(t, err)
	_, err = led.Cancel(res.Created[1].ID)
	require.NoError(t, err)

	receipt, err := led.Finalize(context.Background(), "6")
	require.NoError(t, err)
	assert.True(t, receipt.Total.Equal(dec("6.00")), "total: got %s", receipt.Total)
	assert.Len(t, receipt.Lines, 2, "cancelled lines stay on the receipt")
	assert.False(t, receipt.HasUnpriced, "a cancelled unpriced line does not flag the receipt")
}

func TestFinalizeUnpricedDoneLineFlagsReceipt(t *testing.T) {
	led, _ := newTestLedger()

	res := led.Submit("8", classify(t, "πιτσα μαργαριτα"), nil, false)
	require.Len(t, res.Created, 1)
	_, err := led.MarkDone(res.Created[0].ID)
	require.NoError(t, err)

	receipt, err := led.Finalize(context.Background(), "8")
	require.NoError(t, err)
	assert.True(t, receipt.HasUnpriced)
	assert.True(t, receipt.Total.IsZero())
}

func TestFinalizeStorageErrorKeepsSessionOpen(t *testing.T) {
	led, receipts := newTestLedger()

	res := led.Submit("2", classify(t, "2 μπύρες"), nil, false)
	_, err := led.MarkDone(res.Created[0].ID)
	require.NoError(t, err)

	receipts.FailNext = errors.New("disk full")
	_, err = led.Finalize(context.Background(), "2")
	require.Error(t, err)

	// the session survived the failed write and a retry succeeds
	_, err = led.Meta("2")
	require.NoError(t, err)
	receipt, err := led.Finalize(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, 1, receipts.Count())
	assert.Equal(t, "2", receipt.Table)
}

func TestFinalizeHookRuns(t *testing.T) {
	receipts := repository.NewMemoryReceiptRepo()
	hub := broadcast.NewRegistry()
	var hooked *model.Receipt
	led := New(hub, receipts, func(r *model.Receipt) { hooked = r })

	res := led.Submit("1", classify(t, "2 μπύρες"), nil, false)
	_, err := led.MarkDone(res.Created[0].ID)
	require.NoError(t, err)
	receipt, err := led.Finalize(context.Background(), "1")
	require.NoError(t, err)

	require.NotNil(t, hooked)
	assert.Equal(t, receipt.ID, hooked.ID)
}

func TestSnapshotPerStation(t *testing.T) {
	led, _ := newTestLedger()

	led.Submit("10", classify(t, "2 μπύρες\nχωριάτικη\n1.5kg παϊδάκια"), nil, false)
	led.Submit("11", classify(t, "χωριάτικη"), nil, false)

	kitchen := led.Snapshot("kitchen", false)
	require.Len(t, kitchen, 2)
	for _, it := range kitchen {
		assert.Equal(t, "kitchen", it.Station)
	}

	all := led.Snapshot(model.StationWaiter, true)
	assert.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.Before(all[i-1].CreatedAt), "snapshot sorted by creation")
	}
}

func TestSnapshotExcludesTerminalLinesForStations(t *testing.T) {
	led, _ := newTestLedger()

	res := led.Submit("10", classify(t, "2 μπύρες"), nil, false)
	_, err := led.MarkDone(res.Created[0].ID)
	require.NoError(t, err)

	assert.Empty(t, led.Snapshot("drinks", false))
	// the catch-all view keeps showing terminal lines until purge
	assert.Len(t, led.Snapshot(model.StationWaiter, true), 1)
}

func TestPurgeRemovesTerminalLines(t *testing.T) {
	led, _ := newTestLedger()

	res := led.Submit("10", classify(t, "2 μπύρες\nχωριάτικη"), nil, false)
	_, err := led.MarkDone(res.Created[0].ID)
	require.NoError(t, err)

	removed := led.Purge(0)
	assert.Equal(t, 1, removed)
	assert.Len(t, led.Tables(true)["10"], 1)

	// nothing terminal left
	assert.Equal(t, 0, led.Purge(0))
}

func TestPurgeRespectsCutoff(t *testing.T) {
	led, _ := newTestLedger()

	res := led.Submit("10", classify(t, "2 μπύρες"), nil, false)
	_, err := led.MarkDone(res.Created[0].ID)
	require.NoError(t, err)

	// fresh terminal lines survive a 24h retention window
	assert.Equal(t, 0, led.Purge(24*time.Hour))
	assert.Equal(t, 1, led.Purge(0))
}

func TestTimestampsStrictlyIncrease(t *testing.T) {
	led, _ := newTestLedger()

	res := led.Submit("1", classify(t, "2 μπύρες\nχωριάτικη\n1.5kg παϊδάκια"), nil, false)
	require.Len(t, res.Created, 3)
	for i := 1; i < len(res.Created); i++ {
		assert.True(t, res.Created[i].CreatedAt.After(res.Created[i-1].CreatedAt))
	}
}
