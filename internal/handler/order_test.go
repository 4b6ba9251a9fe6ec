package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManourasM/TavernAI-sub000/internal/broadcast"
	"github.com/ManourasM/TavernAI-sub000/internal/catalog"
	"github.com/ManourasM/TavernAI-sub000/internal/ledger"
	"github.com/ManourasM/TavernAI-sub000/internal/model"
	"github.com/ManourasM/TavernAI-sub000/internal/nlp"
	"github.com/ManourasM/TavernAI-sub000/internal/repository"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// testEnv wires the full engine against memory repositories.
type testEnv struct {
	echo        *echo.Echo
	orders      *OrderHandler
	menu        *MenuHandler
	stations    *StationHandler
	corrections *CorrectionHandler
	receipts    *ReceiptHandler
	receiptRepo *repository.MemoryReceiptRepo
	rules       *nlp.RuleTable
	ledger      *ledger.Ledger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	menus := repository.NewMemoryMenuRepo()
	stations := repository.NewMemoryStationRepo()
	corrections := repository.NewMemoryCorrectionRepo()
	receipts := repository.NewMemoryReceiptRepo()
	require.NoError(t, stations.Seed(context.Background()))

	version, err := menus.CreateVersion(context.Background(), "initial", []model.MenuItem{
		{ID: "beer_01", Name: "μπύρα", Price: dec("3.00"), Station: "drinks", Unit: model.UnitPortion},
		{ID: "salad_01", Name: "χωριάτικη σαλάτα", Price: dec("6.50"), Station: "kitchen", Unit: model.UnitPortion},
		{ID: "souvla_01", Name: "σούβλα αρνί", Price: dec("45.00"), Station: "grill", Unit: model.UnitPortion},
		{ID: "souvlaki_01", Name: "σουβλάκι χοιρινό", Price: dec("2.50"), Station: "grill", Unit: model.UnitPortion},
		{ID: "offmenu_01", Name: "κοτόπουλο σχάρας", Price: dec("7.00"), Station: "grill", Unit: model.UnitPortion, Hidden: true},
	})
	require.NoError(t, err)
	_, items, err := menus.LatestVersion(context.Background())
	require.NoError(t, err)

	cat := catalog.NewStore()
	cat.Swap(version, items)
	rules := nlp.NewRuleTable()

	hub := broadcast.NewRegistry()
	hub.SetCatchAll([]string{model.StationWaiter})
	led := ledger.New(hub, receipts, nil)

	return &testEnv{
		echo:        echo.New(),
		orders:      NewOrderHandler(led, cat, rules),
		menu:        NewMenuHandler(menus, cat),
		stations:    NewStationHandler(stations, hub),
		corrections: NewCorrectionHandler(corrections, rules, cat),
		receipts:    NewReceiptHandler(receipts),
		receiptRepo: receipts,
		rules:       rules,
		ledger:      led,
	}
}

// request builds an echo context for a JSON request.
func (env *testEnv) request(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return env.echo.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestPreviewDoesNotMutate(t *testing.T) {
	env := newTestEnv(t)
	c, rec := env.request(http.MethodPost, "/v1/orders/preview", `{"table":"4","text":"2 μπύρες\nπιτσα"}`)

	require.NoError(t, env.orders.Preview(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Len(t, body["items"], 2)
	assert.Equal(t, []any{"πιτσα"}, body["unclassified_items"])

	// preview must leave the ledger untouched
	_, err := env.ledger.Meta("4")
	assert.ErrorIs(t, err, ledger.ErrTableNotFound)
}

func TestPreviewValidation(t *testing.T) {
	env := newTestEnv(t)

	c, rec := env.request(http.MethodPost, "/v1/orders/preview", `{"table":"","text":"x"}`)
	require.NoError(t, env.orders.Preview(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = env.request(http.MethodPost, "/v1/orders/preview", `{"table":"4","text":"  "}`)
	require.NoError(t, env.orders.Preview(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitCreatesAndFinalizes(t *testing.T) {
	env := newTestEnv(t)

	c, rec := env.request(http.MethodPost, "/v1/orders", `{"table":"4","text":"2 μπύρες","people":3,"bread":true}`)
	require.NoError(t, env.orders.Submit(c))
	require.Equal(t, http.StatusOK, rec.Code)

	lines := env.ledger.Tables(false)["4"]
	require.Len(t, lines, 1)

	// finalize with the line still pending is refused
	c, rec = env.request(http.MethodPost, "/v1/tables/4/finalize", "")
	c.SetParamNames("table")
	c.SetParamValues("4")
	require.NoError(t, env.orders.Finalize(c))
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["pending_count"])

	// mark done over HTTP, then finalize succeeds
	c, rec = env.request(http.MethodPost, "/v1/items/x/done", "")
	c.SetParamNames("id")
	c.SetParamValues(lines[0].ID)
	require.NoError(t, env.orders.MarkDone(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = env.request(http.MethodPost, "/v1/tables/4/finalize", "")
	c.SetParamNames("table")
	c.SetParamValues("4")
	require.NoError(t, env.orders.Finalize(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.receiptRepo.Count())

	// the table is gone now
	c, rec = env.request(http.MethodPost, "/v1/tables/4/finalize", "")
	c.SetParamNames("table")
	c.SetParamValues("4")
	require.NoError(t, env.orders.Finalize(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkDoneUnknownItem(t *testing.T) {
	env := newTestEnv(t)
	c, rec := env.request(http.MethodPost, "/v1/items/nope/done", "")
	c.SetParamNames("id")
	c.SetParamValues("nope")
	require.NoError(t, env.orders.MarkDone(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelChecksTable(t *testing.T) {
	env := newTestEnv(t)
	c, _ := env.request(http.MethodPost, "/v1/orders", `{"table":"4","text":"2 μπύρες"}`)
	require.NoError(t, env.orders.Submit(c))
	id := env.ledger.Tables(false)["4"][0].ID

	// wrong table in the path does not cancel someone else's line
	c, rec := env.request(http.MethodDelete, "/v1/tables/9/items/"+id, "")
	c.SetParamNames("table", "id")
	c.SetParamValues("9", id)
	require.NoError(t, env.orders.Cancel(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = env.request(http.MethodDelete, "/v1/tables/4/items/"+id, "")
	c.SetParamNames("table", "id")
	c.SetParamValues("4", id)
	require.NoError(t, env.orders.Cancel(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetaNotFound(t *testing.T) {
	env := newTestEnv(t)
	c, rec := env.request(http.MethodGet, "/v1/tables/4/meta", "")
	c.SetParamNames("table")
	c.SetParamValues("4")
	require.NoError(t, env.orders.Meta(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPurgeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	c, _ := env.request(http.MethodPost, "/v1/orders", `{"table":"4","text":"2 μπύρες"}`)
	require.NoError(t, env.orders.Submit(c))
	id := env.ledger.Tables(false)["4"][0].ID
	_, err := env.ledger.MarkDone(id)
	require.NoError(t, err)

	c, rec := env.request(http.MethodPost, "/v1/admin/purge", `{"older_than_hours":0}`)
	require.NoError(t, env.orders.Purge(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["removed"])
}
