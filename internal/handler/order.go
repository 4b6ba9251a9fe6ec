package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ManourasM/TavernAI-sub000/internal/catalog"
	"github.com/ManourasM/TavernAI-sub000/internal/ledger"
	"github.com/ManourasM/TavernAI-sub000/internal/nlp"
)

// OrderHandler binds the interpretation pipeline and the live ledger
// to HTTP.  Preview is read-only; submit and the status transitions
// mutate the ledger, which broadcasts the resulting deltas itself.
type OrderHandler struct {
	Ledger  *ledger.Ledger
	Catalog *catalog.Store
	Rules   *nlp.RuleTable
}

func NewOrderHandler(l *ledger.Ledger, cat *catalog.Store, rules *nlp.RuleTable) *OrderHandler {
	return &OrderHandler{Ledger: l, Catalog: cat, Rules: rules}
}

// orderRequest is the payload shared by preview and submit.  Text is
// the waiter's free-form pad content, one item per line.
type orderRequest struct {
	Table  string `json:"table"`
	Text   string `json:"text"`
	People *int   `json:"people,omitempty"`
	Bread  bool   `json:"bread,omitempty"`
}

func (r *orderRequest) validate() string {
	r.Table = strings.TrimSpace(r.Table)
	if r.Table == "" {
		return "table is required"
	}
	if strings.TrimSpace(r.Text) == "" {
		return "text is required"
	}
	if r.People != nil && *r.People < 0 {
		return "people must not be negative"
	}
	return ""
}

// Preview handles POST /v1/orders/preview.  It classifies the text
// against the active menu and returns the interpretation without
// touching any table state, so the waiter can confirm prices and
// flagged lines before committing.
func (h *OrderHandler) Preview(c echo.Context) error {
	var req orderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	snap := h.Catalog.Current()
	lines := nlp.Classify(req.Text, snap.Matcher, h.Rules)

	var unclassified, hidden []string
	for i := range lines {
		if lines[i].Hidden {
			hidden = append(hidden, lines[i].RawText)
		} else if lines[i].Unclassified() {
			unclassified = append(unclassified, lines[i].RawText)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"table":              req.Table,
		"items":              lines,
		"unclassified_items": unclassified,
		"hidden_items":       hidden,
		"menu_version":       snap.Version.ID,
	})
}

// Submit handles POST /v1/orders.  The first submit for a table opens
// its session; a re-submit replaces the pending set, keeping unchanged
// lines so their ids stay stable on the station displays.
func (h *OrderHandler) Submit(c echo.Context) error {
	var req orderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	snap := h.Catalog.Current()
	lines := nlp.Classify(req.Text, snap.Matcher, h.Rules)
	res := h.Ledger.Submit(req.Table, lines, req.People, req.Bread)
	return c.JSON(http.StatusOK, echo.Map{
		"table":  req.Table,
		"result": res,
	})
}

// MarkDone handles POST /v1/items/:id/done.
func (h *OrderHandler) MarkDone(c echo.Context) error {
	line, err := h.Ledger.MarkDone(c.Param("id"))
	if err != nil {
		return itemError(c, err)
	}
	return c.JSON(http.StatusOK, line)
}

// Cancel handles DELETE /v1/tables/:table/items/:id.
func (h *OrderHandler) Cancel(c echo.Context) error {
	line, err := h.Ledger.CancelInTable(c.Param("table"), c.Param("id"))
	if err != nil {
		return itemError(c, err)
	}
	return c.JSON(http.StatusOK, line)
}

func itemError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ledger.ErrItemNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
	case errors.Is(err, ledger.ErrNotPending):
		return c.JSON(http.StatusConflict, echo.Map{"error": "item is not pending"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// Finalize handles POST /v1/tables/:table/finalize.  A table with
// pending lines is refused with the pending count; a successful
// finalize returns the archived receipt.
func (h *OrderHandler) Finalize(c echo.Context) error {
	receipt, err := h.Ledger.Finalize(c.Request().Context(), c.Param("table"))
	if err != nil {
		var pending *ledger.PendingError
		switch {
		case errors.Is(err, ledger.ErrTableNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		case errors.As(err, &pending):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":         "items pending",
				"pending_count": pending.Count,
			})
		default:
			c.Logger().Errorf("finalize table %s: %v", c.Param("table"), err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store receipt"})
		}
	}
	return c.JSON(http.StatusOK, receipt)
}

// ListTables handles GET /v1/orders.  With ?history=true the response
// includes done and cancelled lines, not only pending ones.
func (h *OrderHandler) ListTables(c echo.Context) error {
	history := c.QueryParam("history") == "true"
	return c.JSON(http.StatusOK, echo.Map{"tables": h.Ledger.Tables(history)})
}

// Meta handles GET /v1/tables/:table/meta.
func (h *OrderHandler) Meta(c echo.Context) error {
	meta, err := h.Ledger.Meta(c.Param("table"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	}
	return c.JSON(http.StatusOK, meta)
}

// Purge handles POST /v1/admin/purge.  It removes done and cancelled
// lines older than the given number of hours from every open session;
// zero hours removes all of them.
func (h *OrderHandler) Purge(c echo.Context) error {
	var body struct {
		OlderThanHours int `json:"older_than_hours"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.OlderThanHours < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "older_than_hours must not be negative"})
	}
	removed := h.Ledger.Purge(time.Duration(body.OlderThanHours) * time.Hour)
	return c.JSON(http.StatusOK, echo.Map{"removed": removed})
}
