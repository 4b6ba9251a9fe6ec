package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ManourasM/TavernAI-sub000/internal/catalog"
	"github.com/ManourasM/TavernAI-sub000/internal/model"
	"github.com/ManourasM/TavernAI-sub000/internal/nlp"
	"github.com/ManourasM/TavernAI-sub000/internal/repository"
)

// CorrectionHandler serves the feedback loop: waiters capture the item
// they actually meant, and the rule takes effect on the very next
// classification.  The admin surface lists and exports the samples.
type CorrectionHandler struct {
	Corrections repository.CorrectionRepository
	Rules       *nlp.RuleTable
	Catalog     *catalog.Store
}

func NewCorrectionHandler(repo repository.CorrectionRepository, rules *nlp.RuleTable, cat *catalog.Store) *CorrectionHandler {
	return &CorrectionHandler{Corrections: repo, Rules: rules, Catalog: cat}
}

// Capture handles POST /v1/corrections.  The corrected item must exist
// in the active menu and must not be hidden; accepting a rule nobody
// can order would poison future matches.
func (h *CorrectionHandler) Capture(c echo.Context) error {
	var body struct {
		RawText         string `json:"raw_text"`
		PredictedItemID string `json:"predicted_item_id"`
		CorrectedItemID string `json:"corrected_item_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.RawText = strings.TrimSpace(body.RawText)
	body.CorrectedItemID = strings.TrimSpace(body.CorrectedItemID)
	if body.RawText == "" || body.CorrectedItemID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "raw_text and corrected_item_id are required"})
	}
	key := nlp.NormalizeKey(body.RawText)
	if key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "raw_text normalizes to nothing"})
	}

	item, ok := h.Catalog.Current().ItemByID(body.CorrectedItemID)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "corrected item not in active menu"})
	}
	if item.Hidden {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "corrected item is hidden"})
	}

	rule := model.CorrectionRule{
		Key:             key,
		RawText:         body.RawText,
		PredictedItemID: strings.TrimSpace(body.PredictedItemID),
		CorrectedItemID: body.CorrectedItemID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := h.Corrections.Upsert(c.Request().Context(), rule); err != nil {
		c.Logger().Errorf("store correction: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store correction"})
	}
	// storage first, then the live table; a failed write must not leave
	// a rule that disappears on restart
	h.Rules.Upsert(rule)
	return c.JSON(http.StatusCreated, rule)
}

// List handles GET /v1/corrections with paging and optional filters.
func (h *CorrectionHandler) List(c echo.Context) error {
	f, errMsg := correctionFilterFrom(c)
	if errMsg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": errMsg})
	}
	rules, total, err := h.Corrections.List(c.Request().Context(), f)
	if err != nil {
		c.Logger().Errorf("list corrections: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"samples": rules,
		"total":   total,
		"limit":   f.Limit,
		"offset":  f.Offset,
	})
}

// Export handles GET /v1/corrections/export and streams every matching
// sample as CSV, for offline inspection of the rule base.
func (h *CorrectionHandler) Export(c echo.Context) error {
	f, errMsg := correctionFilterFrom(c)
	if errMsg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": errMsg})
	}
	f.Limit = 0
	f.Offset = 0
	rules, err := h.Corrections.All(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("export corrections: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="corrections.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write([]string{"key", "raw_text", "predicted_item_id", "corrected_item_id", "created_at"}); err != nil {
		return err
	}
	for _, r := range rules {
		if f.From != nil && r.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && r.CreatedAt.After(*f.To) {
			continue
		}
		if f.CorrectedItemID != "" && r.CorrectedItemID != f.CorrectedItemID {
			continue
		}
		rec := []string{r.Key, r.RawText, r.PredictedItemID, r.CorrectedItemID, r.CreatedAt.UTC().Format(time.RFC3339)}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func correctionFilterFrom(c echo.Context) (repository.CorrectionFilter, string) {
	var f repository.CorrectionFilter
	f.CorrectedItemID = c.QueryParam("corrected_item_id")
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, "invalid from timestamp"
		}
		f.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, "invalid to timestamp"
		}
		f.To = &t
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, "invalid limit"
		}
		f.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, "invalid offset"
		}
		f.Offset = n
	}
	return f, ""
}
