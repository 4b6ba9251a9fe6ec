package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ManourasM/TavernAI-sub000/internal/repository"
)

// ReceiptHandler serves the archived receipts written on finalize.
type ReceiptHandler struct {
	Receipts repository.ReceiptRepository
}

func NewReceiptHandler(receipts repository.ReceiptRepository) *ReceiptHandler {
	return &ReceiptHandler{Receipts: receipts}
}

// List handles GET /v1/receipts with table and time-range filters.
func (h *ReceiptHandler) List(c echo.Context) error {
	var f repository.ReceiptFilter
	f.Table = c.QueryParam("table")
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from timestamp"})
		}
		f.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to timestamp"})
		}
		f.To = &t
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		f.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid offset"})
		}
		f.Offset = n
	}

	receipts, total, err := h.Receipts.List(c.Request().Context(), f)
	if err != nil {
		c.Logger().Errorf("list receipts: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"receipts": receipts,
		"total":    total,
	})
}

// Get handles GET /v1/receipts/:id.
func (h *ReceiptHandler) Get(c echo.Context) error {
	receipt, err := h.Receipts.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "receipt not found"})
		}
		c.Logger().Errorf("get receipt: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, receipt)
}
