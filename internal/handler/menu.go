package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/ManourasM/TavernAI-sub000/internal/catalog"
	"github.com/ManourasM/TavernAI-sub000/internal/model"
	"github.com/ManourasM/TavernAI-sub000/internal/repository"
)

// MenuHandler serves the menu versioning API.  Uploads are append-only:
// a new version is stored and swapped into the active catalog; older
// versions stay queryable for history.
type MenuHandler struct {
	Menus   repository.MenuRepository
	Catalog *catalog.Store
}

func NewMenuHandler(menus repository.MenuRepository, cat *catalog.Store) *MenuHandler {
	return &MenuHandler{Menus: menus, Catalog: cat}
}

// menuItemPayload mirrors one uploaded menu row.
type menuItemPayload struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Station string          `json:"station"`
	Unit    string          `json:"unit"`
	Hidden  bool            `json:"hidden"`
}

// Current handles GET /v1/menu and returns the active version with its
// items straight from the in-memory catalog.
func (h *MenuHandler) Current(c echo.Context) error {
	snap := h.Catalog.Current()
	if snap.Version.ID == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no menu uploaded"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"version": snap.Version,
		"items":   snap.Items,
	})
}

// Versions handles GET /v1/menu/versions.
func (h *MenuHandler) Versions(c echo.Context) error {
	versions, err := h.Menus.ListVersions(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list menu versions: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"versions": versions})
}

// Upload handles POST /v1/menu.  The new version becomes active for
// all classification as soon as the swap completes; in-flight requests
// finish on the snapshot they started with.
func (h *MenuHandler) Upload(c echo.Context) error {
	var body struct {
		Note  string            `json:"note"`
		Items []menuItemPayload `json:"items"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "items are required"})
	}

	items := make([]model.MenuItem, 0, len(body.Items))
	seen := make(map[string]bool, len(body.Items))
	for _, p := range body.Items {
		p.ID = strings.TrimSpace(p.ID)
		p.Name = strings.TrimSpace(p.Name)
		p.Station = strings.TrimSpace(p.Station)
		if p.ID == "" || p.Name == "" || p.Station == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "item id, name and station are required"})
		}
		if seen[p.ID] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "duplicate item id: " + p.ID})
		}
		seen[p.ID] = true
		if p.Price.IsNegative() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
		}
		unit := model.UnitKind(p.Unit)
		if p.Unit == "" {
			unit = model.UnitPortion
		}
		switch unit {
		case model.UnitPortion, model.UnitWeight, model.UnitVolume:
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid unit for item " + p.ID})
		}
		items = append(items, model.MenuItem{
			ID:      p.ID,
			Name:    p.Name,
			Price:   p.Price,
			Station: p.Station,
			Unit:    unit,
			Hidden:  p.Hidden,
		})
	}

	version, err := h.Menus.CreateVersion(c.Request().Context(), body.Note, items)
	if err != nil {
		c.Logger().Errorf("create menu version: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store menu"})
	}
	h.Catalog.Swap(version, items)
	return c.JSON(http.StatusCreated, echo.Map{
		"version": version,
		"items":   len(items),
	})
}
