package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ManourasM/TavernAI-sub000/internal/broadcast"
	"github.com/ManourasM/TavernAI-sub000/internal/model"
	"github.com/ManourasM/TavernAI-sub000/internal/repository"
)

// StationHandler serves the runtime station registry.  Stations are
// created while the restaurant is running; the broadcaster learns
// about catch-all changes immediately via the reload.
type StationHandler struct {
	Stations repository.StationRepository
	Hub      *broadcast.Registry
}

func NewStationHandler(stations repository.StationRepository, hub *broadcast.Registry) *StationHandler {
	return &StationHandler{Stations: stations, Hub: hub}
}

// List handles GET /v1/stations.
func (h *StationHandler) List(c echo.Context) error {
	stations, err := h.Stations.List(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list stations: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"stations": stations})
}

// Create handles POST /v1/stations.
func (h *StationHandler) Create(c echo.Context) error {
	var body struct {
		Key      string `json:"key"`
		Name     string `json:"name"`
		CatchAll bool   `json:"catch_all"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Key = strings.ToLower(strings.TrimSpace(body.Key))
	body.Name = strings.TrimSpace(body.Name)
	if body.Key == "" || body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "key and name are required"})
	}

	st := &model.Station{Key: body.Key, Name: body.Name, CatchAll: body.CatchAll, Active: true}
	if err := h.Stations.Create(c.Request().Context(), st); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "station key already exists"})
		}
		c.Logger().Errorf("create station: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create station"})
	}
	if err := h.reloadCatchAll(c.Request().Context()); err != nil {
		c.Logger().Warnf("reload catch-all stations: %v", err)
	}
	return c.JSON(http.StatusCreated, st)
}

// SetActive handles PATCH /v1/stations/:key.  Deactivated stations
// keep their history but stop being valid targets for new items.
func (h *StationHandler) SetActive(c echo.Context) error {
	var body struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	key := c.Param("key")
	if err := h.Stations.SetActive(c.Request().Context(), key, body.Active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
		}
		c.Logger().Errorf("set station active: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if err := h.reloadCatchAll(c.Request().Context()); err != nil {
		c.Logger().Warnf("reload catch-all stations: %v", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"key": key, "active": body.Active})
}

// reloadCatchAll pushes the current catch-all set into the broadcaster.
func (h *StationHandler) reloadCatchAll(ctx context.Context) error {
	stations, err := h.Stations.List(ctx)
	if err != nil {
		return err
	}
	var keys []string
	for _, st := range stations {
		if st.CatchAll && st.Active {
			keys = append(keys, st.Key)
		}
	}
	h.Hub.SetCatchAll(keys)
	return nil
}
