package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/ManourasM/TavernAI-sub000/internal/broadcast"
	"github.com/ManourasM/TavernAI-sub000/internal/ledger"
	"github.com/ManourasM/TavernAI-sub000/internal/repository"
)

const pongWait = 60 * time.Second

// upgrader accepts any origin; the displays live on the restaurant LAN
// and carry no credentials.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SocketHandler upgrades station displays onto their broadcast channel.
type SocketHandler struct {
	Hub      *broadcast.Registry
	Ledger   *ledger.Ledger
	Stations repository.StationRepository
}

func NewSocketHandler(hub *broadcast.Registry, l *ledger.Ledger, stations repository.StationRepository) *SocketHandler {
	return &SocketHandler{Hub: hub, Ledger: l, Stations: stations}
}

// wsCommand is what a display may send upstream: kitchen screens mark
// items done, the waiter screen can finalize a table.
type wsCommand struct {
	Action string `json:"action"`
	ItemID string `json:"item_id"`
	Table  string `json:"table"`
}

// Subscribe handles GET /ws/:station.  The client receives an init
// snapshot of everything currently on its channel, then ordered deltas.
// Reconnecting is just subscribing again.
func (h *SocketHandler) Subscribe(c echo.Context) error {
	key := c.Param("station")
	stations, err := h.Stations.List(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("ws subscribe, list stations: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	catchAll := false
	known := false
	for _, st := range stations {
		if st.Key == key {
			known = st.Active
			catchAll = st.CatchAll
			break
		}
	}
	if !known {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown station"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	client := broadcast.NewClient(key, conn)

	// Register before building the snapshot.  A delta applied in the
	// gap is buffered on the client queue and superseded by the init
	// that follows; built the other way round the delta would reach
	// nobody and the display would miss the line until reconnect.
	h.Hub.Subscribe(client)
	client.Send(broadcast.Event{
		Action: broadcast.ActionInit,
		Items:  h.Ledger.Snapshot(key, catchAll),
	})
	go client.WritePump()

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	defer h.Hub.Unsubscribe(client)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil
		}
		var cmd wsCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			continue
		}
		h.handleCommand(client, cmd)
	}
}

// handleCommand applies an upstream display command.  Failures go back
// to the issuing client only; successes broadcast through the ledger.
func (h *SocketHandler) handleCommand(client *broadcast.Client, cmd wsCommand) {
	switch cmd.Action {
	case "mark_done":
		if _, err := h.Ledger.MarkDone(cmd.ItemID); err != nil {
			client.Send(broadcast.Event{
				Action:  broadcast.ActionNotify,
				Message: "mark done failed: " + err.Error(),
			})
		}
	case "cancel":
		if _, err := h.Ledger.Cancel(cmd.ItemID); err != nil {
			client.Send(broadcast.Event{
				Action:  broadcast.ActionNotify,
				Message: "cancel failed: " + err.Error(),
			})
		}
	case "finalize_table":
		if _, err := h.Ledger.Finalize(context.Background(), cmd.Table); err != nil {
			msg := "finalize failed: " + err.Error()
			if errors.Is(err, ledger.ErrItemsPending) {
				msg = "finalize refused: items pending"
			}
			client.Send(broadcast.Event{
				Action:  broadcast.ActionNotify,
				Table:   cmd.Table,
				Message: msg,
			})
		}
	}
}
