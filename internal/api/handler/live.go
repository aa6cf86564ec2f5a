package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/vendfleet/dashboard/internal/models"
	"github.com/vendfleet/dashboard/internal/service"
	"github.com/vendfleet/dashboard/internal/websockets"
)

// LiveHandler upgrades live views to a WebSocket that pushes fresh data
type LiveHandler struct {
	hub       *websockets.Hub
	fleet     *service.FleetService
	refresh   time.Duration
	attention time.Duration
}

// NewLiveHandler creates a new live handler. Machine lists refresh every
// refresh interval; the attention view uses the technician interval.
func NewLiveHandler(hub *websockets.Hub, fleet *service.FleetService, refresh, attention time.Duration) *LiveHandler {
	if refresh <= 0 {
		refresh = 10 * time.Second
	}
	if attention <= 0 {
		attention = 30 * time.Second
	}
	return &LiveHandler{hub: hub, fleet: fleet, refresh: refresh, attention: attention}
}

// Machines streams the fleet. ?view=attention keeps only offline and
// maintenance machines.
func (h *LiveHandler) Machines(w http.ResponseWriter, r *http.Request) {
	v := viewer(r)
	feed := websockets.Feed{
		Type:     websockets.TypeMachines,
		Interval: h.refresh,
		Fetch: func(ctx context.Context) (any, error) {
			return h.fleet.PollMachines(ctx, v)
		},
		Message: func(err error) string {
			return service.Message(err, "Could not connect to the server.")
		},
	}

	if r.URL.Query().Get("view") == "attention" {
		feed.Interval = h.attention
		feed.Fetch = func(ctx context.Context) (any, error) {
			machines, err := h.fleet.PollMachines(ctx, v)
			if err != nil {
				return nil, err
			}
			return models.MachinesNeedingAttention(machines), nil
		}
	}

	conn, err := websockets.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	websockets.ServeWs(h.hub, conn, v.SessionID, feed)
}
