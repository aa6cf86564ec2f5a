package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/vendfleet/dashboard/internal/backend"
	"github.com/vendfleet/dashboard/internal/session"
	"github.com/vendfleet/dashboard/internal/websockets"
)

// Pinger checks the connection of the session database
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler reports liveness and readiness
type HealthHandler struct {
	store    *session.Store
	client   *backend.Client
	hub      *websockets.Hub
	database Pinger
}

// NewHealthHandler creates a new health handler. database is nil when
// sessions are kept in memory.
func NewHealthHandler(store *session.Store, client *backend.Client, hub *websockets.Hub, database Pinger) *HealthHandler {
	return &HealthHandler{store: store, client: client, hub: hub, database: database}
}

// Health answers 200 once sessions are restored and their database answers,
// 503 otherwise
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	storage := "memory"

	if h.database != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		storage = "ok"
		if err := h.database.HealthCheck(ctx); err != nil {
			log.Printf("Session database health check failed: %v", err)
			storage = "unreachable"
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	if !h.store.Ready() {
		status, code = "starting", http.StatusServiceUnavailable
	}

	respondJSON(w, code, map[string]any{
		"status":            status,
		"sessionStorage":    storage,
		"backendConfigured": h.client.Configured(),
		"liveConnections":   h.hub.Count(),
	})
}
