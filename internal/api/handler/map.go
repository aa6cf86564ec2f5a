package handler

import (
	"net/http"

	"github.com/vendfleet/dashboard/internal/screen"
	"github.com/vendfleet/dashboard/internal/service"
)

// MapView is the data of the fleet map
type MapView struct {
	Markers screen.State[[]service.Marker]
}

// MapHandler serves the fleet map and its markers
type MapHandler struct {
	pages *Pages
	fleet *service.FleetService
}

// NewMapHandler creates a new map handler
func NewMapHandler(pages *Pages, fleet *service.FleetService) *MapHandler {
	return &MapHandler{pages: pages, fleet: fleet}
}

// Page shows the map
func (h *MapHandler) Page(w http.ResponseWriter, r *http.Request) {
	var view MapView
	markers, err := h.fleet.Markers(r.Context(), viewer(r), refresh(r))
	if err != nil {
		view.Markers = screen.Failed[[]service.Marker](failure(r, "map markers", err, "Could not load machine locations."))
	} else {
		view.Markers = screen.List(markers, "")
	}

	h.pages.Render(w, r, http.StatusOK, "map", "Fleet Map", view)
}

// Markers returns the markers as JSON for the map script
func (h *MapHandler) Markers(w http.ResponseWriter, r *http.Request) {
	markers, err := h.fleet.Markers(r.Context(), viewer(r), false)
	if err != nil {
		msg := failure(r, "map markers", err, "Could not load machine locations.")
		respondJSON(w, http.StatusBadGateway, map[string]string{"msg": msg})
		return
	}
	if markers == nil {
		markers = []service.Marker{}
	}
	respondJSON(w, http.StatusOK, markers)
}
