package handler

import (
	"net/http"

	"github.com/vendfleet/dashboard/internal/service"
)

// AnalyticsHandler serves the sales performance screens
type AnalyticsHandler struct {
	pages     *Pages
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(pages *Pages, analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{pages: pages, analytics: analytics}
}

// Performance shows top products and machines for ?startDate=&endDate=
func (h *AnalyticsHandler) Performance(w http.ResponseWriter, r *http.Request) {
	view := performance(r, h.analytics, viewer(r))
	h.pages.Render(w, r, http.StatusOK, "analytics", "Sales Performance", view)
}

// Machines shows machine revenue for the same range
func (h *AnalyticsHandler) Machines(w http.ResponseWriter, r *http.Request) {
	view := performance(r, h.analytics, viewer(r))
	h.pages.Render(w, r, http.StatusOK, "analytics_machines", "Machine Performance", view)
}
