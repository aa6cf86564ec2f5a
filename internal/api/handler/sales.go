package handler

import (
	"net/http"

	"github.com/vendfleet/dashboard/internal/models"
	"github.com/vendfleet/dashboard/internal/screen"
	"github.com/vendfleet/dashboard/internal/service"
)

// SalesHandler lists the sales of the whole fleet
type SalesHandler struct {
	pages *Pages
	fleet *service.FleetService
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(pages *Pages, fleet *service.FleetService) *SalesHandler {
	return &SalesHandler{pages: pages, fleet: fleet}
}

// List shows every sale
func (h *SalesHandler) List(w http.ResponseWriter, r *http.Request) {
	var view SalesView
	sales, err := h.fleet.Sales(r.Context(), viewer(r), "", refresh(r))
	if err != nil {
		view.Sales = screen.Failed[[]models.Sale](failure(r, "list sales", err, "Could not load sales."))
	} else {
		view.Sales = screen.List(sales, "")
	}

	h.pages.Render(w, r, http.StatusOK, "sales", "Sales", view)
}
