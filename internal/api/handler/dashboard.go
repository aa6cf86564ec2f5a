package handler

import (
	"net/http"

	"github.com/vendfleet/dashboard/internal/middleware"
	"github.com/vendfleet/dashboard/internal/models"
	"github.com/vendfleet/dashboard/internal/screen"
	"github.com/vendfleet/dashboard/internal/service"
)

// TechnicianView is the data of the technician dashboard
type TechnicianView struct {
	Attention screen.State[[]models.Machine]
	LowStock  screen.State[[]models.LowStockItem]
}

// PerformanceView is the data of the sales performance screens
type PerformanceView struct {
	State screen.State[*models.SalesPerformance]
	Start string
	End   string
}

// DashboardHandler serves the home screen of every role
type DashboardHandler struct {
	pages     *Pages
	analytics *service.AnalyticsService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(pages *Pages, analytics *service.AnalyticsService) *DashboardHandler {
	return &DashboardHandler{pages: pages, analytics: analytics}
}

// Home picks the dashboard of the session's role
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	v := viewer(r)

	switch middleware.GetSession(r.Context()).Role {
	case models.RoleAdmin:
		h.admin(w, r, v)
	case models.RoleTechnician:
		h.technician(w, r, v)
	case models.RoleSales:
		state := performance(r, h.analytics, v)
		h.pages.Render(w, r, http.StatusOK, "dashboard_sales", "Sales Dashboard", state)
	default:
		h.pages.Render(w, r, http.StatusForbidden, "forbidden", "Dashboard", nil)
	}
}

func (h *DashboardHandler) admin(w http.ResponseWriter, r *http.Request, v service.Viewer) {
	var state screen.State[*models.AdminDashboard]
	dash, err := h.analytics.AdminDashboard(r.Context(), v, refresh(r))
	if err != nil {
		state = screen.Failed[*models.AdminDashboard](failure(r, "admin dashboard", err, "Could not load the dashboard."))
	} else {
		state = screen.Loaded(dash, false)
	}
	h.pages.Render(w, r, http.StatusOK, "dashboard_admin", "Admin Dashboard", state)
}

func (h *DashboardHandler) technician(w http.ResponseWriter, r *http.Request, v service.Viewer) {
	var view TechnicianView
	dash, err := h.analytics.TechnicianDashboard(r.Context(), v, refresh(r))
	if err != nil {
		msg := failure(r, "technician dashboard", err, "Could not connect to the server.")
		view.Attention = screen.Failed[[]models.Machine](msg)
		view.LowStock = screen.Failed[[]models.LowStockItem](msg)
	} else {
		view.Attention = screen.List(dash.MachinesNeedingAttention, "")
		view.LowStock = screen.List(dash.LowStockItems, "")
	}
	h.pages.Render(w, r, http.StatusOK, "dashboard_technician", "Technician Operations", view)
}

// performance loads the sales performance for the query's date range
func performance(r *http.Request, analytics *service.AnalyticsService, v service.Viewer) PerformanceView {
	q := r.URL.Query()
	rng := analytics.Range(q.Get("startDate"), q.Get("endDate"))
	view := PerformanceView{
		Start: rng.Start.Format(models.DateLayout),
		End:   rng.End.Format(models.DateLayout),
	}

	perf, err := analytics.SalesPerformance(r.Context(), v, rng, refresh(r))
	if err != nil {
		view.State = screen.Failed[*models.SalesPerformance](failure(r, "sales performance", err, "Could not load sales performance."))
		return view
	}
	view.State = screen.Loaded(perf, perf.Empty())
	return view
}
