package service

import (
	"context"
	"time"

	"github.com/vendfleet/dashboard/internal/backend"
	"github.com/vendfleet/dashboard/internal/models"
	"github.com/vendfleet/dashboard/internal/screen"
)

// DefaultRangeDays is the analytics window used when no dates are given
const DefaultRangeDays = 30

// AnalyticsService serves the role dashboards and the analytics screens
type AnalyticsService struct {
	client      *backend.Client
	admin       *screen.Loader[*models.AdminDashboard]
	technician  *screen.Loader[*models.TechnicianDashboard]
	performance *screen.Loader[*models.SalesPerformance]
	now         func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(client *backend.Client, cache *screen.Cache, staleAfter time.Duration) *AnalyticsService {
	return &AnalyticsService{
		client:      client,
		admin:       screen.NewLoader[*models.AdminDashboard](cache, "dashboard:admin", staleAfter),
		technician:  screen.NewLoader[*models.TechnicianDashboard](cache, "dashboard:technician", staleAfter),
		performance: screen.NewLoader[*models.SalesPerformance](cache, "sales-performance", staleAfter),
		now:         time.Now,
	}
}

// AdminDashboard returns KPIs, network status, revenue and activity
func (s *AnalyticsService) AdminDashboard(ctx context.Context, v Viewer, refresh bool) (*models.AdminDashboard, error) {
	return s.admin.Load(ctx, v.SessionID, "", refresh, func(ctx context.Context) (*models.AdminDashboard, error) {
		return s.client.AdminDashboard(ctx, v.token())
	})
}

// TechnicianDashboard returns machines needing attention and low stock items
func (s *AnalyticsService) TechnicianDashboard(ctx context.Context, v Viewer, refresh bool) (*models.TechnicianDashboard, error) {
	return s.technician.Load(ctx, v.SessionID, "", refresh, func(ctx context.Context) (*models.TechnicianDashboard, error) {
		return s.client.TechnicianDashboard(ctx, v.token())
	})
}

// PollTechnicianDashboard refetches the technician dashboard for a live view
func (s *AnalyticsService) PollTechnicianDashboard(ctx context.Context, v Viewer) (*models.TechnicianDashboard, error) {
	return s.TechnicianDashboard(ctx, v, true)
}

// SalesPerformance returns top products and machines within a date range
func (s *AnalyticsService) SalesPerformance(ctx context.Context, v Viewer, r models.DateRange, refresh bool) (*models.SalesPerformance, error) {
	return s.performance.Load(ctx, v.SessionID, r.String(), refresh, func(ctx context.Context) (*models.SalesPerformance, error) {
		return s.client.SalesPerformance(ctx, v.token(), r)
	})
}

// Range parses the startDate and endDate query values. Missing or invalid
// values fall back to the last DefaultRangeDays days.
func (s *AnalyticsService) Range(start, end string) models.DateRange {
	def := models.LastDays(s.now(), DefaultRangeDays)

	from, err := time.Parse(models.DateLayout, start)
	if err != nil {
		return def
	}
	to, err := time.Parse(models.DateLayout, end)
	if err != nil || to.Before(from) {
		return def
	}
	return models.DateRange{Start: from, End: to}
}
