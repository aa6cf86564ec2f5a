package devbackend

import (
	"net/http"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vendfleet/dashboard/internal/models"
)

const (
	topN           = 10
	recentSalesN   = 5
	revenueDaysN   = 7
	percentageBase = 100
)

func (s *Server) salesPerformance(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var from, to time.Time
	if v := query.Get("startDate"); v != "" {
		t, err := time.ParseInLocation(models.DateLayout, v, s.now().Location())
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid startDate")
			return
		}
		from = t
	}
	if v := query.Get("endDate"); v != "" {
		t, err := time.ParseInLocation(models.DateLayout, v, s.now().Location())
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid endDate")
			return
		}
		to = t.AddDate(0, 0, 1)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	products := map[string]*models.TopProduct{}
	machines := map[string]*models.TopMachine{}
	for _, sale := range s.sales {
		if sale.Status != models.SaleStatusApproved {
			continue
		}
		if !from.IsZero() && sale.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !sale.CreatedAt.Before(to) {
			continue
		}

		tm, ok := machines[sale.MachineID]
		if !ok {
			tm = &models.TopMachine{ID: sale.MachineID}
			machines[sale.MachineID] = tm
		}
		tm.TotalSales++
		tm.TotalRevenue = tm.TotalRevenue.Add(sale.Total())

		for _, item := range sale.Items {
			tp, ok := products[item.Name]
			if !ok {
				tp = &models.TopProduct{ID: item.Name}
				products[item.Name] = tp
			}
			tp.TotalUnitsSold += item.Quantity
			tp.TotalRevenue = tp.TotalRevenue.Add(item.Subtotal())
		}
	}

	perf := models.SalesPerformance{
		TopProducts: []models.TopProduct{},
		TopMachines: []models.TopMachine{},
	}
	for _, p := range products {
		perf.TopProducts = append(perf.TopProducts, *p)
	}
	for _, m := range machines {
		perf.TopMachines = append(perf.TopMachines, *m)
	}
	sort.Slice(perf.TopProducts, func(i, j int) bool {
		return perf.TopProducts[i].TotalRevenue.GreaterThan(perf.TopProducts[j].TotalRevenue)
	})
	sort.Slice(perf.TopMachines, func(i, j int) bool {
		return perf.TopMachines[i].TotalRevenue.GreaterThan(perf.TopMachines[j].TotalRevenue)
	})
	if len(perf.TopProducts) > topN {
		perf.TopProducts = perf.TopProducts[:topN]
	}
	if len(perf.TopMachines) > topN {
		perf.TopMachines = perf.TopMachines[:topN]
	}

	respondJSON(w, http.StatusOK, perf)
}

func (s *Server) adminDashboard(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, models.RoleAdmin) {
		return
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var dash models.AdminDashboard
	revenueYesterday := decimal.Zero
	salesToday := 0
	daily := map[string]decimal.Decimal{}

	for _, sale := range s.sales {
		if sale.Status != models.SaleStatusApproved {
			continue
		}
		total := sale.Total()
		switch {
		case !sale.CreatedAt.Before(today):
			dash.KPIs.TotalRevenueToday = dash.KPIs.TotalRevenueToday.Add(total)
			salesToday++
			for _, item := range sale.Items {
				dash.KPIs.TotalUnitsToday += item.Quantity
			}
		case !sale.CreatedAt.Before(yesterday):
			revenueYesterday = revenueYesterday.Add(total)
		}
		if !sale.CreatedAt.Before(today.AddDate(0, 0, -(revenueDaysN - 1))) {
			day := sale.CreatedAt.In(now.Location()).Format(models.DateLayout)
			daily[day] = daily[day].Add(total)
		}
	}

	if salesToday > 0 {
		dash.KPIs.AverageTicket = dash.KPIs.TotalRevenueToday.Div(decimal.NewFromInt(int64(salesToday))).Round(2)
	}
	if revenueYesterday.IsPositive() {
		change := dash.KPIs.TotalRevenueToday.Sub(revenueYesterday).
			Div(revenueYesterday).
			Mul(decimal.NewFromInt(percentageBase)).
			Round(1)
		dash.KPIs.RevenueChangeVsYesterday = change.InexactFloat64()
	}
	for _, item := range s.inventory {
		if item.LowStock() {
			dash.KPIs.LowStockItemsCount++
		}
	}

	for _, m := range s.machines {
		dash.NetworkStatus.Total++
		switch m.Status {
		case models.MachineStatusOnline:
			dash.NetworkStatus.Online++
		case models.MachineStatusOffline:
			dash.NetworkStatus.Offline++
		case models.MachineStatusMaintenance:
			dash.NetworkStatus.Maintenance++
		}
	}

	dash.SalesLast7Days = []models.DailyRevenue{}
	for i := revenueDaysN - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(models.DateLayout)
		dash.SalesLast7Days = append(dash.SalesLast7Days, models.DailyRevenue{ID: day, Revenue: daily[day]})
	}

	recent := append([]models.Sale{}, s.sales...)
	sort.Slice(recent, func(i, j int) bool { return recent[i].CreatedAt.After(recent[j].CreatedAt) })
	if len(recent) > recentSalesN {
		recent = recent[:recentSalesN]
	}
	dash.RecentActivity.Sales = []models.RecentSale{}
	for _, sale := range recent {
		dash.RecentActivity.Sales = append(dash.RecentActivity.Sales, models.RecentSale{
			ID:        sale.ID,
			MachineID: sale.MachineID,
			Items:     sale.Items,
			CreatedAt: sale.CreatedAt,
		})
	}
	dash.RecentActivity.Alerts = []models.CriticalAlert{}
	for _, m := range s.machines {
		if m.NeedsAttention() || m.Status == models.MachineStatusError {
			dash.RecentActivity.Alerts = append(dash.RecentActivity.Alerts, models.CriticalAlert{
				ID:            m.ID,
				MachineID:     m.MachineID,
				Status:        m.Status,
				LastHeartbeat: m.LastHeartbeat,
			})
		}
	}

	respondJSON(w, http.StatusOK, dash)
}

func (s *Server) technicianDashboard(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, models.RoleAdmin, models.RoleTechnician) {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dash := models.TechnicianDashboard{
		MachinesNeedingAttention: models.MachinesNeedingAttention(s.machines),
		LowStockItems:            []models.LowStockItem{},
	}
	for _, item := range s.inventory {
		if !item.LowStock() {
			continue
		}
		item = s.populate(item)
		dash.LowStockItems = append(dash.LowStockItems, models.LowStockItem{
			ID:        item.ID,
			MachineID: item.MachineID,
			ChannelID: item.ChannelID,
			Product:   item.Product,
			Quantity:  item.Quantity,
		})
	}

	respondJSON(w, http.StatusOK, dash)
}
