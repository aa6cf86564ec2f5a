package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TopProduct is a product ranked by revenue. ID carries the product name.
type TopProduct struct {
	ID             string          `json:"_id"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TotalUnitsSold int             `json:"totalUnitsSold"`
}

// TopMachine is a machine ranked by revenue. ID carries the machine id.
type TopMachine struct {
	ID           string          `json:"_id"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalSales   int             `json:"totalSales"`
}

// SalesPerformance is returned by /api/analytics/sales-performance
type SalesPerformance struct {
	TopProducts []TopProduct `json:"topProducts"`
	TopMachines []TopMachine `json:"topMachines"`
}

// Empty reports whether neither ranking has entries
func (p SalesPerformance) Empty() bool {
	return len(p.TopProducts) == 0 && len(p.TopMachines) == 0
}

// KPIs are the headline numbers of the admin dashboard
type KPIs struct {
	TotalRevenueToday        decimal.Decimal `json:"totalRevenueToday"`
	RevenueChangeVsYesterday float64         `json:"revenueChangeVsYesterday"`
	TotalUnitsToday          int             `json:"totalUnitsToday"`
	AverageTicket            decimal.Decimal `json:"ticketPromedio"`
	LowStockItemsCount       int             `json:"lowStockItemsCount"`
}

// NetworkStatus counts machines by status
type NetworkStatus struct {
	Total       int `json:"total"`
	Online      int `json:"online"`
	Offline     int `json:"offline"`
	Maintenance int `json:"maintenance"`
}

// DailyRevenue is one bar of the seven day chart. ID is the date (2006-01-02).
type DailyRevenue struct {
	ID      string          `json:"_id"`
	Revenue decimal.Decimal `json:"revenue"`
}

// RecentSale is a sale listed in the activity feed
type RecentSale struct {
	ID        string     `json:"_id"`
	MachineID string     `json:"machineId"`
	Items     []SaleItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Total sums the items of the recent sale
func (s RecentSale) Total() decimal.Decimal {
	return Sale{Items: s.Items}.Total()
}

// CriticalAlert is a machine listed in the activity feed
type CriticalAlert struct {
	ID            string        `json:"_id"`
	MachineID     string        `json:"machineId"`
	Status        MachineStatus `json:"status"`
	LastHeartbeat *time.Time    `json:"lastHeartbeat,omitempty"`
}

// RecentActivity groups the latest sales and alerts
type RecentActivity struct {
	Sales  []RecentSale    `json:"sales"`
	Alerts []CriticalAlert `json:"alerts"`
}

// Empty reports whether there is nothing to show in the feed
func (a RecentActivity) Empty() bool {
	return len(a.Sales) == 0 && len(a.Alerts) == 0
}

// AdminDashboard is returned by /api/analytics/admin-dashboard
type AdminDashboard struct {
	KPIs           KPIs           `json:"kpis"`
	NetworkStatus  NetworkStatus  `json:"networkStatus"`
	SalesLast7Days []DailyRevenue `json:"salesLast7Days"`
	RecentActivity RecentActivity `json:"recentActivity"`
}

// LowStockItem is an inventory item under the low stock threshold
type LowStockItem struct {
	ID        string     `json:"_id"`
	MachineID string     `json:"machineId"`
	ChannelID Channel    `json:"channelId"`
	Product   ProductRef `json:"productId"`
	Quantity  int        `json:"quantity"`
}

// TechnicianDashboard is returned by /api/analytics/technician-dashboard
type TechnicianDashboard struct {
	MachinesNeedingAttention []Machine      `json:"machinesNeedingAttention"`
	LowStockItems            []LowStockItem `json:"lowStockItems"`
}

// Empty reports whether the technician has nothing to do
func (d TechnicianDashboard) Empty() bool {
	return len(d.MachinesNeedingAttention) == 0 && len(d.LowStockItems) == 0
}

// DateRange filters sales performance. Zero values mean unbounded.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DateLayout is the format of the startDate and endDate query parameters
const DateLayout = "2006-01-02"

// LastDays returns the range ending today and starting n days earlier
func LastDays(now time.Time, n int) DateRange {
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return DateRange{Start: end.AddDate(0, 0, -n), End: end}
}

// String renders the range as "start..end", leaving unbounded ends empty
func (r DateRange) String() string {
	var from, to string
	if !r.Start.IsZero() {
		from = r.Start.Format(DateLayout)
	}
	if !r.End.IsZero() {
		to = r.End.Format(DateLayout)
	}
	return from + ".." + to
}
