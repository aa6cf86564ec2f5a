package devbackend

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vendfleet/dashboard/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// SeedPassword is the password of every seeded user
const SeedPassword = "vendfleet"

// Seeded user emails, one per role
const (
	AdminEmail      = "admin@vendfleet.local"
	TechnicianEmail = "tech@vendfleet.local"
	SalesEmail      = "sales@vendfleet.local"
)

type user struct {
	ID           string
	Email        string
	Name         string
	Role         models.UserRole
	PasswordHash []byte
}

func seedUsers(cost int) ([]user, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}

	return []user{
		{ID: uuid.NewString(), Email: AdminEmail, Name: "Ana Admin", Role: models.RoleAdmin, PasswordHash: hash},
		{ID: uuid.NewString(), Email: TechnicianEmail, Name: "Tomas Tech", Role: models.RoleTechnician, PasswordHash: hash},
		{ID: uuid.NewString(), Email: SalesEmail, Name: "Sara Sales", Role: models.RoleSales, PasswordHash: hash},
	}, nil
}

func coord(f float64) *float64 {
	return &f
}

func seedMachines(now time.Time) []models.Machine {
	beat := now.Add(-2 * time.Minute)
	stale := now.Add(-6 * time.Hour)

	return []models.Machine{
		{ID: uuid.NewString(), MachineID: "VM-001", Model: "Vendo 721", Status: models.MachineStatusOnline, LastHeartbeat: &beat,
			Location: models.Location{Name: "Central Station", Latitude: coord(-33.4489), Longitude: coord(-70.6693)}},
		{ID: uuid.NewString(), MachineID: "VM-002", Model: "Vendo 721", Status: models.MachineStatusOnline, LastHeartbeat: &beat,
			Location: models.Location{Name: "University Hall", Latitude: coord(-33.4569), Longitude: coord(-70.6483)}},
		{ID: uuid.NewString(), MachineID: "VM-003", Model: "Snackmaster 300", Status: models.MachineStatusOffline, LastHeartbeat: &stale,
			Location: models.Location{Name: "Airport Gate B", Latitude: coord(-33.3930), Longitude: coord(-70.7858)}},
		{ID: uuid.NewString(), MachineID: "VM-004", Model: "Snackmaster 300", Status: models.MachineStatusMaintenance, LastHeartbeat: &stale,
			Location: models.Location{Name: "Hospital Lobby", Latitude: coord(-33.4372), Longitude: coord(-70.6506)}},
	}
}

func seedProducts() []models.Product {
	return []models.Product{
		{ID: uuid.NewString(), SKU: "BEV-001", Name: "Cola", Description: "Cola 350ml can"},
		{ID: uuid.NewString(), SKU: "BEV-002", Name: "Water", Description: "Still water 500ml"},
		{ID: uuid.NewString(), SKU: "SNK-001", Name: "Chips", Description: "Salted potato chips"},
		{ID: uuid.NewString(), SKU: "SNK-002", Name: "Chocolate Bar", Description: "Milk chocolate 45g"},
	}
}

type seedSlot struct {
	machine  string
	channel  string
	product  int
	quantity int
	price    string
}

var seedSlots = []seedSlot{
	{"VM-001", "A1", 0, 12, "1.50"},
	{"VM-001", "A2", 1, 3, "1.00"},
	{"VM-001", "B1", 2, 8, "2.00"},
	{"VM-002", "A1", 0, 20, "1.50"},
	{"VM-002", "B1", 3, 2, "2.50"},
	{"VM-003", "A1", 1, 0, "1.00"},
	{"VM-004", "A1", 2, 15, "2.00"},
}

func seedInventory(products []models.Product) []models.InventoryItem {
	items := make([]models.InventoryItem, 0, len(seedSlots))
	for _, slot := range seedSlots {
		items = append(items, models.InventoryItem{
			ID:        uuid.NewString(),
			MachineID: slot.machine,
			ChannelID: models.Channel(slot.channel),
			Product:   models.ProductRef{ID: products[slot.product].ID},
			Quantity:  slot.quantity,
			Price:     decimal.RequireFromString(slot.price),
		})
	}
	return items
}

// seedSales spreads a fixed pattern of sales over the last ten days
func seedSales(now time.Time) []models.Sale {
	type line struct {
		name  string
		price string
	}
	catalogue := []line{{"Cola", "1.50"}, {"Water", "1.00"}, {"Chips", "2.00"}, {"Chocolate Bar", "2.50"}}
	machines := []string{"VM-001", "VM-002", "VM-001", "VM-004"}
	statuses := []models.SaleStatus{
		models.SaleStatusApproved, models.SaleStatusApproved, models.SaleStatusApproved,
		models.SaleStatusPending, models.SaleStatusApproved, models.SaleStatusRejected,
	}

	var sales []models.Sale
	n := 0
	for day := 9; day >= 0; day-- {
		for i := 0; i < 3; i++ {
			first := catalogue[n%len(catalogue)]
			second := catalogue[(n+1)%len(catalogue)]
			sales = append(sales, models.Sale{
				ID:            uuid.NewString(),
				TransactionID: uuid.NewString(),
				MachineID:     machines[n%len(machines)],
				Status:        statuses[n%len(statuses)],
				CreatedAt:     now.AddDate(0, 0, -day).Add(-time.Duration(i+1) * time.Hour),
				Items: []models.SaleItem{
					{Name: first.name, Quantity: 1 + n%3, Price: decimal.RequireFromString(first.price)},
					{Name: second.name, Quantity: 1, Price: decimal.RequireFromString(second.price)},
				},
			})
			n++
		}
	}
	return sales
}
