package devbackend

import (
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/vendfleet/dashboard/internal/models"
)

// allow reports whether the caller has one of roles, answering 403 otherwise
func allow(w http.ResponseWriter, r *http.Request, roles ...models.UserRole) bool {
	role, _ := r.Context().Value(roleKey).(string)
	for _, allowed := range roles {
		if models.UserRole(role) == allowed {
			return true
		}
	}
	respondError(w, http.StatusForbidden, "Access denied for role "+role)
	return false
}

func (s *Server) listMachines(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	machines := append([]models.Machine{}, s.machines...)
	s.mu.RUnlock()

	respondJSON(w, http.StatusOK, machines)
}

func (s *Server) getMachine(w http.ResponseWriter, r *http.Request) {
	machineID := mux.Vars(r)["machineId"]

	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.machine(machineID)
	if !ok {
		respondError(w, http.StatusNotFound, "Machine not found")
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (s *Server) createMachine(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, models.RoleAdmin) {
		return
	}

	var req models.MachineRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.MachineID = strings.TrimSpace(req.MachineID)
	if req.MachineID == "" || req.Model == "" {
		respondError(w, http.StatusBadRequest, "machineId and model are required")
		return
	}
	if !req.Location.Valid() {
		respondError(w, http.StatusBadRequest, "location latitude and longitude are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.machine(req.MachineID); exists {
		respondError(w, http.StatusBadRequest, "A machine with ID "+req.MachineID+" already exists")
		return
	}

	now := s.now()
	m := models.Machine{
		ID:            uuid.NewString(),
		MachineID:     req.MachineID,
		Model:         req.Model,
		Location:      req.Location,
		Status:        models.MachineStatusOffline,
		LastHeartbeat: &now,
	}
	s.machines = append(s.machines, m)

	respondJSON(w, http.StatusCreated, m)
}

func (s *Server) machine(machineID string) (models.Machine, bool) {
	for _, m := range s.machines {
		if m.MachineID == machineID {
			return m, true
		}
	}
	return models.Machine{}, false
}

func (s *Server) listInventory(w http.ResponseWriter, r *http.Request) {
	machineID := mux.Vars(r)["machineId"]

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.machine(machineID); !ok {
		respondError(w, http.StatusNotFound, "Machine not found")
		return
	}

	items := []models.InventoryItem{}
	for _, item := range s.inventory {
		if item.MachineID == machineID {
			items = append(items, s.populate(item))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ChannelID < items[j].ChannelID })

	respondJSON(w, http.StatusOK, items)
}

func (s *Server) updateInventory(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, models.RoleAdmin, models.RoleTechnician) {
		return
	}

	itemID := mux.Vars(r)["itemId"]
	var upd models.InventoryUpdate
	if err := decode(r, &upd); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if upd.Quantity < 0 || upd.Price.IsNegative() {
		respondError(w, http.StatusBadRequest, "Quantity and price must not be negative")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.inventory {
		if item.ID != itemID {
			continue
		}
		item.Quantity = upd.Quantity
		item.Price = upd.Price
		s.inventory[i] = item
		respondJSON(w, http.StatusOK, s.populate(item))
		return
	}
	respondError(w, http.StatusNotFound, "Inventory item not found")
}

func (s *Server) assignProduct(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, models.RoleAdmin, models.RoleTechnician) {
		return
	}

	var req models.InventoryAssignment
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.MachineID == "" || req.ProductID == "" || req.ChannelID == "" {
		respondError(w, http.StatusBadRequest, "machineId, productId and channelId are required")
		return
	}
	if req.Quantity < 0 || req.Price.IsNegative() {
		respondError(w, http.StatusBadRequest, "Quantity and price must not be negative")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.machine(req.MachineID); !ok {
		respondError(w, http.StatusNotFound, "Machine not found")
		return
	}
	if _, ok := s.product(req.ProductID); !ok {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	for _, item := range s.inventory {
		if item.MachineID == req.MachineID && string(item.ChannelID) == req.ChannelID {
			respondError(w, http.StatusBadRequest, "Channel "+req.ChannelID+" is already in use")
			return
		}
	}

	item := models.InventoryItem{
		ID:        uuid.NewString(),
		MachineID: req.MachineID,
		ChannelID: models.Channel(req.ChannelID),
		Product:   models.ProductRef{ID: req.ProductID},
		Quantity:  req.Quantity,
		Price:     req.Price,
	}
	s.inventory = append(s.inventory, item)

	respondJSON(w, http.StatusCreated, s.populate(item))
}

// populate replaces the bare product id with the product's details
func (s *Server) populate(item models.InventoryItem) models.InventoryItem {
	if p, ok := s.product(item.Product.ID); ok {
		item.Product = models.ProductRef{ID: p.ID, SKU: p.SKU, Name: p.Name}
	}
	return item
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	products := append([]models.Product{}, s.products...)
	s.mu.RUnlock()

	respondJSON(w, http.StatusOK, products)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, models.RoleAdmin) {
		return
	}

	var req models.ProductRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.SKU = strings.TrimSpace(req.SKU)
	if req.Name == "" || req.SKU == "" {
		respondError(w, http.StatusBadRequest, "name and sku are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if strings.EqualFold(p.SKU, req.SKU) {
			respondError(w, http.StatusBadRequest, "A product with SKU "+req.SKU+" already exists")
			return
		}
	}

	p := models.Product{ID: uuid.NewString(), SKU: req.SKU, Name: req.Name, Description: req.Description}
	s.products = append(s.products, p)

	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) product(id string) (models.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func (s *Server) listSales(w http.ResponseWriter, r *http.Request) {
	machineID := r.URL.Query().Get("machineId")

	s.mu.RLock()
	sales := []models.Sale{}
	for _, sale := range s.sales {
		if machineID == "" || sale.MachineID == machineID {
			sales = append(sales, sale)
		}
	}
	s.mu.RUnlock()

	sort.Slice(sales, func(i, j int) bool { return sales[i].CreatedAt.After(sales[j].CreatedAt) })
	respondJSON(w, http.StatusOK, sales)
}
