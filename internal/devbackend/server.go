// Package devbackend is an in-memory fleet backend with seeded data. It
// serves the same REST contract as the production backend and is used for
// local development and end-to-end tests.
package devbackend

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/vendfleet/dashboard/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Config holds the dev backend settings
type Config struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
	Now        func() time.Time
}

// Server is the in-memory backend
type Server struct {
	router *mux.Router
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	users     []user
	machines  []models.Machine
	products  []models.Product
	inventory []models.InventoryItem
	sales     []models.Sale
}

// New creates a seeded backend
func New(cfg Config) (*Server, error) {
	if cfg.Secret == "" {
		cfg.Secret = "devbackend-secret"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	users, err := seedUsers(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := cfg.Now()
	products := seedProducts()
	s := &Server{
		router:    mux.NewRouter(),
		secret:    []byte(cfg.Secret),
		ttl:       cfg.TokenTTL,
		now:       cfg.Now,
		users:     users,
		machines:  seedMachines(now),
		products:  products,
		inventory: seedInventory(products),
		sales:     seedSales(now),
	}
	s.setupRoutes()
	return s, nil
}

// ServeHTTP implements the http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/users/login", s.handleLogin).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(s.requireToken)

	protected.HandleFunc("/machines", s.listMachines).Methods(http.MethodGet)
	protected.HandleFunc("/machines", s.createMachine).Methods(http.MethodPost)
	protected.HandleFunc("/machines/{machineId}", s.getMachine).Methods(http.MethodGet)
	protected.HandleFunc("/machines/{machineId}/inventory", s.listInventory).Methods(http.MethodGet)

	protected.HandleFunc("/inventory", s.assignProduct).Methods(http.MethodPost)
	protected.HandleFunc("/inventory/{itemId}", s.updateInventory).Methods(http.MethodPatch)

	protected.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
	protected.HandleFunc("/products", s.createProduct).Methods(http.MethodPost)

	protected.HandleFunc("/sales", s.listSales).Methods(http.MethodGet)

	protected.HandleFunc("/analytics/sales-performance", s.salesPerformance).Methods(http.MethodGet)
	protected.HandleFunc("/analytics/admin-dashboard", s.adminDashboard).Methods(http.MethodGet)
	protected.HandleFunc("/analytics/technician-dashboard", s.technicianDashboard).Methods(http.MethodGet)
}

// respondJSON writes v as a JSON response
func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// respondError writes the {msg} error body the dashboard reads
func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, map[string]string{"msg": msg})
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
