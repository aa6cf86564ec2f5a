package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vendfleet/dashboard/internal/backend"
	"github.com/vendfleet/dashboard/internal/models"
	"github.com/vendfleet/dashboard/internal/reconcile"
	"github.com/vendfleet/dashboard/internal/screen"
)

// Form keys of the fleet screens
const (
	FormMachine = "machine"
	FormProduct = "product"
)

// FleetService serves machines, products and sales
type FleetService struct {
	client   *backend.Client
	forms    *screen.FormStore
	machines *screen.Loader[[]models.Machine]
	machine  *screen.Loader[*models.Machine]
	products *screen.Loader[[]models.Product]
	sales    *screen.Loader[[]models.Sale]
}

// NewFleetService creates a new fleet service
func NewFleetService(client *backend.Client, cache *screen.Cache, forms *screen.FormStore, staleAfter time.Duration) *FleetService {
	return &FleetService{
		client:   client,
		forms:    forms,
		machines: screen.NewLoader[[]models.Machine](cache, "machines", staleAfter),
		machine:  screen.NewLoader[*models.Machine](cache, "machine", staleAfter),
		products: screen.NewLoader[[]models.Product](cache, "products", staleAfter),
		sales:    screen.NewLoader[[]models.Sale](cache, "sales", staleAfter),
	}
}

// Machines lists the fleet
func (s *FleetService) Machines(ctx context.Context, v Viewer, refresh bool) ([]models.Machine, error) {
	return s.machines.Load(ctx, v.SessionID, "", refresh, func(ctx context.Context) ([]models.Machine, error) {
		return s.client.ListMachines(ctx, v.token())
	})
}

// PollMachines fetches the fleet for a live view and stores the result
func (s *FleetService) PollMachines(ctx context.Context, v Viewer) ([]models.Machine, error) {
	return s.Machines(ctx, v, true)
}

// Machine returns one machine by its business id
func (s *FleetService) Machine(ctx context.Context, v Viewer, machineID string, refresh bool) (*models.Machine, error) {
	return s.machine.Load(ctx, v.SessionID, machineID, refresh, func(ctx context.Context) (*models.Machine, error) {
		return s.client.GetMachine(ctx, v.token(), machineID)
	})
}

// Marker is a machine placed on the fleet map
type Marker struct {
	ID        string               `json:"id"`
	MachineID string               `json:"machineId"`
	Name      string               `json:"name,omitempty"`
	Status    models.MachineStatus `json:"status"`
	Latitude  float64              `json:"latitude"`
	Longitude float64              `json:"longitude"`
}

// Markers returns the machines that have coordinates
func (s *FleetService) Markers(ctx context.Context, v Viewer, refresh bool) ([]Marker, error) {
	machines, err := s.Machines(ctx, v, refresh)
	if err != nil {
		return nil, err
	}

	markers := make([]Marker, 0, len(machines))
	for _, m := range machines {
		if !m.HasLocation() {
			continue
		}
		markers = append(markers, Marker{
			ID:        m.ID,
			MachineID: m.MachineID,
			Name:      m.Location.Name,
			Status:    m.Status,
			Latitude:  *m.Location.Latitude,
			Longitude: *m.Location.Longitude,
		})
	}
	return markers, nil
}

// CreateMachine validates the machine form, creates the machine and merges
// it into the cached fleet. On failure the form stays open.
func (s *FleetService) CreateMachine(ctx context.Context, v Viewer, values map[string]string) (*models.Machine, error) {
	machine, err := s.createMachine(ctx, v, values)
	if err != nil {
		s.forms.Fail(v.SessionID, FormMachine, values, Message(err, "Could not create the machine."))
		return nil, err
	}

	s.machines.Update(v.SessionID, "", func(ms []models.Machine) []models.Machine {
		return reconcile.Merge(ms, *machine)
	})
	s.forms.Close(v.SessionID, FormMachine)
	return machine, nil
}

func (s *FleetService) createMachine(ctx context.Context, v Viewer, values map[string]string) (*models.Machine, error) {
	if err := screen.Required(values, "machineId", "model", "latitude", "longitude"); err != nil {
		return nil, err
	}

	lat, err := parseCoordinate(values["latitude"], 90)
	if err != nil {
		return nil, &ValidationError{Msg: "Latitude must be a number between -90 and 90."}
	}
	lng, err := parseCoordinate(values["longitude"], 180)
	if err != nil {
		return nil, &ValidationError{Msg: "Longitude must be a number between -180 and 180."}
	}

	req := models.MachineRequest{
		MachineID: strings.TrimSpace(values["machineId"]),
		Model:     strings.TrimSpace(values["model"]),
		Location: models.Location{
			Name:      strings.TrimSpace(values["locationName"]),
			Latitude:  &lat,
			Longitude: &lng,
		},
	}

	machine, err := s.client.CreateMachine(ctx, v.token(), req)
	if err != nil {
		return nil, fmt.Errorf("failed to create machine: %w", err)
	}
	return machine, nil
}

func parseCoordinate(s string, limit float64) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if f < -limit || f > limit {
		return 0, fmt.Errorf("coordinate %v out of range", f)
	}
	return f, nil
}

// Products lists the catalogue
func (s *FleetService) Products(ctx context.Context, v Viewer, refresh bool) ([]models.Product, error) {
	return s.products.Load(ctx, v.SessionID, "", refresh, func(ctx context.Context) ([]models.Product, error) {
		return s.client.ListProducts(ctx, v.token())
	})
}

// CreateProduct validates the product form, creates the product and merges
// it into the cached catalogue
func (s *FleetService) CreateProduct(ctx context.Context, v Viewer, values map[string]string) (*models.Product, error) {
	product, err := s.createProduct(ctx, v, values)
	if err != nil {
		s.forms.Fail(v.SessionID, FormProduct, values, Message(err, "Could not create the product."))
		return nil, err
	}

	s.products.Update(v.SessionID, "", func(ps []models.Product) []models.Product {
		return reconcile.Merge(ps, *product)
	})
	s.forms.Close(v.SessionID, FormProduct)
	return product, nil
}

func (s *FleetService) createProduct(ctx context.Context, v Viewer, values map[string]string) (*models.Product, error) {
	if err := screen.Required(values, "name", "sku"); err != nil {
		return nil, err
	}

	req := models.ProductRequest{
		Name:        strings.TrimSpace(values["name"]),
		SKU:         strings.TrimSpace(values["sku"]),
		Description: strings.TrimSpace(values["description"]),
	}

	product, err := s.client.CreateProduct(ctx, v.token(), req)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Sales lists sales, optionally for a single machine
func (s *FleetService) Sales(ctx context.Context, v Viewer, machineID string, refresh bool) ([]models.Sale, error) {
	return s.sales.Load(ctx, v.SessionID, machineID, refresh, func(ctx context.Context) ([]models.Sale, error) {
		return s.client.ListSales(ctx, v.token(), machineID)
	})
}

// OpenForm opens a create form
func (s *FleetService) OpenForm(v Viewer, key string) {
	s.forms.Open(v.SessionID, key)
}

// CloseForm closes a create form without submitting it
func (s *FleetService) CloseForm(v Viewer, key string) {
	s.forms.Close(v.SessionID, key)
}

// Form returns the state of a create form
func (s *FleetService) Form(v Viewer, key string) screen.Form {
	return s.forms.Get(v.SessionID, key)
}
