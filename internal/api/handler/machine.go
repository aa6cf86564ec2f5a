package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/vendfleet/dashboard/internal/api"
	"github.com/vendfleet/dashboard/internal/models"
	"github.com/vendfleet/dashboard/internal/screen"
	"github.com/vendfleet/dashboard/internal/service"
	"golang.org/x/sync/errgroup"
)

// MachinesView is the data of the machine list
type MachinesView struct {
	Machines  screen.State[[]models.Machine]
	Form      screen.Form
	CanCreate bool
}

// MachineView is the data of the machine detail screen
type MachineView struct {
	MachineID  string
	Machine    screen.State[*models.Machine]
	Inventory  screen.State[[]service.Row]
	Products   []models.Product
	AssignForm screen.Form
	CanEdit    bool
}

// SalesView is the data of the sales lists
type SalesView struct {
	MachineID string
	Sales     screen.State[[]models.Sale]
}

// MachineHandler handles the machine screens and the inventory editor
type MachineHandler struct {
	pages     *Pages
	fleet     *service.FleetService
	inventory *service.InventoryService
}

// NewMachineHandler creates a new machine handler
func NewMachineHandler(pages *Pages, fleet *service.FleetService, inventory *service.InventoryService) *MachineHandler {
	return &MachineHandler{pages: pages, fleet: fleet, inventory: inventory}
}

// List shows the fleet. ?new=1 opens the create form.
func (h *MachineHandler) List(w http.ResponseWriter, r *http.Request) {
	v := viewer(r)
	canCreate := hasRole(r, models.RoleAdmin)

	if canCreate && r.URL.Query().Get("new") != "" {
		h.fleet.OpenForm(v, service.FormMachine)
	} else {
		h.fleet.CloseForm(v, service.FormMachine)
	}

	view := MachinesView{CanCreate: canCreate, Form: h.fleet.Form(v, service.FormMachine)}
	machines, err := h.fleet.Machines(r.Context(), v, refresh(r))
	if err != nil {
		view.Machines = screen.Failed[[]models.Machine](failure(r, "list machines", err, "Could not connect to the server."))
	} else {
		view.Machines = screen.List(machines, "")
	}

	h.pages.Render(w, r, http.StatusOK, "machines", "Machines", view)
}

// Create submits the create machine form
func (h *MachineHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !hasRole(r, models.RoleAdmin) {
		h.pages.Render(w, r, http.StatusForbidden, "forbidden", "Machines", nil)
		return
	}

	values, err := formValues(r, "machineId", "model", "locationName", "latitude", "longitude")
	if err != nil {
		api.BadRequest(w, "Invalid form")
		return
	}

	v := viewer(r)
	if cancelled(r) {
		h.fleet.CloseForm(v, service.FormMachine)
		seeOther(w, r, "/machines")
		return
	}

	if _, err := h.fleet.CreateMachine(r.Context(), v, values); err != nil {
		failure(r, "create machine", err, "Could not create the machine.")
		seeOther(w, r, "/machines?new=1")
		return
	}
	seeOther(w, r, "/machines")
}

// Detail shows one machine with its inventory.
// ?edit={itemId} puts a row in edit mode and ?assign=1 opens the assign form.
func (h *MachineHandler) Detail(w http.ResponseWriter, r *http.Request) {
	v := viewer(r)
	machineID := mux.Vars(r)["machineId"]
	canEdit := hasRole(r, models.RoleAdmin, models.RoleTechnician)
	force := refresh(r)
	q := r.URL.Query()

	assignKey := service.FormAssign(machineID)
	if canEdit && q.Get("assign") != "" {
		h.fleet.OpenForm(v, assignKey)
	}

	view := MachineView{MachineID: machineID, CanEdit: canEdit}

	var (
		machine     *models.Machine
		items       []models.InventoryItem
		products    []models.Product
		machineErr  error
		itemsErr    error
		productsErr error
	)

	// Each part of the screen keeps its own error, so the group never fails.
	var g errgroup.Group
	g.Go(func() error {
		machine, machineErr = h.fleet.Machine(r.Context(), v, machineID, force)
		return nil
	})
	g.Go(func() error {
		items, itemsErr = h.inventory.Items(r.Context(), v, machineID, force)
		return nil
	})
	if canEdit {
		g.Go(func() error {
			products, productsErr = h.fleet.Products(r.Context(), v, force)
			return nil
		})
	}
	g.Wait()

	if machineErr != nil {
		view.Machine = screen.Failed[*models.Machine](failure(r, "get machine", machineErr, "Could not load the machine."))
	} else {
		view.Machine = screen.Loaded(machine, false)
	}

	if itemsErr != nil {
		view.Inventory = screen.Failed[[]service.Row](failure(r, "list inventory", itemsErr, "Could not load the inventory."))
	} else {
		if itemID := q.Get("edit"); canEdit && itemID != "" {
			if err := h.inventory.Edit(v, machineID, itemID); err != nil {
				api.Failure(r, "edit inventory", err, "")
			}
		}
		view.Inventory = screen.List(h.inventory.Rows(v, machineID, items), "")
	}

	if productsErr != nil {
		failure(r, "list products", productsErr, "")
	}
	view.Products = products
	view.AssignForm = h.fleet.Form(v, assignKey)

	h.pages.Render(w, r, http.StatusOK, "machine_detail", "Machine "+machineID, view)
}

// SaveItem saves or cancels the edit of one inventory row
func (h *MachineHandler) SaveItem(w http.ResponseWriter, r *http.Request) {
	if !hasRole(r, models.RoleAdmin, models.RoleTechnician) {
		h.pages.Render(w, r, http.StatusForbidden, "forbidden", "Inventory", nil)
		return
	}

	values, err := formValues(r, "quantity", "price")
	if err != nil {
		api.BadRequest(w, "Invalid form")
		return
	}

	v := viewer(r)
	vars := mux.Vars(r)
	machineID, itemID := vars["machineId"], vars["itemId"]
	back := "/machines/" + machineID

	if cancelled(r) {
		h.inventory.Cancel(v, machineID, itemID)
		seeOther(w, r, back)
		return
	}

	if _, err := h.inventory.Save(r.Context(), v, machineID, itemID, values["quantity"], values["price"]); err != nil {
		failure(r, "update inventory", err, "Could not update the item.")
	}
	seeOther(w, r, back)
}

// Assign submits the assign product form
func (h *MachineHandler) Assign(w http.ResponseWriter, r *http.Request) {
	if !hasRole(r, models.RoleAdmin, models.RoleTechnician) {
		h.pages.Render(w, r, http.StatusForbidden, "forbidden", "Inventory", nil)
		return
	}

	values, err := formValues(r, "productId", "channelId", "quantity", "price")
	if err != nil {
		api.BadRequest(w, "Invalid form")
		return
	}

	v := viewer(r)
	machineID := mux.Vars(r)["machineId"]
	back := "/machines/" + machineID

	if cancelled(r) {
		h.fleet.CloseForm(v, service.FormAssign(machineID))
		seeOther(w, r, back)
		return
	}

	products, _ := h.fleet.Products(r.Context(), v, false)
	if _, err := h.inventory.Assign(r.Context(), v, machineID, values, products); err != nil {
		failure(r, "assign product", err, "Could not assign the product.")
		seeOther(w, r, back+"?assign=1")
		return
	}
	seeOther(w, r, back)
}

// Sales lists the sales of one machine
func (h *MachineHandler) Sales(w http.ResponseWriter, r *http.Request) {
	machineID := mux.Vars(r)["machineId"]
	view := SalesView{MachineID: machineID}

	sales, err := h.fleet.Sales(r.Context(), viewer(r), machineID, refresh(r))
	if err != nil {
		view.Sales = screen.Failed[[]models.Sale](failure(r, "list machine sales", err, "Could not load sales."))
	} else {
		view.Sales = screen.List(sales, "")
	}

	h.pages.Render(w, r, http.StatusOK, "machine_sales", "Sales of "+machineID, view)
}
