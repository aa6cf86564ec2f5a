package handler

import (
	"net/http"

	"github.com/vendfleet/dashboard/internal/api"
	"github.com/vendfleet/dashboard/internal/models"
	"github.com/vendfleet/dashboard/internal/screen"
	"github.com/vendfleet/dashboard/internal/service"
)

// ProductsView is the data of the product catalogue
type ProductsView struct {
	Products screen.State[[]models.Product]
	Form     screen.Form
}

// ProductHandler handles the product catalogue
type ProductHandler struct {
	pages *Pages
	fleet *service.FleetService
}

// NewProductHandler creates a new product handler
func NewProductHandler(pages *Pages, fleet *service.FleetService) *ProductHandler {
	return &ProductHandler{pages: pages, fleet: fleet}
}

// List shows the catalogue. ?new=1 opens the create form.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	v := viewer(r)
	if r.URL.Query().Get("new") != "" {
		h.fleet.OpenForm(v, service.FormProduct)
	} else {
		h.fleet.CloseForm(v, service.FormProduct)
	}

	view := ProductsView{Form: h.fleet.Form(v, service.FormProduct)}
	products, err := h.fleet.Products(r.Context(), v, refresh(r))
	if err != nil {
		view.Products = screen.Failed[[]models.Product](failure(r, "list products", err, "Could not load products."))
	} else {
		view.Products = screen.List(products, "")
	}

	h.pages.Render(w, r, http.StatusOK, "products", "Products", view)
}

// Create submits the create product form
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(r, "name", "sku", "description")
	if err != nil {
		api.BadRequest(w, "Invalid form")
		return
	}

	v := viewer(r)
	if cancelled(r) {
		h.fleet.CloseForm(v, service.FormProduct)
		seeOther(w, r, "/products")
		return
	}

	if _, err := h.fleet.CreateProduct(r.Context(), v, values); err != nil {
		failure(r, "create product", err, "Could not create the product.")
		seeOther(w, r, "/products?new=1")
		return
	}
	seeOther(w, r, "/products")
}
