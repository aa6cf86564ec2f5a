// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/vendfleet/dashboard/internal/access"
	"github.com/vendfleet/dashboard/internal/api"
	"github.com/vendfleet/dashboard/internal/api/handler"
	"github.com/vendfleet/dashboard/internal/backend"
	"github.com/vendfleet/dashboard/internal/middleware"
	"github.com/vendfleet/dashboard/internal/service"
	"github.com/vendfleet/dashboard/internal/session"
	"github.com/vendfleet/dashboard/internal/web"
	"github.com/vendfleet/dashboard/internal/websockets"
)

// Deps is everything the routes are built from
type Deps struct {
	Routes    access.RouteTable
	Renderer  *web.Renderer
	Codec     *session.Codec
	Store     *session.Store
	Client    *backend.Client
	Auth      *service.AuthService
	Fleet     *service.FleetService
	Inventory *service.InventoryService
	Analytics *service.AnalyticsService
	Hub       *websockets.Hub
	Limiter   *middleware.RateLimiter
	// Database is nil when sessions are kept in memory
	Database handler.Pinger

	RefreshInterval           time.Duration
	TechnicianRefreshInterval time.Duration
}

// Router handles HTTP routing
type Router struct {
	mux *mux.Router
}

// New creates a new router
func New(deps Deps) *Router {
	r := &Router{mux: mux.NewRouter()}

	// Set up routes
	r.setupRoutes(deps)

	return r
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// setupRoutes sets up the routes for the router
func (r *Router) setupRoutes(deps Deps) {
	routes := deps.Routes
	if routes == nil {
		routes = access.DefaultRoutes
	}

	pages := handler.NewPages(deps.Renderer, routes)
	authHandler := handler.NewAuthHandler(pages, deps.Auth, deps.Codec)
	dashboardHandler := handler.NewDashboardHandler(pages, deps.Analytics)
	machineHandler := handler.NewMachineHandler(pages, deps.Fleet, deps.Inventory)
	productHandler := handler.NewProductHandler(pages, deps.Fleet)
	salesHandler := handler.NewSalesHandler(pages, deps.Fleet)
	analyticsHandler := handler.NewAnalyticsHandler(pages, deps.Analytics)
	mapHandler := handler.NewMapHandler(pages, deps.Fleet)
	liveHandler := handler.NewLiveHandler(deps.Hub, deps.Fleet, deps.RefreshInterval, deps.TechnicianRefreshInterval)
	healthHandler := handler.NewHealthHandler(deps.Store, deps.Client, deps.Hub, deps.Database)

	sessions := middleware.Session(deps.Codec, deps.Store)
	authGate := middleware.AuthGate(pages.Waiting())
	roleGate := middleware.RoleGate(routes)

	// public: only the auth gate, which sends signed-in users home
	public := func(h http.Handler) http.Handler {
		return sessions(authGate(h))
	}
	// gated: auth gate first, then the role's route table
	gated := func(h http.HandlerFunc) http.Handler {
		return sessions(authGate(roleGate(h)))
	}

	r.mux.Use(middleware.Logger)

	r.mux.PathPrefix("/static/").Handler(http.StripPrefix("/static/", web.Static()))
	r.mux.Handle("/healthz", http.HandlerFunc(healthHandler.Health)).Methods(http.MethodGet)

	login := http.Handler(http.HandlerFunc(authHandler.Login))
	if deps.Limiter != nil {
		login = deps.Limiter.Middleware()(login)
	}
	r.mux.Handle("/login", public(http.HandlerFunc(authHandler.LoginPage))).Methods(http.MethodGet)
	r.mux.Handle("/login", public(login)).Methods(http.MethodPost)
	r.mux.Handle("/logout", sessions(http.HandlerFunc(authHandler.Logout))).Methods(http.MethodPost)

	r.mux.Handle("/", gated(dashboardHandler.Home)).Methods(http.MethodGet)

	r.mux.Handle("/machines", gated(machineHandler.List)).Methods(http.MethodGet)
	r.mux.Handle("/machines", gated(machineHandler.Create)).Methods(http.MethodPost)
	r.mux.Handle("/machines/live", gated(liveHandler.Machines)).Methods(http.MethodGet)
	r.mux.Handle("/machines/{machineId}", gated(machineHandler.Detail)).Methods(http.MethodGet)
	r.mux.Handle("/machines/{machineId}/sales", gated(machineHandler.Sales)).Methods(http.MethodGet)
	r.mux.Handle("/machines/{machineId}/inventory", gated(machineHandler.Assign)).Methods(http.MethodPost)
	r.mux.Handle("/machines/{machineId}/inventory/{itemId}", gated(machineHandler.SaveItem)).Methods(http.MethodPost)

	r.mux.Handle("/products", gated(productHandler.List)).Methods(http.MethodGet)
	r.mux.Handle("/products", gated(productHandler.Create)).Methods(http.MethodPost)

	r.mux.Handle("/sales", gated(salesHandler.List)).Methods(http.MethodGet)

	r.mux.Handle("/analytics", gated(analyticsHandler.Performance)).Methods(http.MethodGet)
	r.mux.Handle("/analytics/machines", gated(analyticsHandler.Machines)).Methods(http.MethodGet)

	r.mux.Handle("/map", gated(mapHandler.Page)).Methods(http.MethodGet)
	r.mux.Handle("/map/markers.json", gated(mapHandler.Markers)).Methods(http.MethodGet)

	r.mux.NotFoundHandler = middleware.Logger(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		api.NotFound(w)
	}))
	r.mux.MethodNotAllowedHandler = middleware.Logger(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		api.MethodNotAllowed(w)
	}))
}
