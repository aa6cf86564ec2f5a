package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/vendfleet/dashboard/internal/access"
	"github.com/vendfleet/dashboard/internal/backend"
	"github.com/vendfleet/dashboard/internal/config"
	"github.com/vendfleet/dashboard/internal/db"
	"github.com/vendfleet/dashboard/internal/db/repository"
	"github.com/vendfleet/dashboard/internal/middleware"
	"github.com/vendfleet/dashboard/internal/router"
	"github.com/vendfleet/dashboard/internal/screen"
	"github.com/vendfleet/dashboard/internal/service"
	"github.com/vendfleet/dashboard/internal/session"
	"github.com/vendfleet/dashboard/internal/web"
	"github.com/vendfleet/dashboard/internal/websockets"
)

func main() {
	// A missing .env is fine; the environment and config file still apply
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to read .env: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize session storage
	storage, database, err := openStorage(ctx, cfg.Session)
	if err != nil {
		log.Fatalf("Failed to open session storage: %v", err)
	}
	if database != nil {
		defer database.Close()
	}

	store := session.NewStore(storage)
	go func() {
		if err := store.Hydrate(ctx); err != nil {
			log.Fatalf("Failed to load sessions: %v", err)
		}
		log.Println("Session store ready")
	}()

	if cfg.Backend.URL == "" {
		log.Println("Backend URL is not configured; screens will report it")
	}
	client := backend.New(backend.Config{URL: cfg.Backend.URL, Timeout: cfg.Backend.Timeout})

	cache := screen.NewCache()
	forms := screen.NewFormStore()
	fleet := service.NewFleetService(client, cache, forms, cfg.Screens.StaleAfter)
	inventory := service.NewInventoryService(client, cache, forms, cfg.Screens.StaleAfter)
	analytics := service.NewAnalyticsService(client, cache, cfg.Screens.StaleAfter)
	auth := service.NewAuthService(client, store, cache, forms, inventory)

	// Screen state of sessions that stopped making requests is dropped
	if cfg.Screens.IdleAfter > 0 {
		go cache.Cleanup(ctx, 10*time.Minute, cfg.Screens.IdleAfter, forms.Drop, inventory.Drop)
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	// Initialize WebSocket hub
	hub := websockets.NewHub()

	limiter := middleware.NewRateLimiter(cfg.LoginRate.Requests, cfg.LoginRate.Window)
	go limiter.Cleanup(ctx, 5*time.Minute)

	deps := router.Deps{
		Routes:                    access.DefaultRoutes,
		Renderer:                  renderer,
		Codec:                     session.NewCodec(session.CookieConfig{Name: cfg.Session.CookieName, Secret: cfg.Session.Secret, Secure: cfg.Session.Secure}),
		Store:                     store,
		Client:                    client,
		Auth:                      auth,
		Fleet:                     fleet,
		Inventory:                 inventory,
		Analytics:                 analytics,
		Hub:                       hub,
		Limiter:                   limiter,
		RefreshInterval:           cfg.Screens.RefreshInterval,
		TechnicianRefreshInterval: cfg.Screens.TechnicianRefreshInterval,
	}
	if database != nil {
		deps.Database = database
	}

	// Initialize router
	r := router.New(deps)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Dashboard starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Println("Shutting down server...")

	// Live views are hijacked connections that Shutdown does not track
	hub.Shutdown()

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}

// openStorage picks the session storage named by the config. The database
// is nil for in-memory storage.
func openStorage(ctx context.Context, cfg config.Session) (session.Storage, *db.DB, error) {
	if cfg.Driver == "memory" {
		return session.NewMemoryStorage(), nil, nil
	}

	if cfg.Driver == db.DriverSQLite {
		if dir := filepath.Dir(cfg.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, err
			}
		}
	}

	database, err := db.Open(ctx, db.Config{Driver: cfg.Driver, DSN: cfg.DSN})
	if err != nil {
		return nil, nil, err
	}

	// Run database migrations
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, nil, err
	}

	repos := repository.NewRepositories(database)
	return repos.Session, database, nil
}
