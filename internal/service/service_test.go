package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vendfleet/dashboard/internal/backend"
	"github.com/vendfleet/dashboard/internal/devbackend"
	"github.com/vendfleet/dashboard/internal/screen"
	"github.com/vendfleet/dashboard/internal/session"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	client    *backend.Client
	store     *session.Store
	cache     *screen.Cache
	forms     *screen.FormStore
	auth      *AuthService
	fleet     *FleetService
	inventory *InventoryService
	analytics *AnalyticsService
}

func newFixture(t *testing.T, handler http.Handler) *fixture {
	t.Helper()

	if handler == nil {
		dev, err := devbackend.New(devbackend.Config{Secret: "test", BcryptCost: bcrypt.MinCost})
		if err != nil {
			t.Fatalf("devbackend.New: %v", err)
		}
		handler = dev
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	store := session.NewStore(session.NewMemoryStorage())
	if err := store.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}

	f := &fixture{
		client: backend.New(backend.Config{URL: ts.URL}),
		store:  store,
		cache:  screen.NewCache(),
		forms:  screen.NewFormStore(),
	}
	f.fleet = NewFleetService(f.client, f.cache, f.forms, time.Minute)
	f.inventory = NewInventoryService(f.client, f.cache, f.forms, time.Minute)
	f.analytics = NewAnalyticsService(f.client, f.cache, time.Minute)
	f.auth = NewAuthService(f.client, store, f.cache, f.forms, f.inventory)
	return f
}

func (f *fixture) login(t *testing.T, sid, email string) Viewer {
	t.Helper()

	sess, err := f.auth.Login(context.Background(), sid, email, devbackend.SeedPassword)
	if err != nil {
		t.Fatalf("Login(%s): %v", email, err)
	}
	return Viewer{SessionID: sid, Session: sess}
}
