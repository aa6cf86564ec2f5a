package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/vendfleet/dashboard/internal/access"
	"github.com/vendfleet/dashboard/internal/api/handler"
	"github.com/vendfleet/dashboard/internal/backend"
	"github.com/vendfleet/dashboard/internal/devbackend"
	"github.com/vendfleet/dashboard/internal/middleware"
	"github.com/vendfleet/dashboard/internal/screen"
	"github.com/vendfleet/dashboard/internal/service"
	"github.com/vendfleet/dashboard/internal/session"
	"github.com/vendfleet/dashboard/internal/web"
	"github.com/vendfleet/dashboard/internal/websockets"
	"golang.org/x/crypto/bcrypt"
)

// newDashboard starts the dashboard in front of backendURL
func newDashboard(t *testing.T, backendURL string) *httptest.Server {
	t.Helper()

	store := session.NewStore(session.NewMemoryStorage())
	if err := store.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	return newDashboardWith(t, backendURL, store, nil)
}

func newDashboardWith(t *testing.T, backendURL string, store *session.Store, database handler.Pinger) *httptest.Server {
	t.Helper()

	renderer, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	client := backend.New(backend.Config{URL: backendURL})
	cache := screen.NewCache()
	forms := screen.NewFormStore()
	fleet := service.NewFleetService(client, cache, forms, time.Minute)
	inventory := service.NewInventoryService(client, cache, forms, time.Minute)
	hub := websockets.NewHub()
	t.Cleanup(hub.Shutdown)

	r := New(Deps{
		Routes:                    access.DefaultRoutes,
		Renderer:                  renderer,
		Codec:                     session.NewCodec(session.CookieConfig{Secret: "test"}),
		Store:                     store,
		Client:                    client,
		Auth:                      service.NewAuthService(client, store, cache, forms, inventory),
		Fleet:                     fleet,
		Inventory:                 inventory,
		Analytics:                 service.NewAnalyticsService(client, cache, time.Minute),
		Hub:                       hub,
		Limiter:                   middleware.NewRateLimiter(100, time.Minute),
		RefreshInterval:           time.Hour,
		TechnicianRefreshInterval: time.Hour,
		Database:                  database,
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func newDevBackend(t *testing.T) string {
	t.Helper()

	dev, err := devbackend.New(devbackend.Config{Secret: "test", BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("devbackend.New: %v", err)
	}
	ts := httptest.NewServer(dev)
	t.Cleanup(ts.Close)
	return ts.URL
}

type browser struct {
	t    *testing.T
	base string
	http *http.Client
}

func newBrowser(t *testing.T, base string) *browser {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &browser{t: t, base: base, http: &http.Client{Jar: jar}}
}

func (b *browser) get(path string) (int, string) {
	b.t.Helper()

	resp, err := b.http.Get(b.base + path)
	if err != nil {
		b.t.Fatalf("GET %s: %v", path, err)
	}
	return read(b.t, resp)
}

func (b *browser) post(path string, form url.Values) (int, string) {
	b.t.Helper()

	resp, err := b.http.PostForm(b.base+path, form)
	if err != nil {
		b.t.Fatalf("POST %s: %v", path, err)
	}
	return read(b.t, resp)
}

// location requests path without following redirects
func (b *browser) location(path string) (int, string) {
	b.t.Helper()

	client := *b.http
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	resp, err := client.Get(b.base + path)
	if err != nil {
		b.t.Fatalf("GET %s: %v", path, err)
	}
	resp.Body.Close()
	return resp.StatusCode, resp.Header.Get("Location")
}

func (b *browser) login(email string) string {
	b.t.Helper()

	b.get("/login")
	code, body := b.post("/login", url.Values{"email": {email}, "password": {devbackend.SeedPassword}})
	if code != http.StatusOK {
		b.t.Fatalf("login %s: code %d\n%s", email, code, body)
	}
	return body
}

func read(t *testing.T, resp *http.Response) (int, string) {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func TestLoginAndLogout(t *testing.T) {
	ts := newDashboard(t, newDevBackend(t))
	b := newBrowser(t, ts.URL)

	if code, loc := b.location("/machines"); code != http.StatusSeeOther || loc != "/login" {
		t.Fatalf("anonymous /machines: %d %q", code, loc)
	}

	code, body := b.post("/login", url.Values{"email": {"admin@vendfleet.local"}, "password": {"wrong"}})
	if code != http.StatusUnauthorized || !strings.Contains(body, "Invalid credentials") {
		t.Fatalf("bad password: code %d, body lacks backend message", code)
	}

	body = b.login("admin@vendfleet.local")
	if !strings.Contains(body, "Admin Dashboard") {
		t.Errorf("admin home is not the admin dashboard")
	}
	if code, loc := b.location("/login"); code != http.StatusSeeOther || loc != "/" {
		t.Errorf("signed-in /login: %d %q", code, loc)
	}

	code, body = b.post("/logout", nil)
	if code != http.StatusOK || !strings.Contains(body, `name="password"`) {
		t.Errorf("logout did not land on the login page: %d", code)
	}
	if code, loc := b.location("/"); code != http.StatusSeeOther || loc != "/login" {
		t.Errorf("after logout /: %d %q", code, loc)
	}
}

func TestRoleRoutes(t *testing.T) {
	ts := newDashboard(t, newDevBackend(t))

	tests := []struct {
		email   string
		home    string
		allowed []string
		denied  []string
	}{
		{"admin@vendfleet.local", "Admin Dashboard", []string{"/machines", "/products", "/sales", "/analytics", "/map"}, nil},
		{"tech@vendfleet.local", "Machines needing attention", []string{"/machines", "/map"}, []string{"/products", "/sales", "/analytics"}},
		{"sales@vendfleet.local", "Sales Dashboard", []string{"/sales", "/analytics", "/analytics/machines"}, []string{"/machines", "/products", "/map"}},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			b := newBrowser(t, ts.URL)
			if body := b.login(tt.email); !strings.Contains(body, tt.home) {
				t.Errorf("home lacks %q", tt.home)
			}
			for _, path := range tt.allowed {
				if code, loc := b.location(path); code != http.StatusOK {
					t.Errorf("%s: %d %q, want 200", path, code, loc)
				}
			}
			for _, path := range tt.denied {
				if code, loc := b.location(path); code != http.StatusSeeOther || loc != "/" {
					t.Errorf("%s: %d %q, want redirect home", path, code, loc)
				}
			}
		})
	}
}

func TestEmptyFleet(t *testing.T) {
	fake := mux.NewRouter()
	fake.HandleFunc("/api/users/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "t", "role": "admin", "name": "Ada"})
	})
	fake.HandleFunc("/api/machines", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	})
	backendServer := httptest.NewServer(fake)
	defer backendServer.Close()

	b := newBrowser(t, newDashboard(t, backendServer.URL).URL)
	b.login("admin@vendfleet.local")

	_, body := b.get("/machines")
	if !strings.Contains(body, "No machines found.") {
		t.Errorf("empty fleet does not show the empty state")
	}
	if strings.Contains(body, "placeholder error") || strings.Contains(body, "placeholder loading") {
		t.Errorf("empty fleet shows an error or loading placeholder")
	}
}

func TestMissingBackendURL(t *testing.T) {
	b := newBrowser(t, newDashboard(t, "").URL)
	b.get("/login")

	code, body := b.post("/login", url.Values{"email": {"admin@vendfleet.local"}, "password": {"x"}})
	if code != http.StatusBadGateway {
		t.Errorf("code = %d, want 502", code)
	}
	if !strings.Contains(body, "backend URL is not configured") {
		t.Errorf("login page does not explain the missing backend URL")
	}
}

var editLink = regexp.MustCompile(`/machines/VM-001\?edit=([0-9a-f-]+)`)

func TestInventoryEdit(t *testing.T) {
	b := newBrowser(t, newDashboard(t, newDevBackend(t)).URL)
	b.login("tech@vendfleet.local")

	_, body := b.get("/machines/VM-001")
	m := editLink.FindStringSubmatch(body)
	if m == nil {
		t.Fatal("no edit link on the machine page")
	}
	itemID := m[1]

	_, body = b.get("/machines/VM-001?edit=" + itemID)
	if !strings.Contains(body, `class="row-form"`) {
		t.Fatal("row did not switch to edit mode")
	}

	_, body = b.post("/machines/VM-001/inventory/"+itemID, url.Values{"action": {"save"}, "quantity": {"-1"}, "price": {"2"}})
	if !strings.Contains(body, "Quantity must be a whole number of zero or more.") {
		t.Error("invalid quantity was not reported")
	}
	if !strings.Contains(body, `value="-1"`) {
		t.Error("entered quantity was not kept")
	}

	_, body = b.post("/machines/VM-001/inventory/"+itemID, url.Values{"action": {"save"}, "quantity": {"42"}, "price": {"3.25"}})
	if strings.Contains(body, `class="row-form"`) {
		t.Error("row stayed in edit mode after saving")
	}
	if !strings.Contains(body, "$3.25") {
		t.Error("saved price is not shown")
	}

	b.get("/machines/VM-001?edit=" + itemID)
	_, body = b.post("/machines/VM-001/inventory/"+itemID, url.Values{"action": {"cancel"}})
	if strings.Contains(body, `class="row-form"`) {
		t.Error("cancel left the row in edit mode")
	}
}

func TestCreateMachineForm(t *testing.T) {
	b := newBrowser(t, newDashboard(t, newDevBackend(t)).URL)
	b.login("admin@vendfleet.local")

	_, body := b.post("/machines", url.Values{"machineId": {"VM-001"}, "model": {"X"}, "latitude": {"1"}, "longitude": {"2"}})
	if !strings.Contains(body, "A machine with ID VM-001 already exists") {
		t.Error("duplicate machine error is not shown on the form")
	}

	_, body = b.post("/machines", url.Values{"machineId": {"VM-010"}, "model": {"Vendo 721"}, "latitude": {"-36.85"}, "longitude": {"174.76"}})
	if strings.Contains(body, "New machine") {
		t.Error("form stayed open after creating the machine")
	}
	if !strings.Contains(body, "VM-010") {
		t.Error("new machine is not listed")
	}
}

func TestLiveMachines(t *testing.T) {
	ts := newDashboard(t, newDevBackend(t))
	b := newBrowser(t, ts.URL)
	b.login("tech@vendfleet.local")

	u, _ := url.Parse(ts.URL)
	header := http.Header{}
	for _, c := range b.http.Jar.Cookies(u) {
		header.Add("Cookie", c.String())
	}
	header.Set("Origin", ts.URL)

	tests := []struct {
		query string
		want  int
	}{
		{"", 4},
		{"?view=attention", 2},
	}

	for _, tt := range tests {
		t.Run("view"+tt.query, func(t *testing.T) {
			wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/machines/live" + tt.query
			conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
			if err != nil {
				t.Fatalf("Dial: %v", err)
			}
			defer conn.Close()

			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			var msg struct {
				Type string            `json:"type"`
				Data []json.RawMessage `json:"data"`
			}
			if err := conn.ReadJSON(&msg); err != nil {
				t.Fatalf("ReadJSON: %v", err)
			}
			if msg.Type != string(websockets.TypeMachines) || len(msg.Data) != tt.want {
				t.Errorf("got %s with %d machines, want %d", msg.Type, len(msg.Data), tt.want)
			}
		})
	}
}

func TestHealthAndMarkers(t *testing.T) {
	ts := newDashboard(t, newDevBackend(t))
	b := newBrowser(t, ts.URL)

	code, body := b.get("/healthz")
	if code != http.StatusOK {
		t.Fatalf("healthz code = %d", code)
	}
	var health struct {
		Status            string `json:"status"`
		BackendConfigured bool   `json:"backendConfigured"`
	}
	if err := json.Unmarshal([]byte(body), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || !health.BackendConfigured {
		t.Errorf("health = %+v", health)
	}

	b.login("tech@vendfleet.local")
	code, body = b.get("/map/markers.json")
	if code != http.StatusOK {
		t.Fatalf("markers code = %d", code)
	}
	var markers []service.Marker
	if err := json.Unmarshal([]byte(body), &markers); err != nil {
		t.Fatal(err)
	}
	if len(markers) != 4 {
		t.Errorf("got %d markers, want 4", len(markers))
	}
}

func TestLoginIssuesFreshSession(t *testing.T) {
	ts := newDashboard(t, newDevBackend(t))
	b := newBrowser(t, ts.URL)
	u, _ := url.Parse(ts.URL)

	b.get("/login")
	before := b.http.Jar.Cookies(u)
	if len(before) != 1 {
		t.Fatalf("got %d cookies before login", len(before))
	}

	b.login("admin@vendfleet.local")
	after := b.http.Jar.Cookies(u)
	if len(after) != 1 || after[0].Value == before[0].Value {
		t.Fatal("session cookie was not replaced at login")
	}

	// a cookie handed out before login must not carry the new session
	planted := newBrowser(t, ts.URL)
	planted.http.Jar.SetCookies(u, before)
	if code, loc := planted.location("/"); code != http.StatusSeeOther || loc != "/login" {
		t.Errorf("pre-login cookie: %d %q, want redirect to /login", code, loc)
	}
}

func TestLogoutWhileHydrating(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage())
	ts := newDashboardWith(t, newDevBackend(t), store, nil)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.PostForm(ts.URL+"/logout", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Errorf("logout while hydrating: %d %q, want redirect to /login", resp.StatusCode, resp.Header.Get("Location"))
	}

	code, _ := newBrowser(t, ts.URL).location("/login")
	if code != http.StatusServiceUnavailable {
		t.Errorf("login page while hydrating: %d, want the waiting page", code)
	}
}

type downDatabase struct{}

func (downDatabase) HealthCheck(context.Context) error { return errors.New("connection refused") }

func TestHealthReportsUnreachableDatabase(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage())
	if err := store.Hydrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	ts := newDashboardWith(t, newDevBackend(t), store, downDatabase{})

	code, body := newBrowser(t, ts.URL).get("/healthz")
	if code != http.StatusServiceUnavailable {
		t.Errorf("healthz code = %d, want 503", code)
	}
	if !strings.Contains(body, `"sessionStorage":"unreachable"`) {
		t.Errorf("healthz body = %s", body)
	}
}
