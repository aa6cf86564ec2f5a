// Package web renders the dashboard pages and serves their static assets.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vendfleet/dashboard/internal/access"
	"github.com/vendfleet/dashboard/internal/models"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// NavLink is an entry of the sidebar
type NavLink struct {
	Path  string
	Label string
}

// Links lists every sidebar entry in display order
var Links = []NavLink{
	{Path: "/", Label: "Dashboard"},
	{Path: "/machines", Label: "Machines"},
	{Path: "/map", Label: "Fleet Map"},
	{Path: "/products", Label: "Products"},
	{Path: "/sales", Label: "Sales"},
	{Path: "/analytics", Label: "Analytics"},
}

// Nav returns the sidebar entries a role may follow
func Nav(table access.RouteTable, role models.UserRole) []NavLink {
	var links []NavLink
	for _, l := range Links {
		if table.Allowed(role, l.Path) {
			links = append(links, l)
		}
	}
	return links
}

// Page is what every template receives
type Page struct {
	Title   string
	Path    string
	Session models.Session
	Nav     []NavLink
	Data    any
}

// Renderer executes the embedded page templates
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the layout, the partials and every page
func NewRenderer() (*Renderer, error) {
	names, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/partials.html", name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		r.pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
	return r, nil
}

// Render writes a page with the given status. Pages are executed into a
// buffer first so a template fault never leaves half a page behind.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data Page) {
	t, ok := r.pages[page]
	if !ok {
		log.Printf("Unknown page %q", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		log.Printf("Failed to render %s: %v", page, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Static serves the embedded assets under /static/
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

var funcs = template.FuncMap{
	"money": models.Money,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format("2006-01-02")
	},
	"datetime": datetime,
	"heartbeat": func(t *time.Time) string {
		if t == nil {
			return "never"
		}
		return datetime(*t)
	},
	"statusClass": statusClass,
	"default": func(d any, s string) any {
		if s != "" {
			return s
		}
		return d
	},
	"activeClass": func(current, link string) string {
		if current == link || (link != "/" && strings.HasPrefix(current, link+"/")) {
			return "active"
		}
		return ""
	},
	"percent": func(f float64) string {
		return fmt.Sprintf("%+.1f%%", f)
	},
	"fixed": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
}

func datetime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// statusClass maps machine and sale statuses to badge colours
func statusClass(status any) string {
	switch fmt.Sprint(status) {
	case string(models.MachineStatusOnline), string(models.SaleStatusApproved):
		return "badge-green"
	case string(models.MachineStatusMaintenance), string(models.MachineStatusLowStock), string(models.SaleStatusPending):
		return "badge-amber"
	case string(models.MachineStatusOffline), string(models.MachineStatusError),
		string(models.SaleStatusRejected), string(models.SaleStatusCancelled):
		return "badge-red"
	default:
		return "badge-grey"
	}
}
