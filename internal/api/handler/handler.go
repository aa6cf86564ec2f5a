// Package handler serves the dashboard screens.
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vendfleet/dashboard/internal/access"
	"github.com/vendfleet/dashboard/internal/api"
	"github.com/vendfleet/dashboard/internal/middleware"
	"github.com/vendfleet/dashboard/internal/models"
	"github.com/vendfleet/dashboard/internal/service"
	"github.com/vendfleet/dashboard/internal/web"
)

// Pages renders screens inside the shell
type Pages struct {
	renderer *web.Renderer
	routes   access.RouteTable
}

// NewPages creates the shared page renderer of all handlers
func NewPages(renderer *web.Renderer, routes access.RouteTable) *Pages {
	return &Pages{renderer: renderer, routes: routes}
}

// Render writes a page with the shell filled in for the current session
func (p *Pages) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	sess := middleware.GetSession(r.Context())
	p.renderer.Render(w, status, name, web.Page{
		Title:   title,
		Path:    r.URL.Path,
		Session: sess,
		Nav:     web.Nav(p.routes, sess.Role),
		Data:    data,
	})
}

// Waiting is served while the session store is still hydrating
func (p *Pages) Waiting() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.Render(w, r, http.StatusServiceUnavailable, "waiting", "Loading", nil)
	})
}

func viewer(r *http.Request) service.Viewer {
	return service.Viewer{
		SessionID: middleware.GetSessionID(r.Context()),
		Session:   middleware.GetSession(r.Context()),
	}
}

func refresh(r *http.Request) bool {
	return r.URL.Query().Get("refresh") != ""
}

func hasRole(r *http.Request, roles ...models.UserRole) bool {
	role := middleware.GetSession(r.Context()).Role
	for _, allowed := range roles {
		if role == allowed {
			return true
		}
	}
	return false
}

// formValues reads the named fields of a submitted form
func formValues(r *http.Request, names ...string) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(names))
	for _, name := range names {
		values[name] = r.PostForm.Get(name)
	}
	return values, nil
}

func cancelled(r *http.Request) bool {
	return strings.EqualFold(r.PostFormValue("action"), "cancel")
}

// failure logs a screen's backend failure and returns the user-visible line
func failure(r *http.Request, op string, err error, fallback string) string {
	return api.Failure(r, op, err, service.Message(err, fallback))
}

func seeOther(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
