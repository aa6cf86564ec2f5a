package middleware

import (
	"net/http"

	"github.com/vendfleet/dashboard/internal/access"
)

// AuthGate sends unauthenticated browsers to the login page and
// authenticated ones away from it. While the session store is hydrating
// waiting is served instead.
func AuthGate(waiting http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := access.AuthGate(IsReady(r.Context()), GetSession(r.Context()), r.URL.Path)

			switch d.Action {
			case access.Wait:
				w.Header().Set("Retry-After", "1")
				waiting.ServeHTTP(w, r)
			case access.Redirect:
				http.Redirect(w, r, d.Location, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RoleGate only lets a role through to the routes its table entry lists.
// A redirect back to the requested path would loop, so it is refused instead.
func RoleGate(table access.RouteTable) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := access.RoleGate(table, IsReady(r.Context()), GetSession(r.Context()), r.URL.Path)

			switch d.Action {
			case access.Skip:
				w.WriteHeader(http.StatusNoContent)
			case access.Redirect:
				if d.Location == r.URL.Path {
					http.Error(w, "Forbidden", http.StatusForbidden)
					return
				}
				http.Redirect(w, r, d.Location, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
