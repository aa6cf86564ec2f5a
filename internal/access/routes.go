package access

import (
	"strings"

	"github.com/vendfleet/dashboard/internal/models"
)

// Home and Login are the two redirect targets of the gates
const (
	Home  = "/"
	Login = "/login"
)

// PublicRoutes are reachable without a session
var PublicRoutes = []string{Login}

// RouteTable maps every role to the route prefixes it may view
type RouteTable map[models.UserRole][]string

// DefaultRoutes is the route table of the dashboard
var DefaultRoutes = RouteTable{
	models.RoleAdmin:      {"/", "/machines", "/products", "/sales", "/analytics", "/map"},
	models.RoleTechnician: {"/", "/machines", "/map"},
	models.RoleSales:      {"/", "/sales", "/analytics"},
}

// Allowed reports whether role may view path. The root route matches only
// itself; every other prefix matches itself and its sub-paths.
func (t RouteTable) Allowed(role models.UserRole, path string) bool {
	for _, prefix := range t[role] {
		if matchPrefix(prefix, path) {
			return true
		}
	}
	return false
}

func matchPrefix(prefix, path string) bool {
	if prefix == Home {
		return path == Home
	}
	prefix = strings.TrimRight(prefix, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// IsPublic reports whether path is in the public allowlist
func IsPublic(path string) bool {
	for _, p := range PublicRoutes {
		if path == p {
			return true
		}
	}
	return false
}
