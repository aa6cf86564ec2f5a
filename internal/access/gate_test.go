package access

import (
	"testing"

	"github.com/vendfleet/dashboard/internal/models"
)

var (
	anonymous  = models.Session{}
	admin      = models.Session{Token: "t", Role: models.RoleAdmin, UserName: "Ana"}
	technician = models.Session{Token: "t", Role: models.RoleTechnician, UserName: "Luis"}
	sales      = models.Session{Token: "t", Role: models.RoleSales, UserName: "Sofi"}
)

func TestAuthGate(t *testing.T) {
	tests := []struct {
		name  string
		ready bool
		sess  models.Session
		path  string
		want  Decision
	}{
		{"initializing never redirects", false, anonymous, "/machines", Decision{Action: Wait}},
		{"initializing on login", false, admin, "/login", Decision{Action: Wait}},
		{"anonymous private page", true, anonymous, "/machines", Decision{Action: Redirect, Location: "/login"}},
		{"anonymous home", true, anonymous, "/", Decision{Action: Redirect, Location: "/login"}},
		{"anonymous login page", true, anonymous, "/login", Decision{Action: Render}},
		{"authenticated login page", true, admin, "/login", Decision{Action: Redirect, Location: "/"}},
		{"authenticated private page", true, admin, "/sales", Decision{Action: Render}},
		{"role without token is anonymous", true, models.Session{Role: models.RoleAdmin}, "/", Decision{Action: Redirect, Location: "/login"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AuthGate(tt.ready, tt.sess, tt.path); got != tt.want {
				t.Fatalf("AuthGate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAuthGateNoRedirectLoop(t *testing.T) {
	cases := []struct {
		sess models.Session
		path string
	}{
		{anonymous, "/machines"},
		{admin, "/login"},
	}

	for _, c := range cases {
		first := AuthGate(true, c.sess, c.path)
		if first.Action != Redirect {
			t.Fatalf("AuthGate(%q) = %+v, want a redirect", c.path, first)
		}
		second := AuthGate(true, c.sess, first.Location)
		if second.Action != Render {
			t.Fatalf("AuthGate(%q) after redirect = %+v, want render", first.Location, second)
		}
	}
}

func TestRoleGate(t *testing.T) {
	tests := []struct {
		name  string
		ready bool
		sess  models.Session
		path  string
		want  Decision
	}{
		{"technician on sales", true, technician, "/sales", Decision{Action: Redirect, Location: "/"}},
		{"technician on machine detail", true, technician, "/machines/ABC123", Decision{Action: Render}},
		{"technician on machine list", true, technician, "/machines", Decision{Action: Render}},
		{"technician on look-alike prefix", true, technician, "/machinesX", Decision{Action: Redirect, Location: "/"}},
		{"technician on products", true, technician, "/products", Decision{Action: Redirect, Location: "/"}},
		{"sales on analytics", true, sales, "/analytics/machines", Decision{Action: Render}},
		{"sales on machines", true, sales, "/machines/VM001/sales", Decision{Action: Redirect, Location: "/"}},
		{"admin everywhere", true, admin, "/products", Decision{Action: Render}},
		{"root is exact", true, models.Session{Token: "t", Role: "intern"}, "/anything", Decision{Action: Redirect, Location: "/"}},
		{"initializing", false, technician, "/sales", Decision{Action: Skip}},
		{"no role", true, models.Session{Token: "t"}, "/sales", Decision{Action: Skip}},
		{"anonymous", true, anonymous, "/sales", Decision{Action: Skip}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleGate(DefaultRoutes, tt.ready, tt.sess, tt.path); got != tt.want {
				t.Fatalf("RoleGate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRoleGateIdempotent(t *testing.T) {
	for _, sess := range []models.Session{admin, technician, sales} {
		for _, path := range []string{"/", "/sales", "/machines/X", "/products", "/analytics"} {
			first := RoleGate(DefaultRoutes, true, sess, path)
			if first.Action == Redirect {
				if again := RoleGate(DefaultRoutes, true, sess, first.Location); again.Action != Render {
					t.Fatalf("%s: redirect target %q is not allowed", sess.Role, first.Location)
				}
			}
			if again := RoleGate(DefaultRoutes, true, sess, path); again != first {
				t.Fatalf("%s %s: second evaluation %+v != %+v", sess.Role, path, again, first)
			}
		}
	}
}
