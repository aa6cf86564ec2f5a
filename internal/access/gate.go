// Package access decides, per navigation, whether a page is rendered or the
// browser is sent elsewhere.
package access

import (
	"github.com/vendfleet/dashboard/internal/models"
)

// Action is the outcome of a gate
type Action int

const (
	// Render shows the requested page
	Render Action = iota
	// Redirect sends the browser to Decision.Location
	Redirect
	// Wait shows a neutral loading placeholder without redirecting
	Wait
	// Skip renders nothing and leaves the decision to the auth gate
	Skip
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case Wait:
		return "wait"
	case Skip:
		return "skip"
	default:
		return "unknown"
	}
}

// Decision is what a gate wants done with a request
type Decision struct {
	Action   Action
	Location string
}

func render() Decision            { return Decision{Action: Render} }
func redirect(to string) Decision { return Decision{Action: Redirect, Location: to} }

// AuthGate decides between the loading placeholder, a redirect to the login
// page or home, and rendering.
func AuthGate(ready bool, sess models.Session, path string) Decision {
	if !ready {
		return Decision{Action: Wait}
	}

	public := IsPublic(path)
	authenticated := sess.Normalize().Authenticated()

	switch {
	case !authenticated && !public:
		return redirect(Login)
	case authenticated && public:
		return redirect(Home)
	default:
		return render()
	}
}

// RoleGate checks the route table. It defers to the auth gate while the
// store is initializing or the session has no role.
func RoleGate(table RouteTable, ready bool, sess models.Session, path string) Decision {
	sess = sess.Normalize()
	if !ready || sess.Role == "" {
		return Decision{Action: Skip}
	}
	if !table.Allowed(sess.Role, path) {
		return redirect(Home)
	}
	return render()
}
