package service

import "github.com/vendfleet/dashboard/internal/models"

// Viewer is the browser session a call is made for
type Viewer struct {
	SessionID string
	Session   models.Session
}

func (v Viewer) token() string {
	return v.Session.Token
}
