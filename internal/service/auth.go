package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/vendfleet/dashboard/internal/backend"
	"github.com/vendfleet/dashboard/internal/models"
	"github.com/vendfleet/dashboard/internal/screen"
	"github.com/vendfleet/dashboard/internal/session"
)

// Dropper forgets per-session state
type Dropper interface {
	Drop(sid string)
}

// AuthService handles login and logout of browser sessions
type AuthService struct {
	client *backend.Client
	store  *session.Store
	state  []Dropper
}

// NewAuthService creates a new authentication service. state is cleared for
// a session when it logs out.
func NewAuthService(client *backend.Client, store *session.Store, state ...Dropper) *AuthService {
	return &AuthService{
		client: client,
		store:  store,
		state:  state,
	}
}

// Login authenticates against the backend and stores the session
func (s *AuthService) Login(ctx context.Context, sid, email, password string) (models.Session, error) {
	email = strings.TrimSpace(email)
	values := map[string]string{"email": email, "password": password}
	if err := screen.Required(values, "email", "password"); err != nil {
		return models.Session{}, &ValidationError{Msg: "Email and password are required."}
	}

	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		return models.Session{}, fmt.Errorf("login failed: %w", err)
	}
	if resp.Token == "" {
		return models.Session{}, &ValidationError{Msg: "The server did not return a session token."}
	}

	role, ok := models.ParseRole(resp.Role)
	if !ok {
		return models.Session{}, &ValidationError{Msg: fmt.Sprintf("Unknown role %q.", resp.Role)}
	}

	sess, err := s.store.Login(ctx, sid, resp.Token, role, resp.Name)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to store session: %w", err)
	}

	// a fresh login never sees data cached for a previous user of this browser
	s.drop(sid)
	return sess, nil
}

// Logout clears the session and everything cached for it
func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if err := s.store.Logout(ctx, sid); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	s.drop(sid)
	return nil
}

func (s *AuthService) drop(sid string) {
	for _, st := range s.state {
		st.Drop(sid)
	}
}
