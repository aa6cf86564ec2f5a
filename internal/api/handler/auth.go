package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/vendfleet/dashboard/internal/api"
	"github.com/vendfleet/dashboard/internal/backend"
	"github.com/vendfleet/dashboard/internal/middleware"
	"github.com/vendfleet/dashboard/internal/service"
	"github.com/vendfleet/dashboard/internal/session"
)

// LoginView is the data of the login page
type LoginView struct {
	Email string
	Err   string
}

// AuthHandler handles login and logout
type AuthHandler struct {
	pages *Pages
	auth  *service.AuthService
	codec *session.Codec
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(pages *Pages, auth *service.AuthService, codec *session.Codec) *AuthHandler {
	return &AuthHandler{pages: pages, auth: auth, codec: codec}
}

// LoginPage shows the login form
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "login", "Sign in", LoginView{})
}

// Login checks the credentials with the backend and starts the session
// under a fresh id; the id the browser arrived with is never authenticated.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(r, "email", "password")
	if err != nil {
		api.BadRequest(w, "Invalid form")
		return
	}

	sid := session.NewID()
	if _, err := h.auth.Login(r.Context(), sid, values["email"], values["password"]); err != nil {
		status := http.StatusUnauthorized
		var validationErr *service.ValidationError
		var statusErr *backend.StatusError
		switch {
		case errors.As(err, &validationErr):
			status = http.StatusBadRequest
		case errors.As(err, &statusErr):
		default:
			status = http.StatusBadGateway
		}

		h.pages.Render(w, r, status, "login", "Sign in", LoginView{
			Email: values["email"],
			Err:   failure(r, "login", err, "Login failed. Please try again."),
		})
		return
	}

	if err := h.codec.Set(w, sid); err != nil {
		h.auth.Logout(r.Context(), sid)
		api.ServerError(w, "login", err)
		return
	}
	if err := h.auth.Logout(r.Context(), middleware.GetSessionID(r.Context())); err != nil {
		log.Printf("Failed to clear pre-login session: %v", err)
	}

	seeOther(w, r, "/")
}

// Logout ends the session. While sessions are still being restored the
// browser is sent to the login page, which waits for them.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsReady(r.Context()) {
		seeOther(w, r, "/login")
		return
	}
	if err := h.auth.Logout(r.Context(), middleware.GetSessionID(r.Context())); err != nil {
		api.ServerError(w, "logout", err)
		return
	}
	seeOther(w, r, "/login")
}
