package service

import (
	"context"
	"testing"

	"github.com/vendfleet/dashboard/internal/devbackend"
	"github.com/vendfleet/dashboard/internal/models"
)

func TestLoginStoresSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	v := f.login(t, "s1", devbackend.TechnicianEmail)
	if v.Session.Role != models.RoleTechnician || v.Session.Token == "" || v.Session.UserName == "" {
		t.Fatalf("session = %+v", v.Session)
	}

	got, err := f.store.Current(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got != v.Session {
		t.Errorf("stored %+v, want %+v", got, v.Session)
	}
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		want     string
	}{
		{"missing fields", " ", "", "Email and password are required."},
		{"bad password", devbackend.AdminEmail, "nope", "Invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Login(ctx, "s1", tt.email, tt.password)
			if got := Message(err, "Login failed."); got != tt.want {
				t.Errorf("Message = %q, want %q", got, tt.want)
			}

			sess, _ := f.store.Current(ctx, "s1")
			if sess.Authenticated() {
				t.Error("failed login left a session behind")
			}
		})
	}
}

func TestLogoutDropsCachedState(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	v := f.login(t, "s1", devbackend.AdminEmail)

	if _, err := f.fleet.Machines(ctx, v, false); err != nil {
		t.Fatal(err)
	}
	f.fleet.OpenForm(v, FormMachine)

	if err := f.auth.Logout(ctx, "s1"); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	sess, _ := f.store.Current(ctx, "s1")
	if sess != (models.Session{}) {
		t.Errorf("session after logout = %+v", sess)
	}
	if _, _, ok := f.cache.Get("s1", "machines"); ok {
		t.Error("machines still cached after logout")
	}
	if f.fleet.Form(v, FormMachine).Open {
		t.Error("form still open after logout")
	}
}
