package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileAndOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9000"
backend:
  url: http://backend:5000
  timeout: 5s
session:
  secret: from-file
  driver: sqlite
  dsn: /tmp/sessions.db
screens:
  refresh_interval: 3s
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("BACKEND_URL", "http://override:5000")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("SESSION_DRIVER", "")
	t.Setenv("SESSION_DSN", "")
	t.Setenv("LISTEN_ADDRESS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Address != ":9000" {
		t.Errorf("address = %q", cfg.Server.Address)
	}
	if cfg.Backend.URL != "http://override:5000" {
		t.Errorf("backend url = %q, want env override", cfg.Backend.URL)
	}
	if cfg.Backend.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.Backend.Timeout)
	}
	if cfg.Session.Secret != "from-file" || cfg.Session.Driver != "sqlite" {
		t.Errorf("session = %+v", cfg.Session)
	}
	if cfg.Screens.RefreshInterval != 3*time.Second {
		t.Errorf("refresh interval = %v", cfg.Screens.RefreshInterval)
	}
	if cfg.Screens.TechnicianRefreshInterval != 30*time.Second {
		t.Errorf("technician interval default lost: %v", cfg.Screens.TechnicianRefreshInterval)
	}
	if cfg.Session.CookieName != "vf_session" {
		t.Errorf("cookie name default lost: %q", cfg.Session.CookieName)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing secret", "backend:\n  url: http://x\n"},
		{"sqlite without dsn", "session:\n  secret: s\n  driver: sqlite\n"},
		{"unknown driver", "session:\n  secret: s\n  driver: redis\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_PATH", writeConfig(t, tt.body))
			t.Setenv("SESSION_SECRET", "")
			t.Setenv("SESSION_DRIVER", "")
			if _, err := Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEmptyBackendURLIsAllowed(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "session:\n  secret: s\n"))
	t.Setenv("BACKEND_URL", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("SESSION_DRIVER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.URL != "" {
		t.Errorf("backend url = %q", cfg.Backend.URL)
	}
}

func TestMissingExplicitFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Error("expected error for missing CONFIG_PATH file")
	}
}
