package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vendfleet/dashboard/internal/db"
	"github.com/vendfleet/dashboard/internal/models"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, db.Config{
		Driver: db.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "sessions.db"),
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return database
}

func TestSessionRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewRepositories(openTestDB(t)).Session

	if _, ok, err := repo.Load(ctx, "missing"); err != nil || ok {
		t.Fatalf("Load(missing) = %v, %v", ok, err)
	}

	first := models.Session{Token: "t1", Role: models.RoleAdmin, UserName: "Ana"}
	if err := repo.Save(ctx, "sid", first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second := models.Session{Token: "t2", Role: models.RoleSales, UserName: "Beto"}
	if err := repo.Save(ctx, "sid", second); err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}

	got, ok, err := repo.Load(ctx, "sid")
	if err != nil || !ok {
		t.Fatalf("Load() = %v, %v", ok, err)
	}
	if got != second {
		t.Fatalf("Load() = %+v, want %+v", got, second)
	}

	if err := repo.Delete(ctx, "sid"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := repo.Load(ctx, "sid"); ok {
		t.Fatalf("session still present after Delete")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	database := openTestDB(t)
	if err := database.Migrate(); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}
