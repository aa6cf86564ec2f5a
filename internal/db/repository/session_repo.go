package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vendfleet/dashboard/internal/models"
)

// SessionRepository persists dashboard sessions
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Load retrieves a session by id
func (r *SessionRepository) Load(ctx context.Context, id string) (models.Session, bool, error) {
	query := r.db.Rebind(`
		SELECT token, role, user_name
		FROM sessions
		WHERE id = ?
	`)

	var s models.Session
	err := r.db.GetContext(ctx, &s, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, fmt.Errorf("failed to get session: %w", err)
	}

	return s, true, nil
}

// Save writes token, role and name of a session in one statement
func (r *SessionRepository) Save(ctx context.Context, id string, s models.Session) error {
	query := r.db.Rebind(`
		INSERT INTO sessions (id, token, role, user_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET token = excluded.token, role = excluded.role, user_name = excluded.user_name, updated_at = excluded.updated_at
	`)

	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, id, s.Token, string(s.Role), s.UserName, now, now); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	query := r.db.Rebind(`
		DELETE FROM sessions
		WHERE id = ?
	`)

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
