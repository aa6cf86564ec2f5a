// Package session keeps the token, role and display name of every browser
// session. Login and Logout are the only writers.
package session

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/vendfleet/dashboard/internal/models"
)

// ErrNotReady is returned while the store has not been hydrated
var ErrNotReady = errors.New("session store is not ready")

// Storage persists sessions. Save and Delete act on the whole record.
type Storage interface {
	Load(ctx context.Context, id string) (models.Session, bool, error)
	Save(ctx context.Context, id string, s models.Session) error
	Delete(ctx context.Context, id string) error
}

// Store is the single entry point for session state
type Store struct {
	storage Storage
	ready   atomic.Bool

	stripes [lockStripes]sync.Mutex
}

// lockStripes is the number of mutexes writers of different ids hash onto
const lockStripes = 64

// NewStore creates a store on top of the given storage
func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Hydrate checks the storage is reachable and marks the store ready.
// Callers must not make access decisions before Ready reports true.
func (s *Store) Hydrate(ctx context.Context) error {
	if _, _, err := s.storage.Load(ctx, "hydrate-check"); err != nil {
		return fmt.Errorf("failed to hydrate session store: %w", err)
	}
	s.ready.Store(true)
	return nil
}

// Ready reports whether the store has been hydrated
func (s *Store) Ready() bool {
	return s.ready.Load()
}

// Current returns the session for an id. Unknown ids yield the zero session.
func (s *Store) Current(ctx context.Context, id string) (models.Session, error) {
	if !s.Ready() {
		return models.Session{}, ErrNotReady
	}
	if id == "" {
		return models.Session{}, nil
	}

	sess, ok, err := s.storage.Load(ctx, id)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	if !ok {
		return models.Session{}, nil
	}
	return sess.Normalize(), nil
}

// Login stores token, role and name together
func (s *Store) Login(ctx context.Context, id, token string, role models.UserRole, name string) (models.Session, error) {
	if !s.Ready() {
		return models.Session{}, ErrNotReady
	}
	if id == "" || token == "" {
		return models.Session{}, errors.New("session id and token are required")
	}

	unlock := s.lock(id)
	defer unlock()

	sess := models.Session{Token: token, Role: role, UserName: name}
	if err := s.storage.Save(ctx, id, sess); err != nil {
		return models.Session{}, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// Logout removes the session record
func (s *Store) Logout(ctx context.Context, id string) error {
	if !s.Ready() {
		return ErrNotReady
	}
	if id == "" {
		return nil
	}

	unlock := s.lock(id)
	defer unlock()

	if err := s.storage.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// lock serializes writers of one session id
func (s *Store) lock(id string) func() {
	h := fnv.New32a()
	h.Write([]byte(id))
	l := &s.stripes[h.Sum32()%lockStripes]

	l.Lock()
	return l.Unlock
}
