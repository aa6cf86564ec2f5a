package session

import (
	"context"
	"sync"

	"github.com/vendfleet/dashboard/internal/models"
)

// MemoryStorage keeps sessions in process memory
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{sessions: make(map[string]models.Session)}
}

func (m *MemoryStorage) Load(_ context.Context, id string) (models.Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	return s, ok, nil
}

func (m *MemoryStorage) Save(_ context.Context, id string, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[id] = s
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}
