package repository

import (
	"github.com/vendfleet/dashboard/internal/db"
)

// Repositories provides access to all repository instances
type Repositories struct {
	Session *SessionRepository
}

// NewRepositories creates a new repositories container
func NewRepositories(database *db.DB) *Repositories {
	return &Repositories{
		Session: NewSessionRepository(database.DB),
	}
}
