package ports

import (
	"context"

	"github.com/epharma/triage/pkg/domain"
)

// SessionStore defines the interface for persisting intake sessions.
// The engine reads and writes through it but does not own expiry policy.
type SessionStore interface {
	// Save persists the session under its id.
	Save(ctx context.Context, sessionID string, session *domain.Session) error

	// Load retrieves the session for a given id.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session for a given id.
	Delete(ctx context.Context, sessionID string) error

	// List returns the ids of the stored sessions.
	List(ctx context.Context) ([]string, error)
}
