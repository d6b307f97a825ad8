// Package store persists client-side session state between CLI
// invocations: the minted token per profile plus enough metadata to
// show status without a network round trip. Secrets themselves never
// land here; the token is the only credential stored and it expires
// server-side regardless.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("store: not found")

// Session is one persisted login, keyed by profile name. A profile maps
// to one backend base URL so multiple accounts can coexist.
type Session struct {
	Profile   string
	BaseURL   string
	User      string
	Token     string
	Vault     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the session's token deadline has passed.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store is the root data access interface. Concrete drivers implement
// this; sqlite is the only one today.
type Store interface {
	Sessions() Sessions

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Sessions interface {
	// SaveSession inserts or replaces the session for its profile.
	SaveSession(ctx context.Context, s Session) error

	// GetSession returns the session for a profile, or ErrNotFound.
	GetSession(ctx context.Context, profile string) (Session, error)

	// DeleteSession removes a profile's session. Deleting a missing
	// profile is not an error.
	DeleteSession(ctx context.Context, profile string) error

	// ListSessions returns all sessions ordered by profile name.
	ListSessions(ctx context.Context) ([]Session, error)

	// DeleteExpiredSessions drops every session whose deadline has
	// passed.
	DeleteExpiredSessions(ctx context.Context, now time.Time) error
}
