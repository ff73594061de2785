package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
)

// SessionStore holds ephemeral per-client session envelopes.
// CSRF regeneration and activity touches are individual field writes so the
// new value is visible to the very next request using the session.
type SessionStore interface {
	// Put creates or replaces the whole envelope with the given idle TTL.
	Put(ctx context.Context, session domain.Session, idleTTL time.Duration) error
	// Get returns nil without error when the session does not exist.
	Get(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error)
	// SetCSRFToken rotates the anti-forgery token in place, refreshing the
	// idle TTL so the write can never leave an envelope without an expiry.
	SetCSRFToken(ctx context.Context, sessionID uuid.UUID, token string, idleTTL time.Duration) error
	// Touch refreshes the last-activity stamp and extends the idle TTL.
	Touch(ctx context.Context, sessionID uuid.UUID, at time.Time, idleTTL time.Duration) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

// RateLimitStore is the persistent keyed counter behind the fixed-window
// rate limiter.
type RateLimitStore interface {
	// Hit atomically increments the counter for (category, identifier),
	// starting a fresh window with count 1 when none exists or the previous
	// window has expired. Two concurrent hits on the same key must never
	// observe the same count.
	Hit(ctx context.Context, category, identifier string, window time.Duration) (int64, error)
}

// MaintenanceStore persists the single maintenance flag. Reads are expected
// to be cheap enough to sit on every request path.
type MaintenanceStore interface {
	State() (domain.MaintenanceState, error)
	Enable(message, initiator string, at time.Time) error
	// Disable clears the flag and returns the state that was active.
	Disable() (domain.MaintenanceState, error)
}
