package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is an administrator identity with its lockout bookkeeping.
// Failed-attempt state lives on the record itself so the lockout transition
// can be a single atomic update against the account row.
type Account struct {
	AccountID     uuid.UUID
	Username      string
	Email         string
	PasswordHash  string
	LoginAttempts int
	LockedUntil   *time.Time
	LastLoginAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Locked reports whether the account is inside an unexpired lockout window.
func (a Account) Locked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// Session is the per-client envelope held in the session store.
// The CSRF token rides on the session so regeneration is visible to the very
// next request using it; AccountID is nil for anonymous visitors.
type Session struct {
	SessionID      uuid.UUID
	AccountID      *uuid.UUID
	Username       string
	CSRFToken      string
	IPAddress      string
	UserAgent      string
	CreatedAt      time.Time
	LoginAt        *time.Time
	LastActivityAt time.Time
}

// Authenticated reports whether a principal is bound to the session.
func (s Session) Authenticated() bool {
	return s.AccountID != nil
}

// ActivityRecord is an append-only audit entry.
// It is write-only from the core's perspective; retention is an external job.
type ActivityRecord struct {
	ID          int64
	Action      string
	SubjectType string
	SubjectID   string
	ActorID     *uuid.UUID
	IPAddress   string
	UserAgent   string
	Metadata    map[string]any
	RecordedAt  time.Time
}

// MaintenanceState is the persisted maintenance flag.
type MaintenanceState struct {
	Enabled   bool
	Message   string
	Initiator string
	EnabledAt time.Time
}
