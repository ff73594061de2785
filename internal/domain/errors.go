package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials hides whether the username or the password failed.
	// The reason is to prevent account-enumeration side channels.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked signals temporary lockout after repeated failed attempts.
	// The lock cools down independently of the rate-limit window.
	ErrAccountLocked = errors.New("account locked")
	// ErrRateLimited is returned when a fixed-window budget for the action is exhausted.
	ErrRateLimited = errors.New("rate limited")
	// ErrAttackDetected is returned when a submitted field matches an attack signature.
	ErrAttackDetected = errors.New("attack signature detected")
	// ErrCSRFMismatch covers absent, stale, and cross-session CSRF tokens alike.
	ErrCSRFMismatch   = errors.New("csrf token invalid")
	ErrSessionExpired = errors.New("session expired")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidInput   = errors.New("invalid input")
	ErrConflict       = errors.New("conflict")
	// ErrMaintenanceActive short-circuits requests while the maintenance gate is closed.
	ErrMaintenanceActive = errors.New("maintenance mode active")
	// ErrLastAdmin prevents deleting the only remaining administrator account.
	// Without this guard the admin area can be locked out permanently.
	ErrLastAdmin = errors.New("cannot delete last administrator")
	// ErrStoreUnavailable indicates a security-critical store call failed or timed out.
	// Gates treat it as a deny (fail closed).
	ErrStoreUnavailable = errors.New("store unavailable")
)
