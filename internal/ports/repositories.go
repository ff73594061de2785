package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
)

// CreateAccountParams captures administrator account creation inputs.
type CreateAccountParams struct {
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// AccountRepository defines persistence operations for administrator accounts.
// RecordFailure and RecordSuccess exist as single operations so the lockout
// transition stays atomic per account under concurrent login attempts.
type AccountRepository interface {
	GetByUsername(ctx context.Context, username string) (domain.Account, error)
	GetByID(ctx context.Context, accountID uuid.UUID) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, params CreateAccountParams) (domain.Account, error)
	// RecordFailure increments the attempt counter and sets the lock expiry in
	// one statement once the counter reaches maxAttempts. It returns the
	// post-update account state.
	RecordFailure(ctx context.Context, accountID uuid.UUID, now time.Time, maxAttempts int, lockout time.Duration) (domain.Account, error)
	// RecordSuccess resets the counter, clears any lock, and stamps last login.
	RecordSuccess(ctx context.Context, accountID uuid.UUID, now time.Time) error
	// UpdatePassword replaces the hash and unlocks the account.
	UpdatePassword(ctx context.Context, accountID uuid.UUID, passwordHash string, now time.Time) error
	Unlock(ctx context.Context, accountID uuid.UUID, now time.Time) error
	Delete(ctx context.Context, accountID uuid.UUID) error
}

// SubmissionStats is the dashboard aggregate over census records.
type SubmissionStats struct {
	Total         int64
	Active        int64
	Inactive      int64
	Regional      int64
	National      int64
	OtherCategory int64
}

// SubmissionRepository persists census application records.
type SubmissionRepository interface {
	Insert(ctx context.Context, submission domain.Submission) (domain.Submission, error)
	GetByID(ctx context.Context, submissionID uuid.UUID) (domain.Submission, error)
	List(ctx context.Context, limit, offset int) ([]domain.Submission, error)
	// ListAll returns every record ordered oldest first, for export.
	ListAll(ctx context.Context) ([]domain.Submission, error)
	Stats(ctx context.Context) (SubmissionStats, error)
}

// ActivityLogRepository stores the append-only audit trail.
// Records are never mutated or deleted by the core; DeleteOlderThan serves the
// operator-run retention command only.
type ActivityLogRepository interface {
	Insert(ctx context.Context, record domain.ActivityRecord) error
	ListRecent(ctx context.Context, limit int) ([]domain.ActivityRecord, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
