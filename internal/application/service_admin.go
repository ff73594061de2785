package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
	"github.com/dinkominfo-madiun/appcensus/internal/ports"
)

// AdminActor identifies who performed an operator action, for the audit
// trail. CLI invocations carry a username only.
type AdminActor struct {
	AccountID *uuid.UUID
	Username  string
	IPAddress string
	UserAgent string
}

// CreateAdmin provisions a new administrator account.
func (s *Service) CreateAdmin(ctx context.Context, actor AdminActor, username, email, password string) (AdminItem, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return AdminItem{}, fmt.Errorf("%w: username must be at least 3 characters", domain.ErrInvalidInput)
	}
	if err := domain.ValidatePassword(password); err != nil {
		return AdminItem{}, err
	}
	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return AdminItem{}, fmt.Errorf("%w: username already exists", domain.ErrConflict)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return AdminItem{}, fmt.Errorf("hash password: %w", err)
	}
	account, err := s.accounts.Create(ctx, ports.CreateAccountParams{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		CreatedAt:    s.nowFn(),
	})
	if err != nil {
		return AdminItem{}, fmt.Errorf("create account: %w", err)
	}

	s.audit(ctx, auditEntry{
		Action:      domain.EventAdminCreated,
		SubjectType: "account",
		SubjectID:   account.AccountID.String(),
		ActorID:     actor.AccountID,
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
		Metadata:    map[string]any{"username": account.Username, "by": actor.Username},
	})
	return toAdminItem(account), nil
}

// ResetAdminPassword replaces an account's password and clears any active
// lock, so a reset always restores access immediately.
func (s *Service) ResetAdminPassword(ctx context.Context, actor AdminActor, username, password string) error {
	account, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, account.AccountID, hash, s.nowFn()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.audit(ctx, auditEntry{
		Action:      domain.EventAdminPasswordReset,
		SubjectType: "account",
		SubjectID:   account.AccountID.String(),
		ActorID:     actor.AccountID,
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
		Metadata:    map[string]any{"username": account.Username, "by": actor.Username},
	})
	return nil
}

// UnlockAccount clears the attempt counter and lock expiry for a locked
// administrator without touching the password.
func (s *Service) UnlockAccount(ctx context.Context, actor AdminActor, username string) error {
	account, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return err
	}
	if err := s.accounts.Unlock(ctx, account.AccountID, s.nowFn()); err != nil {
		return fmt.Errorf("unlock account: %w", err)
	}
	s.audit(ctx, auditEntry{
		Action:      domain.EventAccountUnlocked,
		SubjectType: "account",
		SubjectID:   account.AccountID.String(),
		ActorID:     actor.AccountID,
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
		Metadata:    map[string]any{"username": account.Username, "by": actor.Username},
	})
	return nil
}

// DeleteAdmin removes an administrator account. The last remaining account
// cannot be deleted; the system must always keep one way in.
func (s *Service) DeleteAdmin(ctx context.Context, actor AdminActor, username string) error {
	account, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return err
	}
	count, err := s.accounts.Count(ctx)
	if err != nil {
		return fmt.Errorf("count accounts: %w", err)
	}
	if count <= 1 {
		return domain.ErrLastAdmin
	}
	if err := s.accounts.Delete(ctx, account.AccountID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.audit(ctx, auditEntry{
		Action:      domain.EventAdminDeleted,
		SubjectType: "account",
		SubjectID:   account.AccountID.String(),
		ActorID:     actor.AccountID,
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
		Metadata:    map[string]any{"username": account.Username, "by": actor.Username},
	})
	return nil
}

// ListAdmins returns every administrator account with its lockout state.
func (s *Service) ListAdmins(ctx context.Context) ([]AdminItem, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	items := make([]AdminItem, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, toAdminItem(a))
	}
	return items, nil
}

// CleanActivityLogs deletes audit records older than the retention period and
// records the cleanup itself.
func (s *Service) CleanActivityLogs(ctx context.Context, actor AdminActor, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, fmt.Errorf("%w: retention must be positive", domain.ErrInvalidInput)
	}
	cutoff := s.nowFn().Add(-retention)
	removed, err := s.activity.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("clean activity logs: %w", err)
	}
	s.audit(ctx, auditEntry{
		Action:    domain.EventLogCleanup,
		ActorID:   actor.AccountID,
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
		Metadata:  map[string]any{"removed": removed, "cutoff": cutoff.Format(time.RFC3339), "by": actor.Username},
	})
	return removed, nil
}
