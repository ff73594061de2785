package application

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
	"github.com/dinkominfo-madiun/appcensus/internal/ports"
)

// StartSession creates a fresh anonymous session with a CSRF token and
// returns it together with its signed cookie token. Public form visitors get
// one of these on first contact.
func (s *Service) StartSession(ctx context.Context, ip, userAgent string) (domain.Session, string, error) {
	now := s.nowFn()
	session := domain.Session{
		SessionID:      uuid.New(),
		CSRFToken:      randomHex(32),
		IPAddress:      ip,
		UserAgent:      userAgent,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	putCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	if err := s.sessions.Put(putCtx, session, s.sessionTTL()); err != nil {
		return domain.Session{}, "", fmt.Errorf("create session: %w", err)
	}
	token, err := s.signer.Sign(ports.SessionClaims{SessionID: session.SessionID, IssuedAt: now})
	if err != nil {
		return domain.Session{}, "", fmt.Errorf("sign session token: %w", err)
	}
	return session, token, nil
}

// ResolveSession loads the session bound to a signed cookie token. A missing
// or invalid token resolves to nil without error; the caller decides whether
// anonymity is acceptable.
func (s *Service) ResolveSession(ctx context.Context, token string) (*domain.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	claims, err := s.signer.ParseAndValidate(token)
	if err != nil {
		return nil, nil
	}
	getCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.sessions.Get(getCtx, claims.SessionID)
}

// IssueCSRFToken regenerates the session's anti-forgery token. The previous
// value stops validating the moment the write lands.
func (s *Service) IssueCSRFToken(ctx context.Context, sessionID uuid.UUID) (string, error) {
	token := randomHex(32)
	setCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	if err := s.sessions.SetCSRFToken(setCtx, sessionID, token, s.sessionTTL()); err != nil {
		return "", fmt.Errorf("%w: csrf store", domain.ErrStoreUnavailable)
	}
	return token, nil
}

// ValidateCSRFToken compares the presented token against the session's
// current one in constant time. Any mismatch or absence is a validation
// failure, never a panic; the caller answers with a non-specific security
// message.
func (s *Service) ValidateCSRFToken(session *domain.Session, presented string) error {
	if session == nil || session.CSRFToken == "" || presented == "" {
		return domain.ErrCSRFMismatch
	}
	if subtle.ConstantTimeCompare([]byte(session.CSRFToken), []byte(presented)) != 1 {
		return domain.ErrCSRFMismatch
	}
	return nil
}

// Login drives the account lockout state machine.
//
// The lock is checked before the password so a locked account rejects
// immediately; the lock cools down on its own clock, independent of the
// rate-limit window. Credentials for a nonexistent account produce the same
// generic failure, and the same audit event, as a wrong password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return LoginResponse{}, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	if err := s.CheckRateLimit(ctx, RateLimitLogin, req.IPAddress); err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			s.audit(ctx, auditEntry{
				Action:    domain.EventRateLimitExceeded,
				IPAddress: req.IPAddress,
				UserAgent: req.UserAgent,
				Metadata:  map[string]any{"category": RateLimitLogin},
			})
		}
		return LoginResponse{}, err
	}

	now := s.nowFn()
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		s.audit(ctx, auditEntry{
			Action:    domain.EventLoginFailed,
			IPAddress: req.IPAddress,
			UserAgent: req.UserAgent,
			Metadata:  map[string]any{"username": username},
		})
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	if account.Locked(now) {
		s.audit(ctx, auditEntry{
			Action:      domain.EventLoginFailed,
			SubjectType: "account",
			SubjectID:   account.AccountID.String(),
			IPAddress:   req.IPAddress,
			UserAgent:   req.UserAgent,
			Metadata:    map[string]any{"username": username, "locked": true},
		})
		return LoginResponse{}, domain.ErrAccountLocked
	}

	if err := s.hasher.Compare(account.PasswordHash, req.Password); err != nil {
		updated, recErr := s.accounts.RecordFailure(ctx, account.AccountID, now, s.cfg.MaxLoginAttempts, s.cfg.LockoutDuration)
		s.audit(ctx, auditEntry{
			Action:      domain.EventLoginFailed,
			SubjectType: "account",
			SubjectID:   account.AccountID.String(),
			IPAddress:   req.IPAddress,
			UserAgent:   req.UserAgent,
			Metadata:    map[string]any{"username": username},
		})
		if recErr != nil {
			slog.Default().ErrorContext(ctx, "lockout state update failed",
				"service", s.cfg.SiteName,
				"module", "application",
				"layer", "application",
				"operation", "login",
				"outcome", "failure",
				"error", recErr,
			)
			// Fail closed: without a recorded failure the lockout counter
			// cannot be trusted.
			return LoginResponse{}, domain.ErrAccountLocked
		}
		if updated.Locked(now) {
			return LoginResponse{}, domain.ErrAccountLocked
		}
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	if err := s.accounts.RecordSuccess(ctx, account.AccountID, now); err != nil {
		return LoginResponse{}, fmt.Errorf("record login success: %w", err)
	}

	// Session identity is regenerated on authentication so a fixated
	// pre-login cookie never carries the authenticated principal.
	if req.PriorSessionID != nil {
		delCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
		_ = s.sessions.Delete(delCtx, *req.PriorSessionID)
		cancel()
	}

	session := domain.Session{
		SessionID:      uuid.New(),
		AccountID:      &account.AccountID,
		Username:       account.Username,
		CSRFToken:      randomHex(32),
		IPAddress:      req.IPAddress,
		UserAgent:      req.UserAgent,
		CreatedAt:      now,
		LoginAt:        &now,
		LastActivityAt: now,
	}
	putCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	if err := s.sessions.Put(putCtx, session, s.sessionTTL()); err != nil {
		return LoginResponse{}, fmt.Errorf("create session: %w", err)
	}
	token, err := s.signer.Sign(ports.SessionClaims{SessionID: session.SessionID, IssuedAt: now})
	if err != nil {
		return LoginResponse{}, fmt.Errorf("sign session token: %w", err)
	}

	s.audit(ctx, auditEntry{
		Action:      domain.EventLoginSuccess,
		SubjectType: "account",
		SubjectID:   account.AccountID.String(),
		ActorID:     &account.AccountID,
		IPAddress:   req.IPAddress,
		UserAgent:   req.UserAgent,
		Metadata:    map[string]any{"username": account.Username},
	})

	return LoginResponse{
		Token:     token,
		Session:   session,
		CSRFToken: session.CSRFToken,
		Username:  account.Username,
	}, nil
}

// Logout destroys the session and records the event.
func (s *Service) Logout(ctx context.Context, session domain.Session) error {
	delCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	if err := s.sessions.Delete(delCtx, session.SessionID); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	s.audit(ctx, auditEntry{
		Action:      domain.EventLogout,
		SubjectType: "account",
		SubjectID:   subjectID(session.AccountID),
		ActorID:     session.AccountID,
		IPAddress:   session.IPAddress,
		UserAgent:   session.UserAgent,
		Metadata:    map[string]any{"username": session.Username},
	})
	return nil
}

// RequireActiveSession validates session freshness before any protected
// content is touched. An idle session past the timeout is destroyed and
// audited; the caller redirects to re-authenticate. A fresh session gets its
// last-activity stamp refreshed.
func (s *Service) RequireActiveSession(ctx context.Context, token string) (domain.Session, error) {
	session, err := s.ResolveSession(ctx, token)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: session store", domain.ErrStoreUnavailable)
	}
	if session == nil || !session.Authenticated() {
		return domain.Session{}, domain.ErrUnauthorized
	}

	now := s.nowFn()
	if now.Sub(session.LastActivityAt) > s.cfg.SessionIdleTimeout {
		delCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
		_ = s.sessions.Delete(delCtx, session.SessionID)
		cancel()
		s.audit(ctx, auditEntry{
			Action:      domain.EventSessionTimeout,
			SubjectType: "account",
			SubjectID:   subjectID(session.AccountID),
			ActorID:     session.AccountID,
			IPAddress:   session.IPAddress,
			UserAgent:   session.UserAgent,
			Metadata:    map[string]any{"username": session.Username},
		})
		return domain.Session{}, domain.ErrSessionExpired
	}

	touchCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	_ = s.sessions.Touch(touchCtx, session.SessionID, now, s.sessionTTL())
	session.LastActivityAt = now
	return *session, nil
}

// sessionTTL is the backing-store expiry for session records. It trails the
// idle window by a minute so RequireActiveSession observes and audits the
// timeout before the store evicts the record.
func (s *Service) sessionTTL() time.Duration {
	return s.cfg.SessionIdleTimeout + time.Minute
}

func subjectID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

// randomHex returns a cryptographically random hex token.
func randomHex(bytesLen int) string {
	raw := make([]byte, bytesLen)
	_, _ = rand.Read(raw)
	return hex.EncodeToString(raw)
}
