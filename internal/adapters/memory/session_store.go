// Package memory provides in-process twins of the Redis-backed stores for
// local runs and tests. They honor the same contracts, including window
// expiry and atomic counting, against an injectable clock.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
)

type sessionEntry struct {
	session   domain.Session
	expiresAt time.Time
}

// SessionStore is a mutex-guarded map with per-entry TTL.
type SessionStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]sessionEntry
	now     func() time.Time
}

func NewSessionStore(now func() time.Time) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		entries: make(map[uuid.UUID]sessionEntry),
		now:     now,
	}
}

func (s *SessionStore) Put(_ context.Context, session domain.Session, idleTTL time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[session.SessionID] = sessionEntry{
		session:   session,
		expiresAt: s.now().Add(idleTTL),
	}
	return nil
}

func (s *SessionStore) Get(_ context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sessionID]
	if !ok {
		return nil, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, sessionID)
		return nil, nil
	}
	copied := entry.session
	return &copied, nil
}

func (s *SessionStore) SetCSRFToken(_ context.Context, sessionID uuid.UUID, token string, idleTTL time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sessionID]
	if !ok {
		return nil
	}
	entry.session.CSRFToken = token
	entry.expiresAt = s.now().Add(idleTTL)
	s.entries[sessionID] = entry
	return nil
}

func (s *SessionStore) Touch(_ context.Context, sessionID uuid.UUID, at time.Time, idleTTL time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sessionID]
	if !ok {
		return nil
	}
	entry.session.LastActivityAt = at
	entry.expiresAt = at.Add(idleTTL)
	s.entries[sessionID] = entry
	return nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
