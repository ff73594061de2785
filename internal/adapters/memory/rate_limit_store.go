package memory

import (
	"context"
	"sync"
	"time"
)

type windowEntry struct {
	count    int64
	windowAt time.Time
}

// RateLimitStore is the in-process fixed-window counter. A window starts on
// the first hit of a key and resets once its duration elapses.
type RateLimitStore struct {
	mu      sync.Mutex
	windows map[string]windowEntry
	now     func() time.Time
}

func NewRateLimitStore(now func() time.Time) *RateLimitStore {
	if now == nil {
		now = time.Now
	}
	return &RateLimitStore{
		windows: make(map[string]windowEntry),
		now:     now,
	}
}

func (s *RateLimitStore) Hit(_ context.Context, category, identifier string, window time.Duration) (int64, error) {
	key := category + ":" + identifier
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.windows[key]
	if !ok || now.Sub(entry.windowAt) >= window {
		s.windows[key] = windowEntry{count: 1, windowAt: now}
		return 1, nil
	}
	entry.count++
	s.windows[key] = entry
	return entry.count, nil
}
