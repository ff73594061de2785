package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRateLimitStoreWindow(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	store := NewRateLimitStore(clock.Now)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, err := store.Hit(ctx, "login", "10.0.0.5", time.Minute)
		if err != nil {
			t.Fatalf("hit failed: %v", err)
		}
		if count != want {
			t.Fatalf("expected count %d, got %d", want, count)
		}
	}

	// Distinct identifiers and categories count separately.
	if count, _ := store.Hit(ctx, "login", "10.0.0.6", time.Minute); count != 1 {
		t.Fatalf("expected fresh counter for new identifier, got %d", count)
	}
	if count, _ := store.Hit(ctx, "export", "10.0.0.5", time.Minute); count != 1 {
		t.Fatalf("expected fresh counter for new category, got %d", count)
	}

	// Window elapses, counter resets.
	clock.Advance(time.Minute)
	if count, _ := store.Hit(ctx, "login", "10.0.0.5", time.Minute); count != 1 {
		t.Fatalf("expected reset after window, got %d", count)
	}
}

func TestRateLimitStoreConcurrentHits(t *testing.T) {
	t.Parallel()

	store := NewRateLimitStore(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan int64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, err := store.Hit(ctx, "login", "10.0.0.5", time.Hour)
			if err != nil {
				t.Errorf("hit failed: %v", err)
				return
			}
			results <- count
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for count := range results {
		if seen[count] {
			t.Fatalf("duplicate count %d, increments are not atomic", count)
		}
		seen[count] = true
	}
	if len(seen) != 100 {
		t.Fatalf("expected 100 distinct counts, got %d", len(seen))
	}
}

func TestSessionStoreLifecycle(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	store := NewSessionStore(clock.Now)
	ctx := context.Background()

	session := domain.Session{
		SessionID:      uuid.New(),
		CSRFToken:      "token-a",
		CreatedAt:      clock.Now(),
		LastActivityAt: clock.Now(),
	}
	if err := store.Put(ctx, session, time.Hour); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := store.Get(ctx, session.SessionID)
	if err != nil || got == nil {
		t.Fatalf("get failed: %v %v", got, err)
	}
	if got.CSRFToken != "token-a" {
		t.Fatalf("unexpected csrf token %q", got.CSRFToken)
	}

	clock.Advance(50 * time.Minute)
	if err := store.SetCSRFToken(ctx, session.SessionID, "token-b", time.Hour); err != nil {
		t.Fatalf("set csrf failed: %v", err)
	}
	got, _ = store.Get(ctx, session.SessionID)
	if got == nil || got.CSRFToken != "token-b" {
		t.Fatalf("csrf rotation not visible, got %+v", got)
	}

	// Rotation refreshes the expiry, so the session outlives the original
	// put deadline.
	clock.Advance(50 * time.Minute)
	if got, _ := store.Get(ctx, session.SessionID); got == nil {
		t.Fatalf("csrf rotation must refresh the session expiry")
	}

	if err := store.Delete(ctx, session.SessionID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got, _ := store.Get(ctx, session.SessionID); got != nil {
		t.Fatalf("deleted session still resolvable")
	}

	// Missing sessions resolve to nil without error.
	if got, err := store.Get(ctx, uuid.New()); err != nil || got != nil {
		t.Fatalf("expected nil,nil for unknown id, got %v %v", got, err)
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	store := NewSessionStore(clock.Now)
	ctx := context.Background()

	session := domain.Session{SessionID: uuid.New(), LastActivityAt: clock.Now()}
	if err := store.Put(ctx, session, time.Hour); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	clock.Advance(59 * time.Minute)
	if got, _ := store.Get(ctx, session.SessionID); got == nil {
		t.Fatalf("session inside ttl must resolve")
	}

	// Touch extends the expiry from the activity instant.
	if err := store.Touch(ctx, session.SessionID, clock.Now(), time.Hour); err != nil {
		t.Fatalf("touch failed: %v", err)
	}
	clock.Advance(59 * time.Minute)
	got, _ := store.Get(ctx, session.SessionID)
	if got == nil {
		t.Fatalf("touched session must outlive the original ttl")
	}
	if !got.LastActivityAt.Equal(clock.Now().Add(-59 * time.Minute)) {
		t.Fatalf("touch must update last activity, got %v", got.LastActivityAt)
	}

	clock.Advance(2 * time.Minute)
	if got, _ := store.Get(ctx, session.SessionID); got != nil {
		t.Fatalf("expired session must resolve to nil")
	}
}
