package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dinkominfo-madiun/appcensus/internal/adapters/memory"
	"github.com/dinkominfo-madiun/appcensus/internal/domain"
	"github.com/dinkominfo-madiun/appcensus/internal/ports"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	service     *Service
	clock       *testClock
	accounts    *fakeAccounts
	submissions *fakeSubmissions
	activity    *fakeActivity
	incidents   *fakeIncidents
	maintenance *fakeMaintenance
	sessions    *memory.SessionStore
}

func defaultTestConfig() Config {
	return Config{
		SiteName:           "census-test",
		Agencies:           []string{"Dinas Komunikasi dan Informatika", "Dinas Pendidikan"},
		MaxLoginAttempts:   5,
		LockoutDuration:    15 * time.Minute,
		SessionIdleTimeout: time.Hour,
		RateLimits: map[string]RateLimitPolicy{
			RateLimitLogin:      {MaxAttempts: 10, Window: 5 * time.Minute},
			RateLimitFormSubmit: {MaxAttempts: 5, Window: time.Minute},
			RateLimitExport:     {MaxAttempts: 3, Window: 10 * time.Minute},
		},
		MaintenanceAllowedIPs: []string{"127.0.0.1"},
		StoreTimeout:          time.Second,
	}
}

func newFixture() *fixture {
	return newFixtureWithConfig(defaultTestConfig())
}

func newFixtureWithConfig(cfg Config) *fixture {
	clock := newTestClock()
	accounts := &fakeAccounts{
		byUsername: make(map[string]domain.Account),
		byID:       make(map[uuid.UUID]domain.Account),
	}
	submissions := &fakeSubmissions{}
	activity := &fakeActivity{}
	incidents := &fakeIncidents{}
	maintenance := &fakeMaintenance{}
	sessions := memory.NewSessionStore(clock.Now)
	rates := memory.NewRateLimitStore(clock.Now)

	svc := NewService(Dependencies{
		Config:      cfg,
		Accounts:    accounts,
		Submissions: submissions,
		Activity:    activity,
		Sessions:    sessions,
		RateLimits:  rates,
		Maintenance: maintenance,
		Incidents:   incidents,
		Hasher:      &fakeHasher{},
		TokenSigner: &fakeSigner{tokens: map[string]ports.SessionClaims{}},
		Now:         clock.Now,
	})

	return &fixture{
		service:     svc,
		clock:       clock,
		accounts:    accounts,
		submissions: submissions,
		activity:    activity,
		incidents:   incidents,
		maintenance: maintenance,
		sessions:    sessions,
	}
}

func (f *fixture) seedAccount(username, password string) domain.Account {
	account := domain.Account{
		AccountID:    uuid.New(),
		Username:     username,
		PasswordHash: "hashed:" + password,
		CreatedAt:    f.clock.Now(),
		UpdatedAt:    f.clock.Now(),
	}
	f.accounts.mu.Lock()
	f.accounts.byUsername[username] = account
	f.accounts.byID[account.AccountID] = account
	f.accounts.mu.Unlock()
	return account
}

func validSubmissionRequest(csrf string) SubmissionRequest {
	return SubmissionRequest{
		AgencyName:   "Dinas Pendidikan",
		AppName:      "Sistem Informasi Sekolah",
		Description:  "Aplikasi manajemen data sekolah",
		DomainURL:    "https://sekolah.example.go.id",
		Category:     domain.CategoryRegional,
		Status:       domain.StatusActive,
		ManagerName:  "Budi Santoso",
		ManagerPhone: "081234567890",
		CSRFToken:    csrf,
		IPAddress:    "10.0.0.9",
		UserAgent:    "unit-test",
	}
}

type fakeAccounts struct {
	mu         sync.Mutex
	byUsername map[string]domain.Account
	byID       map[uuid.UUID]domain.Account
	failRecord bool
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byUsername[username]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return account, nil
}

func (f *fakeAccounts) GetByID(_ context.Context, accountID uuid.UUID) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[accountID]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return account, nil
}

func (f *fakeAccounts) List(_ context.Context) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.Account, 0, len(f.byID))
	for _, account := range f.byID {
		result = append(result, account)
	}
	return result, nil
}

func (f *fakeAccounts) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byID)), nil
}

func (f *fakeAccounts) Create(_ context.Context, params ports.CreateAccountParams) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byUsername[params.Username]; exists {
		return domain.Account{}, domain.ErrConflict
	}
	account := domain.Account{
		AccountID:    uuid.New(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		CreatedAt:    params.CreatedAt,
		UpdatedAt:    params.CreatedAt,
	}
	f.byUsername[account.Username] = account
	f.byID[account.AccountID] = account
	return account, nil
}

func (f *fakeAccounts) RecordFailure(_ context.Context, accountID uuid.UUID, now time.Time, maxAttempts int, lockout time.Duration) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRecord {
		return domain.Account{}, errors.New("store down")
	}
	account, ok := f.byID[accountID]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	// Mirrors the single-statement repository update: an active lock
	// freezes the counter and keeps the original deadline.
	if !account.Locked(now) {
		account.LoginAttempts++
		if account.LoginAttempts >= maxAttempts {
			until := now.Add(lockout)
			account.LockedUntil = &until
		}
	}
	account.UpdatedAt = now
	f.byID[accountID] = account
	f.byUsername[account.Username] = account
	return account, nil
}

func (f *fakeAccounts) RecordSuccess(_ context.Context, accountID uuid.UUID, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	account.LoginAttempts = 0
	account.LockedUntil = nil
	account.LastLoginAt = &now
	account.UpdatedAt = now
	f.byID[accountID] = account
	f.byUsername[account.Username] = account
	return nil
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, accountID uuid.UUID, passwordHash string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	account.PasswordHash = passwordHash
	account.LoginAttempts = 0
	account.LockedUntil = nil
	account.UpdatedAt = now
	f.byID[accountID] = account
	f.byUsername[account.Username] = account
	return nil
}

func (f *fakeAccounts) Unlock(_ context.Context, accountID uuid.UUID, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	account.LoginAttempts = 0
	account.LockedUntil = nil
	account.UpdatedAt = now
	f.byID[accountID] = account
	f.byUsername[account.Username] = account
	return nil
}

func (f *fakeAccounts) Delete(_ context.Context, accountID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, accountID)
	delete(f.byUsername, account.Username)
	return nil
}

type fakeSubmissions struct {
	mu    sync.Mutex
	items []domain.Submission
}

func (f *fakeSubmissions) Insert(_ context.Context, submission domain.Submission) (domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, submission)
	return submission, nil
}

func (f *fakeSubmissions) GetByID(_ context.Context, submissionID uuid.UUID) (domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.SubmissionID == submissionID {
			return item, nil
		}
	}
	return domain.Submission{}, domain.ErrNotFound
}

func (f *fakeSubmissions) List(_ context.Context, limit, offset int) ([]domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.Submission, 0, limit)
	for i := len(f.items) - 1 - offset; i >= 0 && len(result) < limit; i-- {
		result = append(result, f.items[i])
	}
	return result, nil
}

func (f *fakeSubmissions) ListAll(_ context.Context) ([]domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.Submission, len(f.items))
	copy(result, f.items)
	return result, nil
}

func (f *fakeSubmissions) Stats(_ context.Context) (ports.SubmissionStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := ports.SubmissionStats{Total: int64(len(f.items))}
	for _, item := range f.items {
		switch item.Status {
		case domain.StatusActive:
			stats.Active++
		case domain.StatusInactive:
			stats.Inactive++
		}
		switch item.Category {
		case domain.CategoryRegional:
			stats.Regional++
		case domain.CategoryNational:
			stats.National++
		case domain.CategoryOther:
			stats.OtherCategory++
		}
	}
	return stats, nil
}

type fakeActivity struct {
	mu         sync.Mutex
	records    []domain.ActivityRecord
	failInsert bool
}

func (f *fakeActivity) Insert(_ context.Context, record domain.ActivityRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return errors.New("activity store down")
	}
	record.ID = int64(len(f.records) + 1)
	f.records = append(f.records, record)
	return nil
}

func (f *fakeActivity) ListRecent(_ context.Context, limit int) ([]domain.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.ActivityRecord, 0, limit)
	for i := len(f.records) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, f.records[i])
	}
	return result, nil
}

func (f *fakeActivity) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.records[:0]
	var removed int64
	for _, record := range f.records {
		if record.RecordedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, record)
	}
	f.records = kept
	return removed, nil
}

func (f *fakeActivity) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	actions := make([]string, 0, len(f.records))
	for _, record := range f.records {
		actions = append(actions, record.Action)
	}
	return actions
}

func (f *fakeActivity) countAction(action string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, record := range f.records {
		if record.Action == action {
			count++
		}
	}
	return count
}

type fakeIncidents struct {
	mu    sync.Mutex
	lines []string
}

func (f *fakeIncidents) Write(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, line)
	return nil
}

type fakeMaintenance struct {
	mu        sync.Mutex
	state     domain.MaintenanceState
	failState bool
}

func (f *fakeMaintenance) State() (domain.MaintenanceState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failState {
		return domain.MaintenanceState{}, errors.New("flag unreadable")
	}
	return f.state, nil
}

func (f *fakeMaintenance) Enable(message, initiator string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = domain.MaintenanceState{Enabled: true, Message: message, Initiator: initiator, EnabledAt: at}
	return nil
}

func (f *fakeMaintenance) Disable() (domain.MaintenanceState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prior := f.state
	f.state = domain.MaintenanceState{}
	return prior, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("hash mismatch")
	}
	return nil
}

type fakeSigner struct {
	mu     sync.Mutex
	tokens map[string]ports.SessionClaims
}

func (f *fakeSigner) Sign(claims ports.SessionClaims) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := fmt.Sprintf("token-%s", claims.SessionID)
	f.tokens[token] = claims
	return token, nil
}

func (f *fakeSigner) ParseAndValidate(token string) (ports.SessionClaims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	claims, ok := f.tokens[token]
	if !ok {
		return ports.SessionClaims{}, errors.New("unknown token")
	}
	return claims, nil
}
