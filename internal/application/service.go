package application

import (
	"time"

	"github.com/dinkominfo-madiun/appcensus/internal/ports"
)

// RateLimitPolicy is one fixed-window budget: maxAttempts hits per window.
type RateLimitPolicy struct {
	MaxAttempts int
	Window      time.Duration
}

// Config is the resolved policy configuration for the security core.
type Config struct {
	SiteName string
	// Agencies is the closed list of reporting agencies accepted on the form.
	Agencies []string

	MaxLoginAttempts   int
	LockoutDuration    time.Duration
	SessionIdleTimeout time.Duration

	// RateLimits maps an action category to its budget. Categories without an
	// entry are not limited.
	RateLimits map[string]RateLimitPolicy

	// MaintenanceAllowedIPs are exempt from the maintenance gate.
	MaintenanceAllowedIPs []string

	// StoreTimeout bounds calls into the persistent stores on the request
	// path so a slow store degrades to a deny instead of a hung request.
	StoreTimeout time.Duration
}

// Rate-limit action categories.
const (
	RateLimitLogin       = "login"
	RateLimitFormSubmit  = "form_submit"
	RateLimitExport      = "export"
	RateLimitAdminAccess = "admin_access"
)

type Service struct {
	cfg         Config
	accounts    ports.AccountRepository
	submissions ports.SubmissionRepository
	activity    ports.ActivityLogRepository
	sessions    ports.SessionStore
	rates       ports.RateLimitStore
	maintenance ports.MaintenanceStore
	incidents   ports.IncidentSink
	hasher      ports.PasswordHasher
	signer      ports.TokenSigner

	// maintenanceNotify lets the runtime reflect gate state elsewhere
	// (gRPC health). Optional.
	maintenanceNotify func(enabled bool)

	nowFn func() time.Time
}

type Dependencies struct {
	Config            Config
	Accounts          ports.AccountRepository
	Submissions       ports.SubmissionRepository
	Activity          ports.ActivityLogRepository
	Sessions          ports.SessionStore
	RateLimits        ports.RateLimitStore
	Maintenance       ports.MaintenanceStore
	Incidents         ports.IncidentSink
	Hasher            ports.PasswordHasher
	TokenSigner       ports.TokenSigner
	MaintenanceNotify func(enabled bool)

	// Now overrides the service clock. Nil means wall clock in UTC.
	Now func() time.Time
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 3 * time.Second
	}
	if cfg.SessionIdleTimeout <= 0 {
		cfg.SessionIdleTimeout = time.Hour
	}
	nowFn := deps.Now
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		cfg:               cfg,
		accounts:          deps.Accounts,
		submissions:       deps.Submissions,
		activity:          deps.Activity,
		sessions:          deps.Sessions,
		rates:             deps.RateLimits,
		maintenance:       deps.Maintenance,
		incidents:         deps.Incidents,
		hasher:            deps.Hasher,
		signer:            deps.TokenSigner,
		maintenanceNotify: deps.MaintenanceNotify,
		nowFn:             nowFn,
	}
}

// SessionIdleTimeout exposes the configured idle window for cookie TTLs.
func (s *Service) SessionIdleTimeout() time.Duration {
	return s.cfg.SessionIdleTimeout
}

// Agencies returns the configured reporting-agency list for the form.
func (s *Service) Agencies() []string {
	return s.cfg.Agencies
}
