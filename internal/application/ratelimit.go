package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
)

// CheckRateLimit enforces the fixed-window budget for one action category.
// The increment-and-compare is atomic at the store, so concurrent requests on
// the same (category, identifier) key cannot share the last slot. A store
// failure denies the request: rate limiting is a security gate and fails
// closed. Denial is not audited here; callers decide whether to escalate.
//
// Fixed windows admit a burst of up to twice the budget across a window
// boundary. That is the documented policy, not an oversight.
func (s *Service) CheckRateLimit(ctx context.Context, category, identifier string) error {
	policy, ok := s.cfg.RateLimits[category]
	if !ok || policy.MaxAttempts <= 0 || policy.Window <= 0 {
		return nil
	}

	hitCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	count, err := s.rates.Hit(hitCtx, category, identifier, policy.Window)
	if err != nil {
		slog.Default().ErrorContext(ctx, "rate-limit store unavailable",
			"service", s.cfg.SiteName,
			"module", "application",
			"layer", "application",
			"operation", "rate_limit",
			"outcome", "failure",
			"category", category,
			"error", err,
		)
		return fmt.Errorf("%w: rate-limit store", domain.ErrStoreUnavailable)
	}
	if count > int64(policy.MaxAttempts) {
		return domain.ErrRateLimited
	}
	return nil
}
