package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
)

// CheckMaintenance gates a request on the maintenance flag. identifier is the
// client IP; addresses on the allow list pass through so operators can verify
// the site while it is down. A flag that cannot be read counts as active.
func (s *Service) CheckMaintenance(ctx context.Context, identifier string) error {
	state, err := s.maintenance.State()
	if err != nil {
		slog.Default().ErrorContext(ctx, "maintenance flag read failed",
			"service", s.cfg.SiteName,
			"module", "application",
			"layer", "application",
			"operation", "check_maintenance",
			"outcome", "failure",
			"error", err,
		)
		return fmt.Errorf("%w: maintenance flag unreadable", domain.ErrMaintenanceActive)
	}
	if !state.Enabled {
		return nil
	}
	for _, allowed := range s.cfg.MaintenanceAllowedIPs {
		if strings.TrimSpace(allowed) == identifier {
			return nil
		}
	}
	if state.Message != "" {
		return fmt.Errorf("%w: %s", domain.ErrMaintenanceActive, state.Message)
	}
	return domain.ErrMaintenanceActive
}

// EnableMaintenance raises the flag. Enabling an already-enabled gate just
// rewrites the flag with the new message and initiator.
func (s *Service) EnableMaintenance(ctx context.Context, actor AdminActor, message string) error {
	now := s.nowFn()
	if err := s.maintenance.Enable(message, actor.Username, now); err != nil {
		return fmt.Errorf("enable maintenance: %w", err)
	}
	if s.maintenanceNotify != nil {
		s.maintenanceNotify(true)
	}
	s.audit(ctx, auditEntry{
		Action:    domain.EventMaintenanceEnabled,
		ActorID:   actor.AccountID,
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
		Metadata:  map[string]any{"message": message, "by": actor.Username},
	})
	return nil
}

// DisableMaintenance lowers the flag and reports how long it was up.
func (s *Service) DisableMaintenance(ctx context.Context, actor AdminActor) (MaintenanceStatus, error) {
	prior, err := s.maintenance.Disable()
	if err != nil {
		return MaintenanceStatus{}, fmt.Errorf("disable maintenance: %w", err)
	}
	if s.maintenanceNotify != nil {
		s.maintenanceNotify(false)
	}
	meta := map[string]any{"by": actor.Username}
	if prior.Enabled {
		meta["was_enabled_at"] = prior.EnabledAt.Format("2006-01-02 15:04:05")
		meta["was_enabled_by"] = prior.Initiator
	}
	s.audit(ctx, auditEntry{
		Action:    domain.EventMaintenanceOff,
		ActorID:   actor.AccountID,
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
		Metadata:  meta,
	})
	return MaintenanceStatus{
		Enabled:   prior.Enabled,
		Message:   prior.Message,
		Initiator: prior.Initiator,
		EnabledAt: prior.EnabledAt,
	}, nil
}

// MaintenanceState reports the current flag without gating semantics.
func (s *Service) MaintenanceState() (MaintenanceStatus, error) {
	state, err := s.maintenance.State()
	if err != nil {
		return MaintenanceStatus{}, fmt.Errorf("read maintenance flag: %w", err)
	}
	return MaintenanceStatus{
		Enabled:   state.Enabled,
		Message:   state.Message,
		Initiator: state.Initiator,
		EnabledAt: state.EnabledAt,
	}, nil
}
