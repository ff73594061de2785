package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
)

// auditEntry carries the request context every audit record shares.
type auditEntry struct {
	Action      string
	SubjectType string
	SubjectID   string
	ActorID     *uuid.UUID
	IPAddress   string
	UserAgent   string
	Metadata    map[string]any
}

// audit is the single choke point for the activity trail. It is best-effort
// telemetry: a failed insert is reported to slog and the incident sink, never
// to the caller, so logging can never abort the operation it annotates.
func (s *Service) audit(ctx context.Context, entry auditEntry) {
	now := s.nowFn()
	record := domain.ActivityRecord{
		Action:      entry.Action,
		SubjectType: entry.SubjectType,
		SubjectID:   entry.SubjectID,
		ActorID:     entry.ActorID,
		IPAddress:   entry.IPAddress,
		UserAgent:   entry.UserAgent,
		Metadata:    entry.Metadata,
		RecordedAt:  now,
	}

	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.StoreTimeout)
	defer cancel()
	err := s.activity.Insert(insertCtx, record)
	if err == nil {
		return
	}
	slog.Default().WarnContext(ctx, "activity log insert failed",
		"service", s.cfg.SiteName,
		"module", "application",
		"layer", "application",
		"operation", "audit",
		"outcome", "failure",
		"action", entry.Action,
		"error", err,
	)

	if s.incidents == nil {
		return
	}
	meta, _ := json.Marshal(entry.Metadata)
	line := fmt.Sprintf("%s [%s] %s %s", now.Format("2006-01-02 15:04:05"), entry.Action, entry.IPAddress, meta)
	if err := s.incidents.Write(line); err != nil {
		slog.Default().ErrorContext(ctx, "incident sink write failed",
			"service", s.cfg.SiteName,
			"module", "application",
			"layer", "application",
			"operation", "audit_fallback",
			"outcome", "failure",
			"action", entry.Action,
			"error", err,
		)
	}
}

// RecentActivity returns the newest audit records for the admin dashboard.
func (s *Service) RecentActivity(ctx context.Context, limit int) ([]domain.ActivityRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.activity.ListRecent(ctx, limit)
}
