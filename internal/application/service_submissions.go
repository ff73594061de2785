package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
	"github.com/dinkominfo-madiun/appcensus/internal/ports"
)

// SubmitApplication runs the public intake pipeline. The gates fire in a
// fixed order: rate limit, CSRF, attack scan, field validation. Each rejected
// stage answers with its own sentinel so the transport can keep the outward
// message non-specific while the audit trail stays precise.
func (s *Service) SubmitApplication(ctx context.Context, session *domain.Session, req SubmissionRequest) (SubmissionItem, error) {
	if err := s.CheckRateLimit(ctx, RateLimitFormSubmit, req.IPAddress); err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			s.audit(ctx, auditEntry{
				Action:    domain.EventRateLimitExceeded,
				IPAddress: req.IPAddress,
				UserAgent: req.UserAgent,
				Metadata:  map[string]any{"category": RateLimitFormSubmit},
			})
		}
		return SubmissionItem{}, err
	}

	if err := s.ValidateCSRFToken(session, req.CSRFToken); err != nil {
		s.audit(ctx, auditEntry{
			Action:    domain.EventSecurityIncident,
			IPAddress: req.IPAddress,
			UserAgent: req.UserAgent,
			Metadata:  map[string]any{"reason": "csrf_mismatch"},
		})
		return SubmissionItem{}, err
	}

	submission := domain.Submission{
		SubmissionID:   uuid.New(),
		AgencyName:     req.AgencyName,
		AppName:        req.AppName,
		Description:    req.Description,
		DomainURL:      req.DomainURL,
		Category:       req.Category,
		Status:         req.Status,
		InactiveReason: req.InactiveReason,
		ManagerName:    req.ManagerName,
		ManagerPhone:   req.ManagerPhone,
		IPAddress:      req.IPAddress,
		UserAgent:      req.UserAgent,
		CreatedAt:      s.nowFn(),
	}

	if field, hit := domain.ScanFields(submission.Fields()); hit {
		s.audit(ctx, auditEntry{
			Action:    domain.EventFormAttackBlocked,
			IPAddress: req.IPAddress,
			UserAgent: req.UserAgent,
			Metadata:  map[string]any{"field": field},
		})
		return SubmissionItem{}, domain.ErrAttackDetected
	}

	if err := submission.Validate(s.cfg.Agencies); err != nil {
		return SubmissionItem{}, err
	}

	stored, err := s.submissions.Insert(ctx, submission)
	if err != nil {
		return SubmissionItem{}, fmt.Errorf("store submission: %w", err)
	}

	s.audit(ctx, auditEntry{
		Action:      domain.EventSubmissionCreated,
		SubjectType: "submission",
		SubjectID:   stored.SubmissionID.String(),
		IPAddress:   req.IPAddress,
		UserAgent:   req.UserAgent,
		Metadata:    map[string]any{"agency": stored.AgencyName, "app_name": stored.AppName},
	})

	return toSubmissionItem(stored), nil
}

// ListSubmissions pages through stored submissions, newest first.
func (s *Service) ListSubmissions(ctx context.Context, limit, offset int) ([]SubmissionItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	records, err := s.submissions.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	items := make([]SubmissionItem, 0, len(records))
	for _, r := range records {
		items = append(items, toSubmissionItem(r))
	}
	return items, nil
}

// GetSubmission fetches one submission by id.
func (s *Service) GetSubmission(ctx context.Context, id uuid.UUID) (SubmissionItem, error) {
	record, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return SubmissionItem{}, err
	}
	return toSubmissionItem(record), nil
}

// Stats aggregates the dashboard counters.
func (s *Service) Stats(ctx context.Context) (ports.SubmissionStats, error) {
	return s.submissions.Stats(ctx)
}

var csvHeader = []string{
	"No", "OPD", "Nama Aplikasi", "Deskripsi", "URL/Domain", "Kategori", "Status",
	"Alasan Tidak Aktif", "Nama Pengelola", "No. HP Pengelola", "Tanggal Input",
}

// ExportCSV renders every submission as a spreadsheet-compatible CSV,
// oldest first, prefixed with a UTF-8 byte order mark so Excel decodes
// Indonesian text correctly.
func (s *Service) ExportCSV(ctx context.Context, actor domain.Session) ([]byte, error) {
	if err := s.CheckRateLimit(ctx, RateLimitExport, actor.IPAddress); err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			s.audit(ctx, auditEntry{
				Action:    domain.EventRateLimitExceeded,
				ActorID:   actor.AccountID,
				IPAddress: actor.IPAddress,
				UserAgent: actor.UserAgent,
				Metadata:  map[string]any{"category": RateLimitExport},
			})
		}
		return nil, err
	}

	records, err := s.submissions.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load submissions for export: %w", err)
	}

	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write export header: %w", err)
	}
	for i, r := range records {
		row := []string{
			strconv.Itoa(i + 1),
			r.AgencyName,
			r.AppName,
			r.Description,
			r.DomainURL,
			r.Category,
			r.Status,
			r.InactiveReason,
			r.ManagerName,
			r.ManagerPhone,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write export row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush export: %w", err)
	}

	s.audit(ctx, auditEntry{
		Action:      domain.EventDataExport,
		SubjectType: "submission",
		ActorID:     actor.AccountID,
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
		Metadata:    map[string]any{"rows": len(records), "username": actor.Username},
	})

	return buf.Bytes(), nil
}
