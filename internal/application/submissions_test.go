package application

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
)

func startVisitorSession(t *testing.T, f *fixture) *domain.Session {
	t.Helper()
	session, _, err := f.service.StartSession(context.Background(), "10.0.0.9", "unit-test")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	return &session
}

func TestSubmitApplicationStoresAndAudits(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	session := startVisitorSession(t, f)

	item, err := f.service.SubmitApplication(ctx, session, validSubmissionRequest(session.CSRFToken))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(f.submissions.items) != 1 || f.submissions.items[0].SubmissionID != item.SubmissionID {
		t.Fatalf("returned item does not match stored record")
	}
	if item.AppName != "Sistem Informasi Sekolah" {
		t.Fatalf("unexpected app name %q", item.AppName)
	}
	if got := f.activity.countAction(domain.EventSubmissionCreated); got != 1 {
		t.Fatalf("expected 1 SUBMISSION_CREATED record, got %d", got)
	}
}

func TestSubmitApplicationBlocksAttackPayloads(t *testing.T) {
	t.Parallel()

	payloads := []struct {
		name  string
		field func(*SubmissionRequest, string)
		value string
	}{
		{"sql tautology", func(r *SubmissionRequest, v string) { r.Description = v }, "x' OR 1=1 --"},
		{"union select", func(r *SubmissionRequest, v string) { r.AppName = v }, "apps UNION SELECT password"},
		{"script tag", func(r *SubmissionRequest, v string) { r.ManagerName = v }, "<script>alert(1)</script>"},
		{"event handler", func(r *SubmissionRequest, v string) { r.Description = v }, `<img onerror=alert(1)>`},
		{"path traversal", func(r *SubmissionRequest, v string) { r.InactiveReason = v }, "../../etc/passwd"},
		{"php tag", func(r *SubmissionRequest, v string) { r.Description = v }, "<?php system($_GET['c']); ?>"},
	}

	for _, tc := range payloads {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			ctx := context.Background()
			session := startVisitorSession(t, f)

			req := validSubmissionRequest(session.CSRFToken)
			tc.field(&req, tc.value)

			_, err := f.service.SubmitApplication(ctx, session, req)
			if !errors.Is(err, domain.ErrAttackDetected) {
				t.Fatalf("expected attack detected, got %v", err)
			}
			if got := f.activity.countAction(domain.EventFormAttackBlocked); got != 1 {
				t.Fatalf("expected 1 FORM_ATTACK_BLOCKED record, got %d", got)
			}
			if len(f.submissions.items) != 0 {
				t.Fatalf("blocked submission must not be stored")
			}
		})
	}
}

func TestSubmitApplicationAcceptsBenignText(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	session := startVisitorSession(t, f)

	// Ordinary Indonesian prose that merely mentions risky words.
	req := validSubmissionRequest(session.CSRFToken)
	req.Description = "Aplikasi untuk menghapus arsip lama dan update data sekolah setiap semester"

	if _, err := f.service.SubmitApplication(ctx, session, req); err != nil {
		t.Fatalf("benign submission rejected: %v", err)
	}
}

func TestSubmitApplicationRejectsCSRFMismatch(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	session := startVisitorSession(t, f)

	_, err := f.service.SubmitApplication(ctx, session, validSubmissionRequest("not-the-token"))
	if !errors.Is(err, domain.ErrCSRFMismatch) {
		t.Fatalf("expected csrf mismatch, got %v", err)
	}
	if got := f.activity.countAction(domain.EventSecurityIncident); got != 1 {
		t.Fatalf("expected 1 SECURITY_INCIDENT record, got %d", got)
	}
}

func TestSubmitApplicationRateLimitWindow(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	session := startVisitorSession(t, f)

	// Budget is 5 per minute per IP. The token rotates per request in the
	// handler; here reusing it is fine since validation does not consume it.
	for i := 0; i < 5; i++ {
		if _, err := f.service.SubmitApplication(ctx, session, validSubmissionRequest(session.CSRFToken)); err != nil {
			t.Fatalf("submission %d should pass: %v", i+1, err)
		}
	}
	if _, err := f.service.SubmitApplication(ctx, session, validSubmissionRequest(session.CSRFToken)); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected rate limited on sixth submission, got %v", err)
	}
	if got := f.activity.countAction(domain.EventRateLimitExceeded); got != 1 {
		t.Fatalf("expected 1 RATE_LIMIT_EXCEEDED record, got %d", got)
	}

	// A fresh window restores the budget.
	f.clock.Advance(61 * time.Second)
	if _, err := f.service.SubmitApplication(ctx, session, validSubmissionRequest(session.CSRFToken)); err != nil {
		t.Fatalf("submission after window reset should pass: %v", err)
	}
}

func TestSubmitApplicationValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*SubmissionRequest)
	}{
		{"unknown agency", func(r *SubmissionRequest) { r.AgencyName = "Dinas Fiktif" }},
		{"short app name", func(r *SubmissionRequest) { r.AppName = "ab" }},
		{"bad phone", func(r *SubmissionRequest) { r.ManagerPhone = "12345" }},
		{"bad url scheme", func(r *SubmissionRequest) { r.DomainURL = "ftp://sekolah.example.go.id" }},
		{"invalid category", func(r *SubmissionRequest) { r.Category = "Aplikasi Rahasia" }},
		{"inactive without reason", func(r *SubmissionRequest) {
			r.Status = domain.StatusInactive
			r.InactiveReason = ""
		}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			ctx := context.Background()
			session := startVisitorSession(t, f)

			req := validSubmissionRequest(session.CSRFToken)
			tc.mutate(&req)

			if _, err := f.service.SubmitApplication(ctx, session, req); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestListSubmissionsClampsLimit(t *testing.T) {
	t.Parallel()

	cfg := defaultTestConfig()
	cfg.RateLimits[RateLimitFormSubmit] = RateLimitPolicy{MaxAttempts: 100, Window: time.Minute}
	f := newFixtureWithConfig(cfg)
	ctx := context.Background()
	session := startVisitorSession(t, f)

	for i := 0; i < 30; i++ {
		if _, err := f.service.SubmitApplication(ctx, session, validSubmissionRequest(session.CSRFToken)); err != nil {
			t.Fatalf("seed submission %d: %v", i+1, err)
		}
	}

	items, err := f.service.ListSubmissions(ctx, 0, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 25 {
		t.Fatalf("expected default page of 25, got %d", len(items))
	}

	items, err = f.service.ListSubmissions(ctx, 500, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 25 {
		t.Fatalf("oversized limit must clamp to default, got %d", len(items))
	}
}

func TestExportCSVFormat(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	session := startVisitorSession(t, f)

	if _, err := f.service.SubmitApplication(ctx, session, validSubmissionRequest(session.CSRFToken)); err != nil {
		t.Fatalf("seed submission: %v", err)
	}

	admin := f.seedAccount("rina", "rahasia-01")
	actor := domain.Session{AccountID: &admin.AccountID, Username: "rina", IPAddress: "10.0.0.5", UserAgent: "unit-test"}

	out, err := f.service.ExportCSV(ctx, actor)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatalf("export must start with a UTF-8 byte order mark")
	}
	body := string(out[3:])
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "No,OPD,Nama Aplikasi") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "Sistem Informasi Sekolah") {
		t.Fatalf("row missing app name: %q", lines[1])
	}
	if !strings.Contains(lines[1], "2025-06-01 09:00:00") {
		t.Fatalf("row missing formatted timestamp: %q", lines[1])
	}
	if got := f.activity.countAction(domain.EventDataExport); got != 1 {
		t.Fatalf("expected 1 DATA_EXPORT record, got %d", got)
	}
}

func TestExportCSVRateLimited(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	admin := f.seedAccount("rina", "rahasia-01")
	actor := domain.Session{AccountID: &admin.AccountID, Username: "rina", IPAddress: "10.0.0.5", UserAgent: "unit-test"}

	for i := 0; i < 3; i++ {
		if _, err := f.service.ExportCSV(ctx, actor); err != nil {
			t.Fatalf("export %d should pass: %v", i+1, err)
		}
	}
	if _, err := f.service.ExportCSV(ctx, actor); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected rate limited on fourth export, got %v", err)
	}
}
