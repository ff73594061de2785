package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
)

func TestReadIP(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.7:54321"
	if got := readIP(r); got != "203.0.113.7" {
		t.Fatalf("expected remote host, got %q", got)
	}

	// The first forwarded hop wins over the socket peer.
	r.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")
	if got := readIP(r); got != "198.51.100.4" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}
}

func TestSessionTokenFromRequest(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := sessionTokenFromRequest(r); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}

	r.Header.Set("Authorization", "Bearer header-token")
	if got := sessionTokenFromRequest(r); got != "header-token" {
		t.Fatalf("expected bearer token, got %q", got)
	}

	// The cookie takes precedence over the header.
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "cookie-token"})
	if got := sessionTokenFromRequest(r); got != "cookie-token" {
		t.Fatalf("expected cookie token, got %q", got)
	}
}

func TestDecodeBodyRejectsTrailingAndUnknown(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
	}

	var dst payload
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`))
	if err := decodeBody(r, &dst); err != nil || dst.Name != "a" {
		t.Fatalf("valid body rejected: %v", err)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))
	if err := decodeBody(r, &payload{}); err == nil {
		t.Fatalf("unknown field must be rejected")
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}{"name":"b"}`))
	if err := decodeBody(r, &payload{}); err == nil {
		t.Fatalf("trailing JSON value must be rejected")
	}
}

func TestMapDomainError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest, "VALIDATION_ERROR"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{domain.ErrAccountLocked, http.StatusTooManyRequests, "ACCOUNT_LOCKED"},
		{domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{domain.ErrSessionExpired, http.StatusUnauthorized, "SESSION_EXPIRED"},
		{domain.ErrCSRFMismatch, http.StatusForbidden, "SECURITY_ERROR"},
		{domain.ErrAttackDetected, http.StatusForbidden, "SECURITY_ERROR"},
		{domain.ErrMaintenanceActive, http.StatusServiceUnavailable, "MAINTENANCE"},
		{domain.ErrLastAdmin, http.StatusConflict, "LAST_ADMIN"},
		{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("wrapped: %w", domain.ErrRateLimited), http.StatusTooManyRequests, "RATE_LIMITED"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		status, code, msg := mapDomainError(tc.err)
		if status != tc.status || code != tc.code {
			t.Errorf("%v: got %d %s, want %d %s", tc.err, status, code, tc.status, tc.code)
		}
		if msg == "" {
			t.Errorf("%v: empty outward message", tc.err)
		}
	}
}

func TestSecurityRejectionsShareOneMessage(t *testing.T) {
	t.Parallel()

	_, _, csrfMsg := mapDomainError(domain.ErrCSRFMismatch)
	_, _, attackMsg := mapDomainError(domain.ErrAttackDetected)
	if csrfMsg != attackMsg {
		t.Fatalf("security rejections must not reveal the trigger: %q vs %q", csrfMsg, attackMsg)
	}
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	if got := parseIntDefault("", 25); got != 25 {
		t.Fatalf("empty must fall back, got %d", got)
	}
	if got := parseIntDefault("abc", 25); got != 25 {
		t.Fatalf("garbage must fall back, got %d", got)
	}
	if got := parseIntDefault("7", 25); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}
