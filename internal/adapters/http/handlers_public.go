package http

import (
	"net/http"

	"github.com/dinkominfo-madiun/appcensus/internal/application"
)

// csrfToken hands the visitor a session cookie and an anti-forgery token.
// Calling it again rotates the token; the prior one stops validating.
func (h *Handler) csrfToken(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.ResolveSession(r.Context(), sessionTokenFromRequest(r))
	if err != nil {
		writeMappedError(r.Context(), w, "csrf_token", err)
		return
	}

	if session == nil {
		fresh, token, startErr := h.service.StartSession(r.Context(), readIP(r), r.UserAgent())
		if startErr != nil {
			writeMappedError(r.Context(), w, "csrf_token", startErr)
			return
		}
		setSessionCookie(w, token, h.service.SessionIdleTimeout())
		writeSuccess(w, http.StatusOK, map[string]any{"csrf_token": fresh.CSRFToken})
		return
	}

	token, err := h.service.IssueCSRFToken(r.Context(), session.SessionID)
	if err != nil {
		writeMappedError(r.Context(), w, "csrf_token", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"csrf_token": token})
}

func (h *Handler) listAgencies(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{"agencies": h.service.Agencies()})
}

func (h *Handler) submitApplication(w http.ResponseWriter, r *http.Request) {
	var req application.SubmissionRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "submit_application", err)
		return
	}
	if req.CSRFToken == "" {
		req.CSRFToken = r.Header.Get("X-CSRF-Token")
	}
	req.IPAddress = readIP(r)
	req.UserAgent = r.UserAgent()

	session, err := h.service.ResolveSession(r.Context(), sessionTokenFromRequest(r))
	if err != nil {
		writeMappedError(r.Context(), w, "submit_application", err)
		return
	}

	item, err := h.service.SubmitApplication(r.Context(), session, req)
	if err != nil {
		writeMappedError(r.Context(), w, "submit_application", err)
		return
	}
	writeSuccess(w, http.StatusCreated, item)
}
