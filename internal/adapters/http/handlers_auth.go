package http

import (
	"net/http"

	"github.com/dinkominfo-madiun/appcensus/internal/application"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}
	if req.CSRFToken == "" {
		req.CSRFToken = r.Header.Get("X-CSRF-Token")
	}
	req.IPAddress = readIP(r)
	req.UserAgent = r.UserAgent()

	// The login form rides on an anonymous session whose CSRF token must
	// match before credentials are even considered.
	prior, err := h.service.ResolveSession(r.Context(), sessionTokenFromRequest(r))
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	if err := h.service.ValidateCSRFToken(prior, req.CSRFToken); err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	req.PriorSessionID = &prior.SessionID

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}

	setSessionCookie(w, res.Token, h.service.SessionIdleTimeout())
	writeSuccess(w, http.StatusOK, map[string]any{
		"username":   res.Username,
		"csrf_token": res.CSRFToken,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	if err := h.service.Logout(r.Context(), session); err != nil {
		writeMappedError(r.Context(), w, "logout", err)
		return
	}
	clearSessionCookie(w)
	writeMessage(w, http.StatusOK, "logged out")
}

func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"username":         session.Username,
		"csrf_token":       session.CSRFToken,
		"login_at":         session.LoginAt,
		"last_activity_at": session.LastActivityAt,
	})
}
