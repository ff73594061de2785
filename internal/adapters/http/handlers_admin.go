package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dinkominfo-madiun/appcensus/internal/application"
	"github.com/dinkominfo-madiun/appcensus/internal/domain"
)

func (h *Handler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	limit := parseIntDefault(r.URL.Query().Get("limit"), 25)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)
	items, err := h.service.ListSubmissions(r.Context(), limit, offset)
	if err != nil {
		writeMappedError(r.Context(), w, "list_submissions", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"submissions": items})
}

func (h *Handler) getSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "submission_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "get_submission", err)
		return
	}
	item, err := h.service.GetSubmission(r.Context(), id)
	if err != nil {
		writeMappedError(r.Context(), w, "get_submission", err)
		return
	}
	writeSuccess(w, http.StatusOK, item)
}

func (h *Handler) exportSubmissions(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	payload, err := h.service.ExportCSV(r.Context(), session)
	if err != nil {
		writeMappedError(r.Context(), w, "export_submissions", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="data_aplikasi.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "stats", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"total":          stats.Total,
		"active":         stats.Active,
		"inactive":       stats.Inactive,
		"regional":       stats.Regional,
		"national":       stats.National,
		"other_category": stats.OtherCategory,
	})
}

func (h *Handler) recentActivity(w http.ResponseWriter, r *http.Request) {
	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	records, err := h.service.RecentActivity(r.Context(), limit)
	if err != nil {
		writeMappedError(r.Context(), w, "recent_activity", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"activity": records})
}

func (h *Handler) maintenanceStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.MaintenanceState()
	if err != nil {
		writeMappedError(r.Context(), w, "maintenance_status", err)
		return
	}
	writeSuccess(w, http.StatusOK, status)
}

type maintenanceRequest struct {
	Message   string `json:"message"`
	CSRFToken string `json:"csrf_token"`
}

func (h *Handler) enableMaintenance(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	var req maintenanceRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "enable_maintenance", err)
		return
	}
	if req.CSRFToken == "" {
		req.CSRFToken = r.Header.Get("X-CSRF-Token")
	}
	if err := h.service.ValidateCSRFToken(&session, req.CSRFToken); err != nil {
		writeMappedError(r.Context(), w, "enable_maintenance", err)
		return
	}
	if err := h.service.EnableMaintenance(r.Context(), actorFromSession(session), req.Message); err != nil {
		writeMappedError(r.Context(), w, "enable_maintenance", err)
		return
	}
	writeMessage(w, http.StatusOK, "maintenance enabled")
}

func (h *Handler) disableMaintenance(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	if err := h.service.ValidateCSRFToken(&session, r.Header.Get("X-CSRF-Token")); err != nil {
		writeMappedError(r.Context(), w, "disable_maintenance", err)
		return
	}
	prior, err := h.service.DisableMaintenance(r.Context(), actorFromSession(session))
	if err != nil {
		writeMappedError(r.Context(), w, "disable_maintenance", err)
		return
	}
	writeSuccess(w, http.StatusOK, prior)
}

func actorFromSession(session domain.Session) application.AdminActor {
	return application.AdminActor{
		AccountID: session.AccountID,
		Username:  session.Username,
		IPAddress: session.IPAddress,
		UserAgent: session.UserAgent,
	}
}
