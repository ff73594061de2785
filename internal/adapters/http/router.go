package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dinkominfo-madiun/appcensus/internal/application"
)

// Handler is the HTTP adapter entrypoint for census use-cases.
// Keeping only the application dependency here preserves clean adapter boundaries.
type Handler struct {
	service *application.Service
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter registers HTTP routes and the middleware stack. The public
// surface sits behind the maintenance gate; the admin surface does not, so
// operators can reach it while the site is down.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(handler.maintenanceMiddleware)
			r.Get("/csrf", handler.csrfToken)
			r.Post("/submissions", handler.submitApplication)
			r.Get("/agencies", handler.listAgencies)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", handler.login)

			r.Group(func(r chi.Router) {
				r.Use(handler.adminMiddleware)
				r.Post("/logout", handler.logout)
				r.Get("/session", handler.currentSession)
				r.Get("/submissions", handler.listSubmissions)
				r.Get("/submissions/{submission_id}", handler.getSubmission)
				r.Get("/submissions/export", handler.exportSubmissions)
				r.Get("/stats", handler.stats)
				r.Get("/activity", handler.recentActivity)
				r.Get("/maintenance", handler.maintenanceStatus)
				r.Post("/maintenance", handler.enableMaintenance)
				r.Delete("/maintenance", handler.disableMaintenance)
			})
		})
	})

	return r
}
