package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

// RouterConfig carries the HTTP-level settings of the router.
type RouterConfig struct {
	CORSOrigins []string
	// WebDir, when non-empty, is served as static files at the root.
	WebDir string
}

// NewRouter builds the chi router with the global middleware stack and
// every API route.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(h.logger))        // structured access log
	r.Use(CORS(cfg.CORSOrigins))

	r.Get("/health", HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.NotFound(h.notFound)

		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Get("/auth/profile", h.Profile)

			r.Route("/events", func(r chi.Router) {
				r.With(h.RequireRole(model.RoleAdmin, model.RoleCoordinator)).Get("/", h.ListEvents)
				r.Get("/{eventId}", h.GetEvent)
				r.With(h.RequireRole(model.RoleCoordinator), h.RestrictToAssignedEvent).
					Patch("/{eventId}/status", h.UpdateEventStatus)
			})

			r.Route("/participants", func(r chi.Router) {
				r.With(h.RequireRole(model.RoleCoordinator), h.RestrictToAssignedEvent).
					Post("/verify", h.VerifyParticipant)
				r.With(h.RestrictToAssignedEvent).Get("/{eventId}", h.ListParticipants)
			})

			r.With(h.RequireRole(model.RoleCoordinator), h.RestrictToAssignedEvent).
				Post("/submissions", h.Submit)

			r.Route("/admin", func(r chi.Router) {
				r.Use(h.RequireRole(model.RoleAdmin))
				r.Get("/events/{eventId}/submissions", h.ListSubmissions)
				r.Get("/events/{eventId}/export", h.ExportSubmissions)
				r.Post("/events", h.CreateEvent)
				r.Post("/coordinators", h.CreateCoordinator)
				r.Put("/coordinators/{email}/events", h.SetAssignments)
			})
		})
	})

	// Static dashboard build, if configured.
	if cfg.WebDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.WebDir)))
	}
	return r
}
