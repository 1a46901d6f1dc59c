/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. RateLimit:  Per-IP request throttling
  5. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/shifts/*         Shift CRUD, bulk deletion, attendance, export
  /api/schedule/*       Auto-scheduler (preview, generate, run history)
  /api/open-shifts/*    Open shift marketplace
  /api/roles/*          Role templates
  /metrics              Prometheus metrics
  /health               Liveness check

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public;
  staff identity arrives as explicit request parameters.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(300, time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Shift routes
		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.ListShifts)
			r.Post("/", h.CreateShift)
			r.Post("/bulk-delete", h.BulkDeleteShifts)
			r.Get("/export", h.ExportShifts)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetShift)
				r.Patch("/", h.UpdateShift)
				r.Delete("/", h.DeleteShift)
				r.Post("/clock-in", h.ClockIn)
				r.Post("/clock-out", h.ClockOut)
			})
		})

		// Auto-scheduler routes
		r.Route("/schedule", func(r chi.Router) {
			r.Post("/preview", h.PreviewSchedule)
			r.Post("/generate", h.GenerateSchedule)
			r.Get("/runs", h.ListRuns)
		})

		// Marketplace routes
		r.Route("/open-shifts", func(r chi.Router) {
			r.Get("/", h.ListOpenShifts)
			r.Get("/requests", h.ListClaims)
			r.Post("/{id}/request", h.RequestClaim)
		})

		// Role routes
		r.Route("/roles", func(r chi.Router) {
			r.Get("/", h.ListRoles)
			r.Post("/", h.CreateRole)
			r.Get("/{id}", h.GetRole)
		})
	})

	// Operational endpoints
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
