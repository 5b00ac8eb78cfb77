/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address from proxy headers
  3. Logger:     Request logging
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for the form frontend

ROUTES:
  POST /api/calculate                  Run the engine (public)
  GET  /api/scenarios                  Scenario catalogue
  GET  /api/positions                  Default position list
  GET  /api/periods                    Supported period lengths
  GET  /api/demos[/{id}]               Demo teams and sample requests
  /api/templates/*                     Saved rosters (bearer token required)
  GET  /healthz                        Liveness plus store ping
  GET  /metrics                        Prometheus exposition

  The template routes are only mounted when both a template service and a
  token verifier are configured.

SEE ALSO:
  - handlers.go: Calculation and catalogue handlers
  - templates.go: Template handlers
  - demos.go: Demo data
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/tip-engine/auth"
)

// RouterConfig holds router-level settings.
type RouterConfig struct {
	AllowedOrigins []string
	Verifier       *auth.Verifier
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", h.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/calculate", h.Calculate)
		r.Get("/scenarios", h.ListScenarios)
		r.Get("/positions", h.ListPositions)
		r.Get("/periods", h.ListPeriods)
		r.Get("/demos", h.ListDemos)
		r.Get("/demos/{id}", h.GetDemoRequest)

		if h.Templates != nil && cfg.Verifier != nil {
			r.Route("/templates", func(r chi.Router) {
				r.Use(auth.Middleware(cfg.Verifier))
				r.Get("/", h.ListTemplates)
				r.Post("/", h.CreateTemplate)
				r.Get("/{id}", h.GetTemplate)
				r.Put("/{id}", h.UpdateTemplate)
				r.Delete("/{id}", h.DeleteTemplate)
				r.Post("/{id}/calculate", h.CalculateFromTemplate)
				r.Post("/demos/{id}", h.SaveDemoTemplate)
			})
		}
	})

	return r
}
