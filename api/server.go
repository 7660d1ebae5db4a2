/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:    Unique ID per request for tracing
  2. Logger:       One structured logrus line per request
  3. Recoverer:    Panic recovery (500 instead of crash)
  4. RequestSize:  Body size limit
  5. CORS:         Cross-origin requests for a frontend

ROUTE GROUPS:
  /api/months/*     Month computations and exports
  /api/years/*      Year summaries
  /api/days/*       Single day computations
  /api/entries/*    Entry writes
  /api/standby/*    Standby calendar
  /api/holidays/*   User holidays
  /api/settings     Contract settings
  /api/net          Ad-hoc net estimate
  /api/scenarios/*  Demo data loaders
  /healthz          Liveness

SECURITY NOTE:
  No authentication middleware. The tracker is a single-user tool meant to
  run on a trusted machine.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/workhours/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/workhours/logging"
)

// RouterOptions tunes the middleware stack.
type RouterOptions struct {
	CORSOrigins  []string
	MaxBodyBytes int64
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(logging.Middleware(h.Log))
	r.Use(middleware.Recoverer)
	if opts.MaxBodyBytes > 0 {
		r.Use(middleware.RequestSize(opts.MaxBodyBytes))
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/months/{year}/{month}", func(r chi.Router) {
			r.Get("/", h.GetMonth)
			r.Get("/net", h.GetMonthNet)
			r.Get("/export.xlsx", h.ExportMonth)
		})
		r.Get("/years/{year}", h.GetYear)
		r.Get("/days/{date}", h.GetDay)

		r.Route("/entries", func(r chi.Router) {
			r.Put("/{date}", h.PutEntry)
			r.Delete("/{date}", h.DeleteEntry)
		})

		r.Route("/standby", func(r chi.Router) {
			r.Get("/", h.ListStandby)
			r.Post("/", h.CreateStandby)
			r.Delete("/{date}", h.DeleteStandby)
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Delete("/{id}", h.DeleteHoliday)
		})

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.PutSettings)
		r.Post("/net", h.EstimateNet)

		// Demo scenarios
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
