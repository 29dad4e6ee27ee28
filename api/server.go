/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to
  handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the front-end

ROUTE GROUPS:
  /api/movements/*   Record, drafts, journal, delete
  /api/clients/*     Accounts and their cards
  /api/cards         Index cards + totals
  /api/stock/*       Depot counters, thresholds, alerts
  /api/catalog/*     Products and variants
  /api/export/*      XLSX workbook
  /api/admin/*       Demo seed
  /health            Liveness probe
  /metrics           Prometheus, when enabled

SECURITY NOTE:
  No authentication middleware. The tool runs on the bar's private
  network with a single operator.

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup and shutdown
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions tune the ambient parts of the router.
type RouterOptions struct {
	// ExposeMetrics registers GET /metrics.
	ExposeMetrics bool

	// AllowedOrigins for CORS; defaults to local dev front-ends.
	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/movements", func(r chi.Router) {
			r.Get("/", h.Journal)
			r.Post("/", h.RecordMovement)
			r.Post("/draft", h.SubmitDraft)
			r.Get("/{id}", h.GetMovement)
			r.Delete("/{id}", h.DeleteMovement)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.ListClients)
			r.Post("/", h.CreateClient)
			r.Get("/{id}", h.GetClient)
			r.Put("/{id}", h.UpdateClient)
			r.Post("/{id}/archive", h.ArchiveClient)
		})

		r.Get("/cards", h.IndexCards)

		r.Route("/stock", func(r chi.Router) {
			r.Get("/", h.ListStock)
			r.Get("/alerts", h.ListAlerts)
			r.Put("/{variantID}", h.SetStock)
			r.Put("/{variantID}/rule", h.SetRule)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", h.ListCatalog)
			r.Post("/variants", h.CreateVariant)
		})

		r.Get("/export/cards.xlsx", h.ExportCards)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/seed", h.SeedDemo)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if opts.ExposeMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}
