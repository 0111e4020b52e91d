// Package api exposes the dashboard over HTTP: event ingest, the
// aggregate read endpoints the browser polls, refresh and live-mode
// controls, and the CSV downloads.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/analytics"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/db"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/logger"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/ratelimit"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/state"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/storage"
)

// DatabaseTimeout bounds individual database operations triggered by a request.
const DatabaseTimeout = 15 * time.Second

// Server holds dependencies for API handlers
type Server struct {
	db         *db.DB
	controller *state.Controller
	reports    *storage.ReportStore // nil when archival is not configured
	limiter    *ratelimit.Limiter
	corsOrigin string
	rangeDays  int // default window for refreshes without ?days=
}

// Options configure a Server beyond its hard dependencies.
type Options struct {
	Reports          *storage.ReportStore
	IngestLimiter    *ratelimit.Limiter
	CORSOrigin       string
	DefaultRangeDays int
}

// NewServer creates a new API server
func NewServer(database *db.DB, controller *state.Controller, opts Options) *Server {
	return &Server{
		db:         database,
		controller: controller,
		reports:    opts.Reports,
		limiter:    opts.IngestLimiter,
		corsOrigin: opts.CORSOrigin,
		rangeDays:  opts.DefaultRangeDays,
	}
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware)

	if s.corsOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{s.corsOrigin},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleRoot)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Ingest is the only write path; rate limited per client IP.
		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(ratelimit.Middleware(s.limiter))
			}
			r.Post("/events", s.handleIngestEvent)
		})

		r.Get("/events", s.handleEventFeed)
		r.Get("/summary", s.handleSummary)
		r.Get("/daily", s.handleDaily)
		r.Get("/tools", s.handleTools)
		r.Get("/tools/daily", s.handleToolDaily)
		r.Get("/products", s.handleProducts)
		r.Get("/users", s.handleUsers)
		r.Get("/users/{email}", s.handleUserDetail)
		r.Get("/adoption", s.handleAdoption)
		r.Get("/patterns", s.handlePatterns)
		r.Get("/roi", s.handleROI)

		r.Post("/refresh", s.handleRefresh)
		r.Post("/live/start", s.handleLiveStart)
		r.Post("/live/stop", s.handleLiveStop)

		r.Get("/export/users.csv", s.handleExportUsers)
		r.Get("/export/events.csv", s.handleExportEvents)
		r.Get("/export/report.csv", s.handleExportReport)
	})

	return r
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleRoot returns API info
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service": "sylius-toolbox-dashboard",
		"version": "v1",
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// snapshot loads the current snapshot or tells the client the
// dashboard has not finished its first refresh yet.
func (s *Server) snapshot(w http.ResponseWriter) (*analytics.Snapshot, bool) {
	snap, err := s.controller.Snapshot()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "No data loaded yet. Trigger a refresh first.")
		return nil, false
	}
	return snap, true
}
