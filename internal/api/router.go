package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Get("/farm", s.handleFarm)
		r.Get("/crops", s.handleListCrops)

		r.Route("/boundaries", func(r chi.Router) {
			r.Get("/", s.handleListBoundaries)
			r.Post("/", s.handleCreateBoundary)
			r.Delete("/", s.handleClearBoundaries)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.handleListEvents)
			r.Post("/", s.handleCreateEvent)
		})

		r.Route("/plots", func(r chi.Router) {
			r.Get("/", s.handleListPlots)
			r.Get("/geojson", s.handlePlotsGeoJSON)
		})
		r.Get("/summary", s.handleSummary)

		r.Route("/stats", func(r chi.Router) {
			r.Get("/nodes", s.handleNodeStats)
			r.Get("/timeline", s.handleTimeline)
		})

		r.Get("/report.xlsx", s.handleReport)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
