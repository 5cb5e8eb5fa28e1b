package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each dependency check made by /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// No auth required
		r.Method(http.MethodGet, "/health", s.instrument("health", s.handleHealth))
		r.Method(http.MethodGet, "/status", s.instrument("status", s.handleStatus))
		r.Method(http.MethodPost, "/auth/login", s.instrument("login", s.handleLogin))
		if s.metrics != nil {
			r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
		}

		// WebSocket authenticates in the handler (ticket or token)
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Method(http.MethodPost, "/auth/ws-ticket", s.instrument("ws_ticket", s.handleWSTicket))

			r.Route("/houses/{house}", func(r chi.Router) {
				r.Use(s.houseMiddleware)

				r.Method(http.MethodGet, "/", s.instrument("house", s.handleGetHouse))
				r.Method(http.MethodPost, "/update", s.instrument("house_update", s.handleUpdateHouse))
				r.Method(http.MethodGet, "/history", s.instrument("house_history", s.handleHouseHistory))
				r.Method(http.MethodGet, "/events", s.instrument("house_events", s.handleHouseEvents))
			})
		})
	})

	return r
}

// instrument records request metrics for route when metrics are enabled.
func (s *Server) instrument(route string, h http.HandlerFunc) http.Handler {
	return s.metrics.WrapHandler(route, h)
}

// handleHealth reports the status of every registered dependency.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	code := http.StatusOK
	checks := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := s.checks[name].HealthCheck(ctx)
		cancel()

		if err != nil {
			checks[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":  status,
		"version": s.version,
		"checks":  checks,
	})
}
