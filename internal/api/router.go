package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds the database probe made by /health.
const healthCheckTimeout = 5 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		// Table management
		r.Route("/tables", func(r chi.Router) {
			r.Post("/", s.handleCreateTable)
			// A trailing slash with no name is a validation error, not a 404.
			r.Delete("/", s.handleDropTable)
			r.Delete("/{table_name}", s.handleDropTable)
			r.Post("/{table_name}/rows", s.handleInsertRows)
		})

		// Free-form SQL
		r.Get("/custom", s.handleFetch)
		r.Post("/custom", s.handleExecute)

		// Account endpoints (no auth required)
		r.Post("/auth/sign-up", s.handleSignUp)
		r.Post("/auth/sign-in", s.handleSignIn)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.apiKeyMiddleware)
			r.Get("/user/metadata", s.handleUserMetadata)
		})
	})

	return r
}

// handleHealth returns the server health status, including the database.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	dbStatus := "ok"
	if err := s.pool.HealthCheck(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err, "request_id", r.Context().Value(ctxKeyRequestID))
		status, code = "degraded", http.StatusServiceUnavailable
		dbStatus = "unreachable"
	}

	writeJSON(w, code, map[string]any{
		"status":   status,
		"version":  s.version,
		"database": dbStatus,
	})
}
