package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/http2sql/internal/auth"
	"github.com/nerrad567/http2sql/internal/gateway"
	"github.com/nerrad567/http2sql/internal/statement"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope wraps account endpoint payloads.
type Envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// Common error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeUnauthorized   = "unauthorised"
	ErrCodeInternal       = "internal_error"
	ErrCodeValidation     = "validation_error"
	ErrCodeInvalidFormat  = "invalid_format"
	ErrCodeDatabase       = "database_error"
	ErrCodeMethodNotAllow = "method_not_allowed"
)

// databaseErrorMessage is the only detail a client sees of a backend failure.
const databaseErrorMessage = "Database error"

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeServiceError maps a gateway or auth error onto its response.
// Backend failures are logged with the request ID and reported generically.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, statement.ErrInvalidInput), errors.Is(err, auth.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, auth.ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, ErrCodeInvalidFormat, err.Error())
	case errors.Is(err, auth.ErrUnauthorized):
		writeUnauthorized(w, err.Error())
	case errors.Is(err, gateway.ErrDatabase), errors.Is(err, auth.ErrDatabase):
		s.logger.Error("database error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeError(w, http.StatusInternalServerError, ErrCodeDatabase, databaseErrorMessage)
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeInternalError(w, "internal server error")
	}
}
