package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/http2sql/internal/codec"
	"github.com/nerrad567/http2sql/internal/statement"
)

// decodeBody decodes the JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.New("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return errors.New("invalid JSON body")
	}
	return nil
}

// handleCreateTable creates a table from a column specification.
func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var spec statement.TableSpec
	if err := decodeBody(r, &spec); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.gateway.CreateTable(r.Context(), spec); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// handleDropTable drops the named table.
func (s *Server) handleDropTable(w http.ResponseWriter, r *http.Request) {
	if err := s.gateway.DropTable(r.Context(), chi.URLParam(r, "table_name")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleInsertRows inserts a batch of rows into the named table.
//
// Each element of the body array must be a JSON object; key order in the
// first object fixes the column order of the statement.
func (s *Server) handleInsertRows(w http.ResponseWriter, r *http.Request) {
	var rows []codec.Row
	if err := decodeBody(r, &rows); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if _, err := s.gateway.InsertRows(r.Context(), chi.URLParam(r, "table_name"), rows); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
