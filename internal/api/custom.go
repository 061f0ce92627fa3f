package api

import (
	"net/http"
)

// queryRequest is the request body for the /custom endpoints.
type queryRequest struct {
	Query string `json:"query"`
}

// readQuery returns the SQL text of a /custom request. The body takes
// precedence; GET clients that cannot send a body may use ?query= instead.
func readQuery(r *http.Request) (string, error) {
	if q := r.URL.Query().Get("query"); q != "" && (r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0) {
		return q, nil
	}
	var req queryRequest
	if err := decodeBody(r, &req); err != nil {
		return "", err
	}
	return req.Query, nil
}

// handleFetch runs a caller-supplied SELECT and returns its rows as a JSON array.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	query, err := readQuery(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	rows, err := s.gateway.Fetch(r.Context(), query)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

// handleExecute runs a caller-supplied non-SELECT statement.
// INSERT and CREATE answer 201; everything else 200.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	query, err := readQuery(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	res, err := s.gateway.Execute(r.Context(), query)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if res.Intent.Creates() {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}
