package server

import (
	"errors"
	"net/http"

	"surftimer-api/internal/domain"

	"github.com/goccy/go-json"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, kind, message string) {
	s.writeJSON(w, status, map[string]errorBody{
		"error": {Kind: kind, Message: message},
	})
}

// writeDomainError maps the expected result variants to their status codes:
// not-found to 204, not-modified to 304, validation to 400. Anything else
// is a store failure; it is logged in full and surfaced as an opaque 500 so
// no query text leaks to the caller.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, domain.ErrNotModified):
		w.WriteHeader(http.StatusNotModified)
	case domain.IsValidationError(err):
		s.writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("store error")
		s.writeError(w, http.StatusInternalServerError, "store_error", "internal storage failure")
	}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError("malformed request body: " + err.Error())
	}
	return nil
}
