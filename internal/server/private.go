package server

import (
	"net/http"
	"strings"

	"surftimer-api/internal/format"
)

// handlePrivate verifies the bearer token against the issuer's key set and
// returns the decoded claims.
func (s *Server) handlePrivate(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		s.writeError(w, http.StatusUnauthorized, "auth_error", "missing bearer token")
		return
	}

	claims, err := s.verifier.Verify(token)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "auth_error", "token verification failed")
		return
	}

	if exp, ok := claims["exp"].(float64); ok {
		s.logger.Debug().Str("expiry", format.Date(int64(exp))).Msg("token verified")
	}

	s.writeJSON(w, http.StatusOK, claims)
}
