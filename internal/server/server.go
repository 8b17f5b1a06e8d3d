// Package server exposes the REST surface consumed by the game-server
// plugin: map metadata, player profiles, runs and leaderboards.
package server

import (
	"net/http"

	"surftimer-api/internal/auth"
	"surftimer-api/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type Server struct {
	maps     *service.MapService
	players  *service.PlayerService
	runs     *service.RunService
	verifier *auth.Verifier
	logger   zerolog.Logger
}

func New(
	maps *service.MapService,
	players *service.PlayerService,
	runs *service.RunService,
	verifier *auth.Verifier,
	logger zerolog.Logger,
) *Server {
	return &Server{
		maps:     maps,
		players:  players,
		runs:     runs,
		verifier: verifier,
		logger:   logger,
	}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", s.handleHome).Methods(http.MethodGet)

	r.HandleFunc("/maps", s.handleInsertMap).Methods(http.MethodPost)
	r.HandleFunc("/maps", s.handleUpdateMap).Methods(http.MethodPut)
	r.HandleFunc("/maps/{name}", s.handleGetMap).Methods(http.MethodGet)
	r.HandleFunc("/maps/{id:[0-9]+}/leaders", s.handleMapLeaders).Methods(http.MethodGet)
	r.HandleFunc("/maps/{id:[0-9]+}/record", s.handleMapRecord).Methods(http.MethodGet)
	r.HandleFunc("/maps/{id:[0-9]+}/rank", s.handleRunAtRank).Methods(http.MethodGet)

	r.HandleFunc("/players", s.handleInsertPlayer).Methods(http.MethodPost)
	r.HandleFunc("/players", s.handleUpdatePlayer).Methods(http.MethodPut)
	r.HandleFunc("/players/{steam_id:[0-9]+}", s.handleGetPlayer).Methods(http.MethodGet)
	r.HandleFunc("/players/{id:[0-9]+}/maps/{map_id:[0-9]+}", s.handlePlayerMapRuns).Methods(http.MethodGet)

	r.HandleFunc("/runs", s.handleListRuns).Methods(http.MethodGet)
	r.HandleFunc("/runs", s.handleSaveRun).Methods(http.MethodPost)
	r.HandleFunc("/runs/{id:[0-9]+}", s.handleGetRun).Methods(http.MethodGet)

	r.HandleFunc("/api/private", s.handlePrivate).Methods(http.MethodGet)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "surftimer api"})
}
