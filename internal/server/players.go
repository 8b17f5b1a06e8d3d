package server

import (
	"net/http"
	"strconv"
	"time"

	"surftimer-api/internal/domain"

	"github.com/gorilla/mux"
)

type playerRequest struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	SteamID int64  `json:"steam_id"`
	Country string `json:"country"`
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	steamID, _ := strconv.ParseInt(mux.Vars(r)["steam_id"], 10, 64)

	p, err := s.players.GetBySteamID(r.Context(), steamID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleInsertPlayer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req playerRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	res, err := s.players.Insert(r.Context(), &domain.Player{
		Name:    req.Name,
		SteamID: req.SteamID,
		Country: req.Country,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"inserted": res.Inserted,
		"xtime":    time.Since(start).Seconds(),
		"last_id":  res.LastID,
	})
}

func (s *Server) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req playerRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	updated, err := s.players.Update(r.Context(), req.ID, req.Country)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"updated": updated,
		"xtime":   time.Since(start).Seconds(),
	})
}

func (s *Server) handlePlayerMapRuns(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	playerID, _ := strconv.ParseInt(vars["id"], 10, 64)
	mapID, _ := strconv.ParseInt(vars["map_id"], 10, 64)

	runs, err := s.runs.ByPlayerMap(r.Context(), playerID, mapID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toRunResponses(runs))
}
