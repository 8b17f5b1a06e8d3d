package server

import (
	"net/http"
	"strconv"
	"time"

	"surftimer-api/internal/domain"

	"github.com/gorilla/mux"
)

type mapRequest struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Author  string `json:"author"`
	Tier    int    `json:"tier"`
	Stages  int    `json:"stages"`
	Bonuses int    `json:"bonuses"`
	Ranked  int    `json:"ranked"`
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	m, err := s.maps.GetByName(r.Context(), name)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleInsertMap(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req mapRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}

	res, err := s.maps.Insert(r.Context(), &domain.Map{
		Name:    req.Name,
		Author:  req.Author,
		Tier:    req.Tier,
		Stages:  req.Stages,
		Bonuses: req.Bonuses,
		Ranked:  req.Ranked,
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

func (s *Server) handleUpdateMap(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req mapRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	updated, err := s.maps.Update(r.Context(), req.ID, req.Stages, req.Bonuses)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"updated": updated,
		"xtime":   time.Since(start).Seconds(),
	})
}

func (s *Server) handleMapLeaders(w http.ResponseWriter, r *http.Request) {
	mapID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	style := queryInt(r, "style", 0)

	runs, err := s.runs.Leaders(r.Context(), mapID, style)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toRunResponses(runs))
}

func (s *Server) handleMapRecord(w http.ResponseWriter, r *http.Request) {
	mapID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	style := queryInt(r, "style", 0)

	runs, err := s.runs.Record(r.Context(), mapID, style)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toRunResponses(runs))
}

func (s *Server) handleRunAtRank(w http.ResponseWriter, r *http.Request) {
	mapID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	style := queryInt(r, "style", 0)
	runType := queryInt(r, "type", domain.TypeMap)
	stage := queryInt(r, "stage", 0)
	rank := int64(queryInt(r, "rank", 1))

	run, err := s.runs.AtRank(r.Context(), mapID, style, runType, stage, rank)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toRunResponse(*run))
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
