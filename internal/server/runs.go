package server

import (
	"net/http"
	"strconv"
	"time"

	"surftimer-api/internal/domain"

	"github.com/gorilla/mux"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	mapID := int64(queryInt(r, "map_id", 0))
	if mapID <= 0 {
		s.writeError(w, http.StatusBadRequest, "validation_error", "map_id is required")
		return
	}
	style := queryInt(r, "style", 0)
	runType := queryInt(r, "type", domain.TypeMap)
	playerID := int64(queryInt(r, "player_id", 0))

	var (
		runs []domain.RunWithRank
		err  error
	)
	if playerID > 0 {
		runs, err = s.runs.ByPlayer(r.Context(), playerID, mapID, runType, style)
	} else {
		runs, err = s.runs.ByMap(r.Context(), mapID, style, runType)
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toRunResponses(runs))
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	run, err := s.runs.ByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toRunResponse(*run))
}

// handleSaveRun persists a run plus its checkpoint batch in one
// transaction. Clients may pass an Idempotency-Key header to make retries
// safe; when absent one is generated and echoed back so the client can
// retry with it.
func (s *Server) handleSaveRun(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var sub domain.RunSubmission
	if err := decodeBody(r, &sub); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	token := r.Header.Get("Idempotency-Key")
	if token == "" {
		generated, err := gonanoid.New()
		if err == nil {
			token = generated
		}
	}
	if token != "" {
		w.Header().Set("Idempotency-Key", token)
	}

	res, replayed, err := s.runs.Save(r.Context(), &sub, token)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if res.Inserted < 1 {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	s.writeJSON(w, status, map[string]any{
		"inserted": res.Inserted,
		"xtime":    time.Since(start).Seconds(),
		"last_id":  res.LastID,
		"trx":      res.Trx,
	})
}
