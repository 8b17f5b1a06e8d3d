package server

import (
	"surftimer-api/internal/domain"
	"surftimer-api/internal/format"
)

// Wire shapes for run payloads. Times and dates are formatted here, at the
// response boundary, so cached and fresh values serialize identically.

type checkpointResponse struct {
	CP        int    `json:"cp"`
	RunTime   string `json:"run_time"`
	StartVelX string `json:"start_vel_x"`
	StartVelY string `json:"start_vel_y"`
	StartVelZ string `json:"start_vel_z"`
	EndVelX   string `json:"end_vel_x"`
	EndVelY   string `json:"end_vel_y"`
	EndVelZ   string `json:"end_vel_z"`
	EndTouch  int    `json:"end_touch"`
	Attempts  int    `json:"attempts"`
}

type runResponse struct {
	ID           int64                `json:"id"`
	PlayerID     int64                `json:"player_id"`
	PlayerName   string               `json:"player_name"`
	MapID        int64                `json:"map_id"`
	Style        int                  `json:"style"`
	StyleName    string               `json:"style_name"`
	Type         int                  `json:"type"`
	Stage        int                  `json:"stage"`
	Rank         int64                `json:"rank"`
	RunTime      string               `json:"run_time"`
	RunTimeRaw   string               `json:"run_time_raw"`
	StartVelX    string               `json:"start_vel_x"`
	StartVelY    string               `json:"start_vel_y"`
	StartVelZ    string               `json:"start_vel_z"`
	EndVelX      string               `json:"end_vel_x"`
	EndVelY      string               `json:"end_vel_y"`
	EndVelZ      string               `json:"end_vel_z"`
	RunDate      int64                `json:"run_date"`
	RunDateText  string               `json:"run_date_text"`
	ReplayFrames string               `json:"replay_frames"`
	Checkpoints  []checkpointResponse `json:"checkpoints,omitempty"`
}

func toCheckpointResponse(cp domain.Checkpoint) checkpointResponse {
	return checkpointResponse{
		CP:        cp.CP,
		RunTime:   format.RunTime(cp.RunTime),
		StartVelX: cp.StartVelX.String(),
		StartVelY: cp.StartVelY.String(),
		StartVelZ: cp.StartVelZ.String(),
		EndVelX:   cp.EndVelX.String(),
		EndVelY:   cp.EndVelY.String(),
		EndVelZ:   cp.EndVelZ.String(),
		EndTouch:  cp.EndTouch,
		Attempts:  cp.Attempts,
	}
}

func toRunResponse(run domain.RunWithRank) runResponse {
	resp := runResponse{
		ID:           run.ID,
		PlayerID:     run.PlayerID,
		PlayerName:   run.PlayerName,
		MapID:        run.MapID,
		Style:        run.Style,
		Type:         run.Type,
		Stage:        run.Stage,
		Rank:         run.Rank,
		RunTime:      format.RunTime(run.RunTime),
		RunTimeRaw:   run.RunTime.String(),
		StartVelX:    run.StartVelX.String(),
		StartVelY:    run.StartVelY.String(),
		StartVelZ:    run.StartVelZ.String(),
		EndVelX:      run.EndVelX.String(),
		EndVelY:      run.EndVelY.String(),
		EndVelZ:      run.EndVelZ.String(),
		RunDate:      run.RunDate,
		RunDateText:  format.Date(run.RunDate),
		ReplayFrames: run.ReplayFrames,
	}
	if domain.ValidStyle(run.Style) {
		resp.StyleName = domain.StyleNames[run.Style]
	}
	for _, cp := range run.Checkpoints {
		resp.Checkpoints = append(resp.Checkpoints, toCheckpointResponse(cp))
	}
	return resp
}

func toRunResponses(runs []domain.RunWithRank) []runResponse {
	out := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunResponse(run))
	}
	return out
}
