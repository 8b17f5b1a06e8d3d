package domain

import (
	"github.com/shopspring/decimal"
)

// Run categories. The stage field holds the bonus number for bonus runs
// and the stage number for stage runs.
const (
	TypeMap   = 0
	TypeBonus = 1
	TypeStage = 2
)

// 0 = normal, 1 = SW, 2 = HSW, 3 = BW, 4 = Low-Gravity, 5 = Slow Motion,
// 6 = Fast Forward, 7 = Freestyle
var StyleNames = []string{
	"Normal",
	"Sideways",
	"Half-Sideways",
	"Backwards",
	"Low-Gravity",
	"Slow Motion",
	"Fast Forward",
	"Freestyle",
}

func ValidStyle(style int) bool {
	return style >= 0 && style < len(StyleNames)
}

func ValidType(runType int) bool {
	return runType == TypeMap || runType == TypeBonus || runType == TypeStage
}

type Map struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Author     string `json:"author"`
	Tier       int    `json:"tier"`
	Stages     int    `json:"stages"`
	Bonuses    int    `json:"bonuses"`
	Ranked     int    `json:"ranked"`
	DateAdded  int64  `json:"date_added"`
	LastPlayed int64  `json:"last_played"`
}

type Player struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	SteamID     int64  `json:"steam_id"`
	Country     string `json:"country"`
	JoinDate    int64  `json:"join_date"`
	LastSeen    int64  `json:"last_seen"`
	Connections int64  `json:"connections"`
}

// Run is a single completed attempt at a map, bonus or stage. Times and
// velocities are exact fixed-point decimals, never float64, so ranking
// comparisons are lossless.
type Run struct {
	ID           int64           `json:"id"`
	PlayerID     int64           `json:"player_id"`
	MapID        int64           `json:"map_id"`
	Style        int             `json:"style"`
	Type         int             `json:"type"`
	Stage        int             `json:"stage"`
	RunTime      decimal.Decimal `json:"run_time"`
	StartVelX    decimal.Decimal `json:"start_vel_x"`
	StartVelY    decimal.Decimal `json:"start_vel_y"`
	StartVelZ    decimal.Decimal `json:"start_vel_z"`
	EndVelX      decimal.Decimal `json:"end_vel_x"`
	EndVelY      decimal.Decimal `json:"end_vel_y"`
	EndVelZ      decimal.Decimal `json:"end_vel_z"`
	RunDate      int64           `json:"run_date"`
	ReplayFrames string          `json:"replay_frames"`
}

type Checkpoint struct {
	ID        int64           `json:"id"`
	MapTimeID int64           `json:"maptime_id"`
	CP        int             `json:"cp"`
	RunTime   decimal.Decimal `json:"run_time"`
	StartVelX decimal.Decimal `json:"start_vel_x"`
	StartVelY decimal.Decimal `json:"start_vel_y"`
	StartVelZ decimal.Decimal `json:"start_vel_z"`
	EndVelX   decimal.Decimal `json:"end_vel_x"`
	EndVelY   decimal.Decimal `json:"end_vel_y"`
	EndVelZ   decimal.Decimal `json:"end_vel_z"`
	EndTouch  int             `json:"end_touch"`
	Attempts  int             `json:"attempts"`
}

// RunWithRank is a run annotated with the player display name and the
// 1-based position within its (map, style, type, stage) group. Checkpoints
// are attached only for full map runs (type 0).
type RunWithRank struct {
	Run
	PlayerName  string       `json:"player_name"`
	Rank        int64        `json:"rank"`
	Checkpoints []Checkpoint `json:"checkpoints,omitempty"`
}

// RunSubmission is the request body for saving a run. Checkpoints are
// required for full map runs and ignored for bonus/stage runs.
type RunSubmission struct {
	PlayerID     int64           `json:"player_id"`
	MapID        int64           `json:"map_id"`
	Style        int             `json:"style"`
	Type         int             `json:"type"`
	Stage        int             `json:"stage"`
	RunTime      decimal.Decimal `json:"run_time"`
	StartVelX    decimal.Decimal `json:"start_vel_x"`
	StartVelY    decimal.Decimal `json:"start_vel_y"`
	StartVelZ    decimal.Decimal `json:"start_vel_z"`
	EndVelX      decimal.Decimal `json:"end_vel_x"`
	EndVelY      decimal.Decimal `json:"end_vel_y"`
	EndVelZ      decimal.Decimal `json:"end_vel_z"`
	ReplayFrames string          `json:"replay_frames"`
	Checkpoints  []Checkpoint    `json:"checkpoints"`
}

func (s *RunSubmission) Validate() error {
	if s.PlayerID <= 0 {
		return NewValidationError("player_id is required")
	}
	if s.MapID <= 0 {
		return NewValidationError("map_id is required")
	}
	if !ValidStyle(s.Style) {
		return NewValidationError("style must be between 0 and 7")
	}
	if !ValidType(s.Type) {
		return NewValidationError("type must be 0 (map), 1 (bonus) or 2 (stage)")
	}
	if s.RunTime.Sign() <= 0 {
		return NewValidationError("run_time must be positive")
	}
	if s.Type == TypeMap && len(s.Checkpoints) == 0 {
		return NewValidationError("checkpoints are required for a full map run")
	}
	return nil
}

// WriteResult reports the outcome of a single-statement write.
type WriteResult struct {
	Inserted int64 `json:"inserted"`
	LastID   int64 `json:"last_id,omitempty"`
}

// RunWriteResult reports the outcome of a run-plus-checkpoints submission.
// Trx holds the per-statement row counts of the checkpoint transaction.
type RunWriteResult struct {
	Inserted int64   `json:"inserted"`
	LastID   int64   `json:"last_id"`
	Trx      []int64 `json:"trx,omitempty"`
}
