package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"surftimer-api/internal/domain"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type RunRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRunRepository(db *sql.DB, logger zerolog.Logger) *RunRepository {
	return &RunRepository{db: db, logger: logger}
}

const runSelectColumns = `mq.id, mq.player_id, mq.map_id, mq.style, mq.type, mq.stage,
	mq.run_time, mq.start_vel_x, mq.start_vel_y, mq.start_vel_z,
	mq.end_vel_x, mq.end_vel_y, mq.end_vel_z, mq.run_date, mq.replay_frames, p.name`

// Inclusive-count rank: number of runs in the same (map, style, type, stage)
// group with run_time <= this run's. Ties share a rank.
const rankSubquery = `(SELECT COUNT(*) FROM map_times sq
	WHERE sq.map_id = mq.map_id AND sq.style = mq.style
	  AND sq.type = mq.type AND sq.stage = mq.stage
	  AND sq.run_time <= mq.run_time)`

func (r *RunRepository) scanRuns(rows *sql.Rows) ([]domain.RunWithRank, error) {
	var out []domain.RunWithRank
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.RunWithRank, error) {
	var (
		run      domain.RunWithRank
		units    int64
		vels     [6]string
	)
	err := row.Scan(&run.ID, &run.PlayerID, &run.MapID, &run.Style, &run.Type, &run.Stage,
		&units, &vels[0], &vels[1], &vels[2], &vels[3], &vels[4], &vels[5],
		&run.RunDate, &run.ReplayFrames, &run.PlayerName, &run.Rank)
	if err != nil {
		return nil, err
	}

	run.RunTime = unitsToRunTime(units)
	dst := []*decimal.Decimal{
		&run.StartVelX, &run.StartVelY, &run.StartVelZ,
		&run.EndVelX, &run.EndVelY, &run.EndVelZ,
	}
	for i, raw := range vels {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt velocity value %q: %w", raw, err)
		}
		*dst[i] = d
	}
	return &run, nil
}

// ByPlayerMap returns every run the player holds on a map, annotated with rank.
func (r *RunRepository) ByPlayerMap(ctx context.Context, playerID, mapID int64) ([]domain.RunWithRank, error) {
	return readRetry(ctx, func(ctx context.Context) ([]domain.RunWithRank, error) {
		ctx, cancel := withTimeout(ctx)
		defer cancel()

		rows, err := r.db.QueryContext(ctx, `
			SELECT `+runSelectColumns+`, `+rankSubquery+` AS rank
			FROM map_times mq
			JOIN players p ON p.id = mq.player_id
			WHERE mq.player_id = ? AND mq.map_id = ?
			ORDER BY mq.type, mq.stage, mq.style`,
			playerID, mapID)
		if err != nil {
			return nil, fmt.Errorf("failed to query player map runs: %w", err)
		}
		defer rows.Close()
		return r.scanRuns(rows)
	})
}

// ByPlayer returns a player's personal best runs for a map filtered by type
// and style.
func (r *RunRepository) ByPlayer(ctx context.Context, playerID, mapID int64, runType, style int) ([]domain.RunWithRank, error) {
	return readRetry(ctx, func(ctx context.Context) ([]domain.RunWithRank, error) {
		ctx, cancel := withTimeout(ctx)
		defer cancel()

		rows, err := r.db.QueryContext(ctx, `
			SELECT `+runSelectColumns+`, `+rankSubquery+` AS rank
			FROM map_times mq
			JOIN players p ON p.id = mq.player_id
			WHERE mq.player_id = ? AND mq.map_id = ? AND mq.type = ? AND mq.style = ?
			ORDER BY mq.stage`,
			playerID, mapID, runType, style)
		if err != nil {
			return nil, fmt.Errorf("failed to query player runs: %w", err)
		}
		defer rows.Close()
		return r.scanRuns(rows)
	})
}

// ByMap returns every run recorded for a (map, style, type) combo ordered
// best-first within each stage group.
func (r *RunRepository) ByMap(ctx context.Context, mapID int64, style, runType int) ([]domain.RunWithRank, error) {
	return readRetry(ctx, func(ctx context.Context) ([]domain.RunWithRank, error) {
		ctx, cancel := withTimeout(ctx)
		defer cancel()

		rows, err := r.db.QueryContext(ctx, `
			SELECT `+runSelectColumns+`, `+rankSubquery+` AS rank
			FROM map_times mq
			JOIN players p ON p.id = mq.player_id
			WHERE mq.map_id = ? AND mq.style = ? AND mq.type = ?
			ORDER BY mq.stage, mq.run_time ASC, mq.id ASC`,
			mapID, style, runType)
		if err != nil {
			return nil, fmt.Errorf("failed to query map runs: %w", err)
		}
		defer rows.Close()
		return r.scanRuns(rows)
	})
}

func (r *RunRepository) ByID(ctx context.Context, id int64) (*domain.RunWithRank, error) {
	return readRetry(ctx, func(ctx context.Context) (*domain.RunWithRank, error) {
		ctx, cancel := withTimeout(ctx)
		defer cancel()

		row := r.db.QueryRowContext(ctx, `
			SELECT `+runSelectColumns+`, `+rankSubquery+` AS rank
			FROM map_times mq
			JOIN players p ON p.id = mq.player_id
			WHERE mq.id = ?`,
			id)

		run, err := scanRun(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get run %d: %w", id, err)
		}
		return run, nil
	})
}

// Leaders returns the single best run per (type, stage) partition for a map
// and style. Empty partitions are omitted. Exact ties resolve to the lowest
// run id.
func (r *RunRepository) Leaders(ctx context.Context, mapID int64, style int) ([]domain.RunWithRank, error) {
	return readRetry(ctx, func(ctx context.Context) ([]domain.RunWithRank, error) {
		ctx, cancel := withTimeout(ctx)
		defer cancel()

		rows, err := r.db.QueryContext(ctx, `
			SELECT id, player_id, map_id, style, type, stage, run_time,
			       start_vel_x, start_vel_y, start_vel_z,
			       end_vel_x, end_vel_y, end_vel_z, run_date, replay_frames, name, 1 AS rank
			FROM (
				SELECT mq.*, p.name,
				       ROW_NUMBER() OVER (
				           PARTITION BY mq.type, mq.stage
				           ORDER BY mq.run_time ASC, mq.id ASC
				       ) AS row_num
				FROM map_times mq
				JOIN players p ON p.id = mq.player_id
				WHERE mq.map_id = ? AND mq.style = ?
			)
			WHERE row_num = 1
			ORDER BY type, stage`,
			mapID, style)
		if err != nil {
			return nil, fmt.Errorf("failed to query leaders: %w", err)
		}
		defer rows.Close()
		return r.scanRuns(rows)
	})
}

// Record returns the full ordered leaderboard for a map and style across all
// run types, best times first.
func (r *RunRepository) Record(ctx context.Context, mapID int64, style int) ([]domain.RunWithRank, error) {
	return readRetry(ctx, func(ctx context.Context) ([]domain.RunWithRank, error) {
		ctx, cancel := withTimeout(ctx)
		defer cancel()

		rows, err := r.db.QueryContext(ctx, `
			SELECT `+runSelectColumns+`, `+rankSubquery+` AS rank
			FROM map_times mq
			JOIN players p ON p.id = mq.player_id
			WHERE mq.map_id = ? AND mq.style = ?
			ORDER BY mq.type, mq.stage, mq.run_time ASC, mq.id ASC`,
			mapID, style)
		if err != nil {
			return nil, fmt.Errorf("failed to query map record: %w", err)
		}
		defer rows.Close()
		return r.scanRuns(rows)
	})
}

// AtRank returns the run holding the requested 1-based rank within its
// (map, style, type, stage) group. Runs are totally ordered by
// (run_time ASC, id ASC), so tied times occupy consecutive positions with
// the lowest id first and the result is deterministic.
func (r *RunRepository) AtRank(ctx context.Context, mapID int64, style, runType, stage int, rank int64) (*domain.RunWithRank, error) {
	return readRetry(ctx, func(ctx context.Context) (*domain.RunWithRank, error) {
		ctx, cancel := withTimeout(ctx)
		defer cancel()

		row := r.db.QueryRowContext(ctx, `
			SELECT `+runSelectColumns+`, `+rankSubquery+` AS rank
			FROM map_times mq
			JOIN players p ON p.id = mq.player_id
			WHERE mq.map_id = ? AND mq.style = ? AND mq.type = ? AND mq.stage = ?
			  AND (SELECT COUNT(*) FROM map_times sq
			       WHERE sq.map_id = mq.map_id AND sq.style = mq.style
			         AND sq.type = mq.type AND sq.stage = mq.stage
			         AND (sq.run_time < mq.run_time
			              OR (sq.run_time = mq.run_time AND sq.id <= mq.id))) = ?
			LIMIT 1`,
			mapID, style, runType, stage, rank)

		run, err := scanRun(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get run at rank %d: %w", rank, err)
		}
		return run, nil
	})
}

// Checkpoints returns a run's checkpoint rows ordered by checkpoint index.
func (r *RunRepository) Checkpoints(ctx context.Context, mapTimeID int64) ([]domain.Checkpoint, error) {
	return readRetry(ctx, func(ctx context.Context) ([]domain.Checkpoint, error) {
		ctx, cancel := withTimeout(ctx)
		defer cancel()

		rows, err := r.db.QueryContext(ctx, `
			SELECT id, maptime_id, cp, run_time,
			       start_vel_x, start_vel_y, start_vel_z,
			       end_vel_x, end_vel_y, end_vel_z, end_touch, attempts
			FROM checkpoints
			WHERE maptime_id = ?
			ORDER BY cp ASC`,
			mapTimeID)
		if err != nil {
			return nil, fmt.Errorf("failed to query checkpoints: %w", err)
		}
		defer rows.Close()

		var out []domain.Checkpoint
		for rows.Next() {
			var (
				cp    domain.Checkpoint
				units int64
				vels  [6]string
			)
			err := rows.Scan(&cp.ID, &cp.MapTimeID, &cp.CP, &units,
				&vels[0], &vels[1], &vels[2], &vels[3], &vels[4], &vels[5],
				&cp.EndTouch, &cp.Attempts)
			if err != nil {
				return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
			}
			cp.RunTime = unitsToRunTime(units)
			dst := []*decimal.Decimal{
				&cp.StartVelX, &cp.StartVelY, &cp.StartVelZ,
				&cp.EndVelX, &cp.EndVelY, &cp.EndVelZ,
			}
			for i, raw := range vels {
				d, err := decimal.NewFromString(raw)
				if err != nil {
					return nil, fmt.Errorf("corrupt velocity value %q: %w", raw, err)
				}
				*dst[i] = d
			}
			out = append(out, cp)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate checkpoints: %w", err)
		}
		return out, nil
	})
}

// Upsert saves a run and atomically replaces its checkpoint set in one
// transaction. At most one row exists per (player, map, style, type, stage);
// a resubmission overwrites all measured fields. Replacing the full child
// set means a shorter resubmission leaves no stale higher-index checkpoints.
// Any failure rolls the whole batch back.
func (r *RunRepository) Upsert(ctx context.Context, run *domain.Run, checkpoints []domain.Checkpoint) (*domain.RunWriteResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO map_times (player_id, map_id, style, type, stage, run_time,
			start_vel_x, start_vel_y, start_vel_z, end_vel_x, end_vel_y, end_vel_z,
			run_date, replay_frames)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (player_id, map_id, style, type, stage) DO UPDATE SET
			run_time = excluded.run_time,
			start_vel_x = excluded.start_vel_x,
			start_vel_y = excluded.start_vel_y,
			start_vel_z = excluded.start_vel_z,
			end_vel_x = excluded.end_vel_x,
			end_vel_y = excluded.end_vel_y,
			end_vel_z = excluded.end_vel_z,
			run_date = excluded.run_date,
			replay_frames = excluded.replay_frames`,
		run.PlayerID, run.MapID, run.Style, run.Type, run.Stage,
		runTimeToUnits(run.RunTime),
		run.StartVelX.String(), run.StartVelY.String(), run.StartVelZ.String(),
		run.EndVelX.String(), run.EndVelY.String(), run.EndVelZ.String(),
		run.RunDate, run.ReplayFrames)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert run: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}

	// LastInsertId is unreliable on the conflict path; resolve the row id
	// through the natural key instead.
	var mapTimeID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM map_times
		WHERE player_id = ? AND map_id = ? AND style = ? AND type = ? AND stage = ?`,
		run.PlayerID, run.MapID, run.Style, run.Type, run.Stage).Scan(&mapTimeID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve run id: %w", err)
	}

	result := &domain.RunWriteResult{Inserted: inserted, LastID: mapTimeID}

	if run.Type == domain.TypeMap {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM checkpoints WHERE maptime_id = ?", mapTimeID); err != nil {
			return nil, fmt.Errorf("failed to clear checkpoints: %w", err)
		}

		for _, cp := range checkpoints {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO checkpoints (maptime_id, cp, run_time,
					start_vel_x, start_vel_y, start_vel_z,
					end_vel_x, end_vel_y, end_vel_z, end_touch, attempts)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				mapTimeID, cp.CP, runTimeToUnits(cp.RunTime),
				cp.StartVelX.String(), cp.StartVelY.String(), cp.StartVelZ.String(),
				cp.EndVelX.String(), cp.EndVelY.String(), cp.EndVelZ.String(),
				cp.EndTouch, cp.Attempts)
			if err != nil {
				return nil, fmt.Errorf("failed to insert checkpoint %d: %w", cp.CP, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return nil, fmt.Errorf("failed to read rows affected: %w", err)
			}
			result.Trx = append(result.Trx, n)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run transaction: %w", err)
	}
	return result, nil
}
