package service

import (
	"context"
	"fmt"
	"time"

	"surftimer-api/internal/cache"
	"surftimer-api/internal/constants"
	"surftimer-api/internal/domain"
	"surftimer-api/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type RunService struct {
	repo   *repository.RunRepository
	cache  *cache.Cache
	logger zerolog.Logger
}

func NewRunService(repo *repository.RunRepository, c *cache.Cache, logger zerolog.Logger) *RunService {
	return &RunService{repo: repo, cache: c, logger: logger}
}

// attachCheckpoints loads the ordered checkpoint set for every full map run
// in the slice. Bonus and stage runs never carry checkpoints. The runs are
// request-owned copies, so annotating them never mutates a cached value.
func (s *RunService) attachCheckpoints(ctx context.Context, runs []domain.RunWithRank) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.CheckpointFetchParallelism)

	for i := range runs {
		if runs[i].Type != domain.TypeMap {
			continue
		}
		i := i
		g.Go(func() error {
			cps, err := s.repo.Checkpoints(ctx, runs[i].ID)
			if err != nil {
				return fmt.Errorf("failed to load checkpoints for run %d: %w", runs[i].ID, err)
			}
			runs[i].Checkpoints = cps
			return nil
		})
	}

	return g.Wait()
}

// ByPlayerMap returns all of a player's runs on a map with ranks and, for
// full map runs, checkpoints.
func (s *RunService) ByPlayerMap(ctx context.Context, playerID, mapID int64) ([]domain.RunWithRank, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	key := fmt.Sprintf("playermap:%d-%d", playerID, mapID)
	return cache.GetOrCompute(ctx, s.cache, key, constants.RunCacheTTL,
		func(ctx context.Context) ([]domain.RunWithRank, error) {
			runs, err := s.repo.ByPlayerMap(ctx, playerID, mapID)
			if err != nil {
				return nil, err
			}
			if len(runs) == 0 {
				return nil, domain.ErrNotFound
			}
			if err := s.attachCheckpoints(ctx, runs); err != nil {
				return nil, err
			}
			return runs, nil
		})
}

// ByPlayer returns a player's personal bests for a (map, type, style) combo.
func (s *RunService) ByPlayer(ctx context.Context, playerID, mapID int64, runType, style int) ([]domain.RunWithRank, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	key := fmt.Sprintf("runs:%d-%d-%d-%d", playerID, mapID, runType, style)
	return cache.GetOrCompute(ctx, s.cache, key, constants.RunCacheTTL,
		func(ctx context.Context) ([]domain.RunWithRank, error) {
			runs, err := s.repo.ByPlayer(ctx, playerID, mapID, runType, style)
			if err != nil {
				return nil, err
			}
			if len(runs) == 0 {
				return nil, domain.ErrNotFound
			}
			return runs, nil
		})
}

// ByMap returns every run for a (map, style, type) combo, with checkpoints
// attached for full map runs.
func (s *RunService) ByMap(ctx context.Context, mapID int64, style, runType int) ([]domain.RunWithRank, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	key := fmt.Sprintf("maptimes:%d-%d-%d", mapID, style, runType)
	return cache.GetOrCompute(ctx, s.cache, key, constants.RunCacheTTL,
		func(ctx context.Context) ([]domain.RunWithRank, error) {
			runs, err := s.repo.ByMap(ctx, mapID, style, runType)
			if err != nil {
				return nil, err
			}
			if len(runs) == 0 {
				return nil, domain.ErrNotFound
			}
			if err := s.attachCheckpoints(ctx, runs); err != nil {
				return nil, err
			}
			return runs, nil
		})
}

func (s *RunService) ByID(ctx context.Context, id int64) (*domain.RunWithRank, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	key := fmt.Sprintf("run:%d", id)
	return cache.GetOrCompute(ctx, s.cache, key, constants.RunCacheTTL,
		func(ctx context.Context) (*domain.RunWithRank, error) {
			return s.repo.ByID(ctx, id)
		})
}

// Leaders returns the group leaders for a map and style: the best run per
// (type, stage) partition, each with its checkpoints when it is a full map
// run.
func (s *RunService) Leaders(ctx context.Context, mapID int64, style int) ([]domain.RunWithRank, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	return cache.GetOrCompute(ctx, s.cache, mapLeadersKey(mapID, style), constants.LeaderboardCacheTTL,
		func(ctx context.Context) ([]domain.RunWithRank, error) {
			runs, err := s.repo.Leaders(ctx, mapID, style)
			if err != nil {
				return nil, err
			}
			if len(runs) == 0 {
				return nil, domain.ErrNotFound
			}
			if err := s.attachCheckpoints(ctx, runs); err != nil {
				return nil, err
			}
			return runs, nil
		})
}

// Record returns the full ordered leaderboard for a map and style.
func (s *RunService) Record(ctx context.Context, mapID int64, style int) ([]domain.RunWithRank, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	key := fmt.Sprintf("record:%d-%d", mapID, style)
	return cache.GetOrCompute(ctx, s.cache, key, constants.LeaderboardCacheTTL,
		func(ctx context.Context) ([]domain.RunWithRank, error) {
			runs, err := s.repo.Record(ctx, mapID, style)
			if err != nil {
				return nil, err
			}
			if len(runs) == 0 {
				return nil, domain.ErrNotFound
			}
			return runs, nil
		})
}

// AtRank returns the run holding the requested rank in its group.
func (s *RunService) AtRank(ctx context.Context, mapID int64, style, runType, stage int, rank int64) (*domain.RunWithRank, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if rank < 1 {
		return nil, domain.NewValidationError("rank must be >= 1")
	}

	key := fmt.Sprintf("rankat:%d-%d-%d-%d-%d", mapID, style, runType, stage, rank)
	return cache.GetOrCompute(ctx, s.cache, key, constants.LeaderboardCacheTTL,
		func(ctx context.Context) (*domain.RunWithRank, error) {
			return s.repo.AtRank(ctx, mapID, style, runType, stage, rank)
		})
}

// Save validates and persists a run submission, replacing the checkpoint
// set in the same transaction. A non-empty dedup token makes the call safe
// to retry: a replayed token returns the stored result without touching the
// database again. Returns whether the result came from a replay.
func (s *RunService) Save(ctx context.Context, sub *domain.RunSubmission, token string) (*domain.RunWriteResult, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if err := sub.Validate(); err != nil {
		return nil, false, err
	}

	if token == "" {
		return s.save(ctx, sub)
	}

	computed := false
	res, err := cache.GetOrCompute(ctx, s.cache, "dedup:"+token, constants.DedupTokenTTL,
		func(ctx context.Context) (*domain.RunWriteResult, error) {
			computed = true
			r, _, err := s.save(ctx, sub)
			return r, err
		})
	if err != nil {
		return nil, false, err
	}
	if !computed {
		s.logger.Info().Str("token", token).Msg("duplicate run submission, returning stored result")
	}
	return res, !computed, nil
}

func (s *RunService) save(ctx context.Context, sub *domain.RunSubmission) (*domain.RunWriteResult, bool, error) {
	run := &domain.Run{
		PlayerID:     sub.PlayerID,
		MapID:        sub.MapID,
		Style:        sub.Style,
		Type:         sub.Type,
		Stage:        sub.Stage,
		RunTime:      sub.RunTime,
		StartVelX:    sub.StartVelX,
		StartVelY:    sub.StartVelY,
		StartVelZ:    sub.StartVelZ,
		EndVelX:      sub.EndVelX,
		EndVelY:      sub.EndVelY,
		EndVelZ:      sub.EndVelZ,
		RunDate:      time.Now().UTC().Unix(),
		ReplayFrames: sub.ReplayFrames,
	}

	res, err := s.repo.Upsert(ctx, run, sub.Checkpoints)
	if err != nil {
		return nil, false, err
	}

	s.invalidateRunReads()
	s.logger.Info().
		Int64("player_id", run.PlayerID).
		Int64("map_id", run.MapID).
		Int("type", run.Type).
		Int("stage", run.Stage).
		Int64("maptime_id", res.LastID).
		Msg("run saved")
	return res, false, nil
}

// Ranking reads are derived state; drop every prefix a run write can change.
func (s *RunService) invalidateRunReads() {
	for _, prefix := range []string{"run:", "runs:", "playermap:", "maptimes:", "leaders:", "record:", "rankat:"} {
		s.cache.DeletePrefix(prefix)
	}
}
