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
)

type PlayerService struct {
	repo   *repository.PlayerRepository
	cache  *cache.Cache
	logger zerolog.Logger
}

func NewPlayerService(repo *repository.PlayerRepository, c *cache.Cache, logger zerolog.Logger) *PlayerService {
	return &PlayerService{repo: repo, cache: c, logger: logger}
}

func (s *PlayerService) GetBySteamID(ctx context.Context, steamID int64) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	key := fmt.Sprintf("player:%d", steamID)
	return cache.GetOrCompute(ctx, s.cache, key, constants.PlayerCacheTTL,
		func(ctx context.Context) (*domain.Player, error) {
			return s.repo.GetBySteamID(ctx, steamID)
		})
}

// Insert registers a player on first sighting.
func (s *PlayerService) Insert(ctx context.Context, p *domain.Player) (domain.WriteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if p.SteamID <= 0 {
		return domain.WriteResult{}, domain.NewValidationError("steam_id is required")
	}

	now := time.Now().UTC().Unix()
	if p.JoinDate == 0 {
		p.JoinDate = now
	}
	if p.LastSeen == 0 {
		p.LastSeen = now
	}
	if p.Connections == 0 {
		p.Connections = 1
	}

	res, err := s.repo.Insert(ctx, p)
	if err != nil {
		return domain.WriteResult{}, err
	}

	s.cache.DeletePrefix("player:")
	s.logger.Info().Int64("steam_id", p.SteamID).Int64("id", res.LastID).Msg("player inserted")
	return res, nil
}

// Update records a subsequent sighting: country and last_seen are replaced,
// the connection counter is incremented by the store.
func (s *PlayerService) Update(ctx context.Context, id int64, country string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if id <= 0 {
		return 0, domain.NewValidationError("id is required")
	}

	updated, err := s.repo.Update(ctx, id, country, time.Now().UTC().Unix())
	if err != nil {
		return 0, err
	}

	s.cache.DeletePrefix("player:")
	s.logger.Info().Int64("id", id).Msg("player profile updated")
	return updated, nil
}
