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

type MapService struct {
	repo   *repository.MapRepository
	cache  *cache.Cache
	logger zerolog.Logger
}

func NewMapService(repo *repository.MapRepository, c *cache.Cache, logger zerolog.Logger) *MapService {
	return &MapService{repo: repo, cache: c, logger: logger}
}

func (s *MapService) GetByName(ctx context.Context, name string) (*domain.Map, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	key := "map:name:" + name
	return cache.GetOrCompute(ctx, s.cache, key, constants.MapCacheTTL,
		func(ctx context.Context) (*domain.Map, error) {
			return s.repo.GetByName(ctx, name)
		})
}

func (s *MapService) Insert(ctx context.Context, m *domain.Map) (domain.WriteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	now := time.Now().UTC().Unix()
	if m.DateAdded == 0 {
		m.DateAdded = now
	}
	if m.LastPlayed == 0 {
		m.LastPlayed = now
	}
	if m.Author == "" {
		m.Author = "Unknown"
	}

	res, err := s.repo.Insert(ctx, m)
	if err != nil {
		return domain.WriteResult{}, err
	}

	s.cache.DeletePrefix("map:")
	s.logger.Info().Str("name", m.Name).Int64("id", res.LastID).Msg("map inserted")
	return res, nil
}

// Update fully replaces stages and bonuses for the map; last_played is
// always set to the update time, date_added never changes.
func (s *MapService) Update(ctx context.Context, id int64, stages, bonuses int) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if id <= 0 {
		return 0, domain.NewValidationError("id is required")
	}

	updated, err := s.repo.Update(ctx, id, stages, bonuses, time.Now().UTC().Unix())
	if err != nil {
		return 0, err
	}

	s.cache.DeletePrefix("map:")
	s.logger.Info().Int64("id", id).Int("stages", stages).Int("bonuses", bonuses).Msg("map updated")
	return updated, nil
}

func mapLeadersKey(mapID int64, style int) string {
	return fmt.Sprintf("leaders:%d-%d", mapID, style)
}
