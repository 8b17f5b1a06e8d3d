package service

import (
	"context"
	"errors"
	"testing"

	"surftimer-api/internal/domain"
	"surftimer-api/internal/repository"

	"github.com/rs/zerolog"
)

func newMapService(t *testing.T, f *fixture) *MapService {
	t.Helper()
	return NewMapService(repository.NewMapRepository(f.db, zerolog.Nop()), f.cache, zerolog.Nop())
}

func TestMapServiceInsertDefaults(t *testing.T) {
	f := newFixture(t)
	svc := newMapService(t, f)
	ctx := context.Background()

	res, err := svc.Insert(ctx, &domain.Map{Name: "surf_defaults", Tier: 3, Stages: 1})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if res.Inserted != 1 {
		t.Fatalf("unexpected write result %+v", res)
	}

	m, err := svc.GetByName(ctx, "surf_defaults")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if m.Author != "Unknown" {
		t.Errorf("author default not applied: %q", m.Author)
	}
	if m.DateAdded == 0 || m.LastPlayed == 0 {
		t.Errorf("timestamp defaults not applied: %+v", m)
	}
}

func TestMapServiceUpdateInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	svc := newMapService(t, f)
	ctx := context.Background()

	res, err := svc.Insert(ctx, &domain.Map{Name: "surf_cached", Tier: 1, Stages: 1})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// Warm the cache, then write through the service.
	if _, err := svc.GetByName(ctx, "surf_cached"); err != nil {
		t.Fatalf("warmup read failed: %v", err)
	}
	if _, err := svc.Update(ctx, res.LastID, 4, 2); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	m, err := svc.GetByName(ctx, "surf_cached")
	if err != nil {
		t.Fatalf("read after update failed: %v", err)
	}
	if m.Stages != 4 || m.Bonuses != 2 {
		t.Errorf("read returned stale map: %+v", m)
	}
}

func TestMapServiceUpdateRequiresID(t *testing.T) {
	f := newFixture(t)
	svc := newMapService(t, f)

	if _, err := svc.Update(context.Background(), 0, 1, 0); !domain.IsValidationError(err) {
		t.Errorf("id 0 accepted: %v", err)
	}
}

func TestMapServiceGetMissing(t *testing.T) {
	f := newFixture(t)
	svc := newMapService(t, f)

	if _, err := svc.GetByName(context.Background(), "surf_missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
