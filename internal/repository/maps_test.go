package repository

import (
	"context"
	"errors"
	"testing"

	"surftimer-api/internal/domain"

	"github.com/rs/zerolog"
)

func TestMapInsertAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewMapRepository(db, zerolog.Nop())
	ctx := context.Background()

	res, err := repo.Insert(ctx, &domain.Map{
		Name: "surf_classics", Author: "mariowned", Tier: 2, Stages: 4, Bonuses: 1,
		Ranked: 1, DateAdded: 1700000000, LastPlayed: 1700000500,
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if res.Inserted != 1 || res.LastID == 0 {
		t.Fatalf("unexpected write result %+v", res)
	}

	m, err := repo.GetByName(ctx, "surf_classics")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if m.ID != res.LastID || m.Author != "mariowned" || m.Tier != 2 || m.Stages != 4 {
		t.Errorf("round trip mismatch: %+v", m)
	}
}

func TestMapGetMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewMapRepository(db, zerolog.Nop())

	if _, err := repo.GetByName(context.Background(), "surf_nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestMapDuplicateInsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewMapRepository(db, zerolog.Nop())
	ctx := context.Background()

	m := &domain.Map{Name: "surf_dupe", Author: "Unknown", Tier: 1, Stages: 1}
	if _, err := repo.Insert(ctx, m); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := repo.Insert(ctx, m); !errors.Is(err, domain.ErrNotModified) {
		t.Errorf("duplicate insert returned %v, want ErrNotModified", err)
	}
}

func TestMapUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := NewMapRepository(db, zerolog.Nop())
	ctx := context.Background()

	res, err := repo.Insert(ctx, &domain.Map{
		Name: "surf_forbidden_ways", Author: "Unknown", Tier: 6, Stages: 5,
		DateAdded: 1700000000, LastPlayed: 1700000000,
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	updated, err := repo.Update(ctx, res.LastID, 6, 2, 1700009999)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 row updated, got %d", updated)
	}

	m, err := repo.GetByName(ctx, "surf_forbidden_ways")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if m.Stages != 6 || m.Bonuses != 2 || m.LastPlayed != 1700009999 {
		t.Errorf("update not applied: %+v", m)
	}
	if m.DateAdded != 1700000000 {
		t.Errorf("date_added changed on update: %d", m.DateAdded)
	}
}

func TestMapUpdateMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewMapRepository(db, zerolog.Nop())

	if _, err := repo.Update(context.Background(), 424242, 1, 0, 1700000000); !errors.Is(err, domain.ErrNotModified) {
		t.Errorf("update of missing map returned %v, want ErrNotModified", err)
	}
}
