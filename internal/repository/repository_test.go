package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"surftimer-api/internal/database"
	"surftimer-api/internal/domain"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var testDBCounter atomic.Int64

// Each test gets its own shared-cache in-memory database so the pool's
// connections all see the same data.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:repotest%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := database.Open(dsn, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedMap(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()

	repo := NewMapRepository(db, zerolog.Nop())
	res, err := repo.Insert(context.Background(), &domain.Map{
		Name: name, Author: "Unknown", Tier: 1, Stages: 3,
		DateAdded: 1700000000, LastPlayed: 1700000000,
	})
	if err != nil {
		t.Fatalf("failed to seed map: %v", err)
	}
	return res.LastID
}

func seedPlayer(t *testing.T, db *sql.DB, name string, steamID int64) int64 {
	t.Helper()

	repo := NewPlayerRepository(db, zerolog.Nop())
	res, err := repo.Insert(context.Background(), &domain.Player{
		Name: name, SteamID: steamID, Country: "DE",
		JoinDate: 1700000000, LastSeen: 1700000000, Connections: 1,
	})
	if err != nil {
		t.Fatalf("failed to seed player: %v", err)
	}
	return res.LastID
}

func dec(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", v, err)
	}
	return d
}

func testRun(playerID, mapID int64, style, runType, stage int, runTime decimal.Decimal) *domain.Run {
	return &domain.Run{
		PlayerID: playerID,
		MapID:    mapID,
		Style:    style,
		Type:     runType,
		Stage:    stage,
		RunTime:  runTime,
		RunDate:  1700000100,
	}
}

func testCheckpoints(t *testing.T, indexes ...int) []domain.Checkpoint {
	t.Helper()
	cps := make([]domain.Checkpoint, 0, len(indexes))
	for _, idx := range indexes {
		cps = append(cps, domain.Checkpoint{
			CP:      idx,
			RunTime: dec(t, fmt.Sprintf("%d.5", idx+1)),
		})
	}
	return cps
}
