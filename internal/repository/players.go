package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"surftimer-api/internal/domain"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(db *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: db, logger: logger}
}

const playerColumns = "id, name, steam_id, country, join_date, last_seen, connections"

func (r *PlayerRepository) GetBySteamID(ctx context.Context, steamID int64) (*domain.Player, error) {
	return readRetry(ctx, func(ctx context.Context) (*domain.Player, error) {
		ctx, cancel := withTimeout(ctx)
		defer cancel()

		row := r.db.QueryRowContext(ctx,
			"SELECT "+playerColumns+" FROM players WHERE steam_id = ? LIMIT 1", steamID)

		var p domain.Player
		err := row.Scan(&p.ID, &p.Name, &p.SteamID, &p.Country,
			&p.JoinDate, &p.LastSeen, &p.Connections)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get player %d: %w", steamID, err)
		}
		return &p, nil
	})
}

func (r *PlayerRepository) Insert(ctx context.Context, p *domain.Player) (domain.WriteResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO players (name, steam_id, country, join_date, last_seen, connections)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.SteamID, p.Country, p.JoinDate, p.LastSeen, p.Connections)
	if err != nil {
		if isConstraint(err) {
			r.logger.Debug().Int64("steam_id", p.SteamID).Msg("player already exists")
			return domain.WriteResult{}, domain.ErrNotModified
		}
		return domain.WriteResult{}, fmt.Errorf("failed to insert player %d: %w", p.SteamID, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return domain.WriteResult{}, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if inserted < 1 {
		return domain.WriteResult{}, domain.ErrNotModified
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return domain.WriteResult{}, fmt.Errorf("failed to read last insert id: %w", err)
	}

	return domain.WriteResult{Inserted: inserted, LastID: lastID}, nil
}

// Update records a sighting: country and last_seen are replaced and the
// connection counter is incremented.
func (r *PlayerRepository) Update(ctx context.Context, id int64, country string, lastSeen int64) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE players SET country = ?, last_seen = ?, connections = connections + 1
		WHERE id = ?`,
		country, lastSeen, id)
	if err != nil {
		return 0, fmt.Errorf("failed to update player %d: %w", id, err)
	}

	updated, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if updated < 1 {
		return 0, domain.ErrNotModified
	}
	return updated, nil
}
