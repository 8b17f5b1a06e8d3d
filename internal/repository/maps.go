package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"surftimer-api/internal/domain"

	"github.com/rs/zerolog"
)

type MapRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMapRepository(db *sql.DB, logger zerolog.Logger) *MapRepository {
	return &MapRepository{db: db, logger: logger}
}

const mapColumns = "id, name, author, tier, stages, bonuses, ranked, date_added, last_played"

func (r *MapRepository) GetByName(ctx context.Context, name string) (*domain.Map, error) {
	return readRetry(ctx, func(ctx context.Context) (*domain.Map, error) {
		ctx, cancel := withTimeout(ctx)
		defer cancel()

		row := r.db.QueryRowContext(ctx,
			"SELECT "+mapColumns+" FROM maps WHERE name = ?", name)

		var m domain.Map
		err := row.Scan(&m.ID, &m.Name, &m.Author, &m.Tier, &m.Stages,
			&m.Bonuses, &m.Ranked, &m.DateAdded, &m.LastPlayed)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get map %q: %w", name, err)
		}
		return &m, nil
	})
}

func (r *MapRepository) Insert(ctx context.Context, m *domain.Map) (domain.WriteResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO maps (name, author, tier, stages, bonuses, ranked, date_added, last_played)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Name, m.Author, m.Tier, m.Stages, m.Bonuses, m.Ranked, m.DateAdded, m.LastPlayed)
	if err != nil {
		if isConstraint(err) {
			r.logger.Debug().Str("name", m.Name).Msg("map already exists")
			return domain.WriteResult{}, domain.ErrNotModified
		}
		return domain.WriteResult{}, fmt.Errorf("failed to insert map %q: %w", m.Name, err)
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

// Update is a full replace of {last_played, stages, bonuses} keyed by id.
func (r *MapRepository) Update(ctx context.Context, id int64, stages, bonuses int, lastPlayed int64) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		"UPDATE maps SET last_played = ?, stages = ?, bonuses = ? WHERE id = ?",
		lastPlayed, stages, bonuses, id)
	if err != nil {
		return 0, fmt.Errorf("failed to update map %d: %w", id, err)
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
