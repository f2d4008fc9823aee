package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gameboard-hub/gameboard-core/internal/domain/game"
)

// ══════════════════════════════════════════════════════════════════════════════
// POPULARITY REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// PopularityRepository is the PostgreSQL implementation of
// game.PopularityRepository. One row per (game, date), upserted by the
// refresh job every cycle.
type PopularityRepository struct {
	conn *Connection
}

// NewPopularityRepository creates a new PopularityRepository.
func NewPopularityRepository(conn *Connection) *PopularityRepository {
	return &PopularityRepository{conn: conn}
}

// Upsert inserts or replaces the record for (game, date).
func (r *PopularityRepository) Upsert(ctx context.Context, rec *game.PopularityRecord) error {
	query := `
		INSERT INTO game_popularity (game_id, date, score, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (game_id, date)
		DO UPDATE SET score = EXCLUDED.score, updated_at = EXCLUDED.updated_at
	`

	_, err := r.conn.Exec(ctx, query, rec.GameID, rec.Date, rec.Score, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert popularity record: %w", err)
	}

	return nil
}

// GetByGameAndDate returns the record of one game for a calendar date with
// the game name resolved.
func (r *PopularityRepository) GetByGameAndDate(ctx context.Context, gameID uuid.UUID, date time.Time) (*game.PopularityRecord, error) {
	query := `
		SELECT p.game_id, g.name, p.date, p.score, p.updated_at
		FROM game_popularity p
		JOIN games g ON g.id = p.game_id
		WHERE p.game_id = $1 AND p.date = $2
	`

	var rec game.PopularityRecord
	err := r.conn.QueryRow(ctx, query, gameID, date).Scan(
		&rec.GameID, &rec.Name, &rec.Date, &rec.Score, &rec.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, game.ErrPopularityNotFound
		}
		return nil, fmt.Errorf("get popularity by game and date: %w", err)
	}

	return &rec, nil
}

// ListByDate returns the records for a calendar date with game names
// resolved, ordered by score descending, then game id ascending, paginated.
func (r *PopularityRepository) ListByDate(ctx context.Context, date time.Time, limit, offset int) ([]*game.PopularityRecord, error) {
	query := `
		SELECT p.game_id, g.name, p.date, p.score, p.updated_at
		FROM game_popularity p
		JOIN games g ON g.id = p.game_id
		WHERE p.date = $1
		ORDER BY p.score DESC, p.game_id ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.conn.Query(ctx, query, date, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list popularity by date: %w", err)
	}
	defer rows.Close()

	var records []*game.PopularityRecord
	for rows.Next() {
		var rec game.PopularityRecord
		if err := rows.Scan(&rec.GameID, &rec.Name, &rec.Date, &rec.Score, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan popularity row: %w", err)
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// CountByDate returns the number of records for a calendar date.
func (r *PopularityRepository) CountByDate(ctx context.Context, date time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM game_popularity WHERE date = $1`

	var n int
	if err := r.conn.QueryRow(ctx, query, date).Scan(&n); err != nil {
		return 0, fmt.Errorf("count popularity by date: %w", err)
	}
	return n, nil
}
