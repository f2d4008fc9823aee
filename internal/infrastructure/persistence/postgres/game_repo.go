package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gameboard-hub/gameboard-core/internal/domain/game"
)

// ══════════════════════════════════════════════════════════════════════════════
// GAME REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// GameRepository is the PostgreSQL implementation of game.GameRepository.
type GameRepository struct {
	conn *Connection
}

// NewGameRepository creates a new GameRepository.
func NewGameRepository(conn *Connection) *GameRepository {
	return &GameRepository{conn: conn}
}

// GetByID returns a game by id.
func (r *GameRepository) GetByID(ctx context.Context, id uuid.UUID) (*game.Game, error) {
	query := `
		SELECT id, name, upvotes, is_active, created_at, updated_at
		FROM games
		WHERE id = $1
	`

	var g game.Game
	err := r.conn.QueryRow(ctx, query, id).Scan(
		&g.ID, &g.Name, &g.Upvotes, &g.IsActive, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, game.ErrGameNotFound
		}
		return nil, fmt.Errorf("get game by id: %w", err)
	}

	return &g, nil
}

// ListActive returns all active games in creation order.
func (r *GameRepository) ListActive(ctx context.Context) ([]*game.Game, error) {
	query := `
		SELECT id, name, upvotes, is_active, created_at, updated_at
		FROM games
		WHERE is_active
		ORDER BY created_at, id
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active games: %w", err)
	}
	defer rows.Close()

	var games []*game.Game
	for rows.Next() {
		var g game.Game
		if err := rows.Scan(&g.ID, &g.Name, &g.Upvotes, &g.IsActive, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan game row: %w", err)
		}
		games = append(games, &g)
	}

	return games, rows.Err()
}

// Create persists a new game.
func (r *GameRepository) Create(ctx context.Context, g *game.Game) error {
	query := `
		INSERT INTO games (id, name, upvotes, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		g.ID, g.Name, g.Upvotes, g.IsActive, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}

	return nil
}

// IncrementUpvotes atomically adds one upvote to an active game and returns
// the new total. The single UPDATE takes the row lock, so concurrent upvotes
// serialize without losing increments.
func (r *GameRepository) IncrementUpvotes(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
		UPDATE games
		SET upvotes = upvotes + 1, updated_at = NOW()
		WHERE id = $1 AND is_active
		RETURNING upvotes
	`

	var upvotes int
	err := r.conn.QueryRow(ctx, query, id).Scan(&upvotes)
	if err != nil {
		if IsNoRows(err) {
			return 0, game.ErrGameNotFound
		}
		return 0, fmt.Errorf("increment upvotes: %w", err)
	}

	return upvotes, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTESTANT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// ContestantRepository is the PostgreSQL implementation of
// game.ContestantRepository.
type ContestantRepository struct {
	conn *Connection
}

// NewContestantRepository creates a new ContestantRepository.
func NewContestantRepository(conn *Connection) *ContestantRepository {
	return &ContestantRepository{conn: conn}
}

// GetByID returns a contestant by id.
func (r *ContestantRepository) GetByID(ctx context.Context, id uuid.UUID) (*game.Contestant, error) {
	query := `
		SELECT id, name, is_active, joined_at
		FROM contestants
		WHERE id = $1
	`

	var c game.Contestant
	err := r.conn.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.IsActive, &c.JoinedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, game.ErrContestantNotFound
		}
		return nil, fmt.Errorf("get contestant by id: %w", err)
	}

	return &c, nil
}

// Create persists a new contestant.
func (r *ContestantRepository) Create(ctx context.Context, c *game.Contestant) error {
	query := `
		INSERT INTO contestants (id, name, is_active, joined_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.conn.Exec(ctx, query, c.ID, c.Name, c.IsActive, c.JoinedAt)
	if err != nil {
		return fmt.Errorf("create contestant: %w", err)
	}

	return nil
}
