// Package game contains the core domain model of the gameboard.
package game

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// GAME REPOSITORY INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// GameRepository defines the persistence contract for games.
// Implementations live in the infrastructure layer.
type GameRepository interface {
	// GetByID returns a game by id. Returns ErrGameNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Game, error)

	// ListActive returns all active games in creation order.
	ListActive(ctx context.Context) ([]*Game, error)

	// Create persists a new game.
	Create(ctx context.Context, g *Game) error

	// IncrementUpvotes atomically adds one upvote to an active game and
	// returns the new total. Returns ErrGameNotFound for missing or
	// inactive games.
	IncrementUpvotes(ctx context.Context, id uuid.UUID) (int, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTESTANT REPOSITORY INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// ContestantRepository defines the persistence contract for contestants.
type ContestantRepository interface {
	// GetByID returns a contestant by id. Returns ErrContestantNotFound
	// if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Contestant, error)

	// Create persists a new contestant.
	Create(ctx context.Context, c *Contestant) error
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION REPOSITORY INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// SessionRepository defines the persistence contract for play sessions.
type SessionRepository interface {
	// Create persists a new session. Returns ErrSessionAlreadyOngoing if the
	// contestant already has an ongoing session for the game.
	Create(ctx context.Context, s *Session) error

	// GetByID returns a session by id. Returns ErrSessionNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)

	// End sets the end time and final score of an ongoing session.
	// Returns ErrSessionNotFound if the session does not exist and
	// ErrSessionAlreadyEnded if it was ended before.
	End(ctx context.Context, id uuid.UUID, end time.Time, score int) error
}

// ══════════════════════════════════════════════════════════════════════════════
// POPULARITY RECORD REPOSITORY INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// PopularityRepository defines the persistence contract for daily popularity
// records.
type PopularityRepository interface {
	// Upsert inserts or replaces the record for (game, date).
	Upsert(ctx context.Context, rec *PopularityRecord) error

	// GetByGameAndDate returns the record of one game for a calendar date
	// with the game name resolved. Returns ErrPopularityNotFound if absent.
	GetByGameAndDate(ctx context.Context, gameID uuid.UUID, date time.Time) (*PopularityRecord, error)

	// ListByDate returns the records for a calendar date with game names
	// resolved, ordered by score descending, then game id ascending,
	// paginated. An absent date yields an empty slice, not an error.
	ListByDate(ctx context.Context, date time.Time, limit, offset int) ([]*PopularityRecord, error)

	// CountByDate returns the number of records for a calendar date.
	CountByDate(ctx context.Context, date time.Time) (int, error)
}
