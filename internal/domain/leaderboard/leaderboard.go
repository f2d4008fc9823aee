// Package leaderboard contains the point-in-time leaderboard model:
// per-contestant score totals aggregated over play sessions, scoped
// globally, per game, or per calendar date.
package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCOPE
// ══════════════════════════════════════════════════════════════════════════════

// ScopeKind selects which sessions participate in the aggregation.
type ScopeKind string

const (
	// ScopeGlobal aggregates every session ever played.
	ScopeGlobal ScopeKind = "global"
	// ScopeGame aggregates sessions of a single game.
	ScopeGame ScopeKind = "game"
	// ScopeDate aggregates sessions started on a single calendar date.
	ScopeDate ScopeKind = "date"
)

// Scope describes one leaderboard filter. GameID is set for ScopeGame,
// Date (midnight in the reference timezone) for ScopeDate.
type Scope struct {
	Kind   ScopeKind
	GameID uuid.UUID
	Date   time.Time
}

// Global returns the all-sessions scope.
func Global() Scope {
	return Scope{Kind: ScopeGlobal}
}

// ForGame returns a single-game scope.
func ForGame(gameID uuid.UUID) Scope {
	return Scope{Kind: ScopeGame, GameID: gameID}
}

// ForDate returns a single-day scope. The day is the calendar date
// containing the given midnight.
func ForDate(date time.Time) Scope {
	return Scope{Kind: ScopeDate, Date: date}
}

// Validate checks that the scope carries the field its kind requires.
func (s Scope) Validate() error {
	switch s.Kind {
	case ScopeGlobal:
		return nil
	case ScopeGame:
		if s.GameID == uuid.Nil {
			return fmt.Errorf("game scope requires a game id")
		}
		return nil
	case ScopeDate:
		if s.Date.IsZero() {
			return fmt.Errorf("date scope requires a date")
		}
		return nil
	default:
		return fmt.Errorf("unknown scope kind %q", s.Kind)
	}
}

// String returns a representation for logging.
func (s Scope) String() string {
	switch s.Kind {
	case ScopeGame:
		return fmt.Sprintf("game:%s", s.GameID)
	case ScopeDate:
		return fmt.Sprintf("date:%s", s.Date.Format("2006-01-02"))
	default:
		return "global"
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ROWS
// ══════════════════════════════════════════════════════════════════════════════

// Row is one aggregated leaderboard row before rank assignment.
type Row struct {
	ContestantID uuid.UUID
	Name         string
	TotalScore   int
}

// Entry is a Row with its position assigned by the query layer.
// Rank numbering continues across pages.
type Entry struct {
	Rank         int
	ContestantID uuid.UUID
	Name         string
	TotalScore   int
}

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Repository aggregates session scores per contestant.
// Implemented by the postgres session repository.
type Repository interface {
	// SumScoresByContestant returns contestants with their score totals in
	// the scope, ordered by total descending with contestant name ascending
	// as the tie-break, paginated. An empty scope yields an empty slice.
	SumScoresByContestant(ctx context.Context, scope Scope, limit, offset int) ([]Row, error)

	// CountContestants returns the number of distinct contestants with at
	// least one session in the scope.
	CountContestants(ctx context.Context, scope Scope) (int, error)
}
