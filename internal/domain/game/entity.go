// Package game contains the core domain model of the gameboard:
// games, contestants, play sessions, and daily popularity records.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// GAME
// ══════════════════════════════════════════════════════════════════════════════

// Game represents a playable game on the board.
type Game struct {
	// ID is the unique identifier of the game.
	ID uuid.UUID

	// Name is the display name of the game.
	Name string

	// Upvotes is the total number of collaborator upvotes.
	// It only ever grows.
	Upvotes int

	// IsActive marks whether the game participates in scoring and listings.
	IsActive bool

	// CreatedAt is when the game was registered.
	CreatedAt time.Time

	// UpdatedAt is when the game was last modified.
	UpdatedAt time.Time
}

// NewGame creates a new active game with validation.
func NewGame(name string) (*Game, error) {
	if name == "" {
		return nil, ErrInvalidGameName
	}
	now := time.Now().UTC()
	return &Game{
		ID:        uuid.New(),
		Name:      name,
		Upvotes:   0,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// String returns a representation for logging.
func (g *Game) String() string {
	return fmt.Sprintf("Game{ID: %s, Name: %s, Upvotes: %d}", g.ID, g.Name, g.Upvotes)
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTESTANT
// ══════════════════════════════════════════════════════════════════════════════

// Contestant represents a player competing on the board.
type Contestant struct {
	// ID is the unique identifier of the contestant.
	ID uuid.UUID

	// Name is the display name shown on leaderboards.
	Name string

	// IsActive marks whether the contestant may start sessions.
	IsActive bool

	// JoinedAt is when the contestant registered.
	JoinedAt time.Time
}

// NewContestant creates a new active contestant with validation.
func NewContestant(name string) (*Contestant, error) {
	if name == "" {
		return nil, ErrInvalidContestantName
	}
	return &Contestant{
		ID:       uuid.New(),
		Name:     name,
		IsActive: true,
		JoinedAt: time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION
// ══════════════════════════════════════════════════════════════════════════════

// Session represents a single timed play of a game by a contestant.
// A session with a nil EndTime is ongoing. A session is ended exactly once,
// which fixes its end time and final score.
type Session struct {
	// ID is the unique identifier of the session.
	ID uuid.UUID

	// GameID is the game being played.
	GameID uuid.UUID

	// ContestantID is the player.
	ContestantID uuid.UUID

	// StartTime is when play began.
	StartTime time.Time

	// EndTime is when play finished. Nil means the session is ongoing.
	EndTime *time.Time

	// Score is the points earned. Zero until the session ends.
	Score int
}

// NewSession creates an ongoing session starting at the given time.
func NewSession(gameID, contestantID uuid.UUID, start time.Time) (*Session, error) {
	if gameID == uuid.Nil {
		return nil, ErrInvalidGameID
	}
	if contestantID == uuid.Nil {
		return nil, ErrInvalidContestantID
	}
	if start.IsZero() {
		return nil, ErrInvalidStartTime
	}
	return &Session{
		ID:           uuid.New(),
		GameID:       gameID,
		ContestantID: contestantID,
		StartTime:    start,
	}, nil
}

// IsOngoing reports whether the session has not been ended yet.
func (s *Session) IsOngoing() bool {
	return s.EndTime == nil
}

// End finishes the session with the given end time and final score.
// Ending twice, or before the start time, is rejected.
func (s *Session) End(end time.Time, score int) error {
	if !s.IsOngoing() {
		return ErrSessionAlreadyEnded
	}
	if end.Before(s.StartTime) {
		return ErrEndBeforeStart
	}
	if score < 0 {
		return ErrNegativeScore
	}
	s.EndTime = &end
	s.Score = score
	return nil
}

// Duration returns how long the session lasted. The second return value is
// false for ongoing sessions, which have no duration yet.
func (s *Session) Duration() (time.Duration, bool) {
	if s.EndTime == nil {
		return 0, false
	}
	return s.EndTime.Sub(s.StartTime), true
}

// ══════════════════════════════════════════════════════════════════════════════
// POPULARITY RECORD
// ══════════════════════════════════════════════════════════════════════════════

// PopularityRecord is the persisted popularity score of a game for one
// calendar date. Records are upserted by the refresh job and never deleted.
type PopularityRecord struct {
	// GameID is the game this score belongs to.
	GameID uuid.UUID

	// Name is the display name of the game. It lives on the games table and
	// is resolved onto the record by read queries; writes ignore it.
	Name string

	// Date is the calendar day the score was computed for (midnight in the
	// reference timezone).
	Date time.Time

	// Score is the weighted popularity index, rounded to two decimals.
	Score float64

	// UpdatedAt is when the record was last recomputed.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrGameNotFound - no game with the given id, or the game is inactive.
	ErrGameNotFound = errors.New("game not found")

	// ErrContestantNotFound - no contestant with the given id.
	ErrContestantNotFound = errors.New("contestant not found")

	// ErrSessionNotFound - no session with the given id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrPopularityNotFound - no popularity record for the game and date.
	ErrPopularityNotFound = errors.New("popularity record not found")

	// ErrSessionAlreadyEnded - the session has already been ended.
	ErrSessionAlreadyEnded = errors.New("session already ended")

	// ErrSessionAlreadyOngoing - the contestant already has an ongoing
	// session for this game.
	ErrSessionAlreadyOngoing = errors.New("session already ongoing for this game and contestant")

	// ErrEndBeforeStart - the session end time precedes its start time.
	ErrEndBeforeStart = errors.New("session end time is before start time")

	// ErrNegativeScore - a session score must be non-negative.
	ErrNegativeScore = errors.New("session score must be non-negative")

	// ErrInvalidGameName - a game name cannot be empty.
	ErrInvalidGameName = errors.New("invalid game name: cannot be empty")

	// ErrInvalidContestantName - a contestant name cannot be empty.
	ErrInvalidContestantName = errors.New("invalid contestant name: cannot be empty")

	// ErrInvalidGameID - a session needs a non-nil game id.
	ErrInvalidGameID = errors.New("invalid game id")

	// ErrInvalidContestantID - a session needs a non-nil contestant id.
	ErrInvalidContestantID = errors.New("invalid contestant id")

	// ErrInvalidStartTime - a session needs a start time.
	ErrInvalidStartTime = errors.New("invalid session start time")
)
