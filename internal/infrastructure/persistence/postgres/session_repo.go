package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gameboard-hub/gameboard-core/internal/domain/game"
	"github.com/gameboard-hub/gameboard-core/internal/domain/leaderboard"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// SessionRepository is the PostgreSQL implementation of
// game.SessionRepository. It also serves the session aggregates behind the
// popularity signals (popularity.MetricsStore) and the leaderboard
// (leaderboard.Repository), so all three read the same rows.
type SessionRepository struct {
	conn *Connection
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(conn *Connection) *SessionRepository {
	return &SessionRepository{conn: conn}
}

// ──────────────────────────────────────────────────────────────────────────────
// SESSION LIFECYCLE
// ──────────────────────────────────────────────────────────────────────────────

// Create persists a new session. The partial unique index on ongoing
// sessions turns a duplicate start into ErrSessionAlreadyOngoing.
func (r *SessionRepository) Create(ctx context.Context, s *game.Session) error {
	query := `
		INSERT INTO game_sessions (id, game_id, contestant_id, start_time, end_time, score)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID, s.GameID, s.ContestantID, s.StartTime, s.EndTime, s.Score,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return game.ErrSessionAlreadyOngoing
		}
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// GetByID returns a session by id.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*game.Session, error) {
	query := `
		SELECT id, game_id, contestant_id, start_time, end_time, score
		FROM game_sessions
		WHERE id = $1
	`

	var s game.Session
	err := r.conn.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.GameID, &s.ContestantID, &s.StartTime, &s.EndTime, &s.Score,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, game.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	return &s, nil
}

// End sets the end time and final score of an ongoing session. The WHERE
// clause only matches ongoing rows, so a second End on the same session
// updates nothing; the follow-up lookup tells not-found and already-ended
// apart.
func (r *SessionRepository) End(ctx context.Context, id uuid.UUID, end time.Time, score int) error {
	query := `
		UPDATE game_sessions
		SET end_time = $2, score = $3
		WHERE id = $1 AND end_time IS NULL
	`

	tag, err := r.conn.Exec(ctx, query, id, end, score)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return game.ErrSessionAlreadyEnded
}

// ──────────────────────────────────────────────────────────────────────────────
// POPULARITY METRICS (popularity.MetricsStore)
// ──────────────────────────────────────────────────────────────────────────────

// DailyPlayers returns the number of distinct contestants who started a
// session of the game within [from, to).
func (r *SessionRepository) DailyPlayers(ctx context.Context, gameID uuid.UUID, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT contestant_id)
		FROM game_sessions
		WHERE game_id = $1 AND start_time >= $2 AND start_time < $3
	`

	var n int
	if err := r.conn.QueryRow(ctx, query, gameID, from, to).Scan(&n); err != nil {
		return 0, fmt.Errorf("count daily players: %w", err)
	}
	return n, nil
}

// currentPlayersQuery counts contestants, not session rows, so duplicate
// ongoing rows cannot inflate the signal.
const currentPlayersQuery = `
	SELECT COUNT(DISTINCT contestant_id)
	FROM game_sessions
	WHERE game_id = $1 AND end_time IS NULL
`

// CurrentPlayers returns the number of distinct contestants with an ongoing
// session of the game.
func (r *SessionRepository) CurrentPlayers(ctx context.Context, gameID uuid.UUID) (int, error) {
	var n int
	if err := r.conn.QueryRow(ctx, currentPlayersQuery, gameID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count current players: %w", err)
	}
	return n, nil
}

// MaxSessionLength returns the longest single completed session of the game
// started within [from, to). The maximum is taken over per-session
// durations, not over endpoints of different sessions.
func (r *SessionRepository) MaxSessionLength(ctx context.Context, gameID uuid.UUID, from, to time.Time) (time.Duration, error) {
	query := `
		SELECT COALESCE(MAX(EXTRACT(EPOCH FROM (end_time - start_time))), 0)
		FROM game_sessions
		WHERE game_id = $1 AND start_time >= $2 AND start_time < $3
			AND end_time IS NOT NULL
	`

	var seconds float64
	if err := r.conn.QueryRow(ctx, query, gameID, from, to).Scan(&seconds); err != nil {
		return 0, fmt.Errorf("max session length: %w", err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// DailySessions returns the number of sessions of the game started within
// [from, to), ongoing or not.
func (r *SessionRepository) DailySessions(ctx context.Context, gameID uuid.UUID, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM game_sessions
		WHERE game_id = $1 AND start_time >= $2 AND start_time < $3
	`

	var n int
	if err := r.conn.QueryRow(ctx, query, gameID, from, to).Scan(&n); err != nil {
		return 0, fmt.Errorf("count daily sessions: %w", err)
	}
	return n, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// LEADERBOARD AGGREGATION (leaderboard.Repository)
// ──────────────────────────────────────────────────────────────────────────────

// SumScoresByContestant returns contestants with their score totals in the
// scope, ordered by total descending with name ascending as the tie-break.
func (r *SessionRepository) SumScoresByContestant(ctx context.Context, scope leaderboard.Scope, limit, offset int) ([]leaderboard.Row, error) {
	query, args := leaderboardQuery(scope)
	query += fmt.Sprintf(`
		GROUP BY c.id, c.name
		ORDER BY total_score DESC, c.name ASC
		LIMIT $%d OFFSET $%d
	`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sum scores by contestant: %w", err)
	}
	defer rows.Close()

	var result []leaderboard.Row
	for rows.Next() {
		var row leaderboard.Row
		if err := rows.Scan(&row.ContestantID, &row.Name, &row.TotalScore); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// CountContestants returns the number of distinct contestants with at least
// one session in the scope.
func (r *SessionRepository) CountContestants(ctx context.Context, scope leaderboard.Scope) (int, error) {
	where, args := scopeFilter(scope, 1)
	query := `
		SELECT COUNT(DISTINCT contestant_id)
		FROM game_sessions s
	` + where

	var n int
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count leaderboard contestants: %w", err)
	}
	return n, nil
}

// leaderboardQuery builds the aggregation SELECT for a scope, without the
// trailing GROUP BY / ORDER BY / LIMIT.
func leaderboardQuery(scope leaderboard.Scope) (string, []interface{}) {
	where, args := scopeFilter(scope, 1)
	query := `
		SELECT c.id, c.name, COALESCE(SUM(s.score), 0) AS total_score
		FROM game_sessions s
		JOIN contestants c ON c.id = s.contestant_id
	` + where
	return query, args
}

// scopeFilter renders the scope as a WHERE clause with placeholders
// numbered from firstArg.
func scopeFilter(scope leaderboard.Scope, firstArg int) (string, []interface{}) {
	switch scope.Kind {
	case leaderboard.ScopeGame:
		return fmt.Sprintf("WHERE s.game_id = $%d", firstArg), []interface{}{scope.GameID}
	case leaderboard.ScopeDate:
		// Session start date, half-open day window.
		return fmt.Sprintf("WHERE s.start_time >= $%d AND s.start_time < $%d", firstArg, firstArg+1),
			[]interface{}{scope.Date, scope.Date.AddDate(0, 0, 1)}
	default:
		return "", nil
	}
}
