package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gameboard-hub/gameboard-core/internal/domain/game"
	"github.com/gameboard-hub/gameboard-core/internal/domain/shared"
	"github.com/gameboard-hub/gameboard-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// END SESSION COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// EndSessionCommand contains the data to close a play session.
type EndSessionCommand struct {
	// SessionID is the session being closed.
	SessionID uuid.UUID

	// EndTime is when play ended. Zero value means "now".
	EndTime time.Time

	// Score is the points earned in the session. Must be non-negative.
	Score int
}

// Validate validates the command.
func (c EndSessionCommand) Validate() error {
	if c.SessionID == uuid.Nil {
		return errors.New("end_session: session_id is required")
	}
	if c.Score < 0 {
		return errors.New("end_session: score cannot be negative")
	}
	return nil
}

// EndSessionResult contains the result of closing a session.
type EndSessionResult struct {
	// SessionID is the closed session.
	SessionID uuid.UUID

	// GameID is the game that was played.
	GameID uuid.UUID

	// ContestantID is the contestant who played.
	ContestantID uuid.UUID

	// Duration is how long the session lasted.
	Duration time.Duration

	// Score is the recorded score.
	Score int
}

// EndSessionHandler handles the EndSessionCommand.
type EndSessionHandler struct {
	sessionRepo game.SessionRepository
	log         *logger.Logger
}

// NewEndSessionHandler creates a new session end handler.
func NewEndSessionHandler(sessionRepo game.SessionRepository, log *logger.Logger) *EndSessionHandler {
	if log == nil {
		log = logger.Default()
	}
	return &EndSessionHandler{
		sessionRepo: sessionRepo,
		log:         log.With(logger.Component("command.end_session")),
	}
}

// Handle closes a session. The session must exist, must still be ongoing,
// and the end time must not precede the start time. Closing is a single
// conditional update, so a session can be ended at most once.
func (h *EndSessionHandler) Handle(ctx context.Context, cmd EndSessionCommand) (*EndSessionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("game", "EndSession", shared.ErrValidation, "invalid command", err)
	}

	session, err := h.sessionRepo.GetByID(ctx, cmd.SessionID)
	if err != nil {
		if errors.Is(err, game.ErrSessionNotFound) {
			return nil, err
		}
		return nil, shared.WrapError("game", "EndSession", shared.ErrServiceUnavailable, "failed to load session", err)
	}

	end := cmd.EndTime
	if end.IsZero() {
		end = time.Now().UTC()
	}

	// Run the domain checks up front so the caller gets a precise error
	// before any write is attempted.
	if err := session.End(end, cmd.Score); err != nil {
		return nil, err
	}

	if err := h.sessionRepo.End(ctx, cmd.SessionID, end, cmd.Score); err != nil {
		if errors.Is(err, game.ErrSessionNotFound) || errors.Is(err, game.ErrSessionAlreadyEnded) {
			return nil, err
		}
		return nil, shared.WrapError("game", "EndSession", shared.ErrServiceUnavailable, "failed to end session", err)
	}

	duration, _ := session.Duration()

	h.log.Info("session ended",
		logger.SessionID(session.ID.String()),
		logger.GameID(session.GameID.String()),
		logger.ContestantID(session.ContestantID.String()),
		logger.Duration("duration", duration),
		logger.Score(float64(cmd.Score)),
	)

	return &EndSessionResult{
		SessionID:    session.ID,
		GameID:       session.GameID,
		ContestantID: session.ContestantID,
		Duration:     duration,
		Score:        cmd.Score,
	}, nil
}
