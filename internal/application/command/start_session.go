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
// START SESSION COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// StartSessionCommand contains the data to open a play session.
type StartSessionCommand struct {
	// GameID is the game being played.
	GameID uuid.UUID

	// ContestantID is the contestant playing.
	ContestantID uuid.UUID

	// StartTime is when play began. Zero value means "now".
	StartTime time.Time
}

// Validate validates the command.
func (c StartSessionCommand) Validate() error {
	if c.GameID == uuid.Nil {
		return errors.New("start_session: game_id is required")
	}
	if c.ContestantID == uuid.Nil {
		return errors.New("start_session: contestant_id is required")
	}
	return nil
}

// StartSessionResult contains the result of opening a session.
type StartSessionResult struct {
	// SessionID is the new session.
	SessionID uuid.UUID

	// GameID is the game being played.
	GameID uuid.UUID

	// ContestantID is the contestant playing.
	ContestantID uuid.UUID

	// StartTime is when the session opened.
	StartTime time.Time
}

// StartSessionHandler handles the StartSessionCommand.
type StartSessionHandler struct {
	gameRepo       game.GameRepository
	contestantRepo game.ContestantRepository
	sessionRepo    game.SessionRepository
	log            *logger.Logger
}

// NewStartSessionHandler creates a new session start handler.
func NewStartSessionHandler(
	gameRepo game.GameRepository,
	contestantRepo game.ContestantRepository,
	sessionRepo game.SessionRepository,
	log *logger.Logger,
) *StartSessionHandler {
	if log == nil {
		log = logger.Default()
	}
	return &StartSessionHandler{
		gameRepo:       gameRepo,
		contestantRepo: contestantRepo,
		sessionRepo:    sessionRepo,
		log:            log.With(logger.Component("command.start_session")),
	}
}

// Handle opens a session. Both the game and the contestant must exist, the
// game must be active, and the contestant must not already have an ongoing
// session in that game. The last rule is enforced by the storage layer, so
// two racing starts cannot both succeed.
func (h *StartSessionHandler) Handle(ctx context.Context, cmd StartSessionCommand) (*StartSessionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("game", "StartSession", shared.ErrValidation, "invalid command", err)
	}

	g, err := h.gameRepo.GetByID(ctx, cmd.GameID)
	if err != nil {
		if errors.Is(err, game.ErrGameNotFound) {
			return nil, err
		}
		return nil, shared.WrapError("game", "StartSession", shared.ErrServiceUnavailable, "failed to load game", err)
	}
	if !g.IsActive {
		return nil, game.ErrGameNotFound
	}

	if _, err := h.contestantRepo.GetByID(ctx, cmd.ContestantID); err != nil {
		if errors.Is(err, game.ErrContestantNotFound) {
			return nil, err
		}
		return nil, shared.WrapError("game", "StartSession", shared.ErrServiceUnavailable, "failed to load contestant", err)
	}

	start := cmd.StartTime
	if start.IsZero() {
		start = time.Now().UTC()
	}

	session, err := game.NewSession(cmd.GameID, cmd.ContestantID, start)
	if err != nil {
		return nil, shared.WrapError("game", "StartSession", shared.ErrValidation, "invalid session", err)
	}

	if err := h.sessionRepo.Create(ctx, session); err != nil {
		if errors.Is(err, game.ErrSessionAlreadyOngoing) {
			return nil, err
		}
		return nil, shared.WrapError("game", "StartSession", shared.ErrServiceUnavailable, "failed to create session", err)
	}

	h.log.Info("session started",
		logger.SessionID(session.ID.String()),
		logger.GameID(cmd.GameID.String()),
		logger.ContestantID(cmd.ContestantID.String()),
	)

	return &StartSessionResult{
		SessionID:    session.ID,
		GameID:       session.GameID,
		ContestantID: session.ContestantID,
		StartTime:    session.StartTime,
	}, nil
}
