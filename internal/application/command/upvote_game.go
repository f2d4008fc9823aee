// Package command contains write operations (CQRS - Commands).
// These are the collaborator-facing mutations of the gameboard: upvoting a
// game and starting or ending a play session.
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
// UPVOTE GAME COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// UpvoteGameCommand contains the data to upvote a game.
type UpvoteGameCommand struct {
	// GameID is the game being upvoted.
	GameID uuid.UUID
}

// Validate validates the command.
func (c UpvoteGameCommand) Validate() error {
	if c.GameID == uuid.Nil {
		return errors.New("upvote_game: game_id is required")
	}
	return nil
}

// UpvoteGameResult contains the result of an upvote.
type UpvoteGameResult struct {
	// GameID is the upvoted game.
	GameID uuid.UUID

	// Upvotes is the new total after the increment.
	Upvotes int

	// UpvotedAt is when the upvote was applied.
	UpvotedAt time.Time
}

// UpvoteGameHandler handles the UpvoteGameCommand.
type UpvoteGameHandler struct {
	gameRepo game.GameRepository
	log      *logger.Logger
}

// NewUpvoteGameHandler creates a new upvote handler.
func NewUpvoteGameHandler(gameRepo game.GameRepository, log *logger.Logger) *UpvoteGameHandler {
	if log == nil {
		log = logger.Default()
	}
	return &UpvoteGameHandler{
		gameRepo: gameRepo,
		log:      log.With(logger.Component("command.upvote_game")),
	}
}

// Handle applies one upvote. The increment is a single atomic UPDATE, so
// concurrent upvotes never lose counts. Inactive and unknown games both
// report game.ErrGameNotFound.
func (h *UpvoteGameHandler) Handle(ctx context.Context, cmd UpvoteGameCommand) (*UpvoteGameResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("game", "UpvoteGame", shared.ErrValidation, "invalid command", err)
	}

	upvotes, err := h.gameRepo.IncrementUpvotes(ctx, cmd.GameID)
	if err != nil {
		if errors.Is(err, game.ErrGameNotFound) {
			return nil, err
		}
		return nil, shared.WrapError("game", "UpvoteGame", shared.ErrServiceUnavailable, "failed to increment upvotes", err)
	}

	h.log.Info("game upvoted",
		logger.GameID(cmd.GameID.String()),
		logger.Int("upvotes", upvotes),
	)

	return &UpvoteGameResult{
		GameID:    cmd.GameID,
		Upvotes:   upvotes,
		UpvotedAt: time.Now().UTC(),
	}, nil
}
