package query

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gameboard-hub/gameboard-core/internal/domain/game"
	"github.com/gameboard-hub/gameboard-core/internal/domain/popularity"
	"github.com/gameboard-hub/gameboard-core/internal/domain/shared"
	"github.com/gameboard-hub/gameboard-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET GAME POPULARITY QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetGamePopularityQuery contains the parameters of a single-game
// popularity request.
type GetGamePopularityQuery struct {
	// GameID identifies the game.
	GameID uuid.UUID

	// Date is the calendar day (midnight in the reference timezone).
	Date time.Time
}

// Validate checks the query.
func (q *GetGamePopularityQuery) Validate() error {
	if q.GameID == uuid.Nil {
		return shared.ErrInvalidID
	}
	if q.Date.IsZero() {
		return shared.ErrInvalidInput
	}
	return nil
}

// GamePopularityResult is the popularity of one game.
type GamePopularityResult struct {
	// GameID identifies the game.
	GameID string `json:"game_id"`

	// GameName is the display name of the game.
	GameName string `json:"game_name"`

	// Date is the requested calendar day.
	Date string `json:"date"`

	// Score is the popularity index, two decimals.
	Score float64 `json:"score"`

	// Live reports whether the score came from the short-lived cache
	// rather than the persisted record.
	Live bool `json:"live"`

	// UpdatedAt is when the persisted record was last recomputed.
	// Zero when the score came from the live cache.
	UpdatedAt time.Time `json:"updated_at"`
}

// GetGamePopularityHandler handles single-game popularity requests.
// The live score cache is consulted first; a miss falls back to the
// persisted record for the date.
type GetGamePopularityHandler struct {
	gameRepo       game.GameRepository
	popularityRepo game.PopularityRepository
	scoreCache     popularity.FactorCache
	log            *logger.Logger
}

// NewGetGamePopularityHandler creates a new single-game popularity handler.
func NewGetGamePopularityHandler(
	gameRepo game.GameRepository,
	popularityRepo game.PopularityRepository,
	scoreCache popularity.FactorCache,
	log *logger.Logger,
) *GetGamePopularityHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetGamePopularityHandler{
		gameRepo:       gameRepo,
		popularityRepo: popularityRepo,
		scoreCache:     scoreCache,
		log:            log.With(logger.Component("query.get_game_popularity")),
	}
}

// Handle executes the query. Returns game.ErrPopularityNotFound when the
// game has neither a live score nor a record for the date.
func (h *GetGamePopularityHandler) Handle(ctx context.Context, query GetGamePopularityQuery) (*GamePopularityResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("popularity", "GetGamePopularity", shared.ErrValidation, "invalid query", err)
	}

	g, err := h.gameRepo.GetByID(ctx, query.GameID)
	if err != nil {
		if errors.Is(err, game.ErrGameNotFound) {
			return nil, err
		}
		return nil, shared.WrapError("popularity", "GetGamePopularity", shared.ErrServiceUnavailable, "failed to load game", err)
	}

	result := &GamePopularityResult{
		GameID:   g.ID.String(),
		GameName: g.Name,
		Date:     query.Date.Format("2006-01-02"),
	}

	if score, ok := h.liveScore(ctx, g.ID); ok {
		result.Score = score
		result.Live = true
		return result, nil
	}

	rec, err := h.popularityRepo.GetByGameAndDate(ctx, query.GameID, query.Date)
	if err != nil {
		if errors.Is(err, game.ErrPopularityNotFound) {
			return nil, err
		}
		return nil, shared.WrapError("popularity", "GetGamePopularity", shared.ErrServiceUnavailable, "failed to load record", err)
	}

	result.Score = rec.Score
	result.UpdatedAt = rec.UpdatedAt
	return result, nil
}

// liveScore reads the live score cache. Cache trouble degrades to the
// persisted record, never to an error.
func (h *GetGamePopularityHandler) liveScore(ctx context.Context, gameID uuid.UUID) (float64, bool) {
	if h.scoreCache == nil {
		return 0, false
	}

	score, ok, err := h.scoreCache.Score(ctx, gameID)
	if err != nil {
		h.log.Warn("live score cache read failed", logger.Err(err))
		return 0, false
	}
	return score, ok
}
