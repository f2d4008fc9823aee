package query

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gameboard-hub/gameboard-core/internal/domain/game"
	"github.com/gameboard-hub/gameboard-core/internal/domain/popularity"
	"github.com/gameboard-hub/gameboard-core/internal/domain/shared"
	"github.com/gameboard-hub/gameboard-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET POPULARITY QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetPopularityQuery contains the parameters of a popularity ranking request.
type GetPopularityQuery struct {
	// Date is the calendar day (midnight in the reference timezone).
	Date time.Time

	// Page is the 1-based page number.
	Page int

	// PageSize is the number of entries per page (default 20, max 100).
	PageSize int
}

// Validate checks the query and normalizes paging parameters.
func (q *GetPopularityQuery) Validate() error {
	if q.Date.IsZero() {
		return shared.ErrInvalidInput
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return nil
}

// Offset returns the row offset of the requested page.
func (q *GetPopularityQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// PopularityEntryDTO is one row of the response.
type PopularityEntryDTO struct {
	// Rank is the 1-based position; numbering continues across pages.
	Rank int `json:"rank"`

	// GameID identifies the game.
	GameID string `json:"game_id"`

	// GameName is the display name of the game.
	GameName string `json:"game_name"`

	// Score is the popularity index, two decimals.
	Score float64 `json:"score"`

	// Live reports whether the score came from the short-lived cache
	// rather than the persisted record.
	Live bool `json:"live"`

	// UpdatedAt is when the persisted record was last recomputed.
	UpdatedAt time.Time `json:"updated_at"`
}

// GetPopularityResult contains the popularity page.
type GetPopularityResult struct {
	// Entries are the rows of the requested page, highest score first.
	Entries []PopularityEntryDTO `json:"entries"`

	// TotalCount is the number of games with a record for the date.
	TotalCount int `json:"total_count"`

	// Date is the requested calendar day.
	Date string `json:"date"`

	// HasMore reports whether pages follow the current one.
	HasMore bool `json:"has_more"`

	// Page is the current page (1-based).
	Page int `json:"page"`

	// PageSize is the page size.
	PageSize int `json:"page_size"`

	// GeneratedAt is when the result was produced.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetPopularityHandler handles popularity ranking requests.
// Persisted records give the ordering; fresher values from the live score
// cache overlay the record values in one bulk read.
type GetPopularityHandler struct {
	popularityRepo game.PopularityRepository
	scoreCache     popularity.FactorCache
	log            *logger.Logger
}

// NewGetPopularityHandler creates a new popularity query handler.
func NewGetPopularityHandler(
	popularityRepo game.PopularityRepository,
	scoreCache popularity.FactorCache,
	log *logger.Logger,
) *GetPopularityHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetPopularityHandler{
		popularityRepo: popularityRepo,
		scoreCache:     scoreCache,
		log:            log.With(logger.Component("query.get_popularity")),
	}
}

// Handle executes the popularity query. A date with no records yields an
// empty page, not an error.
func (h *GetPopularityHandler) Handle(ctx context.Context, query GetPopularityQuery) (*GetPopularityResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("popularity", "GetPopularity", shared.ErrValidation, "invalid query", err)
	}

	records, err := h.popularityRepo.ListByDate(ctx, query.Date, query.PageSize, query.Offset())
	if err != nil {
		return nil, shared.WrapError("popularity", "GetPopularity", shared.ErrServiceUnavailable, "failed to list records", err)
	}

	totalCount, err := h.popularityRepo.CountByDate(ctx, query.Date)
	if err != nil {
		return nil, shared.WrapError("popularity", "GetPopularity", shared.ErrServiceUnavailable, "failed to count records", err)
	}

	cached := h.liveScores(ctx, records)

	entries := make([]PopularityEntryDTO, len(records))
	for i, rec := range records {
		entry := PopularityEntryDTO{
			Rank:      query.Offset() + i + 1,
			GameID:    rec.GameID.String(),
			GameName:  rec.Name,
			Score:     rec.Score,
			UpdatedAt: rec.UpdatedAt,
		}
		if live, ok := cached[rec.GameID]; ok {
			entry.Score = live
			entry.Live = true
		}
		entries[i] = entry
	}

	return &GetPopularityResult{
		Entries:     entries,
		TotalCount:  totalCount,
		Date:        query.Date.Format("2006-01-02"),
		HasMore:     query.Offset()+len(entries) < totalCount,
		Page:        query.Page,
		PageSize:    query.PageSize,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// liveScores bulk-reads the live score cache for the listed games.
// Cache trouble degrades to persisted scores, never to an error.
func (h *GetPopularityHandler) liveScores(ctx context.Context, records []*game.PopularityRecord) map[uuid.UUID]float64 {
	if h.scoreCache == nil || len(records) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(records))
	for i, rec := range records {
		ids[i] = rec.GameID
	}

	cached, err := h.scoreCache.Scores(ctx, ids)
	if err != nil {
		h.log.Warn("live score cache read failed", logger.Err(err))
		return nil
	}
	return cached
}
