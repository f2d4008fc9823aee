// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"time"

	"github.com/gameboard-hub/gameboard-core/internal/domain/leaderboard"
	"github.com/gameboard-hub/gameboard-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// ══════════════════════════════════════════════════════════════════════════════

// DefaultPageSize is used when no page size is given; MaxPageSize caps it.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// GetLeaderboardQuery contains the parameters of a leaderboard request.
type GetLeaderboardQuery struct {
	// Scope selects which sessions are aggregated: global, one game, or
	// one calendar date.
	Scope leaderboard.Scope

	// Page is the 1-based page number.
	Page int

	// PageSize is the number of entries per page (default 20, max 100).
	PageSize int
}

// Validate checks the query and normalizes paging parameters.
func (q *GetLeaderboardQuery) Validate() error {
	if err := q.Scope.Validate(); err != nil {
		return err
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
func (q *GetLeaderboardQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// LeaderboardEntryDTO is one row of the response.
type LeaderboardEntryDTO struct {
	// Rank is the 1-based position; numbering continues across pages.
	Rank int `json:"rank"`

	// ContestantID identifies the contestant.
	ContestantID string `json:"contestant_id"`

	// Name is the contestant's display name.
	Name string `json:"name"`

	// TotalScore is the sum of session scores in the scope.
	TotalScore int `json:"total_score"`
}

// GetLeaderboardResult contains the leaderboard page.
type GetLeaderboardResult struct {
	// Entries are the rows of the requested page, best total first.
	Entries []LeaderboardEntryDTO `json:"entries"`

	// TotalCount is the number of contestants in the scope.
	TotalCount int `json:"total_count"`

	// Scope describes the applied filter.
	Scope string `json:"scope"`

	// HasMore reports whether pages follow the current one.
	HasMore bool `json:"has_more"`

	// Page is the current page (1-based).
	Page int `json:"page"`

	// PageSize is the page size.
	PageSize int `json:"page_size"`

	// GeneratedAt is when the result was produced.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetLeaderboardHandler handles leaderboard requests.
type GetLeaderboardHandler struct {
	repo leaderboard.Repository
}

// NewGetLeaderboardHandler creates a new leaderboard query handler.
func NewGetLeaderboardHandler(repo leaderboard.Repository) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{repo: repo}
}

// Handle executes the leaderboard query. A scope with no sessions yields an
// empty page, not an error.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, query GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("leaderboard", "GetLeaderboard", shared.ErrValidation, "invalid query", err)
	}

	rows, err := h.repo.SumScoresByContestant(ctx, query.Scope, query.PageSize, query.Offset())
	if err != nil {
		return nil, shared.WrapError("leaderboard", "GetLeaderboard", shared.ErrServiceUnavailable, "failed to aggregate scores", err)
	}

	totalCount, err := h.repo.CountContestants(ctx, query.Scope)
	if err != nil {
		return nil, shared.WrapError("leaderboard", "GetLeaderboard", shared.ErrServiceUnavailable, "failed to count contestants", err)
	}

	entries := make([]LeaderboardEntryDTO, len(rows))
	for i, row := range rows {
		entries[i] = LeaderboardEntryDTO{
			Rank:         query.Offset() + i + 1,
			ContestantID: row.ContestantID.String(),
			Name:         row.Name,
			TotalScore:   row.TotalScore,
		}
	}

	return &GetLeaderboardResult{
		Entries:     entries,
		TotalCount:  totalCount,
		Scope:       query.Scope.String(),
		HasMore:     query.Offset()+len(entries) < totalCount,
		Page:        query.Page,
		PageSize:    query.PageSize,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
