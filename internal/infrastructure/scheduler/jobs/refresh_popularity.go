package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gameboard-hub/gameboard-core/internal/domain/game"
	"github.com/gameboard-hub/gameboard-core/internal/domain/popularity"
	"github.com/gameboard-hub/gameboard-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH POPULARITY JOB
// ══════════════════════════════════════════════════════════════════════════════

// RefreshPopularityJob recomputes the popularity score of every active game:
// cached daily factors (repaired on miss), two live signals, cached maxima,
// weighted blend, then an upsert of today's record and a short-lived score
// cache entry. Runs every few minutes.
//
// Games are scored independently on a bounded worker pool; one game's
// failure is logged and skipped without touching the rest of the batch.
type RefreshPopularityJob struct {
	// Dependencies
	gameRepo       game.GameRepository
	popularityRepo game.PopularityRepository
	calculator     *popularity.Calculator
	factorCache    popularity.FactorCache
	logger         *slog.Logger

	// Configuration
	config RefreshPopularityConfig

	// State
	lastRunStats atomic.Value // *RefreshPopularityStats
}

// RefreshPopularityConfig contains configuration for the refresh job.
type RefreshPopularityConfig struct {
	// Timezone is the reference timezone for calendar-day boundaries.
	Timezone *time.Location

	// Weights is the signal blend. Zero value falls back to the defaults.
	Weights popularity.Weights

	// Concurrency bounds the per-game worker pool.
	Concurrency int

	// Timeout is the maximum duration for one run.
	Timeout time.Duration
}

// DefaultRefreshPopularityConfig returns sensible defaults.
func DefaultRefreshPopularityConfig() RefreshPopularityConfig {
	return RefreshPopularityConfig{
		Timezone:    time.UTC,
		Weights:     popularity.DefaultWeights(),
		Concurrency: 8,
		Timeout:     3 * time.Minute,
	}
}

// RefreshPopularityStats contains statistics from one run.
type RefreshPopularityStats struct {
	StartedAt     time.Time
	CompletedAt   time.Time
	Duration      time.Duration
	GamesScored   int
	GamesFailed   int
	FactorsHealed int
}

// NewRefreshPopularityJob creates a new popularity refresh job.
func NewRefreshPopularityJob(
	gameRepo game.GameRepository,
	popularityRepo game.PopularityRepository,
	calculator *popularity.Calculator,
	factorCache popularity.FactorCache,
	logger *slog.Logger,
	config RefreshPopularityConfig,
) *RefreshPopularityJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Timezone == nil {
		config.Timezone = time.UTC
	}
	if config.Weights == (popularity.Weights{}) {
		config.Weights = popularity.DefaultWeights()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 8
	}

	return &RefreshPopularityJob{
		gameRepo:       gameRepo,
		popularityRepo: popularityRepo,
		calculator:     calculator,
		factorCache:    factorCache,
		logger:         logger,
		config:         config,
	}
}

// Name returns the job name.
func (j *RefreshPopularityJob) Name() string {
	return "refresh_popularity"
}

// Description returns a human-readable description.
func (j *RefreshPopularityJob) Description() string {
	return "Recomputes popularity scores for all active games"
}

// Run executes one scoring cycle.
func (j *RefreshPopularityJob) Run(ctx context.Context) error {
	startedAt := time.Now()

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	games, err := j.gameRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active games: %w", err)
	}

	j.logger.Info("starting refresh_popularity job", "games", len(games))

	today := timeutil.StartOfDay(startedAt, j.config.Timezone)
	yesterdayFrom := timeutil.Yesterday(startedAt, j.config.Timezone)

	var scored, failed, healed int64

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(j.config.Concurrency)

	for _, g := range games {
		g := g
		grp.Go(func() error {
			n, err := j.scoreGame(grpCtx, g, today, yesterdayFrom)
			atomic.AddInt64(&healed, int64(n))
			if err != nil {
				atomic.AddInt64(&failed, 1)
				j.logger.Error("failed to score game",
					"game_id", g.ID.String(),
					"error", err,
				)
				// Swallow the error: one game must not cancel the group.
				return nil
			}
			atomic.AddInt64(&scored, 1)
			return nil
		})
	}

	_ = grp.Wait()

	stats := &RefreshPopularityStats{
		StartedAt:     startedAt,
		CompletedAt:   time.Now(),
		GamesScored:   int(scored),
		GamesFailed:   int(failed),
		FactorsHealed: int(healed),
	}
	stats.Duration = stats.CompletedAt.Sub(stats.StartedAt)
	j.lastRunStats.Store(stats)

	j.logger.Info("refresh_popularity job completed",
		"duration", stats.Duration.String(),
		"scored", stats.GamesScored,
		"failed", stats.GamesFailed,
		"factors_healed", stats.FactorsHealed,
	)

	if failed > 0 {
		return fmt.Errorf("refresh completed with %d failed games", failed)
	}

	return nil
}

// scoreGame computes and persists the score of a single game. Returns the
// number of cache factors repaired along the way.
func (j *RefreshPopularityJob) scoreGame(ctx context.Context, g *game.Game, today, yesterdayFrom time.Time) (int, error) {
	yesterdayTo := today

	var healed int
	readFactor := func(name string) float64 {
		value, ok := j.readFactor(ctx, g.ID, name, yesterdayFrom, yesterdayTo)
		if !ok {
			healed++
		}
		return value
	}

	inputs := popularity.Inputs{
		DailyPlayers:     readFactor(popularity.FactorDailyPlayers),
		MaxSessionLength: readFactor(popularity.FactorMaxSessionLength),
		DailySessions:    readFactor(popularity.FactorDailySessions),
		CurrentPlayers:   j.calculator.CurrentPlayers(ctx, g.ID),
		Upvotes:          float64(g.Upvotes),
	}

	maxima, err := j.readMaxima(ctx)
	if err != nil {
		return healed, fmt.Errorf("read maxima: %w", err)
	}

	score := popularity.Score(inputs, maxima, j.config.Weights)

	rec := &game.PopularityRecord{
		GameID:    g.ID,
		Date:      today,
		Score:     score,
		UpdatedAt: time.Now(),
	}
	if err := j.popularityRepo.Upsert(ctx, rec); err != nil {
		return healed, fmt.Errorf("upsert popularity record: %w", err)
	}

	if err := j.factorCache.StoreScore(ctx, g.ID, score); err != nil {
		// The persisted record is the source of truth; a failed score
		// cache write only delays visibility by one cycle.
		j.logger.Warn("failed to cache score",
			"game_id", g.ID.String(),
			"error", err,
		)
	}

	return healed, nil
}

// readFactor reads one daily factor, recomputing and repopulating it on a
// miss. Returns ok=false when the value had to be recomputed.
func (j *RefreshPopularityJob) readFactor(ctx context.Context, gameID uuid.UUID, name string, from, to time.Time) (float64, bool) {
	value, ok, err := j.factorCache.Factor(ctx, gameID, name)
	if err != nil {
		j.logger.Warn("factor cache read failed",
			"game_id", gameID.String(),
			"factor", name,
			"error", err,
		)
		ok = false
	}
	if ok {
		return value, true
	}

	switch name {
	case popularity.FactorDailyPlayers:
		value = j.calculator.DailyPlayers(ctx, gameID, from, to)
	case popularity.FactorMaxSessionLength:
		value = j.calculator.MaxSessionLength(ctx, gameID, from, to)
	case popularity.FactorDailySessions:
		value = j.calculator.DailySessions(ctx, gameID, from, to)
	}

	if err := j.factorCache.StoreFactor(ctx, gameID, name, value); err != nil {
		j.logger.Warn("factor cache repair failed",
			"game_id", gameID.String(),
			"factor", name,
			"error", err,
		)
	}

	return value, false
}

// readMaxima reads the five board-wide maxima. Each defaults to the
// neutral denominator 1 on a miss.
func (j *RefreshPopularityJob) readMaxima(ctx context.Context) (popularity.Maxima, error) {
	var m popularity.Maxima
	var err error

	if m.DailyPlayers, err = j.factorCache.Maximum(ctx, popularity.MaxDailyPlayers); err != nil {
		return m, err
	}
	if m.CurrentPlayers, err = j.factorCache.Maximum(ctx, popularity.MaxConcurrentPlayers); err != nil {
		return m, err
	}
	if m.Upvotes, err = j.factorCache.Maximum(ctx, popularity.MaxUpvotes); err != nil {
		return m, err
	}
	if m.MaxSessionLength, err = j.factorCache.Maximum(ctx, popularity.MaxSessionLength); err != nil {
		return m, err
	}
	if m.DailySessions, err = j.factorCache.Maximum(ctx, popularity.MaxDailySessions); err != nil {
		return m, err
	}

	return m, nil
}

// LastRunStats returns statistics from the last run.
func (j *RefreshPopularityJob) LastRunStats() *RefreshPopularityStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*RefreshPopularityStats)
}
