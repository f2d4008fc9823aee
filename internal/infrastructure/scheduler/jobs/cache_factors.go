// Package jobs contains implementations of the gameboard's scheduled jobs:
// the daily factor refresh and the frequent popularity score refresh.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gameboard-hub/gameboard-core/internal/domain/game"
	"github.com/gameboard-hub/gameboard-core/internal/domain/popularity"
	"github.com/gameboard-hub/gameboard-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CACHE FACTORS JOB
// ══════════════════════════════════════════════════════════════════════════════

// CacheFactorsJob recomputes the daily popularity factors of every active
// game for the previous calendar day, derives the board-wide maxima from
// them, and writes the whole batch to the cache in one bulk operation.
// Runs once per day at midnight in the reference timezone.
//
// Maxima are derived after all per-game raws are computed, so every game in
// the same batch normalizes against the same denominators.
type CacheFactorsJob struct {
	// Dependencies
	gameRepo    game.GameRepository
	calculator  *popularity.Calculator
	factorCache popularity.FactorCache
	logger      *slog.Logger

	// Configuration
	config CacheFactorsConfig

	// State
	lastRunStats atomic.Value // *CacheFactorsStats
}

// CacheFactorsConfig contains configuration for the daily factor job.
type CacheFactorsConfig struct {
	// Timezone is the reference timezone for calendar-day boundaries.
	Timezone *time.Location

	// Timeout is the maximum duration for one run.
	Timeout time.Duration
}

// DefaultCacheFactorsConfig returns sensible defaults.
func DefaultCacheFactorsConfig() CacheFactorsConfig {
	return CacheFactorsConfig{
		Timezone: time.UTC,
		Timeout:  5 * time.Minute,
	}
}

// CacheFactorsStats contains statistics from one run.
type CacheFactorsStats struct {
	StartedAt      time.Time
	CompletedAt    time.Time
	Duration       time.Duration
	Day            time.Time
	GamesProcessed int
	Maxima         popularity.Maxima
}

// NewCacheFactorsJob creates a new daily factor job.
func NewCacheFactorsJob(
	gameRepo game.GameRepository,
	calculator *popularity.Calculator,
	factorCache popularity.FactorCache,
	logger *slog.Logger,
	config CacheFactorsConfig,
) *CacheFactorsJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Timezone == nil {
		config.Timezone = time.UTC
	}

	return &CacheFactorsJob{
		gameRepo:    gameRepo,
		calculator:  calculator,
		factorCache: factorCache,
		logger:      logger,
		config:      config,
	}
}

// Name returns the job name.
func (j *CacheFactorsJob) Name() string {
	return "cache_popularity_factors"
}

// Description returns a human-readable description.
func (j *CacheFactorsJob) Description() string {
	return "Caches yesterday's per-game popularity factors and board-wide maxima"
}

// Run executes the daily factor refresh. The run is idempotent: repeating
// it for the same day recomputes the same factors and maxima.
func (j *CacheFactorsJob) Run(ctx context.Context) error {
	startedAt := time.Now()

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	// The day being summarized is the calendar day before the run.
	from := timeutil.Yesterday(startedAt, j.config.Timezone)
	to := timeutil.StartOfDay(startedAt, j.config.Timezone)

	j.logger.Info("starting cache_popularity_factors job",
		"day", timeutil.FormatDate(from, j.config.Timezone),
	)

	games, err := j.gameRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active games: %w", err)
	}

	stats := &CacheFactorsStats{
		StartedAt: startedAt,
		Day:       from,
	}

	if len(games) == 0 {
		j.finish(stats)
		return nil
	}

	// Phase one: per-game raw signals. A broken signal is logged by the
	// calculator and contributes zero for that game only.
	factors := make(map[uuid.UUID]popularity.GameFactors, len(games))
	current := make(map[uuid.UUID]float64, len(games))
	for _, g := range games {
		factors[g.ID] = j.calculator.DailyFactors(ctx, g.ID, from, to)
		current[g.ID] = j.calculator.CurrentPlayers(ctx, g.ID)
	}

	// Phase two: board-wide maxima over the raws just computed.
	var maxima popularity.Maxima
	for _, g := range games {
		f := factors[g.ID]
		maxima.DailyPlayers = maxFloat(maxima.DailyPlayers, f.DailyPlayers)
		maxima.MaxSessionLength = maxFloat(maxima.MaxSessionLength, f.MaxSessionLength)
		maxima.DailySessions = maxFloat(maxima.DailySessions, f.DailySessions)
		maxima.CurrentPlayers = maxFloat(maxima.CurrentPlayers, current[g.ID])
		maxima.Upvotes = maxFloat(maxima.Upvotes, float64(g.Upvotes))
	}

	// Phase three: one bulk cache write.
	if err := j.factorCache.StoreDailyBatch(ctx, factors, maxima); err != nil {
		return fmt.Errorf("failed to store daily factor batch: %w", err)
	}

	stats.GamesProcessed = len(games)
	stats.Maxima = maxima.Clamped()
	j.finish(stats)

	j.logger.Info("cache_popularity_factors job completed",
		"duration", stats.Duration.String(),
		"games", stats.GamesProcessed,
		"day", timeutil.FormatDate(from, j.config.Timezone),
	)

	return nil
}

func (j *CacheFactorsJob) finish(stats *CacheFactorsStats) {
	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(stats.StartedAt)
	j.lastRunStats.Store(stats)
}

// LastRunStats returns statistics from the last run.
func (j *CacheFactorsJob) LastRunStats() *CacheFactorsStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*CacheFactorsStats)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
