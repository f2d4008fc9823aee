package popularity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gameboard-hub/gameboard-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// METRICS STORE INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// MetricsStore provides the raw session aggregates the signals are built
// from. Implemented by the postgres session repository. Day windows are
// half-open intervals [from, to) in the reference timezone.
type MetricsStore interface {
	// DailyPlayers returns the number of distinct contestants who started a
	// session of the game within the window.
	DailyPlayers(ctx context.Context, gameID uuid.UUID, from, to time.Time) (int, error)

	// CurrentPlayers returns the number of ongoing sessions of the game.
	CurrentPlayers(ctx context.Context, gameID uuid.UUID) (int, error)

	// MaxSessionLength returns the longest single completed session of the
	// game started within the window. Ongoing sessions are excluded.
	MaxSessionLength(ctx context.Context, gameID uuid.UUID, from, to time.Time) (time.Duration, error)

	// DailySessions returns the number of sessions of the game started
	// within the window, ongoing or not.
	DailySessions(ctx context.Context, gameID uuid.UUID, from, to time.Time) (int, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// SIGNAL CALCULATOR
// ══════════════════════════════════════════════════════════════════════════════

// Calculator computes individual popularity signals for one game.
// A failed read is logged and reported as zero so that one broken signal
// degrades a single game's score instead of failing the whole batch.
type Calculator struct {
	metrics MetricsStore
	log     *logger.Logger
}

// NewCalculator creates a Calculator over the given metrics store.
func NewCalculator(metrics MetricsStore, log *logger.Logger) *Calculator {
	if log == nil {
		log = logger.Default()
	}
	return &Calculator{
		metrics: metrics,
		log:     log.With(logger.Component("popularity.calculator")),
	}
}

// DailyPlayers returns the distinct-player count for the window.
func (c *Calculator) DailyPlayers(ctx context.Context, gameID uuid.UUID, from, to time.Time) float64 {
	n, err := c.metrics.DailyPlayers(ctx, gameID, from, to)
	if err != nil {
		c.warn("daily players query failed", gameID, FactorDailyPlayers, from, err)
		return 0
	}
	return float64(n)
}

// CurrentPlayers returns the live ongoing-session count.
func (c *Calculator) CurrentPlayers(ctx context.Context, gameID uuid.UUID) float64 {
	n, err := c.metrics.CurrentPlayers(ctx, gameID)
	if err != nil {
		c.warn("current players query failed", gameID, MaxConcurrentPlayers, time.Time{}, err)
		return 0
	}
	return float64(n)
}

// MaxSessionLength returns the longest completed session in seconds.
func (c *Calculator) MaxSessionLength(ctx context.Context, gameID uuid.UUID, from, to time.Time) float64 {
	d, err := c.metrics.MaxSessionLength(ctx, gameID, from, to)
	if err != nil {
		c.warn("max session length query failed", gameID, FactorMaxSessionLength, from, err)
		return 0
	}
	return d.Seconds()
}

// DailySessions returns the session count for the window.
func (c *Calculator) DailySessions(ctx context.Context, gameID uuid.UUID, from, to time.Time) float64 {
	n, err := c.metrics.DailySessions(ctx, gameID, from, to)
	if err != nil {
		c.warn("daily sessions query failed", gameID, FactorDailySessions, from, err)
		return 0
	}
	return float64(n)
}

// DailyFactors computes the three cacheable daily factors of one game.
func (c *Calculator) DailyFactors(ctx context.Context, gameID uuid.UUID, from, to time.Time) GameFactors {
	return GameFactors{
		DailyPlayers:     c.DailyPlayers(ctx, gameID, from, to),
		MaxSessionLength: c.MaxSessionLength(ctx, gameID, from, to),
		DailySessions:    c.DailySessions(ctx, gameID, from, to),
	}
}

func (c *Calculator) warn(msg string, gameID uuid.UUID, factor string, day time.Time, err error) {
	fields := []logger.Field{
		logger.GameID(gameID.String()),
		logger.Factor(factor),
		logger.Err(err),
	}
	if !day.IsZero() {
		fields = append(fields, logger.Date(day))
	}
	c.log.Warn(msg, fields...)
}
