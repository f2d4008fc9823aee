package popularity

import (
	"context"

	"github.com/google/uuid"
)

// GameFactors holds the three daily cached factors of one game.
// Session length is in seconds.
type GameFactors struct {
	DailyPlayers     float64
	MaxSessionLength float64
	DailySessions    float64
}

// ByName returns the factor value for a factor name constant.
func (f GameFactors) ByName(name string) (float64, bool) {
	switch name {
	case FactorDailyPlayers:
		return f.DailyPlayers, true
	case FactorMaxSessionLength:
		return f.MaxSessionLength, true
	case FactorDailySessions:
		return f.DailySessions, true
	default:
		return 0, false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTOR CACHE INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// FactorCache is the two-tier popularity cache: per-game daily factors and
// board-wide maxima with a 24h lifetime, plus live scores with a 5m lifetime.
// The cache never computes anything; on a miss the caller recomputes the
// value and writes it back through StoreFactor.
//
// Implemented in infrastructure/persistence/redis.
type FactorCache interface {
	// StoreDailyBatch writes all per-game factors and all maxima in a single
	// bulk operation with the daily lifetime. Maxima are floored at 1 before
	// the write.
	StoreDailyBatch(ctx context.Context, factors map[uuid.UUID]GameFactors, maxima Maxima) error

	// Factor reads one per-game daily factor. ok is false on a miss;
	// a miss is not an error.
	Factor(ctx context.Context, gameID uuid.UUID, name string) (value float64, ok bool, err error)

	// StoreFactor writes one per-game daily factor with the daily lifetime.
	// Used to repair misses.
	StoreFactor(ctx context.Context, gameID uuid.UUID, name string, value float64) error

	// Maximum reads one board-wide maximum. A miss yields the neutral
	// denominator 1; stored values below 1 are clamped up on read.
	Maximum(ctx context.Context, name string) (float64, error)

	// StoreScore writes one live score with the score lifetime.
	StoreScore(ctx context.Context, gameID uuid.UUID, score float64) error

	// Score reads one live score. ok is false on a miss; a miss is not
	// an error.
	Score(ctx context.Context, gameID uuid.UUID) (value float64, ok bool, err error)

	// Scores bulk-reads live scores. Games without a cached score are
	// absent from the result map.
	Scores(ctx context.Context, gameIDs []uuid.UUID) (map[uuid.UUID]float64, error)
}
