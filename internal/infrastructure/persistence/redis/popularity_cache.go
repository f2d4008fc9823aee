package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/gameboard-hub/gameboard-core/internal/domain/popularity"
)

// ══════════════════════════════════════════════════════════════════════════════
// KEY PREFIXES AND TTLs
// ══════════════════════════════════════════════════════════════════════════════

// Key prefixes for the popularity namespace.
const (
	// PrefixFactor is the prefix for per-game daily factor keys.
	PrefixFactor = "popularity:game:"

	// PrefixMaximum is the prefix for board-wide maximum keys.
	PrefixMaximum = "popularity:max:"

	// PrefixScore is the prefix for live score keys.
	PrefixScore = "popularity:score:"
)

// Default TTL values.
const (
	// TTLDailyFactors is the lifetime of per-game factors and maxima.
	// The daily job rewrites them long before they expire; expiry only
	// matters when the job has been down for a full day.
	TTLDailyFactors = 24 * time.Hour

	// TTLScore is the lifetime of a live score. Matches the refresh cadence
	// so readers never see a score more than one cycle stale.
	TTLScore = 5 * time.Minute
)

// FactorKey generates the cache key of one per-game daily factor.
func FactorKey(gameID uuid.UUID, factor string) string {
	return PrefixFactor + gameID.String() + ":" + factor
}

// MaximumKey generates the cache key of one board-wide maximum.
func MaximumKey(name string) string {
	return PrefixMaximum + name
}

// ScoreKey generates the cache key of one live score.
func ScoreKey(gameID uuid.UUID) string {
	return PrefixScore + gameID.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// POPULARITY CACHE
// ══════════════════════════════════════════════════════════════════════════════

// PopularityCache is the Redis implementation of popularity.FactorCache.
// Values are plain numbers; the daily tier and the score tier live under
// separate key prefixes and never overlap.
type PopularityCache struct {
	cache     *Cache
	factorTTL time.Duration
	scoreTTL  time.Duration
}

// NewPopularityCache creates a PopularityCache with the default TTLs.
func NewPopularityCache(cache *Cache) *PopularityCache {
	return &PopularityCache{
		cache:     cache,
		factorTTL: TTLDailyFactors,
		scoreTTL:  TTLScore,
	}
}

// NewPopularityCacheWithTTL creates a PopularityCache with custom TTLs.
// Non-positive values fall back to the defaults.
func NewPopularityCacheWithTTL(cache *Cache, factorTTL, scoreTTL time.Duration) *PopularityCache {
	if factorTTL <= 0 {
		factorTTL = TTLDailyFactors
	}
	if scoreTTL <= 0 {
		scoreTTL = TTLScore
	}
	return &PopularityCache{
		cache:     cache,
		factorTTL: factorTTL,
		scoreTTL:  scoreTTL,
	}
}

// StoreDailyBatch writes all per-game factors and all maxima in one
// pipelined round trip with the daily TTL. Maxima are floored at 1 before
// the write so readers can divide without checking.
func (p *PopularityCache) StoreDailyBatch(ctx context.Context, factors map[uuid.UUID]popularity.GameFactors, maxima popularity.Maxima) error {
	pairs := make(map[string]interface{}, len(factors)*3+5)

	for gameID, f := range factors {
		pairs[FactorKey(gameID, popularity.FactorDailyPlayers)] = f.DailyPlayers
		pairs[FactorKey(gameID, popularity.FactorMaxSessionLength)] = f.MaxSessionLength
		pairs[FactorKey(gameID, popularity.FactorDailySessions)] = f.DailySessions
	}

	maxima = maxima.Clamped()
	pairs[MaximumKey(popularity.MaxDailyPlayers)] = maxima.DailyPlayers
	pairs[MaximumKey(popularity.MaxConcurrentPlayers)] = maxima.CurrentPlayers
	pairs[MaximumKey(popularity.MaxUpvotes)] = maxima.Upvotes
	pairs[MaximumKey(popularity.MaxSessionLength)] = maxima.MaxSessionLength
	pairs[MaximumKey(popularity.MaxDailySessions)] = maxima.DailySessions

	return p.cache.MSet(ctx, pairs, p.factorTTL)
}

// Factor reads one per-game daily factor. A miss is not an error.
func (p *PopularityCache) Factor(ctx context.Context, gameID uuid.UUID, name string) (float64, bool, error) {
	var value float64
	err := p.cache.Get(ctx, FactorKey(gameID, name), &value)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return value, true, nil
}

// StoreFactor writes one per-game daily factor with the daily TTL.
func (p *PopularityCache) StoreFactor(ctx context.Context, gameID uuid.UUID, name string, value float64) error {
	return p.cache.Set(ctx, FactorKey(gameID, name), value, p.factorTTL)
}

// Maximum reads one board-wide maximum. A miss yields the neutral
// denominator 1, and stored values below 1 are clamped up on read.
func (p *PopularityCache) Maximum(ctx context.Context, name string) (float64, error) {
	var value float64
	err := p.cache.Get(ctx, MaximumKey(name), &value)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return 1, nil
		}
		return 1, err
	}
	if value < 1 {
		return 1, nil
	}
	return value, nil
}

// StoreScore writes one live score with the score TTL.
func (p *PopularityCache) StoreScore(ctx context.Context, gameID uuid.UUID, score float64) error {
	return p.cache.Set(ctx, ScoreKey(gameID), score, p.scoreTTL)
}

// Score reads one live score. A miss is not an error.
func (p *PopularityCache) Score(ctx context.Context, gameID uuid.UUID) (float64, bool, error) {
	var value float64
	err := p.cache.Get(ctx, ScoreKey(gameID), &value)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return value, true, nil
}

// Scores bulk-reads live scores in one MGET. Games without a cached score
// are absent from the result.
func (p *PopularityCache) Scores(ctx context.Context, gameIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	if len(gameIDs) == 0 {
		return make(map[uuid.UUID]float64), nil
	}

	keys := make([]string, len(gameIDs))
	for i, id := range gameIDs {
		keys[i] = ScoreKey(id)
	}

	raw, err := p.cache.MGet(ctx, keys...)
	if err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID]float64, len(raw))
	for i, id := range gameIDs {
		val, ok := raw[keys[i]]
		if !ok {
			continue
		}
		score, err := strconv.ParseFloat(val, 64)
		if err != nil {
			// A corrupt entry behaves like a miss.
			continue
		}
		result[id] = score
	}

	return result, nil
}
