package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameboard-hub/gameboard-core/internal/domain/game"
	"github.com/gameboard-hub/gameboard-core/internal/domain/popularity"
)

// seedMaxima writes the board-wide maxima used by the worked example.
func seedMaxima(t *testing.T, cache *memFactorCache) {
	t.Helper()
	err := cache.StoreDailyBatch(context.Background(), nil, popularity.Maxima{
		DailyPlayers:     20,
		CurrentPlayers:   10,
		Upvotes:          100,
		MaxSessionLength: 3600,
		DailySessions:    40,
	})
	require.NoError(t, err)
}

func seedFactors(t *testing.T, cache *memFactorCache, gameID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, cache.StoreFactor(ctx, gameID, popularity.FactorDailyPlayers, 5))
	require.NoError(t, cache.StoreFactor(ctx, gameID, popularity.FactorMaxSessionLength, 1800))
	require.NoError(t, cache.StoreFactor(ctx, gameID, popularity.FactorDailySessions, 8))
	cache.storeFactorCalls = 0
}

func TestRefreshPopularityJob_Run(t *testing.T) {
	g := newGame(t, "Chess", 40)
	repo := &fakeGameRepo{games: []*game.Game{g}}

	metrics := newFakeMetrics()
	metrics.current[g.ID] = 2

	cache := newMemFactorCache()
	seedMaxima(t, cache)
	seedFactors(t, cache, g.ID)

	popRepo := newFakePopularityRepo()
	calc := popularity.NewCalculator(metrics, nil)
	job := NewRefreshPopularityJob(repo, popRepo, calc, cache, nil, DefaultRefreshPopularityConfig())

	require.NoError(t, job.Run(context.Background()))

	// 0.30*(5/20) + 0.20*(2/10) + 0.25*(40/100) + 0.15*(1800/3600) + 0.10*(8/40)
	score, err := popRepo.score(g.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.31, score)

	// Live score cached alongside the persisted record.
	cached, err := cache.Scores(context.Background(), []uuid.UUID{g.ID})
	require.NoError(t, err)
	assert.Equal(t, 0.31, cached[g.ID])

	// Warm cache: nothing recomputed.
	assert.Equal(t, 0, cache.storeFactorCalls)

	stats := job.LastRunStats()
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.GamesScored)
	assert.Equal(t, 0, stats.GamesFailed)
	assert.Equal(t, 0, stats.FactorsHealed)
}

func TestRefreshPopularityJob_RecomputesOnMiss(t *testing.T) {
	g := newGame(t, "Chess", 40)
	repo := &fakeGameRepo{games: []*game.Game{g}}

	// The raw aggregates reproduce the cached factors of the warm-cache run.
	metrics := newFakeMetrics()
	metrics.dailyPlayers[g.ID] = 5
	metrics.maxSession[g.ID] = 30 * time.Minute
	metrics.dailySessions[g.ID] = 8
	metrics.current[g.ID] = 2

	cache := newMemFactorCache()
	seedMaxima(t, cache)

	popRepo := newFakePopularityRepo()
	calc := popularity.NewCalculator(metrics, nil)
	job := NewRefreshPopularityJob(repo, popRepo, calc, cache, nil, DefaultRefreshPopularityConfig())

	require.NoError(t, job.Run(context.Background()))

	// Same score as with a warm cache.
	score, err := popRepo.score(g.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.31, score)

	// All three daily factors were repaired into the cache.
	assert.Equal(t, 3, cache.storeFactorCalls)
	v, ok, _ := cache.Factor(context.Background(), g.ID, popularity.FactorMaxSessionLength)
	assert.True(t, ok)
	assert.Equal(t, 1800.0, v)

	assert.Equal(t, 3, job.LastRunStats().FactorsHealed)
}

func TestRefreshPopularityJob_GameFailureIsIsolated(t *testing.T) {
	g1 := newGame(t, "Chess", 40)
	g2 := newGame(t, "Go", 10)
	repo := &fakeGameRepo{games: []*game.Game{g1, g2}}

	metrics := newFakeMetrics()
	metrics.current[g1.ID] = 2

	cache := newMemFactorCache()
	seedMaxima(t, cache)
	seedFactors(t, cache, g1.ID)
	seedFactors(t, cache, g2.ID)

	popRepo := newFakePopularityRepo()
	popRepo.failFor[g2.ID] = true

	calc := popularity.NewCalculator(metrics, nil)
	job := NewRefreshPopularityJob(repo, popRepo, calc, cache, nil, DefaultRefreshPopularityConfig())

	err := job.Run(context.Background())
	assert.Error(t, err)

	// The healthy game was still scored.
	score, scoreErr := popRepo.score(g1.ID)
	require.NoError(t, scoreErr)
	assert.Equal(t, 0.31, score)

	stats := job.LastRunStats()
	assert.Equal(t, 1, stats.GamesScored)
	assert.Equal(t, 1, stats.GamesFailed)
}

func TestRefreshPopularityJob_IdleBoardScoresZero(t *testing.T) {
	g := newGame(t, "Chess", 0)
	repo := &fakeGameRepo{games: []*game.Game{g}}

	cache := newMemFactorCache()
	popRepo := newFakePopularityRepo()
	calc := popularity.NewCalculator(newFakeMetrics(), nil)
	job := NewRefreshPopularityJob(repo, popRepo, calc, cache, nil, DefaultRefreshPopularityConfig())

	require.NoError(t, job.Run(context.Background()))

	score, err := popRepo.score(g.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}
