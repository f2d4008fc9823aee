package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gameboard-hub/gameboard-core/internal/domain/game"
	"github.com/gameboard-hub/gameboard-core/internal/domain/popularity"
)

// fakeGameRepo serves a fixed set of games.
type fakeGameRepo struct {
	games   []*game.Game
	listErr error
}

func (r *fakeGameRepo) GetByID(ctx context.Context, id uuid.UUID) (*game.Game, error) {
	for _, g := range r.games {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, game.ErrGameNotFound
}

func (r *fakeGameRepo) ListActive(ctx context.Context) ([]*game.Game, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.games, nil
}

func (r *fakeGameRepo) Create(ctx context.Context, g *game.Game) error {
	r.games = append(r.games, g)
	return nil
}

func (r *fakeGameRepo) IncrementUpvotes(ctx context.Context, id uuid.UUID) (int, error) {
	g, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	g.Upvotes++
	return g.Upvotes, nil
}

// fakeMetrics serves per-game session aggregates.
type fakeMetrics struct {
	dailyPlayers  map[uuid.UUID]int
	current       map[uuid.UUID]int
	maxSession    map[uuid.UUID]time.Duration
	dailySessions map[uuid.UUID]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		dailyPlayers:  make(map[uuid.UUID]int),
		current:       make(map[uuid.UUID]int),
		maxSession:    make(map[uuid.UUID]time.Duration),
		dailySessions: make(map[uuid.UUID]int),
	}
}

func (m *fakeMetrics) DailyPlayers(ctx context.Context, gameID uuid.UUID, from, to time.Time) (int, error) {
	return m.dailyPlayers[gameID], nil
}

func (m *fakeMetrics) CurrentPlayers(ctx context.Context, gameID uuid.UUID) (int, error) {
	return m.current[gameID], nil
}

func (m *fakeMetrics) MaxSessionLength(ctx context.Context, gameID uuid.UUID, from, to time.Time) (time.Duration, error) {
	return m.maxSession[gameID], nil
}

func (m *fakeMetrics) DailySessions(ctx context.Context, gameID uuid.UUID, from, to time.Time) (int, error) {
	return m.dailySessions[gameID], nil
}

// memFactorCache is an in-memory popularity.FactorCache.
type memFactorCache struct {
	mu      sync.Mutex
	factors map[string]float64
	maxima  map[string]float64
	scores  map[uuid.UUID]float64

	storeFactorCalls int
}

func newMemFactorCache() *memFactorCache {
	return &memFactorCache{
		factors: make(map[string]float64),
		maxima:  make(map[string]float64),
		scores:  make(map[uuid.UUID]float64),
	}
}

func factorKey(gameID uuid.UUID, name string) string {
	return gameID.String() + ":" + name
}

func (c *memFactorCache) StoreDailyBatch(ctx context.Context, factors map[uuid.UUID]popularity.GameFactors, maxima popularity.Maxima) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, f := range factors {
		c.factors[factorKey(id, popularity.FactorDailyPlayers)] = f.DailyPlayers
		c.factors[factorKey(id, popularity.FactorMaxSessionLength)] = f.MaxSessionLength
		c.factors[factorKey(id, popularity.FactorDailySessions)] = f.DailySessions
	}

	clamped := maxima.Clamped()
	c.maxima[popularity.MaxDailyPlayers] = clamped.DailyPlayers
	c.maxima[popularity.MaxConcurrentPlayers] = clamped.CurrentPlayers
	c.maxima[popularity.MaxUpvotes] = clamped.Upvotes
	c.maxima[popularity.MaxSessionLength] = clamped.MaxSessionLength
	c.maxima[popularity.MaxDailySessions] = clamped.DailySessions
	return nil
}

func (c *memFactorCache) Factor(ctx context.Context, gameID uuid.UUID, name string) (float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.factors[factorKey(gameID, name)]
	return v, ok, nil
}

func (c *memFactorCache) StoreFactor(ctx context.Context, gameID uuid.UUID, name string, value float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.factors[factorKey(gameID, name)] = value
	c.storeFactorCalls++
	return nil
}

func (c *memFactorCache) Maximum(ctx context.Context, name string) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.maxima[name]
	if !ok || v < 1 {
		return 1, nil
	}
	return v, nil
}

func (c *memFactorCache) StoreScore(ctx context.Context, gameID uuid.UUID, score float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.scores[gameID] = score
	return nil
}

func (c *memFactorCache) Score(ctx context.Context, gameID uuid.UUID) (float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.scores[gameID]
	return v, ok, nil
}

func (c *memFactorCache) Scores(ctx context.Context, gameIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[uuid.UUID]float64)
	for _, id := range gameIDs {
		if v, ok := c.scores[id]; ok {
			result[id] = v
		}
	}
	return result, nil
}

// fakePopularityRepo keeps upserted records in memory, optionally failing
// writes for selected games.
type fakePopularityRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*game.PopularityRecord
	failFor map[uuid.UUID]bool
}

func newFakePopularityRepo() *fakePopularityRepo {
	return &fakePopularityRepo{
		records: make(map[uuid.UUID]*game.PopularityRecord),
		failFor: make(map[uuid.UUID]bool),
	}
}

func (r *fakePopularityRepo) Upsert(ctx context.Context, rec *game.PopularityRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failFor[rec.GameID] {
		return errors.New("upsert failed")
	}
	r.records[rec.GameID] = rec
	return nil
}

func (r *fakePopularityRepo) GetByGameAndDate(ctx context.Context, gameID uuid.UUID, date time.Time) (*game.PopularityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[gameID]
	if !ok || !rec.Date.Equal(date) {
		return nil, game.ErrPopularityNotFound
	}
	return rec, nil
}

func (r *fakePopularityRepo) ListByDate(ctx context.Context, date time.Time, limit, offset int) ([]*game.PopularityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*game.PopularityRecord
	for _, rec := range r.records {
		if rec.Date.Equal(date) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakePopularityRepo) CountByDate(ctx context.Context, date time.Time) (int, error) {
	recs, _ := r.ListByDate(ctx, date, 0, 0)
	return len(recs), nil
}

func (r *fakePopularityRepo) score(gameID uuid.UUID) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[gameID]
	if !ok {
		return 0, fmt.Errorf("no record for game %s", gameID)
	}
	return rec.Score, nil
}
