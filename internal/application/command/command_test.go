package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameboard-hub/gameboard-core/internal/domain/game"
	"github.com/gameboard-hub/gameboard-core/internal/domain/shared"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeGameRepo struct {
	games map[uuid.UUID]*game.Game
	err   error
}

func newFakeGameRepo(games ...*game.Game) *fakeGameRepo {
	r := &fakeGameRepo{games: make(map[uuid.UUID]*game.Game)}
	for _, g := range games {
		r.games[g.ID] = g
	}
	return r
}

func (r *fakeGameRepo) GetByID(ctx context.Context, id uuid.UUID) (*game.Game, error) {
	if r.err != nil {
		return nil, r.err
	}
	g, ok := r.games[id]
	if !ok {
		return nil, game.ErrGameNotFound
	}
	return g, nil
}

func (r *fakeGameRepo) ListActive(ctx context.Context) ([]*game.Game, error) {
	var out []*game.Game
	for _, g := range r.games {
		if g.IsActive {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *fakeGameRepo) Create(ctx context.Context, g *game.Game) error {
	r.games[g.ID] = g
	return nil
}

func (r *fakeGameRepo) IncrementUpvotes(ctx context.Context, id uuid.UUID) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	g, ok := r.games[id]
	if !ok || !g.IsActive {
		return 0, game.ErrGameNotFound
	}
	g.Upvotes++
	return g.Upvotes, nil
}

type fakeContestantRepo struct {
	contestants map[uuid.UUID]*game.Contestant
}

func newFakeContestantRepo(contestants ...*game.Contestant) *fakeContestantRepo {
	r := &fakeContestantRepo{contestants: make(map[uuid.UUID]*game.Contestant)}
	for _, c := range contestants {
		r.contestants[c.ID] = c
	}
	return r
}

func (r *fakeContestantRepo) GetByID(ctx context.Context, id uuid.UUID) (*game.Contestant, error) {
	c, ok := r.contestants[id]
	if !ok {
		return nil, game.ErrContestantNotFound
	}
	return c, nil
}

func (r *fakeContestantRepo) Create(ctx context.Context, c *game.Contestant) error {
	r.contestants[c.ID] = c
	return nil
}

type fakeSessionRepo struct {
	sessions  map[uuid.UUID]*game.Session
	createErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*game.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, s *game.Session) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.sessions {
		if existing.GameID == s.GameID && existing.ContestantID == s.ContestantID && existing.IsOngoing() {
			return game.ErrSessionAlreadyOngoing
		}
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*game.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, game.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSessionRepo) End(ctx context.Context, id uuid.UUID, end time.Time, score int) error {
	s, ok := r.sessions[id]
	if !ok {
		return game.ErrSessionNotFound
	}
	return s.End(end, score)
}

// ──────────────────────────────────────────────────────────────────────────────
// Upvote
// ──────────────────────────────────────────────────────────────────────────────

func TestUpvoteGame(t *testing.T) {
	g, err := game.NewGame("Chess")
	require.NoError(t, err)
	g.Upvotes = 40

	handler := NewUpvoteGameHandler(newFakeGameRepo(g), nil)

	result, err := handler.Handle(context.Background(), UpvoteGameCommand{GameID: g.ID})
	require.NoError(t, err)
	assert.Equal(t, 41, result.Upvotes)
	assert.Equal(t, 41, g.Upvotes)
}

func TestUpvoteGame_UnknownGame(t *testing.T) {
	handler := NewUpvoteGameHandler(newFakeGameRepo(), nil)

	_, err := handler.Handle(context.Background(), UpvoteGameCommand{GameID: uuid.New()})
	assert.ErrorIs(t, err, game.ErrGameNotFound)
}

func TestUpvoteGame_Validation(t *testing.T) {
	handler := NewUpvoteGameHandler(newFakeGameRepo(), nil)

	_, err := handler.Handle(context.Background(), UpvoteGameCommand{})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpvoteGame_StoreFailure(t *testing.T) {
	repo := newFakeGameRepo()
	repo.err = errors.New("db down")
	handler := NewUpvoteGameHandler(repo, nil)

	_, err := handler.Handle(context.Background(), UpvoteGameCommand{GameID: uuid.New()})
	assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
}

// ──────────────────────────────────────────────────────────────────────────────
// Start session
// ──────────────────────────────────────────────────────────────────────────────

func startDeps(t *testing.T) (*game.Game, *game.Contestant, *StartSessionHandler, *fakeSessionRepo) {
	t.Helper()
	g, err := game.NewGame("Chess")
	require.NoError(t, err)
	c, err := game.NewContestant("alice")
	require.NoError(t, err)

	sessions := newFakeSessionRepo()
	handler := NewStartSessionHandler(newFakeGameRepo(g), newFakeContestantRepo(c), sessions, nil)
	return g, c, handler, sessions
}

func TestStartSession(t *testing.T) {
	g, c, handler, sessions := startDeps(t)

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	result, err := handler.Handle(context.Background(), StartSessionCommand{
		GameID:       g.ID,
		ContestantID: c.ID,
		StartTime:    start,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, result.SessionID)
	assert.Equal(t, start, result.StartTime)

	stored, err := sessions.GetByID(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.True(t, stored.IsOngoing())
}

func TestStartSession_DefaultsStartTimeToNow(t *testing.T) {
	g, c, handler, _ := startDeps(t)

	before := time.Now().UTC()
	result, err := handler.Handle(context.Background(), StartSessionCommand{
		GameID:       g.ID,
		ContestantID: c.ID,
	})
	require.NoError(t, err)
	assert.False(t, result.StartTime.Before(before))
}

func TestStartSession_SecondOngoingRejected(t *testing.T) {
	g, c, handler, _ := startDeps(t)

	cmd := StartSessionCommand{GameID: g.ID, ContestantID: c.ID}
	_, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, game.ErrSessionAlreadyOngoing)
}

func TestStartSession_InactiveGame(t *testing.T) {
	g, c, handler, _ := startDeps(t)
	g.IsActive = false

	_, err := handler.Handle(context.Background(), StartSessionCommand{
		GameID:       g.ID,
		ContestantID: c.ID,
	})
	assert.ErrorIs(t, err, game.ErrGameNotFound)
}

func TestStartSession_UnknownContestant(t *testing.T) {
	g, _, handler, _ := startDeps(t)

	_, err := handler.Handle(context.Background(), StartSessionCommand{
		GameID:       g.ID,
		ContestantID: uuid.New(),
	})
	assert.ErrorIs(t, err, game.ErrContestantNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// End session
// ──────────────────────────────────────────────────────────────────────────────

func endDeps(t *testing.T) (*game.Session, *EndSessionHandler, *fakeSessionRepo) {
	t.Helper()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s, err := game.NewSession(uuid.New(), uuid.New(), start)
	require.NoError(t, err)

	sessions := newFakeSessionRepo()
	sessions.sessions[s.ID] = s
	return s, NewEndSessionHandler(sessions, nil), sessions
}

func TestEndSession(t *testing.T) {
	s, handler, sessions := endDeps(t)

	end := s.StartTime.Add(30 * time.Minute)
	result, err := handler.Handle(context.Background(), EndSessionCommand{
		SessionID: s.ID,
		EndTime:   end,
		Score:     150,
	})
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, result.Duration)
	assert.Equal(t, 150, result.Score)

	stored, err := sessions.GetByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsOngoing())
	assert.Equal(t, 150, stored.Score)
}

func TestEndSession_Twice(t *testing.T) {
	s, handler, _ := endDeps(t)

	end := s.StartTime.Add(time.Hour)
	_, err := handler.Handle(context.Background(), EndSessionCommand{SessionID: s.ID, EndTime: end, Score: 10})
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), EndSessionCommand{SessionID: s.ID, EndTime: end, Score: 20})
	assert.ErrorIs(t, err, game.ErrSessionAlreadyEnded)
}

func TestEndSession_EndBeforeStart(t *testing.T) {
	s, handler, _ := endDeps(t)

	_, err := handler.Handle(context.Background(), EndSessionCommand{
		SessionID: s.ID,
		EndTime:   s.StartTime.Add(-time.Minute),
		Score:     10,
	})
	assert.ErrorIs(t, err, game.ErrEndBeforeStart)
}

func TestEndSession_UnknownSession(t *testing.T) {
	_, handler, _ := endDeps(t)

	_, err := handler.Handle(context.Background(), EndSessionCommand{
		SessionID: uuid.New(),
		Score:     10,
	})
	assert.ErrorIs(t, err, game.ErrSessionNotFound)
}

func TestEndSession_NegativeScore(t *testing.T) {
	s, handler, _ := endDeps(t)

	_, err := handler.Handle(context.Background(), EndSessionCommand{
		SessionID: s.ID,
		Score:     -5,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
