package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGame(t *testing.T) {
	g, err := NewGame("Chess")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, g.ID)
	assert.Equal(t, "Chess", g.Name)
	assert.Equal(t, 0, g.Upvotes)
	assert.True(t, g.IsActive)
	assert.False(t, g.CreatedAt.IsZero())
}

func TestNewGame_EmptyName(t *testing.T) {
	_, err := NewGame("")
	assert.ErrorIs(t, err, ErrInvalidGameName)
}

func TestNewContestant(t *testing.T) {
	c, err := NewContestant("alice")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, "alice", c.Name)
	assert.True(t, c.IsActive)

	_, err = NewContestant("")
	assert.ErrorIs(t, err, ErrInvalidContestantName)
}

func TestNewSession(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s, err := NewSession(uuid.New(), uuid.New(), start)
	require.NoError(t, err)

	assert.True(t, s.IsOngoing())
	assert.Nil(t, s.EndTime)
	assert.Equal(t, 0, s.Score)

	_, ok := s.Duration()
	assert.False(t, ok)
}

func TestNewSession_Validation(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := NewSession(uuid.Nil, uuid.New(), start)
	assert.ErrorIs(t, err, ErrInvalidGameID)

	_, err = NewSession(uuid.New(), uuid.Nil, start)
	assert.ErrorIs(t, err, ErrInvalidContestantID)

	_, err = NewSession(uuid.New(), uuid.New(), time.Time{})
	assert.ErrorIs(t, err, ErrInvalidStartTime)
}

func TestSession_End(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s, err := NewSession(uuid.New(), uuid.New(), start)
	require.NoError(t, err)

	end := start.Add(30 * time.Minute)
	require.NoError(t, s.End(end, 150))

	assert.False(t, s.IsOngoing())
	assert.Equal(t, 150, s.Score)

	d, ok := s.Duration()
	assert.True(t, ok)
	assert.Equal(t, 30*time.Minute, d)
}

func TestSession_EndTwice(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s, _ := NewSession(uuid.New(), uuid.New(), start)

	require.NoError(t, s.End(start.Add(time.Hour), 100))
	err := s.End(start.Add(2*time.Hour), 200)
	assert.ErrorIs(t, err, ErrSessionAlreadyEnded)

	// First end wins.
	assert.Equal(t, 100, s.Score)
}

func TestSession_EndBeforeStart(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s, _ := NewSession(uuid.New(), uuid.New(), start)

	err := s.End(start.Add(-time.Minute), 10)
	assert.ErrorIs(t, err, ErrEndBeforeStart)
	assert.True(t, s.IsOngoing())
}

func TestSession_EndZeroLength(t *testing.T) {
	// Ending exactly at the start time is a valid zero-length session.
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s, _ := NewSession(uuid.New(), uuid.New(), start)

	require.NoError(t, s.End(start, 0))
	d, ok := s.Duration()
	assert.True(t, ok)
	assert.Equal(t, time.Duration(0), d)
}

func TestSession_EndNegativeScore(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s, _ := NewSession(uuid.New(), uuid.New(), start)

	err := s.End(start.Add(time.Hour), -1)
	assert.ErrorIs(t, err, ErrNegativeScore)
	assert.True(t, s.IsOngoing())
}
