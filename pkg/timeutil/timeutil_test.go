package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2026, 3, 1, 15, 42, 7, 123, time.UTC)
	got := StartOfDay(ts, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestStartOfDay_CrossesTimezoneBoundary(t *testing.T) {
	almaty, err := time.LoadLocation("Asia/Almaty")
	require.NoError(t, err)

	// 22:00 UTC on Feb 28 is already March 1 in Almaty (UTC+5).
	ts := time.Date(2026, 2, 28, 22, 0, 0, 0, time.UTC)
	got := StartOfDay(ts, almaty)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, almaty), got)
}

func TestEndOfDay_IsExclusiveBoundary(t *testing.T) {
	ts := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	end := EndOfDay(ts, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, end, StartOfDay(end, time.UTC))
}

func TestYesterday(t *testing.T) {
	ts := time.Date(2026, 3, 1, 0, 0, 1, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), Yesterday(ts, time.UTC))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(a, b, time.UTC))
	assert.False(t, SameDay(b, c, time.UTC))
}

func TestFormatAndParseDate(t *testing.T) {
	ts := time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-01", FormatDate(ts, time.UTC))

	parsed, err := ParseDate("2026-03-01", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), parsed)

	_, err = ParseDate("01.03.2026", time.UTC)
	assert.Error(t, err)
}

func TestNextTimeOfDay(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Later today.
	next := NextTimeOfDay(ts, 23, 30, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC), next)

	// Already passed today: tomorrow.
	next = NextTimeOfDay(ts, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), next)

	// Exactly now: strictly after, so tomorrow.
	next = NextTimeOfDay(ts, 10, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), next)
}
