// Package popularity computes the per-game popularity index: five usage
// signals, each normalized against the board-wide maximum of that signal,
// blended with fixed weights into a single score.
package popularity

import (
	"math"
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTOR AND MAXIMUM NAMES
// ══════════════════════════════════════════════════════════════════════════════

// Per-game factor names. These are the signals cached daily per game;
// current players and upvotes are read live and never cached per game.
const (
	FactorDailyPlayers     = "daily_players"
	FactorMaxSessionLength = "max_session_length"
	FactorDailySessions    = "daily_sessions"
)

// Board-wide maximum names, one per signal.
const (
	MaxDailyPlayers      = "daily_players"
	MaxConcurrentPlayers = "concurrent_players"
	MaxUpvotes           = "upvotes"
	MaxSessionLength     = "session_length"
	MaxDailySessions     = "daily_sessions"
)

// ══════════════════════════════════════════════════════════════════════════════
// WEIGHTS
// ══════════════════════════════════════════════════════════════════════════════

// Weights holds the blend weights of the five normalized signals.
// They sum to 1.0, so a game leading every signal scores exactly 1.00.
type Weights struct {
	DailyPlayers     float64
	CurrentPlayers   float64
	Upvotes          float64
	MaxSessionLength float64
	DailySessions    float64
}

// DefaultWeights returns the production blend.
func DefaultWeights() Weights {
	return Weights{
		DailyPlayers:     0.30,
		CurrentPlayers:   0.20,
		Upvotes:          0.25,
		MaxSessionLength: 0.15,
		DailySessions:    0.10,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// INPUTS AND MAXIMA
// ══════════════════════════════════════════════════════════════════════════════

// Inputs holds the raw signal values of one game for one scoring cycle.
// Session lengths are in seconds.
type Inputs struct {
	DailyPlayers     float64
	CurrentPlayers   float64
	Upvotes          float64
	MaxSessionLength float64
	DailySessions    float64
}

// Maxima holds the board-wide maximum of each signal, used as the
// normalization denominators.
type Maxima struct {
	DailyPlayers     float64
	CurrentPlayers   float64
	Upvotes          float64
	MaxSessionLength float64
	DailySessions    float64
}

// Clamped returns a copy with every maximum raised to at least 1.
// Denominators below 1 would divide by zero or inflate scores past the
// weight ceiling on an idle board.
func (m Maxima) Clamped() Maxima {
	return Maxima{
		DailyPlayers:     clampMin1(m.DailyPlayers),
		CurrentPlayers:   clampMin1(m.CurrentPlayers),
		Upvotes:          clampMin1(m.Upvotes),
		MaxSessionLength: clampMin1(m.MaxSessionLength),
		DailySessions:    clampMin1(m.DailySessions),
	}
}

func clampMin1(v float64) float64 {
	if v < 1 {
		return 1
	}
	return v
}

// ══════════════════════════════════════════════════════════════════════════════
// SCORE
// ══════════════════════════════════════════════════════════════════════════════

// Score blends the normalized signals into the popularity index,
// rounded to two decimals. Maxima are clamped before use, so the
// computation never divides by zero.
func Score(in Inputs, max Maxima, w Weights) float64 {
	max = max.Clamped()

	raw := w.DailyPlayers*(in.DailyPlayers/max.DailyPlayers) +
		w.CurrentPlayers*(in.CurrentPlayers/max.CurrentPlayers) +
		w.Upvotes*(in.Upvotes/max.Upvotes) +
		w.MaxSessionLength*(in.MaxSessionLength/max.MaxSessionLength) +
		w.DailySessions*(in.DailySessions/max.DailySessions)

	return Round2(raw)
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
