// Package eval scores board states for the search tree.
package eval

import (
	"fmt"

	"stackbot/game"
)

// InfoPair is one line of a bot's self-report. A pair may be label-only or
// value-only; order is significant.
type InfoPair struct {
	Label string
	Value string
}

// Evaluator scores the board reached after locking a piece. Score is called
// from a single goroutine; implementations do not need to be thread safe.
type Evaluator interface {
	Score(b *game.Board, lock game.LockResult) float64
	// Info reports evaluator identification and tuning for diagnostics only.
	Info() []InfoPair
}

// Standard is a weighted-feature evaluator: it penalizes stack height, covered
// holes, and surface bumpiness, and rewards line clears, back-to-back bonuses,
// and combo continuation.
type Standard struct {
	heightWeight float64
	holeWeight   float64
	bumpWeight   float64
	clearReward  [5]float64
	b2bReward    float64
	comboReward  float64
}

type Option func(*Standard)

func WithHeightWeight(w float64) Option {
	return func(s *Standard) { s.heightWeight = w }
}

func WithHoleWeight(w float64) Option {
	return func(s *Standard) { s.holeWeight = w }
}

func WithBumpWeight(w float64) Option {
	return func(s *Standard) { s.bumpWeight = w }
}

func NewStandard(options ...Option) *Standard {
	s := &Standard{ // Default weights
		heightWeight: -1.0,
		holeWeight:   -25.0,
		bumpWeight:   -2.0,
		clearReward:  [5]float64{0, -40, -30, -20, 150},
		b2bReward:    50,
		comboReward:  15,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Standard) Score(b *game.Board, lock game.LockResult) float64 {
	score := 0.0

	heights := make([]int, game.FieldWidth)
	for x := 0; x < game.FieldWidth; x++ {
		heights[x] = b.ColumnHeight(x)
		score += s.heightWeight * float64(heights[x])
	}

	for x := 0; x < game.FieldWidth; x++ {
		for y := 0; y < heights[x]-1; y++ {
			if !b.Field[y][x] {
				score += s.holeWeight
			}
		}
	}

	for x := 1; x < game.FieldWidth; x++ {
		diff := heights[x] - heights[x-1]
		if diff < 0 {
			diff = -diff
		}
		score += s.bumpWeight * float64(diff)
	}

	score += s.clearReward[lock.LinesCleared]
	if lock.B2B {
		score += s.b2bReward
	}
	if lock.Combo > 1 {
		score += s.comboReward * float64(lock.Combo-1)
	}
	return score
}

func (s *Standard) Info() []InfoPair {
	return []InfoPair{
		{Label: "Standard"},
		{Label: "Holes", Value: fmt.Sprintf("%.0f", s.holeWeight)},
		{Label: "Bump", Value: fmt.Sprintf("%.0f", s.bumpWeight)},
	}
}
