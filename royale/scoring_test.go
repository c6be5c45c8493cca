/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package royale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	cfg := DefaultGameConfig()
	cfg.TimePerQuestionMs = 10000
	cfg.BaseScore = 100
	cfg.SpeedBonusMax = 50

	tests := []struct {
		name    string
		correct bool
		elapsed int
		want    int
	}{
		{"incorrect", false, 0, 0},
		{"instant", true, 0, 150},
		{"halfway", true, 5000, 125},
		{"floored", true, 3333, 133},
		{"at deadline", true, 10000, 100},
		{"after deadline", true, 12000, 100},
		{"negative elapsed", true, -50, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.correct, tt.elapsed, cfg))
		})
	}
}

func TestScoreIsMonotonic(t *testing.T) {
	cfg := DefaultGameConfig()

	prev := Score(true, 0, cfg)
	for elapsed := 0; elapsed <= cfg.TimePerQuestionMs; elapsed += 250 {
		s := Score(true, elapsed, cfg)
		assert.LessOrEqual(t, s, prev)
		assert.GreaterOrEqual(t, s, cfg.BaseScore)
		prev = s
	}
}

func TestScoreAtLargestBounds(t *testing.T) {
	cfg := DefaultGameConfig()
	cfg.TimePerQuestionMs = MaxTimeLimitMs
	cfg.BaseScore = MaxPoints
	cfg.SpeedBonusMax = MaxPoints

	assert.Equal(t, 2*MaxPoints, Score(true, 0, cfg))
	assert.Equal(t, MaxPoints+MaxPoints/2, Score(true, MaxTimeLimitMs/2, cfg))
	assert.Equal(t, MaxPoints, Score(true, MaxTimeLimitMs, cfg))
}
