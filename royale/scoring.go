/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package royale

// Score returns the points for one team's answer. Correct answers earn
// baseScore plus a speed bonus that falls linearly from speedBonusMax at the
// start of the question to zero at the deadline.
func Score(correct bool, elapsedMs int, cfg GameConfig) int {
	if !correct {
		return 0
	}

	limit := cfg.TimePerQuestionMs
	if limit <= 0 {
		return cfg.BaseScore
	}

	remaining := limit - clamp(elapsedMs, 0, limit)

	return cfg.BaseScore + int(int64(cfg.SpeedBonusMax)*int64(remaining)/int64(limit))
}
