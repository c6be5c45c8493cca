/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package royale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg, err := DefaultGameConfig().Normalize()
	require.NoError(t, err)

	assert.Equal(t, DamageFull, cfg.DamageMode)
	assert.Equal(t, BuffFastest, cfg.BuffPolicy)
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := DefaultGameConfig()
	cfg.DamageMode = ""
	cfg.BuffPolicy = BuffEveryNth

	cfg, err := cfg.Normalize()
	require.NoError(t, err)

	assert.Equal(t, DamageFull, cfg.DamageMode)
	assert.Equal(t, 3, cfg.BuffEveryN)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GameConfig)
		field  string
	}{
		{"one team", func(c *GameConfig) { c.NumTeams = 1 }, "numTeams"},
		{"too many teams", func(c *GameConfig) { c.NumTeams = 9 }, "numTeams"},
		{"zero hp", func(c *GameConfig) { c.MaxHPPerTeam = 0 }, "maxHpPerTeam"},
		{"negative hp", func(c *GameConfig) { c.MaxHPPerTeam = -5 }, "maxHpPerTeam"},
		{"zero time", func(c *GameConfig) { c.TimePerQuestionMs = 0 }, "timePerQuestionMs"},
		{"empty roster cap", func(c *GameConfig) { c.PlayersPerTeamMax = 0 }, "playersPerTeamMax"},
		{"negative score", func(c *GameConfig) { c.BaseScore = -1 }, "baseScore"},
		{"attack over 100", func(c *GameConfig) { c.AttackDamagePercent = 101 }, "attackDamagePercent"},
		{"negative heal", func(c *GameConfig) { c.BuffHealPercent = -1 }, "buffHealPercent"},
		{"cap over 100", func(c *GameConfig) { c.MaxDamagePerTurnPercent = 150 }, "maxDamagePerTurnPercent"},
		{"bad damage mode", func(c *GameConfig) { c.DamageMode = "double" }, "damageMode"},
		{"bad buff policy", func(c *GameConfig) { c.BuffPolicy = "random" }, "buffPolicy"},
		{"too many names", func(c *GameConfig) { c.NumTeams = 2; c.TeamNames = []string{"a", "b", "c"} }, "teamNames"},
		{"hp too high", func(c *GameConfig) { c.MaxHPPerTeam = MaxHP + 1 }, "maxHpPerTeam"},
		{"huge hp", func(c *GameConfig) { c.MaxHPPerTeam = 5_000_000_000 }, "maxHpPerTeam"},
		{"time too long", func(c *GameConfig) { c.TimePerQuestionMs = MaxTimeLimitMs + 1 }, "timePerQuestionMs"},
		{"roster cap too high", func(c *GameConfig) { c.PlayersPerTeamMax = 1001 }, "playersPerTeamMax"},
		{"score too high", func(c *GameConfig) { c.BaseScore = MaxPoints + 1 }, "baseScore"},
		{"bonus too high", func(c *GameConfig) { c.SpeedBonusMax = MaxPoints + 1 }, "speedBonusMax"},
		{"buff interval too long", func(c *GameConfig) { c.BuffPolicy = BuffEveryNth; c.BuffEveryN = 1001 }, "buffEveryN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGameConfig()
			tt.mutate(&cfg)

			_, err := cfg.Normalize()
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.field)
			assert.Equal(t, "INVALID_CONFIG", Code(err))
		})
	}
}

func TestValidateAcceptsUpperBounds(t *testing.T) {
	cfg := DefaultGameConfig()
	cfg.MaxHPPerTeam = MaxHP
	cfg.TimePerQuestionMs = MaxTimeLimitMs
	cfg.PlayersPerTeamMax = 1000
	cfg.BaseScore = MaxPoints
	cfg.SpeedBonusMax = MaxPoints
	cfg.AttackDamagePercent = 100
	cfg.MaxDamagePerTurnPercent = 100
	cfg.BuffHealPercent = 100

	cfg, err := cfg.Normalize()
	require.NoError(t, err)

	assert.Equal(t, MaxHP, cfg.AttackPower())
	assert.Equal(t, MaxHP, cfg.DamageCap())
	assert.Equal(t, MaxHP, cfg.HealAmount())
}

func TestDerivedAmounts(t *testing.T) {
	cfg := DefaultGameConfig()
	cfg.MaxHPPerTeam = 200

	assert.Equal(t, 20, cfg.AttackPower())
	assert.Equal(t, 10, cfg.HealAmount())
	assert.Equal(t, 60, cfg.DamageCap())
}

func TestTeamNames(t *testing.T) {
	cfg := DefaultGameConfig()
	cfg.TeamNames = []string{"Owls", ""}

	assert.Equal(t, "Owls", cfg.TeamName(0))
	assert.Equal(t, "Team B", cfg.TeamName(1))
	assert.Equal(t, "Team C", cfg.TeamName(2))
	assert.Equal(t, "H", TeamID(7))
}

func TestNormalizeCopiesTeamNames(t *testing.T) {
	names := []string{"Owls", "Bats"}

	cfg := DefaultGameConfig()
	cfg.TeamNames = names

	cfg, err := cfg.Normalize()
	require.NoError(t, err)

	names[0] = "Changed"
	assert.Equal(t, "Owls", cfg.TeamNames[0])
}

func TestCodeOutsideTaxonomy(t *testing.T) {
	assert.Equal(t, "", Code(nil))
	assert.Equal(t, "INTERNAL", Code(assert.AnError))
	assert.Equal(t, "TOO_LATE", Code(ErrTooLate))
}
