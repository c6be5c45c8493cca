/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package royale

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DamageFull  = "full"
	DamageSplit = "split"

	BuffFastest  = "fastest"
	BuffEveryNth = "every_nth"
	BuffNone     = "none"

	MaxTeams = 8

	MaxHP          = 1_000_000
	MaxTimeLimitMs = 3_600_000
	MaxPoints      = 1_000_000
)

// GameConfig holds the per-room parameters supplied at creation. It is never
// modified once a room exists.
type GameConfig struct {
	NumTeams                int  `json:"numTeams" validate:"min=2,max=8"`
	MaxHPPerTeam            int  `json:"maxHpPerTeam" validate:"gt=0,lte=1000000"`
	TimePerQuestionMs       int  `json:"timePerQuestionMs" validate:"gt=0,lte=3600000"`
	PlayersPerTeamMax       int  `json:"playersPerTeamMax" validate:"gt=0,lte=1000"`
	BaseScore               int  `json:"baseScore" validate:"gte=0,lte=1000000"`
	SpeedBonusMax           int  `json:"speedBonusMax" validate:"gte=0,lte=1000000"`
	AttackDamagePercent     int  `json:"attackDamagePercent" validate:"gte=0,lte=100"`
	BuffHealPercent         int  `json:"buffHealPercent" validate:"gte=0,lte=100"`
	MaxDamagePerTurnPercent int  `json:"maxDamagePerTurnPercent" validate:"gte=0,lte=100"`
	EliminationConfetti     bool `json:"eliminationConfetti"`

	DamageMode string   `json:"damageMode,omitempty" validate:"omitempty,oneof=full split"`
	BuffPolicy string   `json:"buffPolicy,omitempty" validate:"omitempty,oneof=fastest every_nth none"`
	BuffEveryN int      `json:"buffEveryN,omitempty" validate:"gte=0,lte=1000"`
	TeamNames  []string `json:"teamNames,omitempty" validate:"omitempty,max=8,dive,max=32"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// DefaultGameConfig is a reasonable four team game.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		NumTeams:                4,
		MaxHPPerTeam:            100,
		TimePerQuestionMs:       20000,
		PlayersPerTeamMax:       5,
		BaseScore:               100,
		SpeedBonusMax:           50,
		AttackDamagePercent:     10,
		BuffHealPercent:         5,
		MaxDamagePerTurnPercent: 30,
		DamageMode:              DamageFull,
		BuffPolicy:              BuffFastest,
	}
}

// Normalize fills in defaults for the optional fields and validates the
// result.
func (c GameConfig) Normalize() (GameConfig, error) {
	if c.DamageMode == "" {
		c.DamageMode = DamageFull
	}
	if c.BuffPolicy == "" {
		c.BuffPolicy = BuffFastest
	}
	if c.BuffPolicy == BuffEveryNth && c.BuffEveryN == 0 {
		c.BuffEveryN = 3
	}
	if c.TeamNames != nil {
		c.TeamNames = append([]string(nil), c.TeamNames...)
	}

	return c, c.Validate()
}

// Validate reports every problem with c, wrapped in ErrInvalidConfig.
func (c GameConfig) Validate() error {
	var problems []string

	err := validate.Struct(c)
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	if len(c.TeamNames) > c.NumTeams && c.NumTeams > 0 {
		problems = append(problems, fmt.Sprintf("teamNames has %d entries for %d teams", len(c.TeamNames), c.NumTeams))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}

	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

func (c GameConfig) TimeLimit() time.Duration {
	return time.Duration(c.TimePerQuestionMs) * time.Millisecond
}

// AttackPower is the damage one correct team deals.
func (c GameConfig) AttackPower() int {
	return percentOf(c.AttackDamagePercent, c.MaxHPPerTeam)
}

func (c GameConfig) HealAmount() int {
	return percentOf(c.BuffHealPercent, c.MaxHPPerTeam)
}

// DamageCap is the most HP a team can lose in one resolution.
func (c GameConfig) DamageCap() int {
	return percentOf(c.MaxDamagePerTurnPercent, c.MaxHPPerTeam)
}

func percentOf(percent, n int) int {
	return int(int64(percent) * int64(n) / 100)
}

// TeamName returns the display name for the team at index i.
func (c GameConfig) TeamName(i int) string {
	if i < len(c.TeamNames) && c.TeamNames[i] != "" {
		return c.TeamNames[i]
	}
	return "Team " + TeamID(i)
}

// TeamID returns the letter for the team at index i.
func TeamID(i int) string {
	return string(rune('A' + i))
}
