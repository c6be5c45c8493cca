/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package royale

import "sort"

// Outcome is how one team did on a question.
type Outcome struct {
	TeamID    string
	Answered  bool
	Correct   bool
	ElapsedMs int
	Points    int
	Buffed    bool
}

type TeamHP struct {
	TeamID string
	HP     int
}

type Hit struct {
	From   string
	Amount int
}

// Delta is the change resolution makes to one team.
type Delta struct {
	TeamID      string
	HPDelta     int
	DamageTaken int
	Healed      int
	Hits        []Hit
}

// SelectBuff marks which outcomes earn the heal for questionNumber
// (1-based) and returns them in a new slice.
func SelectBuff(cfg GameConfig, outcomes []Outcome, questionNumber int) []Outcome {
	out := append([]Outcome(nil), outcomes...)

	switch cfg.BuffPolicy {
	case BuffNone:
		return out

	case BuffEveryNth:
		if cfg.BuffEveryN <= 0 || questionNumber%cfg.BuffEveryN != 0 {
			return out
		}
		for i := range out {
			if out[i].Correct {
				out[i].Buffed = true
			}
		}

	default:
		best := -1
		for i, o := range out {
			if !o.Correct {
				continue
			}
			if best == -1 || o.ElapsedMs < out[best].ElapsedMs {
				best = i
			}
		}
		if best >= 0 {
			out[best].Buffed = true
		}
	}

	return out
}

// Resolve computes the HP change for every living team. Each correct living
// team attacks every other living team; incoming damage per team is capped at
// cfg.DamageCap() with attacker shares scaled down proportionally. Damage
// lands before healing, and a team brought to zero is not healed.
func Resolve(outcomes []Outcome, teams []TeamHP, cfg GameConfig) []Delta {
	alive := make([]TeamHP, 0, len(teams))
	for _, t := range teams {
		if t.HP > 0 {
			alive = append(alive, t)
		}
	}
	if len(alive) < 2 {
		return nil
	}

	byTeam := make(map[string]Outcome, len(outcomes))
	for _, o := range outcomes {
		byTeam[o.TeamID] = o
	}

	incoming := make(map[string][]Hit, len(alive))
	attack := cfg.AttackPower()

	for _, attacker := range alive {
		if !byTeam[attacker.TeamID].Correct || attack <= 0 {
			continue
		}

		targets := make([]string, 0, len(alive)-1)
		for _, t := range alive {
			if t.TeamID != attacker.TeamID {
				targets = append(targets, t.TeamID)
			}
		}

		for i, target := range targets {
			amount := attack
			if cfg.DamageMode == DamageSplit {
				amount = attack / len(targets)
				if i == 0 {
					amount += attack % len(targets)
				}
			}
			if amount > 0 {
				incoming[target] = append(incoming[target], Hit{From: attacker.TeamID, Amount: amount})
			}
		}
	}

	limit := cfg.DamageCap()
	heal := cfg.HealAmount()
	deltas := make([]Delta, 0, len(alive))

	for _, t := range alive {
		hits := capHits(incoming[t.TeamID], limit)

		damage := 0
		for _, h := range hits {
			damage += h.Amount
		}

		after := max(t.HP-damage, 0)

		healed := 0
		if o := byTeam[t.TeamID]; o.Buffed && o.Correct && after > 0 {
			healed = min(heal, max(cfg.MaxHPPerTeam-after, 0))
		}

		final := clamp(after+healed, 0, cfg.MaxHPPerTeam)

		deltas = append(deltas, Delta{
			TeamID:      t.TeamID,
			HPDelta:     final - t.HP,
			DamageTaken: t.HP - after,
			Healed:      healed,
			Hits:        hits,
		})
	}

	return deltas
}

// capHits scales hits down so they sum to exactly limit when they would
// exceed it, using largest remainders for the leftover points.
func capHits(hits []Hit, limit int) []Hit {
	total := 0
	for _, h := range hits {
		total += h.Amount
	}
	if total <= limit {
		return hits
	}
	if limit <= 0 {
		return nil
	}

	type share struct {
		index     int
		remainder int64
	}

	scaled := make([]Hit, len(hits))
	shares := make([]share, len(hits))
	sum := 0

	for i, h := range hits {
		product := int64(h.Amount) * int64(limit)
		scaled[i] = Hit{From: h.From, Amount: int(product / int64(total))}
		shares[i] = share{index: i, remainder: product % int64(total)}
		sum += scaled[i].Amount
	}

	sort.SliceStable(shares, func(a, b int) bool {
		return shares[a].remainder > shares[b].remainder
	})

	// Flooring loses less than one point per hit.
	for i := 0; sum < limit && i < len(shares); i++ {
		scaled[shares[i].index].Amount++
		sum++
	}

	out := scaled[:0]
	for _, h := range scaled {
		if h.Amount > 0 {
			out = append(out, h)
		}
	}

	return out
}
