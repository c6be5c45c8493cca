/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package royale

import (
	"sort"

	"github.com/Seednode/quizroyale/protocol"
)

// publish swaps in a fresh immutable snapshot for lock-free readers.
func (r *Room) publish() {
	state := r.buildState()
	r.snapshot.Store(&state)
}

func (r *Room) buildState() protocol.RoomState {
	state := protocol.RoomState{
		Code:                r.code,
		Phase:               string(r.phase),
		Teams:               r.teamSnapshots(),
		QuestionNumber:      r.cursor.Number(),
		TotalQuestions:      r.cursor.Total(),
		HostConnected:       r.conns.hostConnected(),
		EliminationConfetti: r.cfg.EliminationConfetti,
		CreatedAt:           r.createdAt,
		Winner:              r.winner,
	}

	if r.phase == PhaseActive || r.phase == PhaseResolved {
		if q, ok := r.cursor.Current(); ok {
			view := q.View()
			state.Question = &view
		}
	}

	if r.phase == PhaseActive {
		deadline := r.deadlineAt
		state.DeadlineAt = &deadline
		state.Answered = append([]string(nil), r.answerOrder...)
	}

	return state
}

func (r *Room) teamSnapshots() []protocol.TeamSnapshot {
	teams := r.ledger.Teams()
	out := make([]protocol.TeamSnapshot, len(teams))

	for i, t := range teams {
		roster := make([]protocol.PlayerSnapshot, len(t.Roster))
		for j, p := range t.Roster {
			roster[j] = protocol.PlayerSnapshot{
				ID:          p.ID,
				DisplayName: p.DisplayName,
				TeamID:      p.TeamID,
				Connected:   p.Connected,
			}
		}

		out[i] = protocol.TeamSnapshot{
			ID:           t.ID,
			Name:         t.Name,
			HP:           t.HP,
			MaxHP:        r.cfg.MaxHPPerTeam,
			Score:        t.Score,
			Alive:        t.Alive(),
			Forfeited:    t.Forfeited,
			EliminatedAt: t.EliminatedAt,
			Roster:       roster,
		}
	}

	return out
}

// standings ranks living teams by score then HP, ahead of eliminated teams
// ranked by how long they lasted then score. Team order breaks any tie.
func (r *Room) standings() []protocol.Standing {
	teams := append([]*Team(nil), r.ledger.Teams()...)

	sort.SliceStable(teams, func(i, j int) bool {
		a, b := teams[i], teams[j]

		if a.Alive() != b.Alive() {
			return a.Alive()
		}

		if a.Alive() {
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.HP > b.HP
		}

		if a.EliminatedAt != b.EliminatedAt {
			return a.EliminatedAt > b.EliminatedAt
		}

		return a.Score > b.Score
	})

	out := make([]protocol.Standing, len(teams))
	for i, t := range teams {
		out[i] = protocol.Standing{
			Rank:   i + 1,
			TeamID: t.ID,
			Name:   t.Name,
			HP:     t.HP,
			Score:  t.Score,
			Alive:  t.Alive(),
		}
	}

	return out
}
