/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package royale

import "fmt"

// Player is one participant, identified by their attachment token.
type Player struct {
	ID          string
	DisplayName string
	TeamID      string
	Connected   bool
}

type Team struct {
	ID           string
	Name         string
	HP           int
	Score        int
	Forfeited    bool
	EliminatedAt int
	Roster       []*Player
}

func (t *Team) Alive() bool {
	return t.HP > 0
}

// TeamLedger owns every team of a room. It is only touched from the
// room's goroutine.
type TeamLedger struct {
	teams     []*Team
	maxHP     int
	rosterMax int
}

func NewTeamLedger(cfg GameConfig) *TeamLedger {
	l := &TeamLedger{
		teams:     make([]*Team, cfg.NumTeams),
		maxHP:     cfg.MaxHPPerTeam,
		rosterMax: cfg.PlayersPerTeamMax,
	}

	for i := range l.teams {
		l.teams[i] = &Team{
			ID:   TeamID(i),
			Name: cfg.TeamName(i),
			HP:   cfg.MaxHPPerTeam,
		}
	}

	return l
}

func (l *TeamLedger) Teams() []*Team {
	return l.teams
}

func (l *TeamLedger) Team(id string) (*Team, bool) {
	for _, t := range l.teams {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

func (l *TeamLedger) Alive() []*Team {
	alive := make([]*Team, 0, len(l.teams))
	for _, t := range l.teams {
		if t.Alive() {
			alive = append(alive, t)
		}
	}
	return alive
}

// OpenTeam returns the non-full team with the smallest roster, earliest
// first.
func (l *TeamLedger) OpenTeam() (*Team, bool) {
	var best *Team
	for _, t := range l.teams {
		if len(t.Roster) >= l.rosterMax {
			continue
		}
		if best == nil || len(t.Roster) < len(best.Roster) {
			best = t
		}
	}
	return best, best != nil
}

func (l *TeamLedger) AddPlayer(teamID string, p *Player) error {
	t, ok := l.Team(teamID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidTeam, teamID)
	}
	if len(t.Roster) >= l.rosterMax {
		return fmt.Errorf("%w: %s has %d players", ErrTeamFull, t.Name, len(t.Roster))
	}

	p.TeamID = t.ID
	t.Roster = append(t.Roster, p)

	return nil
}

func (l *TeamLedger) Player(id string) (*Player, bool) {
	for _, t := range l.teams {
		for _, p := range t.Roster {
			if p.ID == id {
				return p, true
			}
		}
	}
	return nil, false
}

// PlayerByName finds a player on teamID with the given display name.
func (l *TeamLedger) PlayerByName(teamID, name string) (*Player, bool) {
	t, ok := l.Team(teamID)
	if !ok {
		return nil, false
	}
	for _, p := range t.Roster {
		if p.DisplayName == name {
			return p, true
		}
	}
	return nil, false
}

func (l *TeamLedger) RemovePlayer(id string) (*Player, bool) {
	for _, t := range l.teams {
		for i, p := range t.Roster {
			if p.ID == id {
				t.Roster = append(t.Roster[:i], t.Roster[i+1:]...)
				return p, true
			}
		}
	}
	return nil, false
}

// NameInUse reports whether name is taken by anyone in the room.
func (l *TeamLedger) NameInUse(name string) bool {
	for _, t := range l.teams {
		for _, p := range t.Roster {
			if p.DisplayName == name {
				return true
			}
		}
	}
	return false
}

// ForfeitEmpty knocks out teams that have nobody on them and returns how
// many teams still have players.
func (l *TeamLedger) ForfeitEmpty() int {
	staffed := 0
	for _, t := range l.teams {
		if len(t.Roster) == 0 {
			t.HP = 0
			t.Forfeited = true
			continue
		}
		staffed++
	}
	return staffed
}

// Apply adds each team's HP delta, clamping to [0, maxHP], and returns the
// teams that were alive before and are not any more.
func (l *TeamLedger) Apply(deltas []Delta, question int) []*Team {
	var eliminated []*Team

	for _, d := range deltas {
		t, ok := l.Team(d.TeamID)
		if !ok || !t.Alive() {
			continue
		}

		t.HP = clamp(t.HP+d.HPDelta, 0, l.maxHP)

		if !t.Alive() {
			t.EliminatedAt = question
			eliminated = append(eliminated, t)
		}
	}

	return eliminated
}

// AddScore never lowers a score.
func (l *TeamLedger) AddScore(teamID string, points int) {
	if points <= 0 {
		return
	}
	if t, ok := l.Team(teamID); ok {
		t.Score += points
	}
}

// HP returns the current hit points of every team, in team order.
func (l *TeamLedger) HP() []TeamHP {
	out := make([]TeamHP, len(l.teams))
	for i, t := range l.teams {
		out[i] = TeamHP{TeamID: t.ID, HP: t.HP}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
