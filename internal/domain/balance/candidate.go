// Package balance defines candidate team assignments and the evaluator
// that scores them.
package balance

import (
	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/internal/domain/roster"
)

// Assignment is one player slotted into a team at a specific position. The
// position filled may differ from the player's declared primary; the
// player's rating at the assigned position is what counts toward team
// strength.
type Assignment struct {
	Player   *roster.Player
	Position position.Position
}

// Rating returns the player's rating at the assigned position.
func (a Assignment) Rating() float64 {
	return a.Player.Rating(a.Position)
}

// OffPrimary reports whether the slot is filled outside the player's
// declared primary position.
func (a Assignment) OffPrimary() bool {
	return a.Position != a.Player.Primary()
}

// OffDeclared reports whether the slot is filled outside every position the
// player declares.
func (a Assignment) OffDeclared() bool {
	return !a.Player.HasPosition(a.Position)
}

// Team is an ordered list of assignments.
type Team struct {
	Slots []Assignment
}

// Strength is the sum of assigned-position ratings across the team.
func (t *Team) Strength() float64 {
	total := 0.0
	for _, slot := range t.Slots {
		total += slot.Rating()
	}
	return total
}

// CountAt returns how many slots fill pos.
func (t *Team) CountAt(pos position.Position) int {
	n := 0
	for _, slot := range t.Slots {
		if slot.Position == pos {
			n++
		}
	}
	return n
}

// SlotsAt returns the indexes of slots filling pos.
func (t *Team) SlotsAt(pos position.Position) []int {
	var idx []int
	for i, slot := range t.Slots {
		if slot.Position == pos {
			idx = append(idx, i)
		}
	}
	return idx
}

// Candidate is one complete assignment of players to a fixed number of
// teams. A player id appears in at most one team. Search engines own their
// working copies; Clone keeps candidates value-semantic.
type Candidate struct {
	Teams []Team
}

// NewCandidate creates a candidate with teamCount empty teams.
func NewCandidate(teamCount int) *Candidate {
	return &Candidate{Teams: make([]Team, teamCount)}
}

// Clone deep-copies the team structure. Player snapshots are shared: the
// optimizer treats them as read-only attributes, so copying the slot
// layout is sufficient for independent mutation of assignments.
func (c *Candidate) Clone() *Candidate {
	out := &Candidate{Teams: make([]Team, len(c.Teams))}
	for i, team := range c.Teams {
		slots := make([]Assignment, len(team.Slots))
		copy(slots, team.Slots)
		out.Teams[i] = Team{Slots: slots}
	}
	return out
}

// Strengths returns the per-team strength totals.
func (c *Candidate) Strengths() []float64 {
	out := make([]float64, len(c.Teams))
	for i := range c.Teams {
		out[i] = c.Teams[i].Strength()
	}
	return out
}

// PlayerIDs returns the set of assigned player ids.
func (c *Candidate) PlayerIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for i := range c.Teams {
		for _, slot := range c.Teams[i].Slots {
			ids[slot.Player.ID] = struct{}{}
		}
	}
	return ids
}

// StrongestWeakest returns the indexes of the strongest and weakest teams.
func (c *Candidate) StrongestWeakest() (strongest, weakest int) {
	strengths := c.Strengths()
	for i, s := range strengths {
		if s > strengths[strongest] {
			strongest = i
		}
		if s < strengths[weakest] {
			weakest = i
		}
	}
	return strongest, weakest
}
