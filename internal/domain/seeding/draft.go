package seeding

import (
	"github.com/okian/huddle/internal/domain/balance"
	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/internal/domain/roster"
)

// draft tracks one in-progress candidate: which players are consumed and
// how many slots remain per team per position. All seed strategies build
// through it so the no-duplicate and headcount invariants hold by
// construction.
type draft struct {
	cand *balance.Candidate
	comp position.Composition
	used map[string]struct{}
}

func newDraft(comp position.Composition, teamCount int) *draft {
	return &draft{
		cand: balance.NewCandidate(teamCount),
		comp: comp,
		used: make(map[string]struct{}),
	}
}

// available filters players to the unused subset matching keep.
func (d *draft) available(players []*roster.Player, keep func(*roster.Player) bool) []*roster.Player {
	out := make([]*roster.Player, 0, len(players))
	for _, p := range players {
		if _, taken := d.used[p.ID]; taken {
			continue
		}
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// needs reports whether team still has an open slot at pos.
func (d *draft) needs(team int, pos position.Position) bool {
	return d.cand.Teams[team].CountAt(pos) < d.comp[pos]
}

// assign places p on team at pos if a slot is open and p is unused.
func (d *draft) assign(team int, p *roster.Player, pos position.Position) bool {
	if _, taken := d.used[p.ID]; taken {
		return false
	}
	if !d.needs(team, pos) {
		return false
	}
	t := &d.cand.Teams[team]
	t.Slots = append(t.Slots, balance.Assignment{Player: p, Position: pos})
	d.used[p.ID] = struct{}{}
	return true
}

// distributeSnake deals players across teams in snake order: ascending
// team index on even rounds, descending on odd ones.
func (d *draft) distributeSnake(players []*roster.Player, pos position.Position) {
	teamCount := len(d.cand.Teams)
	i := 0
	for _, p := range players {
		if d.slotsLeft(pos) == 0 {
			return
		}
		round, k := i/teamCount, i%teamCount
		team := k
		if round%2 == 1 {
			team = teamCount - 1 - k
		}
		// Snake order can land on a full team when availability is
		// uneven; fall through to the next open one.
		if !d.assign(team, p, pos) {
			if t := d.teamNeeding(pos); t >= 0 {
				d.assign(t, p, pos)
			}
		}
		i++
	}
}

// distributeGreedy places each player on the lowest-strength team that
// still needs pos.
func (d *draft) distributeGreedy(players []*roster.Player, pos position.Position) {
	for _, p := range players {
		team := d.weakestTeamNeeding(pos)
		if team < 0 {
			return
		}
		d.assign(team, p, pos)
	}
}

// distributeRoundRobin deals players to teams by plain index order.
func (d *draft) distributeRoundRobin(players []*roster.Player, pos position.Position) {
	teamCount := len(d.cand.Teams)
	i := 0
	for _, p := range players {
		if d.slotsLeft(pos) == 0 {
			return
		}
		if !d.assign(i%teamCount, p, pos) {
			if t := d.teamNeeding(pos); t >= 0 {
				d.assign(t, p, pos)
			}
		}
		i++
	}
}

// slotsLeft returns how many open slots remain at pos across all teams.
func (d *draft) slotsLeft(pos position.Position) int {
	left := 0
	for team := range d.cand.Teams {
		left += d.comp[pos] - d.cand.Teams[team].CountAt(pos)
	}
	return left
}

// teamNeeding returns the first team index with an open slot at pos.
func (d *draft) teamNeeding(pos position.Position) int {
	for team := range d.cand.Teams {
		if d.needs(team, pos) {
			return team
		}
	}
	return -1
}

// weakestTeamNeeding returns the lowest-strength team with an open slot at
// pos.
func (d *draft) weakestTeamNeeding(pos position.Position) int {
	best, bestStrength := -1, 0.0
	for team := range d.cand.Teams {
		if !d.needs(team, pos) {
			continue
		}
		s := d.cand.Teams[team].Strength()
		if best < 0 || s < bestStrength {
			best, bestStrength = team, s
		}
	}
	return best
}

// pad closes any remaining open slots so headcounts come out exact:
// declared players first (highest rating at the slot's position), then any
// unused player at all. Off-declared placement is legitimate, the
// evaluator's penalty prices it.
func (d *draft) pad(players []*roster.Player) {
	for pos := range d.comp {
		for d.slotsLeft(pos) > 0 {
			team := d.weakestTeamNeeding(pos)
			if team < 0 {
				break
			}
			pick := d.bestAvailable(players, pos)
			if pick == nil {
				return // roster exhausted; the hole stays visible
			}
			d.assign(team, pick, pos)
		}
	}
}

func (d *draft) bestAvailable(players []*roster.Player, pos position.Position) *roster.Player {
	var declared, any *roster.Player
	for _, p := range players {
		if _, taken := d.used[p.ID]; taken {
			continue
		}
		if p.HasPosition(pos) {
			if declared == nil || p.Rating(pos) > declared.Rating(pos) {
				declared = p
			}
			continue
		}
		if any == nil || p.Rating(p.Primary()) > any.Rating(any.Primary()) {
			any = p
		}
	}
	if declared != nil {
		return declared
	}
	return any
}
