// Package search contains the local and population search engines that
// refine seeded team assignments toward minimum imbalance.
package search

import (
	"math/rand"

	"github.com/okian/huddle/internal/domain/balance"
	"github.com/okian/huddle/internal/domain/position"
)

// Perturbation weights for annealing neighbors.
const (
	singleSwapWeight = 0.6
	doubleSwapWeight = 0.3
	// remaining 10% goes to the three-way rotation
)

// perturb mutates c in place with one randomized move: a single-player
// swap (60%), a paired double-swap (30%) or a three-team rotation (10%).
// Moves always exchange players filling the same position, so composition
// headcounts are preserved by construction. Returns false when the
// candidate offers no legal move of the chosen kind and no fallback.
func perturb(rng *rand.Rand, c *balance.Candidate) bool {
	roll := rng.Float64()
	switch {
	case roll < singleSwapWeight:
		if singleSwap(rng, c) {
			return true
		}
	case roll < singleSwapWeight+doubleSwapWeight:
		if doubleSwap(rng, c) {
			return true
		}
	default:
		if rotateThree(rng, c) {
			return true
		}
	}
	// Fall back to the cheapest move so iterations are never wasted on
	// structurally impossible picks (e.g. rotation with two teams).
	return singleSwap(rng, c)
}

// singleSwap exchanges one player between two random teams at a random
// shared position.
func singleSwap(rng *rand.Rand, c *balance.Candidate) bool {
	pos, teams := pickPosition(rng, c, 2, 1)
	if pos == "" {
		return false
	}
	t1, t2 := pickTwo(rng, teams)
	i := pickSlot(rng, &c.Teams[t1], pos)
	j := pickSlot(rng, &c.Teams[t2], pos)
	c.Teams[t1].Slots[i].Player, c.Teams[t2].Slots[j].Player =
		c.Teams[t2].Slots[j].Player, c.Teams[t1].Slots[i].Player
	return true
}

// doubleSwap exchanges two same-position players between two teams that
// each hold at least two at that position.
func doubleSwap(rng *rand.Rand, c *balance.Candidate) bool {
	pos, teams := pickPosition(rng, c, 2, 2)
	if pos == "" {
		return false
	}
	t1, t2 := pickTwo(rng, teams)
	a := pickTwoSlots(rng, &c.Teams[t1], pos)
	b := pickTwoSlots(rng, &c.Teams[t2], pos)
	for k := 0; k < 2; k++ {
		c.Teams[t1].Slots[a[k]].Player, c.Teams[t2].Slots[b[k]].Player =
			c.Teams[t2].Slots[b[k]].Player, c.Teams[t1].Slots[a[k]].Player
	}
	return true
}

// rotateThree rotates one player per position across three teams.
func rotateThree(rng *rand.Rand, c *balance.Candidate) bool {
	pos, teams := pickPosition(rng, c, 3, 1)
	if pos == "" {
		return false
	}
	rng.Shuffle(len(teams), func(i, j int) { teams[i], teams[j] = teams[j], teams[i] })
	t1, t2, t3 := teams[0], teams[1], teams[2]
	i := pickSlot(rng, &c.Teams[t1], pos)
	j := pickSlot(rng, &c.Teams[t2], pos)
	k := pickSlot(rng, &c.Teams[t3], pos)
	c.Teams[t1].Slots[i].Player, c.Teams[t2].Slots[j].Player, c.Teams[t3].Slots[k].Player =
		c.Teams[t3].Slots[k].Player, c.Teams[t1].Slots[i].Player, c.Teams[t2].Slots[j].Player
	return true
}

// mutate applies between 1 and maxSwaps single swaps.
func mutate(rng *rand.Rand, c *balance.Candidate, maxSwaps int) {
	n := 1 + rng.Intn(maxSwaps)
	for i := 0; i < n; i++ {
		singleSwap(rng, c)
	}
}

// pickPosition returns a random position held by at least minTeams teams
// with at least minSlots slots each, plus the qualifying team indexes.
func pickPosition(rng *rand.Rand, c *balance.Candidate, minTeams, minSlots int) (position.Position, []int) {
	byPos := make(map[position.Position][]int)
	for team := range c.Teams {
		seen := make(map[position.Position]int)
		for _, slot := range c.Teams[team].Slots {
			seen[slot.Position]++
		}
		for pos, n := range seen {
			if n >= minSlots {
				byPos[pos] = append(byPos[pos], team)
			}
		}
	}
	eligible := make([]position.Position, 0, len(byPos))
	for pos, teams := range byPos {
		if len(teams) >= minTeams {
			eligible = append(eligible, pos)
		}
	}
	if len(eligible) == 0 {
		return "", nil
	}
	pos := eligible[rng.Intn(len(eligible))]
	return pos, byPos[pos]
}

func pickTwo(rng *rand.Rand, teams []int) (int, int) {
	i := rng.Intn(len(teams))
	j := rng.Intn(len(teams) - 1)
	if j >= i {
		j++
	}
	return teams[i], teams[j]
}

func pickSlot(rng *rand.Rand, t *balance.Team, pos position.Position) int {
	idx := t.SlotsAt(pos)
	return idx[rng.Intn(len(idx))]
}

func pickTwoSlots(rng *rand.Rand, t *balance.Team, pos position.Position) [2]int {
	idx := t.SlotsAt(pos)
	i := rng.Intn(len(idx))
	j := rng.Intn(len(idx) - 1)
	if j >= i {
		j++
	}
	return [2]int{idx[i], idx[j]}
}
