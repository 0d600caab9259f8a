// Package seeding produces structurally distinct initial team assignments
// for the balancing search to start from.
package seeding

import (
	"math/rand"
	"sort"
	"time"

	"github.com/okian/huddle/internal/domain/balance"
	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/internal/domain/roster"
)

// Seed-strategy tuning constants.
const (
	// DefaultRandomSeeds is how many purely random candidates pad the
	// deterministic strategies for search diversity.
	DefaultRandomSeeds = 2

	// singlePositionFlexPenalty discounts single-position players in the
	// flexible-first ordering.
	singlePositionFlexPenalty = 0.8
)

// Seeder builds candidates from a roster snapshot and a composition. Every
// produced candidate assigns a player id at most once and never exceeds
// composition[pos] players per team at any position.
type Seeder struct {
	set         *position.Set
	rng         *rand.Rand
	randomSeeds int
}

// Option applies a configuration option to the Seeder.
type Option func(*Seeder)

// WithRand sets the random source, mainly for deterministic tests.
func WithRand(rng *rand.Rand) Option {
	return func(s *Seeder) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithRandomSeeds sets how many random candidates are generated (minimum 2).
func WithRandomSeeds(n int) Option {
	return func(s *Seeder) {
		if n >= DefaultRandomSeeds {
			s.randomSeeds = n
		}
	}
}

// NewSeeder creates a Seeder for the given position set.
func NewSeeder(set *position.Set, opts ...Option) *Seeder {
	s := &Seeder{
		set:         set,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // seed diversity, not crypto
		randomSeeds: DefaultRandomSeeds,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seeds returns the full candidate set: primary-first, snake-draft,
// balanced-rating, flexible-first and the configured number of random
// distributions.
func (s *Seeder) Seeds(players []*roster.Player, comp position.Composition, teamCount int) []*balance.Candidate {
	seeds := []*balance.Candidate{
		s.PrimaryFirst(players, comp, teamCount),
		s.SnakeDraft(players, comp, teamCount),
		s.BalancedRating(players, comp, teamCount),
		s.FlexibleFirst(players, comp, teamCount),
	}
	for i := 0; i < s.randomSeeds; i++ {
		seeds = append(seeds, s.Random(players, comp, teamCount))
	}
	return seeds
}

// PrimaryFirst fills each position's slots from players whose primary is
// that position (highest rating first, snake order so team 0 is not always
// over-served), then closes the gaps from secondary declarers greedily
// onto the lowest-strength team.
func (s *Seeder) PrimaryFirst(players []*roster.Player, comp position.Composition, teamCount int) *balance.Candidate {
	d := newDraft(comp, teamCount)
	for _, pos := range comp.Positions(s.set) {
		primaries := d.available(players, func(p *roster.Player) bool { return p.Primary() == pos })
		sortByRatingDesc(primaries, pos)
		d.distributeSnake(primaries, pos)

		secondaries := d.available(players, func(p *roster.Player) bool {
			return p.HasPosition(pos) && p.Primary() != pos
		})
		sortByRatingDesc(secondaries, pos)
		d.distributeGreedy(secondaries, pos)
	}
	d.pad(players)
	return d.cand
}

// SnakeDraft distributes each position's declarers (primary before
// secondary, then descending rating) in snake order.
func (s *Seeder) SnakeDraft(players []*roster.Player, comp position.Composition, teamCount int) *balance.Candidate {
	d := newDraft(comp, teamCount)
	for _, pos := range comp.Positions(s.set) {
		avail := d.available(players, func(p *roster.Player) bool { return p.HasPosition(pos) })
		sortPrimaryThenRating(avail, pos)
		d.distributeSnake(avail, pos)
	}
	d.pad(players)
	return d.cand
}

// BalancedRating uses the snake-draft ordering but places every player on
// whichever team currently has the lowest running strength total (greedy
// online balancing rather than batch distribution).
func (s *Seeder) BalancedRating(players []*roster.Player, comp position.Composition, teamCount int) *balance.Candidate {
	d := newDraft(comp, teamCount)
	for _, pos := range comp.Positions(s.set) {
		avail := d.available(players, func(p *roster.Player) bool { return p.HasPosition(pos) })
		sortPrimaryThenRating(avail, pos)
		d.distributeGreedy(avail, pos)
	}
	d.pad(players)
	return d.cand
}

// FlexibleFirst ranks players by a flexibility score (declared position
// count x primary rating for multi-position players, discounted rating
// otherwise) and spreads them across teams by index, so multi-capable
// players land on different teams.
func (s *Seeder) FlexibleFirst(players []*roster.Player, comp position.Composition, teamCount int) *balance.Candidate {
	d := newDraft(comp, teamCount)
	ranked := d.available(players, func(p *roster.Player) bool { return true })
	sort.SliceStable(ranked, func(i, j int) bool {
		return flexScore(ranked[i]) > flexScore(ranked[j])
	})
	for i, p := range ranked {
		placed := false
		for offset := 0; offset < teamCount && !placed; offset++ {
			team := (i + offset) % teamCount
			for _, pos := range p.Positions {
				if d.assign(team, p, pos) {
					placed = true
					break
				}
			}
		}
		// Unplaceable players stay in the pool for the pad pass.
	}
	d.pad(players)
	return d.cand
}

// Random shuffles each position's declarers and round-robins them across
// teams. Called more than once it yields distinct candidates, providing
// escape from deterministic seed bias.
func (s *Seeder) Random(players []*roster.Player, comp position.Composition, teamCount int) *balance.Candidate {
	d := newDraft(comp, teamCount)
	for _, pos := range comp.Positions(s.set) {
		avail := d.available(players, func(p *roster.Player) bool { return p.HasPosition(pos) })
		s.rng.Shuffle(len(avail), func(i, j int) { avail[i], avail[j] = avail[j], avail[i] })
		d.distributeRoundRobin(avail, pos)
	}
	d.pad(players)
	return d.cand
}

func flexScore(p *roster.Player) float64 {
	primaryRating := p.Rating(p.Primary())
	if len(p.Positions) > 1 {
		return float64(len(p.Positions)) * primaryRating
	}
	return primaryRating * singlePositionFlexPenalty
}

func sortByRatingDesc(players []*roster.Player, pos position.Position) {
	sort.SliceStable(players, func(i, j int) bool {
		ri, rj := players[i].Rating(pos), players[j].Rating(pos)
		if ri != rj {
			return ri > rj
		}
		return players[i].ID < players[j].ID
	})
}

func sortPrimaryThenRating(players []*roster.Player, pos position.Position) {
	sort.SliceStable(players, func(i, j int) bool {
		pi, pj := players[i].Primary() == pos, players[j].Primary() == pos
		if pi != pj {
			return pi
		}
		ri, rj := players[i].Rating(pos), players[j].Rating(pos)
		if ri != rj {
			return ri > rj
		}
		return players[i].ID < players[j].ID
	})
}
