// Package pairing chooses the next head-to-head comparison for a position,
// covering every player pair exactly once while keeping comparison counts
// even across the roster.
package pairing

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/internal/domain/roster"
)

// Pair is one suggested comparison. Both snapshots declare the position the
// pair was drawn for and have never faced each other there.
type Pair struct {
	A        *roster.Player
	B        *roster.Player
	Position position.Position
}

// Selector proposes pairs against a live roster.
type Selector struct {
	roster *roster.Roster
	rng    *rand.Rand
}

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithRand sets the random source, mainly for deterministic tests.
func WithRand(rng *rand.Rand) Option {
	return func(s *Selector) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// NewSelector creates a Selector bound to a roster.
func NewSelector(r *roster.Roster, opts ...Option) *Selector {
	s := &Selector{
		roster: r,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // pairing bias-avoidance, not crypto
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextPair returns the next comparison to run at pos, or nil when the
// position is exhausted: fewer than two declarers, or every unordered pair
// already covered. Exhaustion is a terminal state for callers, not an
// error.
//
// Selection prefers the least-compared players: the minimum-count subset is
// shuffled and scanned for an uncovered pair first, so coverage grows
// evenly instead of revolving around early entrants. When the minimum
// subset is internally exhausted the scan widens to the full declarer list
// ordered by ascending comparison count, which guarantees exhaustion is
// detected rather than looping forever.
func (s *Selector) NextPair(ctx context.Context, pos position.Position) *Pair {
	players := s.roster.ListByPosition(ctx, pos)
	if len(players) < 2 {
		return nil
	}

	minCount := players[0].Comparisons[pos]
	for _, p := range players[1:] {
		if c := p.Comparisons[pos]; c < minCount {
			minCount = c
		}
	}
	leastCompared := make([]*roster.Player, 0, len(players))
	for _, p := range players {
		if p.Comparisons[pos] == minCount {
			leastCompared = append(leastCompared, p)
		}
	}
	s.rng.Shuffle(len(leastCompared), func(i, j int) {
		leastCompared[i], leastCompared[j] = leastCompared[j], leastCompared[i]
	})
	if pair := firstUncovered(leastCompared, pos); pair != nil {
		return pair
	}

	// Fallback: whole position population, least compared first.
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Comparisons[pos] < players[j].Comparisons[pos]
	})
	return firstUncovered(players, pos)
}

// Exhausted reports whether no pair remains at pos.
func (s *Selector) Exhausted(ctx context.Context, pos position.Position) bool {
	return s.NextPair(ctx, pos) == nil
}

func firstUncovered(players []*roster.Player, pos position.Position) *Pair {
	for i := 0; i < len(players); i++ {
		for j := i + 1; j < len(players); j++ {
			a, b := players[i], players[j]
			if _, faced := a.ComparedWith[pos][b.ID]; faced {
				continue
			}
			return &Pair{A: a, B: b, Position: pos}
		}
	}
	return nil
}
