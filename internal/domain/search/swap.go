package search

import (
	"context"
	"math/rand"
	"runtime"
	"time"

	"github.com/okian/huddle/internal/domain/balance"
	"github.com/okian/huddle/internal/domain/position"
)

// Default targeted swap-search parameters.
const (
	// DefaultSwapBudgetFraction sizes the swap budget relative to the
	// annealing budget.
	DefaultSwapBudgetFraction = 0.3

	// DefaultFocusProbability is how often a round attacks the strongest
	// and weakest teams directly instead of two random ones.
	DefaultFocusProbability = 0.7
)

// SwapSearch is the targeted local-swap engine. Most rounds pick the
// strongest and weakest teams (the worst imbalance), exhaustively evaluate
// every not-yet-attempted cross-team player pair at one random position on
// a scratch copy, and commit the best strictly improving swap. Attempted
// pairs are remembered so no pair is re-evaluated in a later round.
type SwapSearch struct {
	eval       *balance.Evaluator
	rng        *rand.Rand
	iterations int
	focusProb  float64
	yieldEvery int
}

// SwapOption applies a configuration option to the SwapSearch.
type SwapOption func(*SwapSearch)

// WithSwapRand sets the random source, mainly for deterministic tests.
func WithSwapRand(rng *rand.Rand) SwapOption {
	return func(s *SwapSearch) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithSwapIterations sets the round budget.
func WithSwapIterations(n int) SwapOption {
	return func(s *SwapSearch) {
		if n > 0 {
			s.iterations = n
		}
	}
}

// WithFocusProbability sets how often a round targets the strength
// extremes rather than two random teams.
func WithFocusProbability(p float64) SwapOption {
	return func(s *SwapSearch) {
		if p > 0 && p <= 1 {
			s.focusProb = p
		}
	}
}

// WithSwapYieldEvery sets how many rounds run between suspension points.
func WithSwapYieldEvery(n int) SwapOption {
	return func(s *SwapSearch) {
		if n > 0 {
			s.yieldEvery = n
		}
	}
}

// NewSwapSearch creates a SwapSearch with default parameters.
func NewSwapSearch(eval *balance.Evaluator, opts ...SwapOption) *SwapSearch {
	s := &SwapSearch{
		eval:       eval,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // stochastic search, not crypto
		iterations: int(DefaultIterations * DefaultSwapBudgetFraction),
		focusProb:  DefaultFocusProbability,
		yieldEvery: DefaultYieldEvery,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Optimize refines seed and returns the best candidate observed. The seed
// is never mutated; cancellation returns the best-so-far result.
func (s *SwapSearch) Optimize(ctx context.Context, seed *balance.Candidate) *balance.Candidate {
	current := seed.Clone()
	currentScore := s.eval.Score(current)
	best := current.Clone()
	bestScore := currentScore

	attempted := make(map[[2]string]struct{})

	for i := 0; i < s.iterations; i++ {
		if i > 0 && i%s.yieldEvery == 0 {
			select {
			case <-ctx.Done():
				return best
			default:
				runtime.Gosched()
			}
		}

		t1, t2, ok := s.pickTeams(current)
		if !ok {
			break
		}
		pos, ok := s.sharedPosition(current, t1, t2)
		if !ok {
			continue
		}

		if improved, score := s.bestSwapRound(current, t1, t2, pos, attempted); improved != nil {
			current, currentScore = improved, score
			if currentScore < bestScore {
				best, bestScore = current.Clone(), currentScore
			}
		}
	}
	return best
}

// pickTeams chooses the two teams a round works on.
func (s *SwapSearch) pickTeams(c *balance.Candidate) (int, int, bool) {
	if len(c.Teams) < 2 {
		return 0, 0, false
	}
	if s.rng.Float64() < s.focusProb {
		strongest, weakest := c.StrongestWeakest()
		if strongest != weakest {
			return strongest, weakest, true
		}
	}
	t1 := s.rng.Intn(len(c.Teams))
	t2 := s.rng.Intn(len(c.Teams) - 1)
	if t2 >= t1 {
		t2++
	}
	return t1, t2, true
}

// sharedPosition picks a random position both teams hold at least once.
func (s *SwapSearch) sharedPosition(c *balance.Candidate, t1, t2 int) (position.Position, bool) {
	var shared []position.Position
	seen := make(map[position.Position]struct{})
	for _, slot := range c.Teams[t1].Slots {
		seen[slot.Position] = struct{}{}
	}
	added := make(map[position.Position]struct{})
	for _, slot := range c.Teams[t2].Slots {
		if _, ok := seen[slot.Position]; !ok {
			continue
		}
		if _, dup := added[slot.Position]; dup {
			continue
		}
		added[slot.Position] = struct{}{}
		shared = append(shared, slot.Position)
	}
	if len(shared) == 0 {
		return "", false
	}
	return shared[s.rng.Intn(len(shared))], true
}

// bestSwapRound evaluates every unattempted cross-team pair at pos on a
// scratch copy and returns the candidate with the best strictly improving
// swap applied, or nil when no swap improves.
func (s *SwapSearch) bestSwapRound(c *balance.Candidate, t1, t2 int, pos position.Position, attempted map[[2]string]struct{}) (*balance.Candidate, float64) {
	baseline := s.eval.Score(c)
	slots1 := c.Teams[t1].SlotsAt(pos)
	slots2 := c.Teams[t2].SlotsAt(pos)

	var bestCand *balance.Candidate
	bestScore := baseline
	for _, i := range slots1 {
		for _, j := range slots2 {
			key := pairKey(c.Teams[t1].Slots[i].Player.ID, c.Teams[t2].Slots[j].Player.ID)
			if _, done := attempted[key]; done {
				continue
			}
			attempted[key] = struct{}{}

			scratch := c.Clone()
			scratch.Teams[t1].Slots[i].Player, scratch.Teams[t2].Slots[j].Player =
				scratch.Teams[t2].Slots[j].Player, scratch.Teams[t1].Slots[i].Player
			if score := s.eval.Score(scratch); score < bestScore {
				bestCand, bestScore = scratch, score
			}
		}
	}
	return bestCand, bestScore
}

func pairKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}
