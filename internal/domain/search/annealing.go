package search

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"time"

	"github.com/okian/huddle/internal/domain/balance"
)

// Default annealing parameters.
const (
	DefaultIterations  = 50_000
	DefaultInitialTemp = 1000.0
	DefaultCoolingRate = 0.995
	DefaultYieldEvery  = 5_000
)

// Annealer runs simulated annealing from a seed candidate. The current
// state is allowed to wander to worse solutions by design, so the best
// candidate seen across all iterations is tracked separately and is what
// Optimize returns.
type Annealer struct {
	eval        *balance.Evaluator
	rng         *rand.Rand
	iterations  int
	initialTemp float64
	cooling     float64
	yieldEvery  int
}

// AnnealerOption applies a configuration option to the Annealer.
type AnnealerOption func(*Annealer)

// WithAnnealerRand sets the random source, mainly for deterministic tests.
func WithAnnealerRand(rng *rand.Rand) AnnealerOption {
	return func(a *Annealer) {
		if rng != nil {
			a.rng = rng
		}
	}
}

// WithIterations sets the iteration budget.
func WithIterations(n int) AnnealerOption {
	return func(a *Annealer) {
		if n > 0 {
			a.iterations = n
		}
	}
}

// WithInitialTemp sets the starting temperature.
func WithInitialTemp(t float64) AnnealerOption {
	return func(a *Annealer) {
		if t > 0 {
			a.initialTemp = t
		}
	}
}

// WithCoolingRate sets the multiplicative decay applied each iteration.
func WithCoolingRate(r float64) AnnealerOption {
	return func(a *Annealer) {
		if r > 0 && r < 1 {
			a.cooling = r
		}
	}
}

// WithYieldEvery sets how many iterations run between suspension points.
func WithYieldEvery(n int) AnnealerOption {
	return func(a *Annealer) {
		if n > 0 {
			a.yieldEvery = n
		}
	}
}

// NewAnnealer creates an Annealer with default parameters.
func NewAnnealer(eval *balance.Evaluator, opts ...AnnealerOption) *Annealer {
	a := &Annealer{
		eval:        eval,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // stochastic search, not crypto
		iterations:  DefaultIterations,
		initialTemp: DefaultInitialTemp,
		cooling:     DefaultCoolingRate,
		yieldEvery:  DefaultYieldEvery,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Iterations returns the configured iteration budget.
func (a *Annealer) Iterations() int { return a.iterations }

// Optimize refines seed and returns the best candidate observed. The seed
// is never mutated. Context cancellation is the suspension/abort
// primitive: the engine checks it at every yield point and returns the
// best-so-far result immediately when ctx is done.
func (a *Annealer) Optimize(ctx context.Context, seed *balance.Candidate) *balance.Candidate {
	current := seed.Clone()
	currentScore := a.eval.Score(current)
	best := current.Clone()
	bestScore := currentScore

	temperature := a.initialTemp
	for i := 0; i < a.iterations; i++ {
		if i > 0 && i%a.yieldEvery == 0 {
			select {
			case <-ctx.Done():
				return best
			default:
				runtime.Gosched()
			}
		}

		neighbor := current.Clone()
		if !perturb(a.rng, neighbor) {
			break // no legal move exists; nothing further to explore
		}
		neighborScore := a.eval.Score(neighbor)

		delta := neighborScore - currentScore
		if delta < 0 || a.rng.Float64() < math.Exp(-delta/temperature) {
			current, currentScore = neighbor, neighborScore
			if currentScore < bestScore {
				best, bestScore = current.Clone(), currentScore
			}
		}
		temperature *= a.cooling
	}
	return best
}
