package balance

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Default evaluator weights.
const (
	DefaultOffPrimaryPenalty = 50.0
	DefaultVarianceWeight    = 0.5
)

// Evaluator scores candidates; lower is better. Raw imbalance (strength
// spread) dominates, the variance term breaks ties, and the off-primary
// penalty is a soft preference. Composition headcounts are a hard
// constraint enforced before scoring, never here.
type Evaluator struct {
	offPrimaryPenalty float64
	varianceWeight    float64
}

// Option applies a configuration option to the Evaluator.
type Option func(*Evaluator)

// WithOffPrimaryPenalty sets the per-player penalty for slots filled
// outside the declared primary position.
func WithOffPrimaryPenalty(p float64) Option {
	return func(e *Evaluator) {
		if p >= 0 {
			e.offPrimaryPenalty = p
		}
	}
}

// WithVarianceWeight sets the weight of the strength standard deviation
// term.
func WithVarianceWeight(w float64) Option {
	return func(e *Evaluator) {
		if w >= 0 {
			e.varianceWeight = w
		}
	}
}

// NewEvaluator creates an Evaluator with default weights.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		offPrimaryPenalty: DefaultOffPrimaryPenalty,
		varianceWeight:    DefaultVarianceWeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score returns balance + varianceWeight*sqrt(variance) + penalty*offCount.
// Candidates with fewer than two teams are invalid and score +Inf so they
// are never selected.
func (e *Evaluator) Score(c *Candidate) float64 {
	if c == nil || len(c.Teams) < 2 {
		return math.Inf(1)
	}
	strengths := c.Strengths()

	maxStrength, _ := stats.Max(strengths)
	minStrength, _ := stats.Min(strengths)
	variance, _ := stats.PopulationVariance(strengths)

	offPrimary := 0
	for i := range c.Teams {
		for _, slot := range c.Teams[i].Slots {
			if slot.OffPrimary() {
				offPrimary++
			}
		}
	}

	return (maxStrength - minStrength) +
		e.varianceWeight*math.Sqrt(variance) +
		e.offPrimaryPenalty*float64(offPrimary)
}
