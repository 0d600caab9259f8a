// Package optimize coordinates seeding, search and scoring into a single
// team-balancing entry point.
package optimize

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okian/huddle/internal/domain/balance"
	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/internal/domain/roster"
	"github.com/okian/huddle/internal/domain/search"
	"github.com/okian/huddle/internal/domain/seeding"
)

// Orchestrator validates a request, seeds candidate assignments, refines
// each through a search strategy and returns the best-scoring outcome.
// Strategies run sequentially, each on its own candidate copy; the shared
// roster snapshots are read-only throughout a run.
type Orchestrator struct {
	set *position.Set

	eval    *balance.Evaluator
	seeder  *seeding.Seeder
	anneal  *search.Annealer
	swap    *search.SwapSearch
	genetic *search.Genetic

	annealingEnabled bool
}

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithEvaluator replaces the default evaluator.
func WithEvaluator(e *balance.Evaluator) Option {
	return func(o *Orchestrator) {
		if e != nil {
			o.eval = e
		}
	}
}

// WithSeeder replaces the default seeder.
func WithSeeder(s *seeding.Seeder) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.seeder = s
		}
	}
}

// WithAnnealer replaces the default simulated-annealing engine.
func WithAnnealer(a *search.Annealer) Option {
	return func(o *Orchestrator) {
		if a != nil {
			o.anneal = a
		}
	}
}

// WithSwapSearch replaces the default targeted swap engine.
func WithSwapSearch(s *search.SwapSearch) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.swap = s
		}
	}
}

// WithGenetic replaces the default genetic engine.
func WithGenetic(g *search.Genetic) Option {
	return func(o *Orchestrator) {
		if g != nil {
			o.genetic = g
		}
	}
}

// WithAnnealing toggles the per-seed annealing pass. When disabled, the
// targeted swap search refines each seed instead.
func WithAnnealing(enabled bool) Option {
	return func(o *Orchestrator) {
		o.annealingEnabled = enabled
	}
}

// New creates an Orchestrator for the given position set with default
// engines.
func New(set *position.Set, opts ...Option) *Orchestrator {
	eval := balance.NewEvaluator()
	o := &Orchestrator{
		set:              set,
		eval:             eval,
		seeder:           seeding.NewSeeder(set),
		anneal:           search.NewAnnealer(eval),
		swap:             search.NewSwapSearch(eval),
		genetic:          search.NewGenetic(set, eval),
		annealingEnabled: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize assigns players to teamCount balanced teams under comp.
// Validation failures return before any search work; *CompositionError
// carries every shortage at once. Cancellation mid-search yields the best
// result found so far rather than an error.
func (o *Orchestrator) Optimize(ctx context.Context, comp position.Composition, teamCount int, players []*roster.Player) (*Result, error) {
	started := time.Now()

	validation, err := validateComposition(comp, teamCount, players, o.set)
	if err != nil {
		return nil, err
	}

	seeds := o.seeder.Seeds(players, comp, teamCount)

	// One refined result from the genetic engine over the whole seed
	// set, plus one local-search result per seed.
	results := make([]*balance.Candidate, 0, len(seeds)+1)
	if refined := o.genetic.Optimize(ctx, seeds, players, comp); refined != nil {
		results = append(results, refined)
	}
	for _, seed := range seeds {
		if o.annealingEnabled {
			results = append(results, o.anneal.Optimize(ctx, seed))
		} else {
			results = append(results, o.swap.Optimize(ctx, seed))
		}
	}

	winner := results[0]
	winnerScore := o.eval.Score(winner)
	for _, cand := range results[1:] {
		if score := o.eval.Score(cand); score < winnerScore {
			winner, winnerScore = cand, score
		}
	}

	res := buildResult(winner, players, winnerScore)
	res.Validation = validation
	res.Stats.RunID = uuid.NewString()
	res.Stats.SeedsEvaluated = len(seeds)
	res.Stats.Elapsed = time.Since(started)
	return res, nil
}
