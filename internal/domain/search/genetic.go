package search

import (
	"context"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/okian/huddle/internal/domain/balance"
	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/internal/domain/roster"
)

// Default genetic-algorithm parameters.
const (
	DefaultPopulationSize = 20
	DefaultGenerations    = 100
	DefaultEliteCount     = 5
	DefaultTournamentSize = 3
	DefaultCrossoverRate  = 0.8
	DefaultMutationRate   = 0.1
	DefaultGAYieldEvery   = 10

	maxMutationSwaps = 3
)

// Genetic evolves a population grown from the seed candidates. Selection
// is by tournament, crossover redistributes the per-position union of both
// parents round-robin (with repair so headcounts stay exact and no player
// doubles up), and mutation applies a few single swaps.
type Genetic struct {
	set *position.Set

	eval           *balance.Evaluator
	rng            *rand.Rand
	populationSize int
	generations    int
	eliteCount     int
	tournamentSize int
	crossoverRate  float64
	mutationRate   float64
	yieldEvery     int
}

// GeneticOption applies a configuration option to the Genetic engine.
type GeneticOption func(*Genetic)

// WithGeneticRand sets the random source, mainly for deterministic tests.
func WithGeneticRand(rng *rand.Rand) GeneticOption {
	return func(g *Genetic) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// WithPopulationSize sets the population size.
func WithPopulationSize(n int) GeneticOption {
	return func(g *Genetic) {
		if n > 1 {
			g.populationSize = n
		}
	}
}

// WithGenerations sets the generation count.
func WithGenerations(n int) GeneticOption {
	return func(g *Genetic) {
		if n > 0 {
			g.generations = n
		}
	}
}

// WithEliteCount sets how many fittest individuals survive unchanged.
func WithEliteCount(n int) GeneticOption {
	return func(g *Genetic) {
		if n >= 0 {
			g.eliteCount = n
		}
	}
}

// WithTournamentSize sets the tournament sample size.
func WithTournamentSize(n int) GeneticOption {
	return func(g *Genetic) {
		if n > 0 {
			g.tournamentSize = n
		}
	}
}

// WithCrossoverRate sets the crossover probability.
func WithCrossoverRate(r float64) GeneticOption {
	return func(g *Genetic) {
		if r >= 0 && r <= 1 {
			g.crossoverRate = r
		}
	}
}

// WithMutationRate sets the mutation probability.
func WithMutationRate(r float64) GeneticOption {
	return func(g *Genetic) {
		if r >= 0 && r <= 1 {
			g.mutationRate = r
		}
	}
}

// WithGAYieldEvery sets how many generations run between suspension points.
func WithGAYieldEvery(n int) GeneticOption {
	return func(g *Genetic) {
		if n > 0 {
			g.yieldEvery = n
		}
	}
}

// NewGenetic creates a Genetic engine with default parameters.
func NewGenetic(set *position.Set, eval *balance.Evaluator, opts ...GeneticOption) *Genetic {
	g := &Genetic{
		set:            set,
		eval:           eval,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // stochastic search, not crypto
		populationSize: DefaultPopulationSize,
		generations:    DefaultGenerations,
		eliteCount:     DefaultEliteCount,
		tournamentSize: DefaultTournamentSize,
		crossoverRate:  DefaultCrossoverRate,
		mutationRate:   DefaultMutationRate,
		yieldEvery:     DefaultGAYieldEvery,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type individual struct {
	cand  *balance.Candidate
	score float64
}

// Optimize evolves the seeds and returns the lowest-scored individual from
// the final population. pool is the full eligible roster, used to repair
// offspring after crossover. Cancellation returns the current best.
func (g *Genetic) Optimize(ctx context.Context, seeds []*balance.Candidate, pool []*roster.Player, comp position.Composition) *balance.Candidate {
	if len(seeds) == 0 {
		return nil
	}

	population := g.initialPopulation(seeds)
	for gen := 0; gen < g.generations; gen++ {
		if gen > 0 && gen%g.yieldEvery == 0 {
			select {
			case <-ctx.Done():
				return g.fittest(population).cand
			default:
				runtime.Gosched()
			}
		}
		population = g.nextGeneration(population, pool, comp)
	}
	return g.fittest(population).cand
}

// initialPopulation clones the seeds and pads with lightly mutated copies
// of randomly chosen seeds up to the population size.
func (g *Genetic) initialPopulation(seeds []*balance.Candidate) []individual {
	population := make([]individual, 0, g.populationSize)
	for _, s := range seeds {
		if len(population) == g.populationSize {
			break
		}
		population = append(population, g.score(s.Clone()))
	}
	for len(population) < g.populationSize {
		mutant := seeds[g.rng.Intn(len(seeds))].Clone()
		mutate(g.rng, mutant, maxMutationSwaps)
		population = append(population, g.score(mutant))
	}
	return population
}

func (g *Genetic) nextGeneration(population []individual, pool []*roster.Player, comp position.Composition) []individual {
	// Fitness is 1/(1+score); sorting ascending by score is the same
	// ordering and avoids the division.
	sort.SliceStable(population, func(i, j int) bool { return population[i].score < population[j].score })

	next := make([]individual, 0, g.populationSize)
	for i := 0; i < g.eliteCount && i < len(population); i++ {
		next = append(next, g.score(population[i].cand.Clone()))
	}
	for len(next) < g.populationSize {
		p1 := g.tournament(population)
		p2 := g.tournament(population)
		var child *balance.Candidate
		if g.rng.Float64() < g.crossoverRate {
			child = g.crossover(p1.cand, p2.cand, pool, comp)
		} else {
			child = p1.cand.Clone()
		}
		if g.rng.Float64() < g.mutationRate {
			mutate(g.rng, child, maxMutationSwaps)
		}
		next = append(next, g.score(child))
	}
	return next
}

// tournament samples tournamentSize random individuals and keeps the
// fittest.
func (g *Genetic) tournament(population []individual) individual {
	winner := population[g.rng.Intn(len(population))]
	for i := 1; i < g.tournamentSize; i++ {
		contender := population[g.rng.Intn(len(population))]
		if contender.score < winner.score {
			winner = contender
		}
	}
	return winner
}

// crossover redistributes, per position, the de-duplicated union of both
// parents' players at that position round-robin across teams, then repairs
// any shortfall from the pool so headcounts come out exact and no player
// appears twice.
func (g *Genetic) crossover(p1, p2 *balance.Candidate, pool []*roster.Player, comp position.Composition) *balance.Candidate {
	teamCount := len(p1.Teams)
	child := balance.NewCandidate(teamCount)
	used := make(map[string]struct{})

	for _, pos := range comp.Positions(g.set) {
		union := playersAt(p1, pos)
		union = append(union, playersAt(p2, pos)...)

		team := 0
		for _, p := range union {
			if _, taken := used[p.ID]; taken {
				continue
			}
			slot, ok := openTeamFrom(child, comp, pos, team)
			if !ok {
				break
			}
			child.Teams[slot].Slots = append(child.Teams[slot].Slots, balance.Assignment{Player: p, Position: pos})
			used[p.ID] = struct{}{}
			team = (slot + 1) % teamCount
		}
	}
	g.repair(child, pool, comp)
	return child
}

// repair fills remaining open slots from the pool: declarers first, then
// anyone unused.
func (g *Genetic) repair(c *balance.Candidate, pool []*roster.Player, comp position.Composition) {
	used := c.PlayerIDs()
	for _, pos := range comp.Positions(g.set) {
		for team := range c.Teams {
			for c.Teams[team].CountAt(pos) < comp[pos] {
				pick := pickUnused(pool, used, pos, true)
				if pick == nil {
					pick = pickUnused(pool, used, pos, false)
				}
				if pick == nil {
					return
				}
				c.Teams[team].Slots = append(c.Teams[team].Slots, balance.Assignment{Player: pick, Position: pos})
				used[pick.ID] = struct{}{}
			}
		}
	}
}

func (g *Genetic) score(c *balance.Candidate) individual {
	return individual{cand: c, score: g.eval.Score(c)}
}

func (g *Genetic) fittest(population []individual) individual {
	best := population[0]
	for _, ind := range population[1:] {
		if ind.score < best.score {
			best = ind
		}
	}
	return best
}

func playersAt(c *balance.Candidate, pos position.Position) []*roster.Player {
	var out []*roster.Player
	for team := range c.Teams {
		for _, slot := range c.Teams[team].Slots {
			if slot.Position == pos {
				out = append(out, slot.Player)
			}
		}
	}
	return out
}

// openTeamFrom returns the first team at or after start with an open slot
// at pos, wrapping around once.
func openTeamFrom(c *balance.Candidate, comp position.Composition, pos position.Position, start int) (int, bool) {
	n := len(c.Teams)
	for off := 0; off < n; off++ {
		team := (start + off) % n
		if c.Teams[team].CountAt(pos) < comp[pos] {
			return team, true
		}
	}
	return 0, false
}

func pickUnused(pool []*roster.Player, used map[string]struct{}, pos position.Position, declaredOnly bool) *roster.Player {
	var best *roster.Player
	for _, p := range pool {
		if _, taken := used[p.ID]; taken {
			continue
		}
		if declaredOnly && !p.HasPosition(pos) {
			continue
		}
		if best == nil || p.Rating(pos) > best.Rating(pos) {
			best = p
		}
	}
	return best
}
