// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	judgmentqueue "github.com/okian/huddle/internal/adapters/mq/queue"
	workerpool "github.com/okian/huddle/internal/adapters/mq/worker"
	"github.com/okian/huddle/internal/adapters/repository"
	"github.com/okian/huddle/internal/domain/balance"
	"github.com/okian/huddle/internal/domain/dedupe"
	"github.com/okian/huddle/internal/domain/model"
	"github.com/okian/huddle/internal/domain/optimize"
	"github.com/okian/huddle/internal/domain/pairing"
	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/internal/domain/rating"
	"github.com/okian/huddle/internal/domain/roster"
	"github.com/okian/huddle/internal/domain/search"
	"github.com/okian/huddle/internal/domain/seeding"
	"github.com/okian/huddle/pkg/logger"
	"github.com/okian/huddle/pkg/metrics"
)

// Service implements the API dependencies for the team-balancing system.
type Service struct {
	mu sync.RWMutex

	// Core components
	set          *position.Set
	players      *roster.Roster
	ratings      *rating.Store
	selector     *pairing.Selector
	orchestrator *optimize.Orchestrator
	standings    repository.Store
	deduper      dedupe.Deduper
	queue        judgmentqueue.Queue
	workerPool   *workerpool.Pool

	// Configuration
	workerCount         int
	queueSize           int
	dedupeSize          int
	kFactor             float64
	initialRating       float64
	annealingEnabled    bool
	annealingIterations int
	initialTemperature  float64
	coolingRate         float64
	offPositionPenalty  float64
	varianceWeight      float64

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPositionSet replaces the default position set.
func WithPositionSet(set *position.Set) Option {
	return func(s *Service) {
		if set != nil {
			s.set = set
		}
	}
}

// WithWorkerCount sets the number of rating worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the judgment queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRatingParams tunes the Elo exchange.
func WithRatingParams(kFactor, initialRating float64) Option {
	return func(s *Service) {
		if kFactor > 0 {
			s.kFactor = kFactor
		}
		if initialRating > 0 {
			s.initialRating = initialRating
		}
	}
}

// WithAnnealing toggles simulated annealing as the per-seed refinement.
func WithAnnealing(enabled bool) Option {
	return func(s *Service) {
		s.annealingEnabled = enabled
	}
}

// WithAnnealingSchedule tunes the annealing iteration budget and cooling.
func WithAnnealingSchedule(iterations int, initialTemp, coolingRate float64) Option {
	return func(s *Service) {
		if iterations > 0 {
			s.annealingIterations = iterations
		}
		if initialTemp > 0 {
			s.initialTemperature = initialTemp
		}
		if coolingRate > 0 && coolingRate < 1 {
			s.coolingRate = coolingRate
		}
	}
}

// WithEvaluatorWeights tunes the balance evaluator penalties.
func WithEvaluatorWeights(offPositionPenalty, varianceWeight float64) Option {
	return func(s *Service) {
		if offPositionPenalty > 0 {
			s.offPositionPenalty = offPositionPenalty
		}
		if varianceWeight > 0 {
			s.varianceWeight = varianceWeight
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		set:                 position.Volleyball(),
		workerCount:         runtime.NumCPU() * 2,
		queueSize:           100_000,
		dedupeSize:          50_000,
		kFactor:             30,
		initialRating:       1500,
		annealingEnabled:    true,
		annealingIterations: search.DefaultIterations,
		initialTemperature:  search.DefaultInitialTemp,
		coolingRate:         search.DefaultCoolingRate,
		offPositionPenalty:  balance.DefaultOffPrimaryPenalty,
		varianceWeight:      balance.DefaultVarianceWeight,
		stopCh:              make(chan struct{}),
		logger:              nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting team-balancing service...")

	// Initialize components
	s.players = roster.New()
	engine := rating.NewEngine(
		rating.WithKFactor(s.kFactor),
		rating.WithInitialRating(s.initialRating),
	)
	s.ratings = rating.NewStore(s.players, rating.WithEngine(engine))
	s.selector = pairing.NewSelector(s.players)

	eval := balance.NewEvaluator(
		balance.WithOffPrimaryPenalty(s.offPositionPenalty),
		balance.WithVarianceWeight(s.varianceWeight),
	)
	s.orchestrator = optimize.New(s.set,
		optimize.WithEvaluator(eval),
		optimize.WithSeeder(seeding.NewSeeder(s.set)),
		optimize.WithAnnealer(search.NewAnnealer(eval,
			search.WithIterations(s.annealingIterations),
			search.WithInitialTemp(s.initialTemperature),
			search.WithCoolingRate(s.coolingRate),
		)),
		optimize.WithSwapSearch(search.NewSwapSearch(eval,
			search.WithSwapIterations(int(float64(s.annealingIterations)*search.DefaultSwapBudgetFraction)),
		)),
		optimize.WithGenetic(search.NewGenetic(s.set, eval)),
		optimize.WithAnnealing(s.annealingEnabled),
	)

	s.standings = repository.NewTreapStore(ctx)
	s.logger.Info(ctx, "using treap store")
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = judgmentqueue.NewInMemoryQueue(
		judgmentqueue.WithCapacity(s.queueSize),
	)

	// Create and start worker pool
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s.ratings, s.standings)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "team-balancing service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("positions", s.set.Len()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping team-balancing service...")

	// Stop worker pool
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	// Close standings store
	if s.standings != nil {
		if closer, ok := s.standings.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	// Close queue
	if q, ok := s.queue.(*judgmentqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "team-balancing service stopped")
}

// NormalizePosition validates a raw position code against the configured set.
func (s *Service) NormalizePosition(raw string) (position.Position, error) {
	return s.set.Normalize(raw)
}

// RegisterPlayer adds a player to the roster and seeds their standings.
func (s *Service) RegisterPlayer(ctx context.Context, rec roster.Record) (*roster.Player, error) {
	p, err := roster.FromRecord(rec, s.set)
	if err != nil {
		return nil, err
	}
	if s.initialRating != roster.DefaultRating {
		for _, pos := range p.Positions {
			p.Ratings[pos] = s.initialRating
		}
	}
	if err := s.players.Add(ctx, p); err != nil {
		return nil, err
	}
	for _, pos := range p.Positions {
		if err := s.standings.Upsert(ctx, pos, p.ID, p.Ratings[pos]); err != nil {
			s.logger.Warn(ctx, "failed to seed standings",
				logger.String("playerID", p.ID),
				logger.Error(err),
			)
		}
	}
	metrics.UpdateTotalPlayers(s.players.Len(ctx))
	return p.Clone(), nil
}

// ListPlayers returns a snapshot of the roster.
func (s *Service) ListPlayers(ctx context.Context) []*roster.Player {
	return s.players.List(ctx)
}

// RemovePlayer drops a player from the roster and the standings.
func (s *Service) RemovePlayer(ctx context.Context, id string) error {
	p, err := s.players.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.players.Remove(ctx, id); err != nil {
		return err
	}
	if err := s.standings.Remove(ctx, id, p.Positions...); err != nil {
		s.logger.Warn(ctx, "failed to remove from standings",
			logger.String("playerID", id),
			logger.Error(err),
		)
	}
	metrics.UpdateTotalPlayers(s.players.Len(ctx))
	return nil
}

// ResetPlayer restores a player's ratings to the initial value and wipes
// their comparison history.
func (s *Service) ResetPlayer(ctx context.Context, id string) error {
	updates, err := s.ratings.Reset(ctx, id)
	if err != nil {
		return err
	}
	for _, u := range updates {
		if err := s.standings.Upsert(ctx, u.Position, u.PlayerID, u.Rating); err != nil {
			s.logger.Warn(ctx, "failed to refresh standings after reset",
				logger.String("playerID", u.PlayerID),
				logger.Error(err),
			)
		}
	}
	return nil
}

// NextPair proposes the next comparison at a position. Returns nil when
// every pair has already been judged.
func (s *Service) NextPair(ctx context.Context, pos position.Position) (*pairing.Pair, error) {
	metrics.RecordPairRequest()
	pair := s.selector.NextPair(ctx, pos)
	if pair == nil {
		metrics.RecordPairingExhausted()
	}
	return pair, nil
}

// SeenAndRecord atomically checks if a judgment id was seen and records it
// if not. Returns true if the judgment was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordJudgmentDuplicate()
	}
	return seen
}

// Unrecord removes a judgment ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits a judgment for asynchronous processing.
func (s *Service) Enqueue(ctx context.Context, j model.Judgment) bool {
	ok := s.queue.Enqueue(ctx, j)
	if ok {
		metrics.UpdateQueueSize(s.queue.Len(ctx))
	}
	return ok
}

// Standings returns the top-n entries for a position.
func (s *Service) Standings(ctx context.Context, pos position.Position, n int) ([]repository.Entry, error) {
	return s.standings.TopN(ctx, pos, n)
}

// Optimize partitions the current roster into balanced teams.
func (s *Service) Optimize(ctx context.Context, comp position.Composition, teamCount int) (*optimize.Result, error) {
	start := time.Now()
	players := s.players.List(ctx)
	res, err := s.orchestrator.Optimize(ctx, comp, teamCount, players)
	if err != nil {
		return nil, err
	}

	metrics.RecordOptimizationRun()
	metrics.RecordOptimizationDuration(float64(time.Since(start).Milliseconds()))
	metrics.UpdateOptimizationBestScore(res.Stats.BalanceScore)
	metrics.RecordSeedsGenerated(res.Stats.SeedsEvaluated)

	s.logger.Info(ctx, "optimization finished",
		logger.String("runID", res.Stats.RunID),
		logger.Int("teams", res.Stats.TeamsUsed),
		logger.Int("players", res.Stats.PlayersUsed),
		logger.Float64("balanceScore", res.Stats.BalanceScore),
		logger.Duration("elapsed", res.Stats.Elapsed),
	)
	return res, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		totalPlayers := s.players.Len(ctx)

		stats["queueLength"] = queueLen
		stats["totalPlayers"] = totalPlayers

		perPosition := make(map[string]int, s.set.Len())
		for _, pos := range s.set.All() {
			perPosition[string(pos)] = s.standings.Count(ctx, pos)
		}
		stats["standings"] = perPosition

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalPlayers(totalPlayers)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
