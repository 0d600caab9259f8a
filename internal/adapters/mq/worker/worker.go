// Package worker defines worker contracts for asynchronous rating updates.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/huddle/internal/domain/model"
	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/internal/domain/rating"
	"github.com/okian/huddle/pkg/logger"
	"github.com/okian/huddle/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Judgment abstracts what workers read off the queue.
type Judgment = model.Judgment

// Rater applies judgment outcomes to the roster's ratings.
type Rater interface {
	ApplyResult(ctx context.Context, winnerID, loserID string, pos position.Position) ([]rating.Update, error)
	ApplyDraw(ctx context.Context, aID, bID string, pos position.Position) ([]rating.Update, error)
}

// Standings receives rating changes for ordered per-position views.
type Standings interface {
	Upsert(ctx context.Context, pos position.Position, playerID string, score float64) error
}

// Queue defines how workers receive judgments.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Judgment
}

// Worker processes judgments and writes rating updates using the provided
// interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining judgments before stopping.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing judgments.
type InMemoryWorker struct {
	queue     Queue
	rater     Rater
	standings Standings
	name      string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, rater Rater, standings Standings, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		rater:     rater,
		standings: standings,
		name:      "worker", // default name
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	judgments := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-judgments:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.processJudgment(ctx, j); err != nil {
				w.logger.Error(ctx, "error processing judgment", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJudgment handles a single judgment: the rating exchange first,
// then the standings refresh for every player whose rating moved.
func (w *InMemoryWorker) processJudgment(ctx context.Context, j Judgment) error {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	ratingStart := time.Now()
	var (
		updates []rating.Update
		err     error
	)
	if j.Draw {
		// Coverage only; no rating movement.
		updates, err = w.rater.ApplyDraw(ctx, j.WinnerID, j.LoserID, j.Position)
	} else {
		updates, err = w.rater.ApplyResult(ctx, j.WinnerID, j.LoserID, j.Position)
	}
	metrics.RecordRatingLatency(float64(time.Since(ratingStart).Milliseconds()))
	if err != nil {
		metrics.RecordRatingError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "rating_error")
		w.logger.Error(ctx, "rating exchange failed",
			logger.String("judgmentID", j.JudgmentID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to apply judgment %s: %w", j.JudgmentID, err)
	}

	for _, u := range updates {
		if err := w.standings.Upsert(ctx, u.Position, u.PlayerID, u.Rating); err != nil {
			metrics.RecordStandingsError()
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "standings_error")
			w.logger.Error(ctx, "standings update failed",
				logger.String("judgmentID", j.JudgmentID),
				logger.String("playerID", u.PlayerID),
				logger.Error(err),
			)
			return fmt.Errorf("standings update failed: %w", err)
		}
		metrics.RecordStandingsUpdate()
	}

	metrics.RecordJudgmentProcessed()
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	rater     Rater
	standings Standings

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Metrics tracking
	processedCount    int64
	lastProcessedTime time.Time

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, rater Rater, standings Standings) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		queue:             queue,
		rater:             rater,
		standings:         standings,
		shutdown:          make(chan struct{}),
		done:              make(chan struct{}),
		lastProcessedTime: time.Now(),
		logger:            logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			rater,
			standings,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerIdleCount(0)
	metrics.UpdateWorkerMessagesPerSecond(0.0)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}

	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater starts a background goroutine that updates worker metrics.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

// updateMetrics updates worker-related metrics.
func (p *Pool) updateMetrics() {
	now := time.Now()
	timeDiff := now.Sub(p.lastProcessedTime).Seconds()
	if timeDiff > 0 {
		messagesPerSecond := float64(p.processedCount) / timeDiff
		metrics.UpdateWorkerMessagesPerSecond(messagesPerSecond)
	}

	p.processedCount = 0
	p.lastProcessedTime = now
}

// RecordProcessedMessage increments the processed message count.
func (p *Pool) RecordProcessedMessage() {
	p.processedCount++
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, worker := range p.workers {
		select {
		case <-worker.done:
			// Worker finished
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new judgments
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
