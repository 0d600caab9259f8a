// Package queue defines the contract for enqueuing and consuming
// judgments awaiting rating application.
package queue

import (
	"context"
	"sync"

	"github.com/okian/huddle/internal/domain/model"
	"github.com/okian/huddle/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 100_000
)

// Judgment is the payload type flowing through the queue.
type Judgment = model.Judgment

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a judgment to the queue.
	// Returns false if the queue is full and the judgment was not enqueued.
	Enqueue(ctx context.Context, j Judgment) bool

	// Dequeue returns a channel that receives judgments as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Judgment

	// Len returns the current number of queued judgments.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new
	// judgments can be enqueued and the dequeue channel will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	judgments chan Judgment
	capacity  int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.judgments = make(chan Judgment, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a judgment to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Judgment) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return false
	}

	select {
	case q.judgments <- j:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.judgments))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError("context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		return false
	}
}

// Dequeue returns a channel that receives judgments as they become
// available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Judgment {
	out := make(chan Judgment)
	go func() {
		defer close(out)
		for j := range q.judgments {
			select {
			case out <- j:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.judgments))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued judgments.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return len(q.judgments)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.judgments)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
