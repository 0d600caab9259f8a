package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/okian/huddle/internal/domain/model"
)

func judgment(id string) model.Judgment {
	return model.Judgment{
		JudgmentID: id,
		WinnerID:   "winner-" + id,
		LoserID:    "loser-" + id,
		Position:   "S",
		TS:         time.Now(),
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, judgment("j1")) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	out := q.Dequeue(ctx)
	j := <-out
	if j.JudgmentID != "j1" {
		t.Errorf("expected j1, got %v", j.JudgmentID)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Backpressure(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, judgment("j1")) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, judgment("j2")) {
		t.Error("expected enqueue to succeed")
	}

	// Full queue must reject rather than block.
	if q.Enqueue(ctx, judgment("j3")) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()
	numGoroutines := 10
	perGoroutine := 100

	done := make(chan bool, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			for j := 0; j < perGoroutine; j++ {
				item := judgment(fmt.Sprintf("j%d_%d", id, j))
				for !q.Enqueue(ctx, item) {
					time.Sleep(time.Millisecond)
				}
			}
			done <- true
		}(i)
	}

	consumed := make(chan string, numGoroutines*perGoroutine)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			for j := range q.Dequeue(ctx) {
				consumed <- j.JudgmentID
			}
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	time.Sleep(100 * time.Millisecond)

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected final length 0, got %d", l)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, judgment("j1")) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, judgment("j2")) {
		t.Error("expected enqueue to succeed")
	}

	if err := q.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}

	// Closing twice is a no-op.
	if err := q.Close(); err != nil {
		t.Errorf("unexpected error on second close: %v", err)
	}

	// No new judgments after close.
	if q.Enqueue(ctx, judgment("j3")) {
		t.Error("expected enqueue to fail after close")
	}

	// Already-queued judgments still drain, then the channel closes.
	out := q.Dequeue(ctx)
	got := map[string]bool{}
	for j := range out {
		got[j.JudgmentID] = true
	}
	if !got["j1"] || !got["j2"] {
		t.Errorf("expected queued judgments to drain, got %v", got)
	}
}

func TestInMemoryQueue_ContextCancellation(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx, cancel := context.WithCancel(context.Background())

	if !q.Enqueue(ctx, judgment("j1")) {
		t.Error("expected enqueue to succeed")
	}

	out := q.Dequeue(ctx)
	if j := <-out; j.JudgmentID != "j1" {
		t.Errorf("expected j1, got %v", j.JudgmentID)
	}

	cancel()

	// The consumer goroutine should wind down once the context ends.
	if !q.Enqueue(context.Background(), judgment("j2")) {
		t.Error("expected enqueue to succeed")
	}
	select {
	case <-out:
		// A final in-flight delivery before shutdown is acceptable.
	case <-time.After(200 * time.Millisecond):
	}
}

func TestInMemoryQueue_DefaultCapacity(t *testing.T) {
	q := NewInMemoryQueue()
	if q.capacity != defaultQueueCapacity {
		t.Errorf("expected default capacity %d, got %d", defaultQueueCapacity, q.capacity)
	}
}
