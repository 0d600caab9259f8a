package repository

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/pkg/metrics"
)

// Treap-based, in-memory Store implementation with one treap per position.
//
// Ordering: score DESC, then playerID ASC (deterministic). We implement a
// BST comparator where "less" means ranks earlier (i.e., higher score ranks
// earlier). This makes in-order traversal produce the standings from best
// to worst.

// scoreScale controls fixed-point scaling from float64. Ratings live in a
// narrow band around 1500, so six decimal places is plenty.
const scoreScale = 1_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	if math.IsNaN(x) {
		return 0
	}
	scaled := x * scoreScale
	if scaled > float64(math.MaxInt64) {
		return scoreFP(math.MaxInt64)
	}
	if scaled < float64(math.MinInt64) {
		return scoreFP(math.MinInt64)
	}
	return scoreFP(math.Round(scaled))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

// treap node
type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) should appear before (bScore, bID)
// in the standings (higher ranks first).
func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore // higher score ranks earlier
	}
	return aID < bID // tie-breaker by id asc
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// scoreToPriority converts a score to a priority value. Higher scores get
// higher priorities to keep them near the treap root.
func scoreToPriority(score scoreFP) uint64 {
	const offset = uint64(1) << 63 // make all values positive
	return uint64(score) + offset
}

func insert(n *node, id string, score scoreFP) *node {
	if n == nil {
		return &node{id: id, score: score, prio: scoreToPriority(score), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		// Merge children by rotating highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = deleteNode(n.left, id, score)
	} else {
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// rankOf returns the 1-based in-order index of (score, id), or 0 when absent.
func rankOf(n *node, id string, score scoreFP) int {
	rank := 1
	for n != nil {
		switch {
		case score == n.score && id == n.id:
			return rank + nsize(n.left)
		case less(score, id, n.score, n.id):
			n = n.left
		default:
			rank += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// collectTopN appends up to limit entries in rank order (highest scores first).
func collectTopN(n *node, limit int, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, Entry{PlayerID: n.id, Score: toFloat(n.score)})
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// standing is one position's treap plus its id index.
type standing struct {
	root *node
	byID map[string]scoreFP
}

// TreapStore keeps an independent standings treap per position.
type TreapStore struct {
	mu        sync.RWMutex
	positions map[position.Position]*standing

	metricsUpdateInterval time.Duration

	// Background goroutine management
	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		positions:             make(map[position.Position]*standing),
		metricsUpdateInterval: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startMetricsUpdater(ctx)

	return s
}

// Close gracefully shuts down the background metrics goroutine.
func (s *TreapStore) Close() error {
	select {
	case <-s.stopChan:
		// Channel already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// standingFor returns the standing for pos, creating it when needed.
// Caller must hold the write lock.
func (s *TreapStore) standingFor(pos position.Position) *standing {
	st, ok := s.positions[pos]
	if !ok {
		st = &standing{byID: make(map[string]scoreFP)}
		s.positions[pos] = st
	}
	return st
}

// Upsert implements Store.Upsert with O(log n) expected time.
func (s *TreapStore) Upsert(ctx context.Context, pos position.Position, playerID string, score float64) error {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordRepositoryUpdateLatency(float64(latency))
	}()

	ns := toFixedPoint(score)

	s.mu.Lock()
	st := s.standingFor(pos)
	if old, ok := st.byID[playerID]; ok {
		if old == ns {
			s.mu.Unlock()
			return nil
		}
		st.root = deleteNode(st.root, playerID, old)
	}
	st.byID[playerID] = ns
	st.root = insert(st.root, playerID, ns)
	s.mu.Unlock()

	return nil
}

// Remove implements Store.Remove.
func (s *TreapStore) Remove(ctx context.Context, playerID string, positions ...position.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, pos := range positions {
		st, ok := s.positions[pos]
		if !ok {
			continue
		}
		if old, ok := st.byID[playerID]; ok {
			st.root = deleteNode(st.root, playerID, old)
			delete(st.byID, playerID)
		}
	}
	return nil
}

// Rank returns the current rank and score for a player in O(log n).
func (s *TreapStore) Rank(ctx context.Context, pos position.Position, playerID string) (Entry, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordRepositoryQueryLatency(float64(latency))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.positions[pos]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	score, ok := st.byID[playerID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}

	return Entry{
		Rank:     rankOf(st.root, playerID, score),
		PlayerID: playerID,
		Score:    toFloat(score),
	}, nil
}

// TopN returns the top N entries for a position ordered by score desc.
func (s *TreapStore) TopN(ctx context.Context, pos position.Position, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordRepositoryQueryLatency(float64(latency))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.positions[pos]
	if !ok {
		return []Entry{}, nil
	}

	out := make([]Entry, 0, n)
	collectTopN(st.root, n, &out)
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

// Count returns the number of players tracked at a position.
func (s *TreapStore) Count(ctx context.Context, pos position.Position) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.positions[pos]
	if !ok {
		return 0
	}
	return len(st.byID)
}

// startMetricsUpdater starts a background goroutine that updates repository metrics.
func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

// updateMetrics updates all repository-related metrics.
func (s *TreapStore) updateMetrics() {
	s.mu.RLock()
	total := 0
	perPosition := make(map[string]int, len(s.positions))
	for pos, st := range s.positions {
		total += len(st.byID)
		perPosition[string(pos)] = len(st.byID)
	}
	s.mu.RUnlock()

	metrics.UpdateRepositoryRecordsTotal(total)
	for pos, count := range perPosition {
		metrics.UpdateRepositoryRecordsPerPosition(pos, count)
	}
}
