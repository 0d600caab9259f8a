package roster

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/huddle/internal/domain/position"
)

// Roster is the mutex-guarded in-memory player collection. Creation and
// removal belong to the hosting layer; rating state inside players mutates
// only through the rating store, which serializes access via Update.
type Roster struct {
	mu      sync.RWMutex
	players map[string]*Player
}

// New creates an empty roster.
func New() *Roster {
	return &Roster{players: make(map[string]*Player)}
}

// Add registers a player. The roster takes ownership of p.
func (r *Roster) Add(ctx context.Context, p *Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.players[p.ID]; exists {
		return ErrDuplicateID
	}
	r.players[p.ID] = p
	return nil
}

// Remove deletes a player and scrubs their id from every other player's
// comparison coverage so pair selection never references a ghost.
func (r *Roster) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.players[id]; !exists {
		return ErrNotFound
	}
	delete(r.players, id)
	for _, other := range r.players {
		for pos := range other.ComparedWith {
			delete(other.ComparedWith[pos], id)
		}
	}
	return nil
}

// Get returns a snapshot copy of one player.
func (r *Roster) Get(ctx context.Context, id string) (*Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// List returns snapshot copies of all players ordered by id.
func (r *Roster) List(ctx context.Context) []*Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListByPosition returns snapshot copies of the players declaring pos,
// ordered by id.
func (r *Roster) ListByPosition(ctx context.Context, pos position.Position) []*Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if p.HasPosition(pos) {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered players.
func (r *Roster) Len(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// Update runs fn with exclusive access to the live player records named by
// ids. Missing ids abort with ErrNotFound before fn runs. This is the only
// mutation path the rating store uses.
func (r *Roster) Update(ctx context.Context, ids []string, fn func(players map[string]*Player) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	selected := make(map[string]*Player, len(ids))
	for _, id := range ids {
		p, ok := r.players[id]
		if !ok {
			return ErrNotFound
		}
		selected[id] = p
	}
	return fn(selected)
}

// UpdateAll runs fn with exclusive access to every live player record.
func (r *Roster) UpdateAll(ctx context.Context, fn func(players map[string]*Player) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.players)
}
