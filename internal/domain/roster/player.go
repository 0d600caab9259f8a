// Package roster contains the player model and the in-memory collection the
// rating and pairing engines operate on.
package roster

import (
	"fmt"

	"github.com/okian/huddle/internal/domain/position"
)

// DefaultRating is the rating every player starts with at every declared
// position.
const DefaultRating = 1500.0

// MaxPositions bounds how many positions a single player may declare.
const MaxPositions = 5

// Player carries identity plus per-position rating state. Positions is
// ordered; the first entry is the player's primary position. Every declared
// position has entries in Ratings, Comparisons and ComparedWith, and no
// other position carries state.
type Player struct {
	ID        string
	Name      string
	Positions []position.Position

	Ratings      map[position.Position]float64
	Comparisons  map[position.Position]int
	ComparedWith map[position.Position]map[string]struct{}
}

// Record is the loose shape collaborators hand us. Either Position (legacy
// single-position rosters) or Positions may be set; when both are present
// Positions wins.
type Record struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Position  string   `json:"position,omitempty"`
	Positions []string `json:"positions,omitempty"`
}

// NewPlayer builds a Player with fresh rating state. The first position is
// primary. Duplicate positions collapse to their first occurrence.
func NewPlayer(id, name string, positions ...position.Position) (*Player, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: player %q", ErrNoPositions, id)
	}
	p := &Player{
		ID:           id,
		Name:         name,
		Positions:    make([]position.Position, 0, len(positions)),
		Ratings:      make(map[position.Position]float64, len(positions)),
		Comparisons:  make(map[position.Position]int, len(positions)),
		ComparedWith: make(map[position.Position]map[string]struct{}, len(positions)),
	}
	for _, pos := range positions {
		if _, seen := p.Ratings[pos]; seen {
			continue
		}
		if len(p.Positions) == MaxPositions {
			return nil, fmt.Errorf("%w: player %q declares more than %d", ErrTooManyPositions, id, MaxPositions)
		}
		p.Positions = append(p.Positions, pos)
		p.Ratings[pos] = DefaultRating
		p.Comparisons[pos] = 0
		p.ComparedWith[pos] = make(map[string]struct{})
	}
	return p, nil
}

// FromRecord normalizes a collaborator-supplied record against the closed
// position set. A bare legacy Position becomes a one-element Positions list.
func FromRecord(rec Record, set *position.Set) (*Player, error) {
	raw := rec.Positions
	if len(raw) == 0 && rec.Position != "" {
		raw = []string{rec.Position}
	}
	positions := make([]position.Position, 0, len(raw))
	for _, r := range raw {
		pos, err := set.Normalize(r)
		if err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return NewPlayer(rec.ID, rec.Name, positions...)
}

// Primary returns the player's primary position.
func (p *Player) Primary() position.Position {
	return p.Positions[0]
}

// HasPosition reports whether the player declares pos.
func (p *Player) HasPosition(pos position.Position) bool {
	_, ok := p.Ratings[pos]
	return ok
}

// Rating returns the player's rating at pos, or the default when the
// position is not declared (callers that care should check HasPosition).
func (p *Player) Rating(pos position.Position) float64 {
	if r, ok := p.Ratings[pos]; ok {
		return r
	}
	return DefaultRating
}

// Clone returns a deep copy with no shared mutable state.
func (p *Player) Clone() *Player {
	c := &Player{
		ID:           p.ID,
		Name:         p.Name,
		Positions:    make([]position.Position, len(p.Positions)),
		Ratings:      make(map[position.Position]float64, len(p.Ratings)),
		Comparisons:  make(map[position.Position]int, len(p.Comparisons)),
		ComparedWith: make(map[position.Position]map[string]struct{}, len(p.ComparedWith)),
	}
	copy(c.Positions, p.Positions)
	for pos, r := range p.Ratings {
		c.Ratings[pos] = r
	}
	for pos, n := range p.Comparisons {
		c.Comparisons[pos] = n
	}
	for pos, set := range p.ComparedWith {
		dst := make(map[string]struct{}, len(set))
		for id := range set {
			dst[id] = struct{}{}
		}
		c.ComparedWith[pos] = dst
	}
	return c
}
