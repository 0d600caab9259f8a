// Package position models the closed set of playing positions an activity
// defines, plus the per-team composition requirements expressed over them.
package position

import (
	"fmt"
	"sort"
	"strings"
)

// Position is a short position code, e.g. "S" or "OH". Codes are only
// meaningful relative to the Set they were registered with; free-form
// strings are rejected at the boundary.
type Position string

// Definition declares one position of an activity configuration.
type Definition struct {
	Code string `koanf:"code" json:"code"`
	Name string `koanf:"name" json:"name"`
}

// Set is the closed, ordered collection of positions for one activity.
// The zero value is unusable; construct via NewSet.
type Set struct {
	ordered []Position
	names   map[Position]string
}

// NewSet builds a Set from definitions, preserving order.
func NewSet(defs []Definition) (*Set, error) {
	if len(defs) == 0 {
		return nil, ErrEmptySet
	}
	s := &Set{
		ordered: make([]Position, 0, len(defs)),
		names:   make(map[Position]string, len(defs)),
	}
	for _, d := range defs {
		code := Position(strings.ToUpper(strings.TrimSpace(d.Code)))
		if code == "" {
			return nil, fmt.Errorf("%w: empty code", ErrInvalidDefinition)
		}
		if _, dup := s.names[code]; dup {
			return nil, fmt.Errorf("%w: duplicate code %q", ErrInvalidDefinition, code)
		}
		name := strings.TrimSpace(d.Name)
		if name == "" {
			name = string(code)
		}
		s.ordered = append(s.ordered, code)
		s.names[code] = name
	}
	return s, nil
}

// VolleyballDefinitions returns the default volleyball position
// definitions, suitable as a configuration default.
func VolleyballDefinitions() []Definition {
	return []Definition{
		{Code: "S", Name: "Setter"},
		{Code: "OPP", Name: "Opposite"},
		{Code: "OH", Name: "Outside Hitter"},
		{Code: "MB", Name: "Middle Blocker"},
		{Code: "L", Name: "Libero"},
	}
}

// Volleyball returns the default six-a-side volleyball position set.
func Volleyball() *Set {
	s, _ := NewSet(VolleyballDefinitions())
	return s
}

// Contains reports whether p belongs to the set.
func (s *Set) Contains(p Position) bool {
	_, ok := s.names[p]
	return ok
}

// Display returns the human name for p, or the code itself when unknown.
func (s *Set) Display(p Position) string {
	if name, ok := s.names[p]; ok {
		return name
	}
	return string(p)
}

// All returns the positions in registration order. The returned slice is a
// copy and safe to mutate.
func (s *Set) All() []Position {
	out := make([]Position, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Len returns the number of positions in the set.
func (s *Set) Len() int { return len(s.ordered) }

// Normalize validates and canonicalizes a raw position code against the set.
func (s *Set) Normalize(raw string) (Position, error) {
	p := Position(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Contains(p) {
		return "", fmt.Errorf("%w: %q", ErrUnknownPosition, raw)
	}
	return p, nil
}

// Composition maps a position to the required headcount per team.
type Composition map[Position]int

// TeamSize returns the number of players a single team needs.
func (c Composition) TeamSize() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Positions returns the positions with a non-zero requirement, ordered by
// the given set (stable output regardless of map iteration order).
func (c Composition) Positions(set *Set) []Position {
	out := make([]Position, 0, len(c))
	for _, p := range set.All() {
		if c[p] > 0 {
			out = append(out, p)
		}
	}
	// Requirements outside the set should have been rejected at the
	// boundary; keep them visible (sorted) rather than silently dropped.
	var extra []Position
	for p, n := range c {
		if n > 0 && !set.Contains(p) {
			extra = append(extra, p)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// Validate checks that every requested position belongs to the set and no
// headcount is negative.
func (c Composition) Validate(set *Set) error {
	for p, n := range c {
		if n < 0 {
			return fmt.Errorf("%w: negative headcount for %q", ErrInvalidComposition, p)
		}
		if !set.Contains(p) {
			return fmt.Errorf("%w: %q", ErrUnknownPosition, p)
		}
	}
	if c.TeamSize() == 0 {
		return fmt.Errorf("%w: empty composition", ErrInvalidComposition)
	}
	return nil
}
