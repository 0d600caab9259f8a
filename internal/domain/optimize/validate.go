package optimize

import (
	"fmt"

	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/internal/domain/roster"
)

// Validation carries the non-fatal findings of the composition check.
type Validation struct {
	Warnings []string `json:"warnings"`
}

// validateComposition checks that every position's requested headcount can
// be met by the roster (counting both primary and secondary declarers),
// and that the roster holds enough distinct players for the total slot
// count. The per-position checks alone miss the second condition: a
// multi-position player counts toward every position they declare but can
// only fill one slot. All shortages are collected before failing so the
// caller sees the whole picture at once. Warnings flag positions with no
// slack and positions that can only be filled by leaning on secondary
// declarers.
func validateComposition(comp position.Composition, teamCount int, players []*roster.Player, set *position.Set) (Validation, error) {
	var v Validation
	if err := comp.Validate(set); err != nil {
		return v, err
	}
	if teamCount < 2 {
		return v, ErrTeamCount
	}
	if len(players) == 0 {
		return v, ErrNoPlayers
	}

	var shortages []Shortage
	for _, pos := range comp.Positions(set) {
		needed := comp[pos] * teamCount
		primary, total := 0, 0
		for _, p := range players {
			if !p.HasPosition(pos) {
				continue
			}
			total++
			if p.Primary() == pos {
				primary++
			}
		}
		switch {
		case total < needed:
			shortages = append(shortages, Shortage{
				Position:  string(pos),
				Display:   set.Display(pos),
				Required:  needed,
				Available: total,
				Missing:   needed - total,
			})
		case total == needed:
			v.Warnings = append(v.Warnings, fmt.Sprintf("%s: exact match, no substitutes available", set.Display(pos)))
		}
		if total >= needed && primary < needed {
			v.Warnings = append(v.Warnings, fmt.Sprintf("%s: relying on %d secondary-position player(s)", set.Display(pos), needed-primary))
		}
	}
	if totalSlots := comp.TeamSize() * teamCount; len(players) < totalSlots {
		shortages = append(shortages, Shortage{
			Position:  "*",
			Display:   "roster",
			Required:  totalSlots,
			Available: len(players),
			Missing:   totalSlots - len(players),
		})
	}
	if len(shortages) > 0 {
		return v, &CompositionError{Shortages: shortages}
	}
	return v, nil
}
