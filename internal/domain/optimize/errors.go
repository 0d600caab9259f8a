package optimize

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for optimization errors.
var (
	ErrTeamCount = errors.New("team count must be at least 2")
	ErrNoPlayers = errors.New("no players supplied")
)

// Shortage describes one position where the requested composition exceeds
// the available roster.
type Shortage struct {
	Position  string `json:"position"`
	Display   string `json:"display"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
	Missing   int    `json:"missing"`
}

// CompositionError reports every position shortage at once. It is raised
// before any search work begins; a failed validation never returns a
// partial assignment.
type CompositionError struct {
	Shortages []Shortage
}

// Error implements error.
func (e *CompositionError) Error() string {
	parts := make([]string, len(e.Shortages))
	for i, s := range e.Shortages {
		parts[i] = fmt.Sprintf("%s: need %d, have %d (short %d)", s.Display, s.Required, s.Available, s.Missing)
	}
	return "composition exceeds roster: " + strings.Join(parts, "; ")
}

// AsCompositionError unwraps err into a *CompositionError when possible.
func AsCompositionError(err error) (*CompositionError, bool) {
	var ce *CompositionError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
