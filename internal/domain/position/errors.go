package position

import "errors"

// Sentinel kinds for position errors.
var (
	ErrEmptySet           = errors.New("position set is empty")
	ErrInvalidDefinition  = errors.New("invalid position definition")
	ErrUnknownPosition    = errors.New("unknown position")
	ErrInvalidComposition = errors.New("invalid composition")
)
