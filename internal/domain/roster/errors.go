package roster

import "errors"

// Sentinel kinds for roster errors.
var (
	ErrMissingID        = errors.New("player id is required")
	ErrNoPositions      = errors.New("player declares no positions")
	ErrTooManyPositions = errors.New("too many declared positions")
	ErrNotFound         = errors.New("player not found")
	ErrDuplicateID      = errors.New("player id already registered")
)
