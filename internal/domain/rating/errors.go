package rating

import "errors"

// Sentinel kinds for rating errors.
var (
	// ErrUnknownPosition means a rating update referenced a position the
	// player does not declare. This is a data error, not a retryable state.
	ErrUnknownPosition = errors.New("player does not declare position")
	ErrSamePlayer      = errors.New("a player cannot be compared with themselves")
)
