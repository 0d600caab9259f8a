// Package repository defines the standings store interface and errors.
package repository

import (
	"context"

	"github.com/okian/huddle/internal/domain/position"
)

// Entry represents one standings row for a position.
type Entry struct {
	Rank     int
	PlayerID string
	Score    float64
}

// Store provides read/write access to per-position standings.
type Store interface {
	// Upsert sets the current score for a player at a position, replacing
	// any previous value. Ratings move in both directions, so this is not
	// a best-only update.
	Upsert(ctx context.Context, pos position.Position, playerID string, score float64) error

	// Remove drops a player from the standings of the given positions.
	// Unknown players are a no-op.
	Remove(ctx context.Context, playerID string, positions ...position.Position) error

	// Rank returns the current rank and score for a player at a position.
	// Returns ErrNotFound if the player has no standing there.
	Rank(ctx context.Context, pos position.Position, playerID string) (Entry, error)

	// TopN returns the top-N entries for a position ordered by score desc.
	TopN(ctx context.Context, pos position.Position, n int) ([]Entry, error)

	// Count returns the number of players tracked at a position.
	Count(ctx context.Context, pos position.Position) int
}
