// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/huddle/internal/domain/position"
)

// Judgment represents one head-to-head outcome submitted by clients.
// Fields mirror the JSON schema for /judgments. For a draw, WinnerID and
// LoserID are just "the two players"; no rating moves.
type Judgment struct {
	JudgmentID string            // unique id for idempotency
	WinnerID   string            // winning player (or first player on a draw)
	LoserID    string            // losing player (or second player on a draw)
	Position   position.Position // position the comparison was judged at
	Draw       bool              // equal-skill outcome: coverage only
	TS         time.Time         // submission timestamp
}
