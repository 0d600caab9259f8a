package rating

import (
	"context"
	"fmt"

	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/internal/domain/roster"
)

// Update reports the post-update rating state for one player at one
// position, so callers can fan results out (standings, logs) without
// re-reading the roster.
type Update struct {
	PlayerID string
	Position position.Position
	Rating   float64
	Delta    float64
}

// Store applies pairwise outcomes to the roster's rating state. All
// mutation goes through roster.Update, which serializes writers.
type Store struct {
	roster *roster.Roster
	engine *Engine
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithEngine replaces the default Elo engine.
func WithEngine(e *Engine) Option {
	return func(s *Store) {
		if e != nil {
			s.engine = e
		}
	}
}

// NewStore creates a rating store bound to a roster.
func NewStore(r *roster.Roster, opts ...Option) *Store {
	s := &Store{
		roster: r,
		engine: NewEngine(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine exposes the underlying Elo parameters.
func (s *Store) Engine() *Engine { return s.engine }

// ApplyResult records a decisive outcome between two players at pos. Both
// players must declare pos. Ratings move by the zero-sum Elo exchange,
// comparison counters increment, and each player enters the other's
// coverage set for pos. Repeating a pairing is allowed and moves ratings
// again; only the coverage set is idempotent.
func (s *Store) ApplyResult(ctx context.Context, winnerID, loserID string, pos position.Position) ([]Update, error) {
	if winnerID == loserID {
		return nil, ErrSamePlayer
	}
	var updates []Update
	err := s.roster.Update(ctx, []string{winnerID, loserID}, func(players map[string]*roster.Player) error {
		winner, loser := players[winnerID], players[loserID]
		if err := declareBoth(winner, loser, pos); err != nil {
			return err
		}
		delta := s.engine.Exchange(winner.Ratings[pos], loser.Ratings[pos])
		winner.Ratings[pos] += delta
		loser.Ratings[pos] -= delta
		recordCoverage(winner, loser, pos)
		updates = []Update{
			{PlayerID: winner.ID, Position: pos, Rating: winner.Ratings[pos], Delta: delta},
			{PlayerID: loser.ID, Position: pos, Rating: loser.Ratings[pos], Delta: -delta},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updates, nil
}

// ApplyDraw records a drawn outcome: neither rating moves, but both
// comparison counters and coverage sets update. A draw therefore consumes
// pairing coverage without contributing ranking information; that is the
// intended trade-off (draw means "equal skill"), not an oversight.
func (s *Store) ApplyDraw(ctx context.Context, aID, bID string, pos position.Position) ([]Update, error) {
	if aID == bID {
		return nil, ErrSamePlayer
	}
	var updates []Update
	err := s.roster.Update(ctx, []string{aID, bID}, func(players map[string]*roster.Player) error {
		a, b := players[aID], players[bID]
		if err := declareBoth(a, b, pos); err != nil {
			return err
		}
		recordCoverage(a, b, pos)
		updates = []Update{
			{PlayerID: a.ID, Position: pos, Rating: a.Ratings[pos], Delta: 0},
			{PlayerID: b.ID, Position: pos, Rating: b.Ratings[pos], Delta: 0},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updates, nil
}

// Reset restores the player's rating state for the given positions (all
// declared positions when none are given): rating back to the initial
// value, comparison counter to zero, coverage cleared, and the player's id
// removed from every other player's coverage at those positions.
func (s *Store) Reset(ctx context.Context, playerID string, positions ...position.Position) ([]Update, error) {
	var updates []Update
	err := s.roster.UpdateAll(ctx, func(players map[string]*roster.Player) error {
		p, ok := players[playerID]
		if !ok {
			return roster.ErrNotFound
		}
		targets := positions
		if len(targets) == 0 {
			targets = p.Positions
		}
		for _, pos := range targets {
			if !p.HasPosition(pos) {
				return fmt.Errorf("%w: player %q, position %q", ErrUnknownPosition, p.ID, pos)
			}
		}
		for _, pos := range targets {
			p.Ratings[pos] = s.engine.InitialRating()
			p.Comparisons[pos] = 0
			p.ComparedWith[pos] = make(map[string]struct{})
			updates = append(updates, Update{PlayerID: p.ID, Position: pos, Rating: p.Ratings[pos]})
			for _, other := range players {
				if other.ID == p.ID {
					continue
				}
				if covered, ok := other.ComparedWith[pos]; ok {
					delete(covered, p.ID)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updates, nil
}

func declareBoth(a, b *roster.Player, pos position.Position) error {
	if !a.HasPosition(pos) {
		return fmt.Errorf("%w: player %q, position %q", ErrUnknownPosition, a.ID, pos)
	}
	if !b.HasPosition(pos) {
		return fmt.Errorf("%w: player %q, position %q", ErrUnknownPosition, b.ID, pos)
	}
	return nil
}

func recordCoverage(a, b *roster.Player, pos position.Position) {
	a.Comparisons[pos]++
	b.Comparisons[pos]++
	a.ComparedWith[pos][b.ID] = struct{}{}
	b.ComparedWith[pos][a.ID] = struct{}{}
}
