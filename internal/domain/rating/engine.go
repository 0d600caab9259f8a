// Package rating implements incremental Elo updates from head-to-head
// outcomes, tracked per player per position.
package rating

import "math"

// Default Elo parameters.
const (
	DefaultKFactor       = 30.0
	DefaultInitialRating = 1500.0
	logisticBase         = 10.0
	logisticScale        = 400.0
)

// Engine holds the Elo curve parameters. It is stateless; all mutable
// state lives in the players themselves.
type Engine struct {
	k       float64
	initial float64
}

// EngineOption applies a configuration option to the Engine.
type EngineOption func(*Engine)

// WithKFactor sets the rating change sensitivity.
func WithKFactor(k float64) EngineOption {
	return func(e *Engine) {
		if k > 0 {
			e.k = k
		}
	}
}

// WithInitialRating sets the rating new and reset players carry.
func WithInitialRating(r float64) EngineOption {
	return func(e *Engine) {
		if r > 0 {
			e.initial = r
		}
	}
}

// NewEngine creates an Engine with default parameters.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		k:       DefaultKFactor,
		initial: DefaultInitialRating,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExpectedScore returns the probability the first rating beats the second
// under the logistic Elo model.
func (e *Engine) ExpectedScore(rating, opponent float64) float64 {
	return 1.0 / (1.0 + math.Pow(logisticBase, (opponent-rating)/logisticScale))
}

// Exchange returns the zero-sum rating delta for a decisive result: the
// winner gains it and the loser loses it.
func (e *Engine) Exchange(winnerRating, loserRating float64) float64 {
	return e.k * (1.0 - e.ExpectedScore(winnerRating, loserRating))
}

// InitialRating returns the configured starting rating.
func (e *Engine) InitialRating() float64 { return e.initial }

// KFactor returns the configured K.
func (e *Engine) KFactor() float64 { return e.k }
