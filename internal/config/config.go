// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"

	"github.com/okian/huddle/internal/domain/position"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory judgment queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of rating workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the judgment deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxStandingsLimit caps GET /standings?limit.
	MaxStandingsLimit int `koanf:"max_standings_limit"`

	// Positions declares the closed position set for the activity.
	Positions []position.Definition `koanf:"positions"`

	// KFactor and InitialRating tune the Elo exchange.
	KFactor       float64 `koanf:"k_factor"`
	InitialRating float64 `koanf:"initial_rating"`

	// AnnealingEnabled selects simulated annealing as the per-seed
	// refinement; when false the targeted swap search runs instead.
	AnnealingEnabled bool `koanf:"annealing_enabled"`

	// AnnealingIterations, InitialTemperature and CoolingRate tune the
	// annealing schedule.
	AnnealingIterations int     `koanf:"annealing_iterations"`
	InitialTemperature  float64 `koanf:"initial_temperature"`
	CoolingRate         float64 `koanf:"cooling_rate"`

	// OffPositionPenalty and VarianceWeight tune the balance evaluator.
	OffPositionPenalty float64 `koanf:"off_position_penalty"`
	VarianceWeight     float64 `koanf:"variance_weight"`
}

// New creates a Config using defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		QueueSize:           100_000,
		WorkerCount:         runtime.NumCPU() * 4,
		DedupeSize:          500_000,
		MaxStandingsLimit:   100,
		Positions:           position.VolleyballDefinitions(),
		KFactor:             30,
		InitialRating:       1500,
		AnnealingEnabled:    true,
		AnnealingIterations: 50_000,
		InitialTemperature:  1000,
		CoolingRate:         0.995,
		OffPositionPenalty:  50,
		VarianceWeight:      0.5,
	}
	return c
}
