// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/huddle/internal/adapters/repository"
	"github.com/okian/huddle/internal/domain/dedupe"
	"github.com/okian/huddle/internal/domain/model"
	"github.com/okian/huddle/internal/domain/optimize"
	"github.com/okian/huddle/internal/domain/pairing"
	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/internal/domain/roster"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// NormalizePosition validates a raw position code against the
	// configured set.
	NormalizePosition(raw string) (position.Position, error)

	// Player management.
	RegisterPlayer(ctx context.Context, rec roster.Record) (*roster.Player, error)
	ListPlayers(ctx context.Context) []*roster.Player
	RemovePlayer(ctx context.Context, id string) error
	ResetPlayer(ctx context.Context, id string) error

	// NextPair proposes the next comparison at a position. Returns nil
	// when every pair has already been judged.
	NextPair(ctx context.Context, pos position.Position) (*pairing.Pair, error)

	// Enqueue pushes a judgment for async processing. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, j model.Judgment) bool

	// Standings exposes the ordered per-position view.
	Standings(ctx context.Context, pos position.Position, n int) ([]repository.Entry, error)

	// Optimize partitions the current roster into balanced teams.
	Optimize(ctx context.Context, comp position.Composition, teamCount int) (*optimize.Result, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	playersHandler   *PlayersHandler
	pairHandler      *PairHandler
	judgmentsHandler *JudgmentsHandler
	standingsHandler *StandingsHandler
	optimizeHandler  *OptimizeHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxStandingsLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		playersHandler:   NewPlayersHandler(deps),
		pairHandler:      NewPairHandler(deps),
		judgmentsHandler: NewJudgmentsHandler(deps),
		standingsHandler: NewStandingsHandler(deps, maxStandingsLimit),
		optimizeHandler:  NewOptimizeHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/players", MetricsMiddleware(s.playersHandler.HandlePlayers, "players"))
	mux.HandleFunc("/players/", MetricsMiddleware(s.playersHandler.HandlePlayerByID, "player"))
	mux.HandleFunc("/pair", MetricsMiddleware(s.pairHandler.HandleGetPair, "pair"))
	mux.HandleFunc("/judgments", MetricsMiddleware(s.judgmentsHandler.HandlePostJudgment, "judgments"))
	mux.HandleFunc("/standings", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))
	mux.HandleFunc("/optimize", MetricsMiddleware(s.optimizeHandler.HandlePostOptimize, "optimize"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	Shortages []optimize.Shortage `json:"shortages,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, roster.ErrNotFound) || errors.Is(err, repository.ErrNotFound)
}
