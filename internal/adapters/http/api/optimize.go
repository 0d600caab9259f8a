// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/huddle/internal/domain/optimize"
	"github.com/okian/huddle/internal/domain/position"
)

// OptimizeHandler runs team-balancing over the current roster.
type OptimizeHandler struct {
	deps Dependencies
}

// NewOptimizeHandler creates a new optimize handler.
func NewOptimizeHandler(deps Dependencies) *OptimizeHandler {
	return &OptimizeHandler{deps: deps}
}

// optimizeRequest mirrors the JSON schema for POST /optimize.
type optimizeRequest struct {
	Composition map[string]int `json:"composition"`
	TeamCount   int            `json:"team_count"`
}

// HandlePostOptimize handles POST /optimize requests.
func (h *OptimizeHandler) HandlePostOptimize(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_optimize"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Composition) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	comp := make(position.Composition, len(req.Composition))
	for raw, n := range req.Composition {
		pos, err := h.deps.NormalizePosition(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown_position", WrapKind(op, ErrBadRequest, err))
			return
		}
		comp[pos] = n
	}

	res, err := h.deps.Optimize(r.Context(), comp, req.TeamCount)
	if err != nil {
		if ce, ok := optimize.AsCompositionError(err); ok {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Code:      "composition_exceeds_roster",
				Message:   ce.Error(),
				Shortages: ce.Shortages,
			})
			return
		}
		switch {
		case errors.Is(err, optimize.ErrTeamCount),
			errors.Is(err, optimize.ErrNoPlayers),
			errors.Is(err, position.ErrInvalidComposition),
			errors.Is(err, position.ErrUnknownPosition):
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}
