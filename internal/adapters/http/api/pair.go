// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	"github.com/okian/huddle/internal/domain/position"
)

// PairHandler proposes the next comparison pair at a position.
type PairHandler struct {
	deps Dependencies
}

// NewPairHandler creates a new pair handler.
func NewPairHandler(deps Dependencies) *PairHandler {
	return &PairHandler{deps: deps}
}

// pairResponse carries the proposed pair, or null when the position's
// comparison space is exhausted.
type pairResponse struct {
	Position  position.Position `json:"position"`
	A         string            `json:"a,omitempty"`
	B         string            `json:"b,omitempty"`
	Exhausted bool              `json:"exhausted"`
}

// HandleGetPair handles GET /pair?position=P requests.
func (h *PairHandler) HandleGetPair(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_pair"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	pos, err := h.deps.NormalizePosition(r.URL.Query().Get("position"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_position", WrapKind(op, ErrBadRequest, err))
		return
	}
	pair, err := h.deps.NextPair(r.Context(), pos)
	if err != nil {
		if errors.Is(err, position.ErrUnknownPosition) {
			writeError(w, http.StatusBadRequest, "unknown_position", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if pair == nil {
		writeJSON(w, http.StatusOK, pairResponse{Position: pos, Exhausted: true})
		return
	}
	writeJSON(w, http.StatusOK, pairResponse{Position: pos, A: pair.A.ID, B: pair.B.ID})
}
