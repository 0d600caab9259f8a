// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/internal/domain/roster"
)

// PlayersHandler handles player registration and roster queries.
type PlayersHandler struct {
	deps Dependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps Dependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// playerResponse is the read shape for a registered player.
type playerResponse struct {
	ID          string                       `json:"id"`
	Name        string                       `json:"name"`
	Positions   []position.Position          `json:"positions"`
	Ratings     map[position.Position]float64 `json:"ratings"`
	Comparisons map[position.Position]int     `json:"comparisons"`
}

func toPlayerResponse(p *roster.Player) playerResponse {
	return playerResponse{
		ID:          p.ID,
		Name:        p.Name,
		Positions:   p.Positions,
		Ratings:     p.Ratings,
		Comparisons: p.Comparisons,
	}
}

// HandlePlayers handles POST /players and GET /players requests.
func (h *PlayersHandler) HandlePlayers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleRegister(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *PlayersHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register_player"
	var rec roster.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.RegisterPlayer(r.Context(), rec)
	if err != nil {
		switch {
		case errors.Is(err, roster.ErrDuplicateID):
			writeError(w, http.StatusConflict, "duplicate_id", Wrap(op, err))
		case errors.Is(err, roster.ErrMissingID),
			errors.Is(err, roster.ErrNoPositions),
			errors.Is(err, roster.ErrTooManyPositions),
			errors.Is(err, position.ErrUnknownPosition):
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}
	writeJSON(w, http.StatusCreated, toPlayerResponse(p))
}

func (h *PlayersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	players := h.deps.ListPlayers(r.Context())
	out := make([]playerResponse, 0, len(players))
	for _, p := range players {
		out = append(out, toPlayerResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandlePlayerByID handles DELETE /players/{id} and POST /players/{id}/reset.
func (h *PlayersHandler) HandlePlayerByID(w http.ResponseWriter, r *http.Request) {
	const op = "api.player_by_id"
	path := strings.TrimPrefix(r.URL.Path, "/players/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	if id, ok := strings.CutSuffix(path, "/reset"); ok && r.Method == http.MethodPost {
		if err := h.deps.ResetPlayer(r.Context(), id); err != nil {
			if isNotFound(err) {
				writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, ackResponse{Status: "reset"})
		return
	}

	if r.Method != http.MethodDelete || strings.Contains(path, "/") {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.RemovePlayer(r.Context(), path); err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "removed"})
}
