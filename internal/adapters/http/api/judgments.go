// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/huddle/internal/domain/model"
)

// JudgmentsHandler handles head-to-head outcome submissions.
type JudgmentsHandler struct {
	deps Dependencies
}

// NewJudgmentsHandler creates a new judgments handler.
func NewJudgmentsHandler(deps Dependencies) *JudgmentsHandler {
	return &JudgmentsHandler{deps: deps}
}

// judgmentRequest mirrors the JSON schema for POST /judgments.
type judgmentRequest struct {
	JudgmentID string `json:"judgment_id"`
	WinnerID   string `json:"winner_id"`
	LoserID    string `json:"loser_id"`
	Position   string `json:"position"`
	Draw       bool   `json:"draw"`
	TS         string `json:"ts"`
}

func (j judgmentRequest) validate() error {
	switch {
	case strings.TrimSpace(j.JudgmentID) == "":
		return errors.New("missing judgment_id")
	case strings.TrimSpace(j.WinnerID) == "":
		return errors.New("missing winner_id")
	case strings.TrimSpace(j.LoserID) == "":
		return errors.New("missing loser_id")
	case j.WinnerID == j.LoserID:
		return errors.New("winner_id and loser_id must differ")
	case strings.TrimSpace(j.Position) == "":
		return errors.New("missing position")
	case strings.TrimSpace(j.TS) == "":
		return errors.New("missing ts")
	}
	if _, err := time.Parse(time.RFC3339, j.TS); err != nil {
		return errors.New("invalid ts; must be RFC3339")
	}
	return nil
}

// HandlePostJudgment handles POST /judgments requests.
func (h *JudgmentsHandler) HandlePostJudgment(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_judgment"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req judgmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	pos, err := h.deps.NormalizePosition(req.Position)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_position", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.JudgmentID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	ts, _ := time.Parse(time.RFC3339, req.TS)
	j := model.Judgment{
		JudgmentID: req.JudgmentID,
		WinnerID:   req.WinnerID,
		LoserID:    req.LoserID,
		Position:   pos,
		Draw:       req.Draw,
		TS:         ts,
	}

	// Try to enqueue for async processing
	if ok := h.deps.Enqueue(r.Context(), j); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.JudgmentID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
