// Package simulate drives a running service with a synthetic roster and a
// stream of judgments, then requests standings and an optimization run.
// It exercises the full pipeline end to end against real HTTP endpoints.
package simulate

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Config controls a simulation run.
type Config struct {
	BaseURL   string
	Players   int
	Judgments int
	Teams     int
	Timeout   time.Duration
	Seed      int64
	Verbose   bool
}

// Stats summarizes a completed run.
type Stats struct {
	PlayersRegistered  int
	JudgmentsAccepted  int
	JudgmentsDuplicate int
	JudgmentsFailed    int
	PairsExhausted     int
	OptimizeStatus     int
	Elapsed            time.Duration
}

type pairResponse struct {
	Position  string `json:"position"`
	A         string `json:"a"`
	B         string `json:"b"`
	Exhausted bool   `json:"exhausted"`
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Run executes the simulation against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	client := newHTTPClient(cfg.Timeout)
	stats := &Stats{}
	started := time.Now()

	roster := generateRoster(cfg.Players, rng)
	byID := make(map[string]player, len(roster))
	for _, p := range roster {
		byID[p.ID] = p
	}

	log.Printf("registering %d players...", len(roster))
	for _, p := range roster {
		body := map[string]interface{}{
			"id":        p.ID,
			"name":      p.Name,
			"positions": p.Positions,
		}
		status, err := client.postJSON(cfg.BaseURL+"/players", body, nil)
		if err != nil {
			return stats, fmt.Errorf("register player %s: %w", p.Name, err)
		}
		if status != 201 {
			return stats, fmt.Errorf("register player %s: unexpected status %d", p.Name, status)
		}
		stats.PlayersRegistered++
	}

	log.Printf("streaming %d judgments...", cfg.Judgments)
	for i := 0; i < cfg.Judgments; i++ {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		pos := positionCodes[rng.Intn(len(positionCodes))]
		var pair pairResponse
		status, err := client.getJSON(cfg.BaseURL+"/pair?position="+url.QueryEscape(pos), &pair)
		if err != nil || status != 200 {
			stats.JudgmentsFailed++
			continue
		}
		if pair.Exhausted {
			stats.PairsExhausted++
			continue
		}

		winner, loser := decideWinner(byID[pair.A], byID[pair.B], pos, rng)
		judgment := map[string]interface{}{
			"judgment_id": uuid.NewString(),
			"winner_id":   winner,
			"loser_id":    loser,
			"position":    pos,
			"draw":        false,
			"ts":          time.Now().UTC().Format(time.RFC3339),
		}
		var ack ackResponse
		status, err = client.postJSON(cfg.BaseURL+"/judgments", judgment, &ack)
		switch {
		case err != nil:
			stats.JudgmentsFailed++
		case status == 202:
			stats.JudgmentsAccepted++
		case status == 200 && ack.Duplicate:
			stats.JudgmentsDuplicate++
		default:
			stats.JudgmentsFailed++
		}

		if cfg.Verbose && (i+1)%500 == 0 {
			log.Printf("progress: %d/%d judgments (accepted: %d, exhausted pairs: %d)",
				i+1, cfg.Judgments, stats.JudgmentsAccepted, stats.PairsExhausted)
		}
	}

	// Give the worker pool a moment to drain the queue before reading.
	time.Sleep(500 * time.Millisecond)

	for _, pos := range positionCodes {
		var standings []map[string]interface{}
		status, err := client.getJSON(cfg.BaseURL+"/standings?position="+url.QueryEscape(pos)+"&limit=10", &standings)
		if err != nil || status != 200 {
			log.Printf("standings fetch failed for %s (status %d)", pos, status)
			continue
		}
		log.Printf("top of %s standings: %d entries", pos, len(standings))
	}

	optimizeReq := map[string]interface{}{
		"composition": map[string]int{"S": 1, "OPP": 1, "OH": 2, "MB": 1, "L": 1},
		"team_count":  cfg.Teams,
	}
	var optimizeRes map[string]interface{}
	status, err := client.postJSON(cfg.BaseURL+"/optimize", optimizeReq, &optimizeRes)
	stats.OptimizeStatus = status
	if err != nil {
		log.Printf("optimize request failed: %v", err)
	} else {
		log.Printf("optimize finished with status %d", status)
	}

	stats.Elapsed = time.Since(started)
	log.Printf("simulation done in %s: %d players, %d accepted, %d duplicate, %d failed, %d exhausted",
		stats.Elapsed.Round(time.Millisecond), stats.PlayersRegistered,
		stats.JudgmentsAccepted, stats.JudgmentsDuplicate, stats.JudgmentsFailed, stats.PairsExhausted)
	return stats, nil
}
