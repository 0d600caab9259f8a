package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/huddle/internal/simulate"
)

// Default configuration constants.
const (
	defaultPlayers    = 60
	defaultJudgments  = 2000
	defaultTeams      = 4
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		players   = flag.Int("players", defaultPlayers, "Number of synthetic players to register")
		judgments = flag.Int("judgments", defaultJudgments, "Number of judgments to stream")
		teams     = flag.Int("teams", defaultTeams, "Number of teams to request from /optimize")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &simulate.Config{
		BaseURL:   *baseURL,
		Players:   *players,
		Judgments: *judgments,
		Teams:     *teams,
		Timeout:   *timeout,
		Seed:      *seed,
		Verbose:   *verbose,
	}

	if _, err := simulate.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
