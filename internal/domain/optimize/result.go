package optimize

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/okian/huddle/internal/domain/balance"
	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/internal/domain/roster"
)

// TeamPlayer is one slotted player in the final result, snapshotted for
// the caller.
type TeamPlayer struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	AssignedPosition position.Position   `json:"assigned_position"`
	Positions        []position.Position `json:"positions"`
	Rating           float64             `json:"rating"`
	Primary          bool                `json:"primary"`
}

// TeamResult is one finished team with its aggregate strength.
type TeamResult struct {
	Players  []TeamPlayer `json:"players"`
	Strength float64      `json:"strength"`
}

// Summary describes the strength distribution across the winning teams.
type Summary struct {
	Max    float64 `json:"max"`
	Min    float64 `json:"min"`
	Spread float64 `json:"spread"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// UnusedPlayer is a roster member the winning assignment left out.
type UnusedPlayer struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Positions []position.Position `json:"positions"`
}

// Stats are derived counters over the winning assignment.
type Stats struct {
	RunID                 string        `json:"run_id"`
	TeamsUsed             int           `json:"teams_used"`
	PlayersUsed           int           `json:"players_used"`
	AverageTeamRating     float64       `json:"average_team_rating"`
	BalanceScore          float64       `json:"balance_score"`
	PrimaryPlacements     int           `json:"primary_placements"`
	SecondaryPlacements   int           `json:"secondary_placements"`
	OffPositionPlacements int           `json:"off_position_placements"`
	SeedsEvaluated        int           `json:"seeds_evaluated"`
	Elapsed               time.Duration `json:"elapsed"`
}

// Result is the full optimization output.
type Result struct {
	Teams      []TeamResult   `json:"teams"`
	Balance    Summary        `json:"balance"`
	Unused     []UnusedPlayer `json:"unused_players"`
	Validation Validation     `json:"validation"`
	Stats      Stats          `json:"stats"`
}

// buildResult converts the winning candidate into the caller-facing shape:
// teams sorted strongest first, distribution summary, placement counters
// and the unused-player list.
func buildResult(winner *balance.Candidate, players []*roster.Player, score float64) *Result {
	res := &Result{}

	for i := range winner.Teams {
		team := &winner.Teams[i]
		tr := TeamResult{
			Players:  make([]TeamPlayer, 0, len(team.Slots)),
			Strength: team.Strength(),
		}
		for _, slot := range team.Slots {
			tr.Players = append(tr.Players, TeamPlayer{
				ID:               slot.Player.ID,
				Name:             slot.Player.Name,
				AssignedPosition: slot.Position,
				Positions:        append([]position.Position(nil), slot.Player.Positions...),
				Rating:           slot.Rating(),
				Primary:          !slot.OffPrimary(),
			})
			switch {
			case !slot.OffPrimary():
				res.Stats.PrimaryPlacements++
			case !slot.OffDeclared():
				res.Stats.SecondaryPlacements++
			default:
				res.Stats.OffPositionPlacements++
			}
			res.Stats.PlayersUsed++
		}
		res.Teams = append(res.Teams, tr)
	}

	// Presentation convenience: strongest team first.
	for i := 1; i < len(res.Teams); i++ {
		for j := i; j > 0 && res.Teams[j].Strength > res.Teams[j-1].Strength; j-- {
			res.Teams[j], res.Teams[j-1] = res.Teams[j-1], res.Teams[j]
		}
	}

	strengths := winner.Strengths()
	res.Balance.Max, _ = stats.Max(strengths)
	res.Balance.Min, _ = stats.Min(strengths)
	res.Balance.Spread = res.Balance.Max - res.Balance.Min
	res.Balance.Mean, _ = stats.Mean(strengths)
	res.Balance.StdDev, _ = stats.StandardDeviationPopulation(strengths)

	res.Stats.TeamsUsed = len(res.Teams)
	res.Stats.BalanceScore = score
	if res.Stats.TeamsUsed > 0 {
		res.Stats.AverageTeamRating = res.Balance.Mean
	}

	assigned := winner.PlayerIDs()
	for _, p := range players {
		if _, used := assigned[p.ID]; used {
			continue
		}
		res.Unused = append(res.Unused, UnusedPlayer{
			ID:        p.ID,
			Name:      p.Name,
			Positions: append([]position.Position(nil), p.Positions...),
		})
	}
	return res
}
