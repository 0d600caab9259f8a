package simulate

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// positionCodes mirrors the service's default volleyball set.
var positionCodes = []string{"S", "OPP", "OH", "MB", "L"}

// player is one synthetic roster member with a hidden true skill per
// position; judgments are decided by comparing true skills so the
// resulting ratings have a ground truth to converge toward.
type player struct {
	ID        string
	Name      string
	Positions []string
	Skill     map[string]float64
}

// generateRoster builds n synthetic players. Roughly a third of the
// roster declares a secondary position.
func generateRoster(n int, rng *rand.Rand) []player {
	players := make([]player, 0, n)
	for i := 0; i < n; i++ {
		primary := positionCodes[rng.Intn(len(positionCodes))]
		positions := []string{primary}
		if rng.Float64() < 0.33 {
			secondary := positionCodes[rng.Intn(len(positionCodes))]
			if secondary != primary {
				positions = append(positions, secondary)
			}
		}

		skill := make(map[string]float64, len(positions))
		for _, pos := range positions {
			// Normal-ish spread around a per-player base.
			base := 1000 + rng.Float64()*1000
			skill[pos] = base + rng.NormFloat64()*50
		}

		players = append(players, player{
			ID:        uuid.NewString(),
			Name:      fmt.Sprintf("player-%03d", i),
			Positions: positions,
			Skill:     skill,
		})
	}
	return players
}

// decideWinner returns winner and loser ids given two players' hidden
// skills at a position, with a little noise so upsets happen.
func decideWinner(a, b player, pos string, rng *rand.Rand) (string, string) {
	sa := a.Skill[pos] + rng.NormFloat64()*100
	sb := b.Skill[pos] + rng.NormFloat64()*100
	if sa >= sb {
		return a.ID, b.ID
	}
	return b.ID, a.ID
}
