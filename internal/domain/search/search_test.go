package search_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/okian/huddle/internal/domain/balance"
	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/internal/domain/roster"
	"github.com/okian/huddle/internal/domain/search"
	"github.com/okian/huddle/internal/domain/seeding"
	. "github.com/smartystreets/goconvey/convey"
)

// rosterPool builds n players per position with spread ratings so there is
// always something for a search engine to improve.
func rosterPool(perPos int, positions ...position.Position) []*roster.Player {
	var out []*roster.Player
	for _, pos := range positions {
		for i := 0; i < perPos; i++ {
			p, err := roster.NewPlayer(fmt.Sprintf("%s-%d", pos, i), "Player", pos)
			if err != nil {
				panic(err)
			}
			p.Ratings[pos] = 1400 + float64(i)*60
			out = append(out, p)
		}
	}
	return out
}

// lopsidedSeed stacks the strongest players on team 0 so the imbalance is
// maximal and any sensible search can improve it.
func lopsidedSeed(players []*roster.Player, comp position.Composition, set *position.Set, teamCount int) *balance.Candidate {
	c := balance.NewCandidate(teamCount)
	for _, pos := range comp.Positions(set) {
		var declarers []*roster.Player
		for _, p := range players {
			if p.Primary() == pos {
				declarers = append(declarers, p)
			}
		}
		// Highest rating first, dealt in blocks: team 0 gets the top
		// comp[pos] players, team 1 the next block, and so on.
		for i := 0; i < len(declarers)-1; i++ {
			for j := i + 1; j < len(declarers); j++ {
				if declarers[j].Rating(pos) > declarers[i].Rating(pos) {
					declarers[i], declarers[j] = declarers[j], declarers[i]
				}
			}
		}
		idx := 0
		for team := 0; team < teamCount; team++ {
			for n := 0; n < comp[pos] && idx < len(declarers); n++ {
				c.Teams[team].Slots = append(c.Teams[team].Slots,
					balance.Assignment{Player: declarers[idx], Position: pos})
				idx++
			}
		}
	}
	return c
}

func assertSamePlayers(c *balance.Candidate, want int) {
	ids := c.PlayerIDs()
	So(ids, ShouldHaveLength, want)
	for i := range c.Teams {
		for _, slot := range c.Teams[i].Slots {
			So(ids, ShouldContainKey, slot.Player.ID)
		}
	}
}

func TestAnnealer(t *testing.T) {
	Convey("Given a lopsided two-team seed", t, func() {
		set := position.Volleyball()
		comp := position.Composition{"S": 1, "OH": 2}
		players := rosterPool(2, "S")
		players = append(players, rosterPool(4, "OH")...)
		seed := lopsidedSeed(players, comp, set, 2)

		eval := balance.NewEvaluator()
		seedScore := eval.Score(seed)
		a := search.NewAnnealer(eval,
			search.WithAnnealerRand(rand.New(rand.NewSource(3))),
			search.WithIterations(2000),
		)

		Convey("When annealing runs", func() {
			got := a.Optimize(context.Background(), seed)

			Convey("Then the result never scores worse than the seed", func() {
				So(eval.Score(got), ShouldBeLessThanOrEqualTo, seedScore)
			})

			Convey("Then headcounts and the player set are preserved", func() {
				assertSamePlayers(got, 6)
				for i := range got.Teams {
					So(got.Teams[i].CountAt("S"), ShouldEqual, 1)
					So(got.Teams[i].CountAt("OH"), ShouldEqual, 2)
				}
			})

			Convey("Then the seed itself is untouched", func() {
				So(eval.Score(seed), ShouldEqual, seedScore)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			got := a.Optimize(ctx, seed)

			Convey("Then the best-so-far candidate still comes back", func() {
				So(got, ShouldNotBeNil)
				So(eval.Score(got), ShouldBeLessThanOrEqualTo, seedScore)
			})
		})
	})
}

func TestSwapSearch(t *testing.T) {
	Convey("Given a lopsided two-team seed", t, func() {
		set := position.Volleyball()
		comp := position.Composition{"S": 1, "OH": 2}
		players := rosterPool(2, "S")
		players = append(players, rosterPool(4, "OH")...)
		seed := lopsidedSeed(players, comp, set, 2)

		eval := balance.NewEvaluator()
		seedScore := eval.Score(seed)
		s := search.NewSwapSearch(eval,
			search.WithSwapRand(rand.New(rand.NewSource(3))),
			search.WithSwapIterations(200),
		)

		Convey("When the targeted swap search runs", func() {
			got := s.Optimize(context.Background(), seed)

			Convey("Then it strictly improves the stacked layout", func() {
				So(eval.Score(got), ShouldBeLessThan, seedScore)
				assertSamePlayers(got, 6)
			})

			Convey("Then the seed itself is untouched", func() {
				So(eval.Score(seed), ShouldEqual, seedScore)
			})
		})

		Convey("When the candidate has a single team", func() {
			single := balance.NewCandidate(1)
			single.Teams[0] = seed.Teams[0]
			got := s.Optimize(context.Background(), single)

			Convey("Then the search terminates without a move", func() {
				So(got, ShouldNotBeNil)
				So(got.Teams, ShouldHaveLength, 1)
			})
		})
	})
}

func TestGenetic(t *testing.T) {
	Convey("Given seeds over a covering roster", t, func() {
		set := position.Volleyball()
		comp := position.Composition{"S": 1, "OH": 2}
		players := rosterPool(2, "S")
		players = append(players, rosterPool(4, "OH")...)

		rng := rand.New(rand.NewSource(3))
		seeder := seeding.NewSeeder(set, seeding.WithRand(rng))
		seeds := seeder.Seeds(players, comp, 2)

		eval := balance.NewEvaluator()
		bestSeed := eval.Score(seeds[0])
		for _, s := range seeds[1:] {
			if score := eval.Score(s); score < bestSeed {
				bestSeed = score
			}
		}

		g := search.NewGenetic(set, eval,
			search.WithGeneticRand(rng),
			search.WithGenerations(30),
		)

		Convey("When the population evolves", func() {
			got := g.Optimize(context.Background(), seeds, players, comp)

			Convey("Then the fittest survivor is at least as good as the best seed", func() {
				So(got, ShouldNotBeNil)
				So(eval.Score(got), ShouldBeLessThanOrEqualTo, bestSeed)
			})

			Convey("Then headcounts hold and no player doubles up", func() {
				assertSamePlayers(got, 6)
				for i := range got.Teams {
					So(got.Teams[i].CountAt("S"), ShouldEqual, 1)
					So(got.Teams[i].CountAt("OH"), ShouldEqual, 2)
				}
			})
		})

		Convey("When no seeds are supplied", func() {
			So(g.Optimize(context.Background(), nil, players, comp), ShouldBeNil)
		})
	})
}
