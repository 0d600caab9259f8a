package rating_test

import (
	"context"
	"testing"

	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/internal/domain/rating"
	"github.com/okian/huddle/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

func newRoster(ctx context.Context, ids ...string) *roster.Roster {
	r := roster.New()
	for _, id := range ids {
		p, _ := roster.NewPlayer(id, "name-"+id, "S")
		_ = r.Add(ctx, p)
	}
	return r
}

func TestEngine(t *testing.T) {
	Convey("Given a default Elo engine", t, func() {
		e := rating.NewEngine()

		Convey("When both players are evenly rated", func() {
			So(e.ExpectedScore(1500, 1500), ShouldEqual, 0.5)

			Convey("Then the exchange is half the K-factor", func() {
				So(e.Exchange(1500, 1500), ShouldEqual, 15)
			})
		})

		Convey("When the winner is much stronger", func() {
			delta := e.Exchange(2000, 1200)

			Convey("Then the exchange approaches zero", func() {
				So(delta, ShouldBeGreaterThan, 0)
				So(delta, ShouldBeLessThan, 1)
			})
		})

		Convey("When the winner is much weaker", func() {
			delta := e.Exchange(1200, 2000)

			Convey("Then the exchange approaches the full K-factor", func() {
				So(delta, ShouldBeGreaterThan, 29)
				So(delta, ShouldBeLessThan, 30)
			})
		})

		Convey("When tuned via options", func() {
			e := rating.NewEngine(rating.WithKFactor(40), rating.WithInitialRating(1000))

			Convey("Then the parameters are exposed", func() {
				So(e.KFactor(), ShouldEqual, 40)
				So(e.InitialRating(), ShouldEqual, 1000)
			})
		})
	})
}

func TestApplyResult(t *testing.T) {
	Convey("Given two evenly rated players", t, func() {
		ctx := context.Background()
		r := newRoster(ctx, "a", "b")
		store := rating.NewStore(r)

		Convey("When a beats b", func() {
			updates, err := store.ApplyResult(ctx, "a", "b", "S")

			Convey("Then ratings move symmetrically and coverage records", func() {
				So(err, ShouldBeNil)
				So(updates, ShouldHaveLength, 2)

				a, _ := r.Get(ctx, "a")
				b, _ := r.Get(ctx, "b")
				So(a.Ratings["S"], ShouldEqual, 1515)
				So(b.Ratings["S"], ShouldEqual, 1485)
				So(a.Comparisons["S"], ShouldEqual, 1)
				So(b.Comparisons["S"], ShouldEqual, 1)
				So(a.ComparedWith["S"], ShouldContainKey, "b")
				So(b.ComparedWith["S"], ShouldContainKey, "a")
			})
		})

		Convey("When the same pairing repeats", func() {
			_, err := store.ApplyResult(ctx, "a", "b", "S")
			So(err, ShouldBeNil)
			updates, err := store.ApplyResult(ctx, "a", "b", "S")

			Convey("Then ratings keep moving but coverage stays a set", func() {
				So(err, ShouldBeNil)
				So(updates[0].Delta, ShouldBeLessThan, 15)

				a, _ := r.Get(ctx, "a")
				So(a.Comparisons["S"], ShouldEqual, 2)
				So(a.ComparedWith["S"], ShouldHaveLength, 1)
			})
		})

		Convey("When both ids are the same", func() {
			_, err := store.ApplyResult(ctx, "a", "a", "S")

			Convey("Then the result is rejected", func() {
				So(err, ShouldEqual, rating.ErrSamePlayer)
			})
		})

		Convey("When a player does not declare the position", func() {
			_, err := store.ApplyResult(ctx, "a", "b", "OH")

			Convey("Then the unknown-position sentinel is raised and nothing moves", func() {
				So(err, ShouldWrap, rating.ErrUnknownPosition)
				a, _ := r.Get(ctx, "a")
				So(a.Ratings["S"], ShouldEqual, 1500)
			})
		})
	})
}

func TestZeroSum(t *testing.T) {
	Convey("Given two players trading wins", t, func() {
		ctx := context.Background()
		r := newRoster(ctx, "a", "b")
		store := rating.NewStore(r)

		Convey("When many results apply in both directions", func() {
			for i := 0; i < 10; i++ {
				winner, loser := "a", "b"
				if i%3 == 0 {
					winner, loser = "b", "a"
				}
				_, err := store.ApplyResult(ctx, winner, loser, "S")
				So(err, ShouldBeNil)
			}

			Convey("Then the rating pool is conserved", func() {
				a, _ := r.Get(ctx, "a")
				b, _ := r.Get(ctx, "b")
				So(a.Ratings["S"]+b.Ratings["S"], ShouldAlmostEqual, 3000, 1e-9)
			})
		})
	})
}

func TestApplyDraw(t *testing.T) {
	Convey("Given two players", t, func() {
		ctx := context.Background()
		r := newRoster(ctx, "a", "b")
		store := rating.NewStore(r)

		Convey("When they draw", func() {
			updates, err := store.ApplyDraw(ctx, "a", "b", "S")

			Convey("Then coverage records but no rating moves", func() {
				So(err, ShouldBeNil)
				So(updates, ShouldHaveLength, 2)
				So(updates[0].Delta, ShouldEqual, 0)

				a, _ := r.Get(ctx, "a")
				So(a.Ratings["S"], ShouldEqual, 1500)
				So(a.Comparisons["S"], ShouldEqual, 1)
				So(a.ComparedWith["S"], ShouldContainKey, "b")
			})
		})
	})
}

func TestReset(t *testing.T) {
	Convey("Given players with history", t, func() {
		ctx := context.Background()
		r := newRoster(ctx, "a", "b", "c")
		store := rating.NewStore(r)
		_, err := store.ApplyResult(ctx, "a", "b", "S")
		So(err, ShouldBeNil)
		_, err = store.ApplyResult(ctx, "a", "c", "S")
		So(err, ShouldBeNil)

		Convey("When resetting a", func() {
			updates, err := store.Reset(ctx, "a")

			Convey("Then a's state restores and others forget a", func() {
				So(err, ShouldBeNil)
				So(updates, ShouldHaveLength, 1)

				a, _ := r.Get(ctx, "a")
				So(a.Ratings["S"], ShouldEqual, 1500)
				So(a.Comparisons["S"], ShouldEqual, 0)
				So(a.ComparedWith["S"], ShouldBeEmpty)

				b, _ := r.Get(ctx, "b")
				c, _ := r.Get(ctx, "c")
				So(b.ComparedWith["S"], ShouldNotContainKey, "a")
				So(c.ComparedWith["S"], ShouldNotContainKey, "a")

				Convey("And b and c keep their own standing", func() {
					So(b.Ratings["S"], ShouldNotEqual, 1500)
					So(b.Comparisons["S"], ShouldEqual, 1)
				})
			})
		})

		Convey("When resetting an unknown player", func() {
			_, err := store.Reset(ctx, "ghost")

			Convey("Then the reset fails", func() {
				So(err, ShouldEqual, roster.ErrNotFound)
			})
		})

		Convey("When resetting an undeclared position", func() {
			_, err := store.Reset(ctx, "a", position.Position("OH"))

			Convey("Then the reset fails", func() {
				So(err, ShouldWrap, rating.ErrUnknownPosition)
			})
		})
	})
}
