package service_test

import (
	"context"
	"os"
	"testing"

	service "github.com/okian/huddle/internal/app"
	"github.com/okian/huddle/internal/domain/position"
	"github.com/okian/huddle/internal/domain/roster"
	"github.com/okian/huddle/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// startService builds a Service with small search budgets and stops it when
// the test ends.
func startService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	base := []service.Option{
		service.WithWorkerCount(2),
		service.WithQueueSize(64),
		service.WithDedupeSize(128),
		service.WithAnnealingSchedule(500, 100, 0.99),
	}
	svc := service.New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := startService(t)
		ctx := context.Background()

		Convey("When started twice", func() {
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then the second start is a no-op", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
			})
		})

		Convey("When stats are requested", func() {
			stats := svc.GetStats()

			Convey("Then the component dimensions are reported", func() {
				So(stats["started"], ShouldBeTrue)
				So(stats["workerCount"], ShouldEqual, 2)
				So(stats["queueSize"], ShouldEqual, 64)
				So(stats["totalPlayers"], ShouldEqual, 0)
				So(stats["standings"], ShouldNotBeNil)
			})
		})

		Convey("When stopped", func() {
			svc.Stop()

			Convey("Then a second stop is harmless", func() {
				So(svc.Stop, ShouldNotPanic)
			})
		})
	})
}

func TestRegisterPlayer(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService(t)
		ctx := context.Background()

		Convey("When a multi-position player registers", func() {
			p, err := svc.RegisterPlayer(ctx, roster.Record{
				ID: "p1", Name: "Sam", Positions: []string{"s", "oh"},
			})

			Convey("Then positions normalize and ratings seed", func() {
				So(err, ShouldBeNil)
				So(p.Positions, ShouldResemble, []position.Position{"S", "OH"})
				So(p.Ratings["S"], ShouldEqual, 1500)
				So(svc.ListPlayers(ctx), ShouldHaveLength, 1)
			})

			Convey("And the standings carry the seed rating", func() {
				So(err, ShouldBeNil)
				entries, err := svc.Standings(ctx, "S", 10)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].PlayerID, ShouldEqual, "p1")
				So(entries[0].Score, ShouldEqual, 1500)
			})

			Convey("And a duplicate id is rejected", func() {
				_, err := svc.RegisterPlayer(ctx, roster.Record{
					ID: "p1", Name: "Other", Position: "MB",
				})
				So(err, ShouldWrap, roster.ErrDuplicateID)
			})
		})

		Convey("When the record is malformed", func() {
			_, err := svc.RegisterPlayer(ctx, roster.Record{ID: "p2", Name: "Nopos"})
			So(err, ShouldWrap, roster.ErrNoPositions)

			_, err = svc.RegisterPlayer(ctx, roster.Record{ID: "p3", Position: "GK"})
			So(err, ShouldWrap, position.ErrUnknownPosition)
		})

		Convey("When a custom initial rating is configured", func() {
			svc := startService(t, service.WithRatingParams(30, 1200))
			p, err := svc.RegisterPlayer(ctx, roster.Record{ID: "q1", Name: "Quinn", Position: "MB"})

			Convey("Then the player starts at the configured rating", func() {
				So(err, ShouldBeNil)
				So(p.Ratings["MB"], ShouldEqual, 1200)
			})
		})
	})
}

func TestRemoveAndReset(t *testing.T) {
	Convey("Given a service with registered players", t, func() {
		svc := startService(t)
		ctx := context.Background()
		for _, id := range []string{"a", "b"} {
			_, err := svc.RegisterPlayer(ctx, roster.Record{ID: id, Name: id, Position: "S"})
			So(err, ShouldBeNil)
		}

		Convey("When a player is removed", func() {
			So(svc.RemovePlayer(ctx, "a"), ShouldBeNil)

			Convey("Then the roster and standings both forget them", func() {
				So(svc.ListPlayers(ctx), ShouldHaveLength, 1)
				entries, err := svc.Standings(ctx, "S", 10)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].PlayerID, ShouldEqual, "b")
			})
		})

		Convey("When an unknown player is removed", func() {
			So(svc.RemovePlayer(ctx, "ghost"), ShouldWrap, roster.ErrNotFound)
		})

		Convey("When an unknown player is reset", func() {
			So(svc.ResetPlayer(ctx, "ghost"), ShouldWrap, roster.ErrNotFound)
		})
	})
}

func TestPairAndDedupe(t *testing.T) {
	Convey("Given a service with two setters", t, func() {
		svc := startService(t)
		ctx := context.Background()
		for _, id := range []string{"a", "b"} {
			_, err := svc.RegisterPlayer(ctx, roster.Record{ID: id, Name: id, Position: "S"})
			So(err, ShouldBeNil)
		}

		Convey("When a pair is requested", func() {
			pair, err := svc.NextPair(ctx, "S")

			Convey("Then the only possible pair comes back", func() {
				So(err, ShouldBeNil)
				So(pair, ShouldNotBeNil)
				So(pair.A.ID, ShouldNotEqual, pair.B.ID)
			})
		})

		Convey("When a pair is requested at an empty position", func() {
			pair, err := svc.NextPair(ctx, "MB")

			Convey("Then exhaustion is a nil pair, not an error", func() {
				So(err, ShouldBeNil)
				So(pair, ShouldBeNil)
			})
		})

		Convey("When a judgment id is recorded twice", func() {
			So(svc.SeenAndRecord(ctx, "j-1"), ShouldBeFalse)
			So(svc.SeenAndRecord(ctx, "j-1"), ShouldBeTrue)
			So(svc.Size(), ShouldEqual, 1)

			Convey("And unrecording admits a retry", func() {
				svc.Unrecord(ctx, "j-1")
				So(svc.SeenAndRecord(ctx, "j-1"), ShouldBeFalse)
			})
		})

		Convey("When a raw position code is normalized", func() {
			pos, err := svc.NormalizePosition(" oh ")
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, position.Position("OH"))

			_, err = svc.NormalizePosition("GK")
			So(err, ShouldWrap, position.ErrUnknownPosition)
		})
	})
}
