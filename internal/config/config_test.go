package config_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/okian/huddle/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given a default configuration", t, func() {
		cfg := config.New(context.Background())

		Convey("Then the service defaults are set", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.QueueSize, ShouldEqual, 100_000)
			So(cfg.WorkerCount, ShouldEqual, runtime.NumCPU()*4)
			So(cfg.DedupeSize, ShouldEqual, 500_000)
			So(cfg.MaxStandingsLimit, ShouldEqual, 100)
		})

		Convey("Then the rating defaults are set", func() {
			So(cfg.KFactor, ShouldEqual, 30)
			So(cfg.InitialRating, ShouldEqual, 1500)
		})

		Convey("Then the optimization defaults are set", func() {
			So(cfg.AnnealingEnabled, ShouldBeTrue)
			So(cfg.AnnealingIterations, ShouldEqual, 50_000)
			So(cfg.InitialTemperature, ShouldEqual, 1000.0)
			So(cfg.CoolingRate, ShouldEqual, 0.995)
			So(cfg.OffPositionPenalty, ShouldEqual, 50.0)
			So(cfg.VarianceWeight, ShouldEqual, 0.5)
		})

		Convey("Then the default position set is volleyball", func() {
			So(cfg.Positions, ShouldHaveLength, 5)
			codes := make([]string, 0, len(cfg.Positions))
			for _, d := range cfg.Positions {
				codes = append(codes, d.Code)
			}
			So(codes, ShouldResemble, []string{"S", "OPP", "OH", "MB", "L"})
		})
	})
}
