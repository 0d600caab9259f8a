package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/huddle/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

// Env overrides persist for the whole test function, so each loading
// scenario gets its own test to keep layers from leaking into each other.

func TestLoadDefaults(t *testing.T) {
	Convey("Given no overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then the defaults come back", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.KFactor, ShouldEqual, 30.0)
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HUDDLE_ADDR", ":7070")
	t.Setenv("HUDDLE_LOG_LEVEL", "debug")
	t.Setenv("HUDDLE_QUEUE_SIZE", "1234")

	Convey("Given environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then the overrides win over the defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.QueueSize, ShouldEqual, 1234)

			// Untouched fields keep their defaults.
			So(cfg.MaxStandingsLimit, ShouldEqual, 100)
		})
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huddle.yaml")
	yaml := "addr: \":6060\"\nk_factor: 24\ncooling_rate: 0.99\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HUDDLE_CONFIG", path)

	Convey("Given a YAML config file", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then the file layers over the defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":6060")
			So(cfg.KFactor, ShouldEqual, 24.0)
			So(cfg.CoolingRate, ShouldEqual, 0.99)
		})
	})
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huddle.yaml")
	if err := os.WriteFile(path, []byte("addr: \":6060\"\nk_factor: 24\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HUDDLE_CONFIG", path)
	t.Setenv("HUDDLE_ADDR", ":5050")

	Convey("Given both a file and an env override", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then env wins over the file", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":5050")
			So(cfg.KFactor, ShouldEqual, 24.0)
		})
	})
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("HUDDLE_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	Convey("Given a missing config file", t, func() {
		_, err := config.Load(context.Background())

		Convey("Then the load error surfaces", func() {
			So(err, ShouldWrap, config.ErrLoadConfig)
		})
	})
}

func TestLoadRejectsEmptyAddr(t *testing.T) {
	t.Setenv("HUDDLE_ADDR", "")

	Convey("Given an empty addr", t, func() {
		_, err := config.Load(context.Background())
		So(err, ShouldWrap, config.ErrInvalidConfig)
	})
}

func TestLoadRejectsBadKFactor(t *testing.T) {
	t.Setenv("HUDDLE_K_FACTOR", "0")

	Convey("Given a non-positive K-factor", t, func() {
		_, err := config.Load(context.Background())
		So(err, ShouldWrap, config.ErrInvalidConfig)
	})
}

func TestLoadRejectsBadCoolingRate(t *testing.T) {
	t.Setenv("HUDDLE_COOLING_RATE", "1.5")

	Convey("Given a cooling rate outside (0, 1)", t, func() {
		_, err := config.Load(context.Background())
		So(err, ShouldWrap, config.ErrInvalidConfig)
	})
}
