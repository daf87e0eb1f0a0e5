package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/squares/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SQUARES_ADDR", ":8080")
			_ = os.Setenv("SQUARES_POLL_INTERVAL_MS", "15000")
			_ = os.Setenv("SQUARES_FEED_TIMEOUT_MS", "4000")
			_ = os.Setenv("SQUARES_REFRESH_RATE_PER_SEC", "1.5")
			_ = os.Setenv("SQUARES_NATS_URL", "nats://localhost:4222")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 15000)
				convey.So(cfg.FeedTimeoutMS, convey.ShouldEqual, 4000)
				convey.So(cfg.RefreshRatePerSec, convey.ShouldEqual, 1.5)
				convey.So(cfg.NATSURL, convey.ShouldEqual, "nats://localhost:4222")
				convey.So(cfg.ScenarioMaxDelta, convey.ShouldEqual, 60)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeConfigFile(t, `
# comments are fine
addr: ":9090"
boards_file: /etc/squares/boards.yaml
scenario_max_delta: 30
refresh_burst: 5
`)
			_ = os.Setenv("SQUARES_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.BoardsFile, convey.ShouldEqual, "/etc/squares/boards.yaml")
				convey.So(cfg.ScenarioMaxDelta, convey.ShouldEqual, 30)
				convey.So(cfg.RefreshBurst, convey.ShouldEqual, 5)
				convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 30000)
			})

			convey.Convey("And env should win over the file", func() {
				_ = os.Setenv("SQUARES_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.ScenarioMaxDelta, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When the timeout is not shorter than the interval", func() {
			_ = os.Setenv("SQUARES_POLL_INTERVAL_MS", "5000")
			_ = os.Setenv("SQUARES_FEED_TIMEOUT_MS", "5000")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should be rejected", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the file sets an empty addr", func() {
			path := writeConfigFile(t, "addr: \"\"\n")
			_ = os.Setenv("SQUARES_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})

		convey.Convey("When the config file is missing", func() {
			_ = os.Setenv("SQUARES_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

			_, err := config.Load(ctx)

			convey.Convey("Then it should be a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, envVar := range []string{
		"SQUARES_CONFIG",
		"SQUARES_ADDR",
		"SQUARES_POLL_INTERVAL_MS",
		"SQUARES_FEED_TIMEOUT_MS",
		"SQUARES_REFRESH_RATE_PER_SEC",
		"SQUARES_NATS_URL",
	} {
		_ = os.Unsetenv(envVar)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "squares.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
