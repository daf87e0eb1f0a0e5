package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/squares/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.FeedURL, convey.ShouldEqual, config.DefaultFeedURL)
			convey.So(cfg.FeedTimeout(), convey.ShouldEqual, 8*time.Second)
			convey.So(cfg.PollInterval(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.FeedRetries, convey.ShouldEqual, 3)
			convey.So(cfg.FeedRetryBase(), convey.ShouldEqual, 300*time.Millisecond)
			convey.So(cfg.FeedRetryMax(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.ScenarioMaxDelta, convey.ShouldEqual, 60)
			convey.So(cfg.RefreshRatePerSec, convey.ShouldEqual, 0.2)
			convey.So(cfg.RefreshBurst, convey.ShouldEqual, 2)
			convey.So(cfg.NATSURL, convey.ShouldBeEmpty)
			convey.So(cfg.NATSSubject, convey.ShouldEqual, "squares.events")
			convey.So(cfg.AnnounceCacheSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.AnnounceQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given config validation", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":          func(c *config.Config) { c.Addr = "" },
			"empty feed url":      func(c *config.Config) { c.FeedURL = "" },
			"zero poll interval":  func(c *config.Config) { c.PollIntervalMS = 0 },
			"zero timeout":        func(c *config.Config) { c.FeedTimeoutMS = 0 },
			"timeout at interval": func(c *config.Config) { c.FeedTimeoutMS = c.PollIntervalMS },
			"negative retries":    func(c *config.Config) { c.FeedRetries = -1 },
			"negative max delta":  func(c *config.Config) { c.ScenarioMaxDelta = -1 },
		}
		for name, mutate := range cases {
			convey.Convey("When the config has "+name, func() {
				cfg := config.New()
				mutate(cfg)
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
