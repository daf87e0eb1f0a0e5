// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"time"
)

// DefaultFeedURL is the public NFL scoreboard.
const DefaultFeedURL = "https://site.api.espn.com/apis/site/v2/sports/football/nfl/scoreboard"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BoardsFile names a YAML file of pools loaded at start.
	BoardsFile string `koanf:"boards_file"`

	// FeedURL is the scoreboard endpoint polled for every pool.
	FeedURL string `koanf:"feed_url"`

	// FeedTimeoutMS bounds one fetch including its retries.
	FeedTimeoutMS int `koanf:"feed_timeout_ms"`

	// FeedRetries, FeedRetryBaseMS and FeedRetryMaxMS shape the backoff
	// for transient feed failures inside one fetch.
	FeedRetries     int `koanf:"feed_retries"`
	FeedRetryBaseMS int `koanf:"feed_retry_base_ms"`
	FeedRetryMaxMS  int `koanf:"feed_retry_max_ms"`

	// PollIntervalMS is the poll cadence per pool.
	PollIntervalMS int `koanf:"poll_interval_ms"`

	// ScenarioMaxDelta bounds the participant delta search.
	ScenarioMaxDelta int `koanf:"scenario_max_delta"`

	// RefreshRatePerSec and RefreshBurst throttle manual refreshes per pool.
	RefreshRatePerSec float64 `koanf:"refresh_rate_per_sec"`
	RefreshBurst      int     `koanf:"refresh_burst"`

	// NATSURL enables event publishing when set.
	NATSURL     string `koanf:"nats_url"`
	NATSSubject string `koanf:"nats_subject"`

	// AnnounceCacheSize bounds the announcement dedupe window.
	AnnounceCacheSize int `koanf:"announce_cache_size"`

	// AnnounceQueueSize bounds snapshots waiting to be announced.
	AnnounceQueueSize int `koanf:"announce_queue_size"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		FeedURL:           DefaultFeedURL,
		FeedTimeoutMS:     8000,
		FeedRetries:       3,
		FeedRetryBaseMS:   300,
		FeedRetryMaxMS:    5000,
		PollIntervalMS:    30000,
		ScenarioMaxDelta:  60,
		RefreshRatePerSec: 0.2,
		RefreshBurst:      2,
		NATSSubject:       "squares.events",
		AnnounceCacheSize: 10_000,
		AnnounceQueueSize: 1024,
	}
}

// FeedTimeout returns FeedTimeoutMS as a duration.
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.FeedTimeoutMS) * time.Millisecond
}

// PollInterval returns PollIntervalMS as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// FeedRetryBase returns FeedRetryBaseMS as a duration.
func (c *Config) FeedRetryBase() time.Duration {
	return time.Duration(c.FeedRetryBaseMS) * time.Millisecond
}

// FeedRetryMax returns FeedRetryMaxMS as a duration.
func (c *Config) FeedRetryMax() time.Duration {
	return time.Duration(c.FeedRetryMaxMS) * time.Millisecond
}

// Validate checks the settings the service cannot run without. A fetch
// must finish before the next poll is due.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.FeedURL == "":
		return fmt.Errorf("%w: feed_url must not be empty", ErrInvalidConfig)
	case c.PollIntervalMS <= 0:
		return fmt.Errorf("%w: poll_interval_ms must be positive", ErrInvalidConfig)
	case c.FeedTimeoutMS <= 0:
		return fmt.Errorf("%w: feed_timeout_ms must be positive", ErrInvalidConfig)
	case c.FeedTimeoutMS >= c.PollIntervalMS:
		return fmt.Errorf("%w: feed_timeout_ms (%d) must be less than poll_interval_ms (%d)",
			ErrInvalidConfig, c.FeedTimeoutMS, c.PollIntervalMS)
	case c.FeedRetries < 0:
		return fmt.Errorf("%w: feed_retries must not be negative", ErrInvalidConfig)
	case c.ScenarioMaxDelta < 0:
		return fmt.Errorf("%w: scenario_max_delta must not be negative", ErrInvalidConfig)
	}
	return nil
}
