package livesync

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/squares/internal/domain/model"
	"github.com/okian/squares/pkg/logger"
)

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithInterval sets the poll cadence.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithTimeout bounds each fetch.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock sets the clock driving the ticker and timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithOnSnapshot registers a callback run after a snapshot becomes the
// effective one: a feed snapshot outside manual override, or a manual entry.
func WithOnSnapshot(fn func(ctx context.Context, snap model.Snapshot)) Option {
	return func(c *Controller) {
		c.onSnapshot = fn
	}
}
