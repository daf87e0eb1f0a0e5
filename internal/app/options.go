package service

import (
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/okian/squares/internal/adapters/notify"
	"github.com/okian/squares/internal/adapters/repository"
	"github.com/okian/squares/internal/livesync"
	"github.com/okian/squares/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the pool store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithFetcher sets the score feed used by every pool.
func WithFetcher(f livesync.Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithPublisher sets where announcements go.
func WithPublisher(p notify.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithBoardsFile names a YAML pool file loaded at start.
func WithBoardsFile(path string) Option {
	return func(s *Service) {
		s.boardsFile = path
	}
}

// WithPollInterval sets the feed poll cadence.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithFetchTimeout bounds each feed fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithScenarioMaxDelta sets the default FindDelta scan bound.
func WithScenarioMaxDelta(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxDelta = n
		}
	}
}

// WithRefreshLimit throttles manual refreshes per pool.
func WithRefreshLimit(perSecond float64, burst int) Option {
	return func(s *Service) {
		if perSecond > 0 {
			s.refreshRate = rate.Limit(perSecond)
		}
		if burst > 0 {
			s.refreshBurst = burst
		}
	}
}

// WithAnnounceCacheSize bounds the checkpoint announcement dedupe set.
func WithAnnounceCacheSize(n int) Option {
	return func(s *Service) {
		s.announceCacheSize = n
	}
}

// WithAnnounceQueueSize bounds how many applied snapshots may wait for
// the announcer.
func WithAnnounceQueueSize(n int) Option {
	return func(s *Service) {
		s.announceQueueSize = n
	}
}

// WithClock sets the clock for controllers and announcements.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
