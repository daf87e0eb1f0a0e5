package repository

import "github.com/jonboulle/clockwork"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithClock sets the clock used to stamp UpdatedAt.
func WithClock(c clockwork.Clock) Option {
	return func(s *MemStore) {
		if c != nil {
			s.clock = c
		}
	}
}
