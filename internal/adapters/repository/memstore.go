package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"
)

// MemStore keeps pools in memory.
type MemStore struct {
	mu    sync.RWMutex
	pools map[string]*Pool
	clock clockwork.Clock
}

// NewMemStore constructs an empty store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		pools: make(map[string]*Pool),
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemStore) Get(_ context.Context, id string) (*Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pools[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (s *MemStore) List(_ context.Context) ([]*Pool, error) {
	s.mu.RLock()
	out := make([]*Pool, 0, len(s.pools))
	for _, p := range s.pools {
		out = append(out, p.Clone())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Put(_ context.Context, p *Pool) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c := p.Clone()
	c.UpdatedAt = s.clock.Now()
	s.mu.Lock()
	s.pools[c.ID] = c
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pools[id]; !ok {
		return ErrNotFound
	}
	delete(s.pools, id)
	return nil
}

func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pools)
}
