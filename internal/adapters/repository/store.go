// Package repository stores pool definitions: the board, its axes and the
// game the pool follows.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/squares/internal/domain/model"
)

// Pool is one squares pool.
type Pool struct {
	ID    string
	Name  string
	TeamA string
	TeamB string
	// Date is the scoreboard day of the game; zero when not scheduled.
	Date      time.Time
	Grid      *model.Grid
	UpdatedAt time.Time
}

// Syncable reports whether the pool names a game the feed can look up.
func (p *Pool) Syncable() bool {
	return strings.TrimSpace(p.TeamA) != "" && strings.TrimSpace(p.TeamB) != "" && !p.Date.IsZero()
}

// Clone returns a deep copy.
func (p *Pool) Clone() *Pool {
	if p == nil {
		return nil
	}
	c := *p
	c.Grid = p.Grid.Clone()
	return &c
}

// Validate checks identity and board shape.
func (p *Pool) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil pool", ErrInvalidPool)
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidPool)
	}
	if p.Grid == nil {
		return fmt.Errorf("%w: pool %s has no board", ErrInvalidPool, p.ID)
	}
	if err := p.Grid.Validate(); err != nil {
		return fmt.Errorf("%w: pool %s: %w", ErrInvalidPool, p.ID, err)
	}
	return nil
}

// Store provides read/write access to pools. Reads return copies so a
// caller's view stays consistent while an administrator edits the pool.
type Store interface {
	// Get returns the pool or ErrNotFound.
	Get(ctx context.Context, id string) (*Pool, error)
	// List returns every pool ordered by id.
	List(ctx context.Context) ([]*Pool, error)
	// Put validates and stores the pool, replacing any pool with its id.
	Put(ctx context.Context, p *Pool) error
	// Delete removes the pool or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// Count returns the number of pools.
	Count(ctx context.Context) int
}
