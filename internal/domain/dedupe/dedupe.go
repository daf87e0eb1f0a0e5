// Package dedupe tracks which announcements have already gone out.
package dedupe

import (
	"context"
	"math"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Deduper records announcement keys so each is published at most once.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded and records it
	// if not, in one step.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a failed publish can be retried.
	Unrecord(ctx context.Context, key string)

	Size() int
}

// Key joins the parts of an announcement identity: pool, kind, checkpoint
// and cell key.
func Key(parts ...string) string {
	return strings.Join(parts, "|")
}

// inMemoryDeduper keeps keys in an LRU that is only ever probed with
// ContainsOrAdd, which leaves recency alone on a hit, so eviction follows
// insertion order. maxSize <= 0 disables eviction.
type inMemoryDeduper struct {
	seen    *lru.Cache[string, struct{}]
	maxSize int
}

// NewInMemoryDeduper creates a deduper; the default bound is 10000 keys.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: 10000}
	for _, opt := range opts {
		opt(d)
	}
	size := d.maxSize
	if size <= 0 {
		size = math.MaxInt
	}
	// New only fails for a non-positive size.
	d.seen, _ = lru.New[string, struct{}](size)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	seen, _ := d.seen.ContainsOrAdd(key, struct{}{})
	return seen
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.seen.Remove(key)
}

func (d *inMemoryDeduper) Size() int {
	return d.seen.Len()
}
