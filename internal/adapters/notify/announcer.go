package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/okian/squares/internal/domain/dedupe"
	"github.com/okian/squares/internal/domain/model"
	"github.com/okian/squares/internal/domain/types"
	"github.com/okian/squares/internal/domain/winner"
	"github.com/okian/squares/pkg/logger"
	"github.com/okian/squares/pkg/metrics"
)

// Announcer turns applied snapshots into announcements. Each checkpoint
// closure goes out once per process; a leader change goes out whenever the
// leading cell differs from the last one announced for the pool.
type Announcer struct {
	pub   Publisher
	seen  dedupe.Deduper
	clock clockwork.Clock
	log   logger.Logger

	mu         sync.Mutex
	lastLeader map[string]string
}

// AnnouncerOption configures an Announcer.
type AnnouncerOption func(*Announcer)

// WithDeduper replaces the closure dedupe set.
func WithDeduper(d dedupe.Deduper) AnnouncerOption {
	return func(a *Announcer) {
		if d != nil {
			a.seen = d
		}
	}
}

// WithClock sets the clock used to stamp announcements.
func WithClock(c clockwork.Clock) AnnouncerOption {
	return func(a *Announcer) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithLogger sets the announcer logger.
func WithLogger(l logger.Logger) AnnouncerOption {
	return func(a *Announcer) {
		if l != nil {
			a.log = l
		}
	}
}

// NewAnnouncer creates an announcer publishing through pub.
func NewAnnouncer(pub Publisher, opts ...AnnouncerOption) *Announcer {
	a := &Announcer{
		pub:        pub,
		seen:       dedupe.NewInMemoryDeduper(),
		clock:      clockwork.NewRealClock(),
		log:        logger.NamedOrNop("notify"),
		lastLeader: make(map[string]string),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Observe derives and publishes the announcements for a newly applied
// snapshot. It returns what was published.
func (a *Announcer) Observe(ctx context.Context, poolID string, snap *model.Snapshot, grid *model.Grid) []types.Announcement {
	if snap == nil {
		return nil
	}
	var out []types.Announcement

	for _, w := range winner.ComputeHighlights(snap, grid).Winners {
		key := dedupe.Key(poolID, types.KindCheckpointClosed, w.Checkpoint.String(), w.Pair.Key())
		if a.seen.SeenAndRecord(ctx, key) {
			continue
		}
		ann := a.announcement(poolID, types.KindCheckpointClosed, snap)
		ann.Checkpoint = w.Checkpoint.String()
		ann.Key = w.Pair.Key()
		if w.Cell != nil {
			ann.Owners = w.Cell.Owners
		}
		if !a.publish(ctx, ann) {
			a.seen.Unrecord(ctx, key)
			continue
		}
		out = append(out, ann)
	}

	leader, ok := winner.ComputeCurrentLeader(snap, grid)
	if !ok {
		return out
	}
	identity := leader.Checkpoint.String() + "|" + leader.Key
	a.mu.Lock()
	changed := a.lastLeader[poolID] != identity
	a.mu.Unlock()
	if !changed {
		return out
	}
	ann := a.announcement(poolID, types.KindLeaderChanged, snap)
	ann.Checkpoint = leader.Checkpoint.String()
	ann.Key = leader.Key
	ann.Owners = leader.Owners
	if a.publish(ctx, ann) {
		a.mu.Lock()
		a.lastLeader[poolID] = identity
		a.mu.Unlock()
		metrics.RecordLeaderChange()
		out = append(out, ann)
	}
	return out
}

// Forget drops per-pool leader state, e.g. when a pool is removed.
func (a *Announcer) Forget(poolID string) {
	a.mu.Lock()
	delete(a.lastLeader, poolID)
	a.mu.Unlock()
}

func (a *Announcer) announcement(poolID, kind string, snap *model.Snapshot) types.Announcement {
	return types.Announcement{
		ID:     uuid.NewString(),
		PoolID: poolID,
		Kind:   kind,
		Owners: []string{},
		ScoreA: snap.ScoreA,
		ScoreB: snap.ScoreB,
		Manual: snap.Manual,
		At:     a.clock.Now(),
	}
}

func (a *Announcer) publish(ctx context.Context, ann types.Announcement) bool {
	if err := a.pub.Publish(ctx, ann); err != nil {
		metrics.RecordAnnouncementError()
		a.log.Warn(ctx, "announcement not published",
			logger.String("pool_id", ann.PoolID),
			logger.String("kind", ann.Kind),
			logger.Error(err),
		)
		return false
	}
	metrics.RecordAnnouncement(ann.Kind)
	return true
}
