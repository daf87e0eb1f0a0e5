// Package livesync keeps one pool's view of the live game current: it polls
// the score feed on a fixed cadence, allows at most one fetch in flight,
// bounds every fetch with a timeout and exposes the sync status.
package livesync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/okian/squares/internal/adapters/feed"
	"github.com/okian/squares/internal/domain/model"
	"github.com/okian/squares/pkg/logger"
	"github.com/okian/squares/pkg/metrics"
)

// Defaults.
const (
	DefaultInterval = 30 * time.Second
	DefaultTimeout  = 8 * time.Second
)

// Fetcher obtains one snapshot for a game.
type Fetcher interface {
	Fetch(ctx context.Context, q feed.Query) (model.Snapshot, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, q feed.Query) (model.Snapshot, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, q feed.Query) (model.Snapshot, error) {
	return f(ctx, q)
}

// Controller owns the sync session of one pool.
type Controller struct {
	poolID     string
	fetcher    Fetcher
	query      feed.Query
	interval   time.Duration
	timeout    time.Duration
	clock      clockwork.Clock
	log        logger.Logger
	onSnapshot func(ctx context.Context, snap model.Snapshot)

	inFlight atomic.Bool
	seq      atomic.Uint64

	mu          sync.RWMutex
	snap        *model.Snapshot
	manual      *model.Snapshot
	landed      uint64
	synced      bool
	lastUpdated time.Time
	lastErr     error
	failure     Failure

	lifeMu   sync.Mutex
	running  bool
	stopped  bool
	cancel   context.CancelFunc
	shutdown chan struct{}
	done     chan struct{}
}

// New creates a controller for poolID that looks up q through fetcher.
func New(poolID string, fetcher Fetcher, q feed.Query, opts ...Option) *Controller {
	c := &Controller{
		poolID:   poolID,
		fetcher:  fetcher,
		query:    q,
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
		clock:    clockwork.NewRealClock(),
		log:      logger.NamedOrNop("livesync"),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logger.String("pool_id", poolID))
	return c
}

// Start polls immediately and then on every interval until Stop is called
// or ctx ends.
func (c *Controller) Start(ctx context.Context) error {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if c.running {
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true
	go c.run(runCtx)
	return nil
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.done)

	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	c.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.shutdown:
			return
		case <-ticker.Chan():
			c.tick(ctx)
		}
	}
}

func (c *Controller) tick(ctx context.Context) {
	if err := c.Poll(ctx); err != nil && ctx.Err() == nil {
		c.log.Debug(ctx, "poll finished with error", logger.Error(err))
	}
}

// Stop ends the poll loop, cancelling any fetch in flight, and waits for it
// to exit or ctx to expire.
func (c *Controller) Stop(ctx context.Context) error {
	c.lifeMu.Lock()
	if !c.running {
		c.lifeMu.Unlock()
		return nil
	}
	if !c.stopped {
		c.stopped = true
		close(c.shutdown)
		c.cancel()
	}
	c.lifeMu.Unlock()

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		c.log.Warn(ctx, "stop timed out")
		return fmt.Errorf("stop timed out: %w", ctx.Err())
	}
}

// Poll performs one fetch now. It returns ErrInFlight without fetching when
// another fetch is outstanding. On failure the previous snapshot is kept.
// Poll returns once the fetch timeout expires even if the fetcher ignores
// cancellation; whatever it returns afterwards is discarded.
func (c *Controller) Poll(ctx context.Context) error {
	if !c.inFlight.CompareAndSwap(false, true) {
		metrics.RecordPollSkipped()
		return ErrInFlight
	}
	defer c.inFlight.Store(false)

	seq := c.seq.Add(1)
	fetchID := uuid.NewString()
	start := c.clock.Now()

	fctx, cancel := clockwork.WithTimeout(ctx, c.clock, c.timeout)
	defer cancel()
	snap, err := c.fetch(fctx)
	latency := float64(c.clock.Since(start).Milliseconds())

	if err != nil {
		if ctx.Err() != nil {
			// Aborted by shutdown: leave state untouched.
			return ctx.Err()
		}
		failure, wrapped := classify(err)
		metrics.RecordFetch(outcomeOf(failure), latency)
		metrics.RecordErrorByComponent("livesync", failure.String())
		c.fail(seq, failure, wrapped)
		c.log.Warn(ctx, "fetch failed",
			logger.String("fetch_id", fetchID),
			logger.String("failure", failure.String()),
			logger.Error(err),
		)
		return wrapped
	}

	metrics.RecordFetch(metrics.OutcomeSuccess, latency)
	snap.Seq = seq
	snap.Manual = false
	snap.FetchedAt = c.clock.Now()
	if err := c.apply(ctx, snap); err != nil {
		return err
	}
	c.log.Debug(ctx, "snapshot applied",
		logger.String("fetch_id", fetchID),
		logger.String("state", snap.State.String()),
		logger.Int("period", snap.Period),
		logger.Int("score_a", snap.ScoreA),
		logger.Int("score_b", snap.ScoreB),
	)
	return nil
}

type fetchResult struct {
	snap model.Snapshot
	err  error
}

// fetch runs the fetcher and returns no later than fctx ends. Only call
// fctx.Err once Done is closed: fake-clock contexts block until then.
func (c *Controller) fetch(fctx context.Context) (model.Snapshot, error) {
	results := make(chan fetchResult, 1)
	go func() {
		snap, err := c.fetcher.Fetch(fctx, c.query)
		results <- fetchResult{snap: snap, err: err}
	}()

	select {
	case r := <-results:
		select {
		case <-fctx.Done():
			return model.Snapshot{}, fctx.Err()
		default:
			return r.snap, r.err
		}
	case <-fctx.Done():
		return model.Snapshot{}, fctx.Err()
	}
}

func classify(err error) (Failure, error) {
	switch {
	case errors.Is(err, feed.ErrNoMatch):
		return FailureNoMatch, err
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout, fmt.Errorf("%w: %w", ErrTimeout, err)
	default:
		return FailureTransient, err
	}
}

func outcomeOf(f Failure) string {
	switch f {
	case FailureTimeout:
		return metrics.OutcomeTimeout
	case FailureNoMatch:
		return metrics.OutcomeNoMatch
	default:
		return metrics.OutcomeError
	}
}

// apply stores snap unless a fetch with a higher sequence already landed.
func (c *Controller) apply(ctx context.Context, snap model.Snapshot) error {
	c.mu.Lock()
	if snap.Seq <= c.landed {
		c.mu.Unlock()
		metrics.RecordSnapshotDiscarded()
		return ErrStale
	}
	c.landed = snap.Seq
	c.snap = &snap
	c.synced = true
	c.lastErr = nil
	c.failure = FailureNone
	c.lastUpdated = snap.FetchedAt
	manual := c.manual != nil
	c.mu.Unlock()

	metrics.RecordSnapshotApplied()
	metrics.UpdateLastSync(c.poolID, snap.FetchedAt.Unix())
	if !manual && c.onSnapshot != nil {
		c.onSnapshot(ctx, snap)
	}
	return nil
}

func (c *Controller) fail(seq uint64, failure Failure, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.landed {
		return
	}
	c.landed = seq
	c.synced = false
	c.lastErr = err
	c.failure = failure
}

// SetManualOverride installs commissioner-entered totals. While set, feed
// results are still stored but no longer drive the effective snapshot.
func (c *Controller) SetManualOverride(ctx context.Context, scoreA, scoreB int) error {
	if scoreA < 0 || scoreB < 0 {
		return fmt.Errorf("%w: %d-%d", ErrInvalidScore, scoreA, scoreB)
	}
	snap := model.ManualSnapshot(scoreA, scoreB, c.clock.Now())
	c.mu.Lock()
	entering := c.manual == nil
	c.manual = &snap
	c.mu.Unlock()

	if entering {
		metrics.AddManualOverrides(1)
	}
	c.log.Info(ctx, "manual scores set", logger.Int("score_a", scoreA), logger.Int("score_b", scoreB))
	if c.onSnapshot != nil {
		c.onSnapshot(ctx, snap)
	}
	return nil
}

// ClearManualOverride returns control to the feed.
func (c *Controller) ClearManualOverride(ctx context.Context) {
	c.mu.Lock()
	leaving := c.manual != nil
	c.manual = nil
	snap := c.snap
	c.mu.Unlock()

	if !leaving {
		return
	}
	metrics.AddManualOverrides(-1)
	c.log.Info(ctx, "manual scores cleared")
	if snap != nil && c.onSnapshot != nil {
		c.onSnapshot(ctx, *snap)
	}
}

// Snapshot returns the effective snapshot: the manual entry when one is
// set, otherwise the latest feed snapshot. ok is false before any arrives.
func (c *Controller) Snapshot() (model.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.manual != nil {
		return *c.manual, true
	}
	if c.snap != nil {
		return *c.snap, true
	}
	return model.Snapshot{}, false
}

// FeedSnapshot returns the latest feed snapshot regardless of override.
func (c *Controller) FeedSnapshot() (model.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return model.Snapshot{}, false
	}
	return *c.snap, true
}

// Status reports the sync state.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		Label:       label(c.manual != nil, c.failure, c.snap),
		Refreshing:  c.inFlight.Load(),
		Synced:      c.synced,
		Manual:      c.manual != nil,
		LastUpdated: c.lastUpdated,
		LastError:   c.lastErr,
		Failure:     c.failure,
	}
}

// IsRefreshing reports whether a fetch is in flight.
func (c *Controller) IsRefreshing() bool { return c.inFlight.Load() }

// IsSynced reports whether the most recent fetch succeeded.
func (c *Controller) IsSynced() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.synced
}

// LastUpdated is when the last successful snapshot landed.
func (c *Controller) LastUpdated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdated
}

// PoolID returns the pool this controller syncs.
func (c *Controller) PoolID() string { return c.poolID }
