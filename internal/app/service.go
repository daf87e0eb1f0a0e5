// Package service ties pools, their live sync controllers and the winner
// engine together behind the query surface the HTTP API serves.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/okian/squares/internal/adapters/feed"
	"github.com/okian/squares/internal/adapters/mq/queue"
	"github.com/okian/squares/internal/adapters/mq/worker"
	"github.com/okian/squares/internal/adapters/notify"
	"github.com/okian/squares/internal/adapters/repository"
	"github.com/okian/squares/internal/domain/dedupe"
	"github.com/okian/squares/internal/domain/model"
	"github.com/okian/squares/internal/domain/scenario"
	"github.com/okian/squares/internal/domain/types"
	"github.com/okian/squares/internal/domain/winner"
	"github.com/okian/squares/internal/livesync"
	"github.com/okian/squares/pkg/logger"
	"github.com/okian/squares/pkg/metrics"
)

// Defaults for the manual refresh limiter.
const (
	DefaultRefreshRate  = 0.2
	DefaultRefreshBurst = 2
)

// Service owns the pool store and one sync controller per pool.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	fetcher   livesync.Fetcher
	publisher notify.Publisher
	announcer *notify.Announcer

	// Applied snapshots reach the announcer through a queue so a slow
	// publisher never holds up a poll.
	observations   *queue.InMemoryQueue
	announceWorker *worker.Worker

	controllers map[string]*livesync.Controller
	limiters    map[string]*rate.Limiter

	boardsFile        string
	announceQueueSize int
	pollInterval      time.Duration
	fetchTimeout      time.Duration
	maxDelta          int
	refreshRate       rate.Limit
	refreshBurst      int
	announceCacheSize int
	clock             clockwork.Clock

	started bool
	active  int
	logger  logger.Logger
}

// New creates a service. Unset collaborators get in-process defaults: a
// memory store, the public scoreboard feed and a log-only publisher.
func New(opts ...Option) *Service {
	s := &Service{
		controllers:  make(map[string]*livesync.Controller),
		limiters:     make(map[string]*rate.Limiter),
		pollInterval: livesync.DefaultInterval,
		fetchTimeout: livesync.DefaultTimeout,
		maxDelta:     scenario.DefaultMaxDelta,
		refreshRate:  rate.Limit(DefaultRefreshRate),
		refreshBurst: DefaultRefreshBurst,
		clock:        clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.NamedOrNop("service")
	}
	if s.store == nil {
		s.store = repository.NewMemStore(repository.WithClock(s.clock))
	}
	if s.fetcher == nil {
		s.fetcher = feed.New(feed.DefaultURL, feed.WithLogger(s.logger))
	}
	if s.publisher == nil {
		s.publisher = notify.NewLogPublisher(s.logger)
	}
	var dedupeOpts []dedupe.Option
	if s.announceCacheSize > 0 {
		dedupeOpts = append(dedupeOpts, dedupe.WithMaxSize(s.announceCacheSize))
	}
	s.announcer = notify.NewAnnouncer(s.publisher,
		notify.WithDeduper(dedupe.NewInMemoryDeduper(dedupeOpts...)),
		notify.WithClock(s.clock),
		notify.WithLogger(s.logger),
	)
	s.observations = queue.NewInMemoryQueue(queue.WithCapacity(s.announceQueueSize))
	s.announceWorker = worker.New(s.observations, worker.HandlerFunc(s.announce),
		worker.WithName("announcer"),
		worker.WithLogger(s.logger),
	)
	return s
}

// Start loads the boards file, creates a controller per pool and starts
// polling for every pool that names a game. Calling it twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.boardsFile != "" {
		pools, err := repository.LoadFile(ctx, s.boardsFile)
		if err != nil {
			return fmt.Errorf("load boards: %w", err)
		}
		if err := repository.Seed(ctx, s.store, pools); err != nil {
			return fmt.Errorf("seed boards: %w", err)
		}
	}

	pools, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list pools: %w", err)
	}

	active := 0
	for _, p := range pools {
		ctrl := s.newController(p)
		s.controllers[p.ID] = ctrl
		s.limiters[p.ID] = rate.NewLimiter(s.refreshRate, s.refreshBurst)
		if !p.Syncable() {
			s.logger.Info(ctx, "pool has no game, manual scoring only", logger.String("pool_id", p.ID))
			continue
		}
		if err := ctrl.Start(ctx); err != nil {
			return fmt.Errorf("start pool %s: %w", p.ID, err)
		}
		active++
	}
	metrics.UpdateActivePools(active)

	// The worker outlives ctx so Stop can drain what is queued.
	go s.announceWorker.Run(context.WithoutCancel(ctx))

	s.active = active
	s.started = true
	s.logger.Info(ctx, "service started",
		logger.Int("pools", len(pools)),
		logger.Int("syncing", active),
	)
	return nil
}

func (s *Service) newController(p *repository.Pool) *livesync.Controller {
	id := p.ID
	q := feed.Query{Date: p.Date, TeamA: p.TeamA, TeamB: p.TeamB}
	return livesync.New(id, s.fetcher, q,
		livesync.WithInterval(s.pollInterval),
		livesync.WithTimeout(s.fetchTimeout),
		livesync.WithClock(s.clock),
		livesync.WithLogger(s.logger),
		livesync.WithOnSnapshot(func(ctx context.Context, snap model.Snapshot) {
			if !s.observations.Enqueue(ctx, queue.Observation{PoolID: id, Snapshot: snap}) {
				s.logger.Warn(ctx, "announcement dropped", logger.String("pool_id", id))
			}
		}),
	)
}

// announce reads the board fresh so administrator edits are honoured.
func (s *Service) announce(ctx context.Context, o queue.Observation) error { //nolint:gocritic // hugeParam
	p, err := s.store.Get(ctx, o.PoolID)
	if err != nil {
		return fmt.Errorf("announce %s: %w", o.PoolID, err)
	}
	s.announcer.Observe(ctx, o.PoolID, &o.Snapshot, p.Grid)
	return nil
}

// Stop stops every controller and closes the publisher.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	var errs []error
	for id, ctrl := range s.controllers {
		if err := ctrl.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop pool %s: %w", id, err))
		}
	}
	if err := s.announceWorker.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop announcer: %w", err))
	}
	if err := s.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	metrics.UpdateActivePools(0)
	s.active = 0
	s.started = false
	s.logger.Info(ctx, "service stopped")
	return errors.Join(errs...)
}

// lookup returns the pool's current board and effective snapshot. The
// snapshot is nil before the first fetch lands.
func (s *Service) lookup(ctx context.Context, id string) (*repository.Pool, *livesync.Controller, *model.Snapshot, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, nil, fmt.Errorf("%w: %s", ErrPoolNotFound, id)
		}
		return nil, nil, nil, err
	}
	s.mu.RLock()
	ctrl := s.controllers[id]
	s.mu.RUnlock()
	if ctrl == nil {
		return p, nil, nil, nil
	}
	if snap, ok := ctrl.Snapshot(); ok {
		return p, ctrl, &snap, nil
	}
	return p, ctrl, nil, nil
}

func (s *Service) controller(ctx context.Context, id string) (*livesync.Controller, error) {
	_, ctrl, _, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if ctrl == nil {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, id)
	}
	return ctrl, nil
}

// Highlights returns the closed checkpoint winners for a pool.
func (s *Service) Highlights(ctx context.Context, id string) (types.Highlights, error) {
	p, _, snap, err := s.lookup(ctx, id)
	if err != nil {
		return types.Highlights{}, err
	}
	return types.FromHighlights(winner.ComputeHighlights(snap, p.Grid)), nil
}

// Leader returns the cell the current score points at.
func (s *Service) Leader(ctx context.Context, id string) (types.Leader, error) {
	p, _, snap, err := s.lookup(ctx, id)
	if err != nil {
		return types.Leader{}, err
	}
	return types.FromLeader(winner.ComputeCurrentLeader(snap, p.Grid)), nil
}

// Project returns where the board lands if side scores delta more points.
func (s *Service) Project(ctx context.Context, id string, side model.Side, delta int) (types.Projection, error) {
	p, _, snap, err := s.lookup(ctx, id)
	if err != nil {
		return types.Projection{}, err
	}
	return types.FromProjection(scenario.Project(snap, p.Grid, side, delta)), nil
}

// FindDelta searches for the smallest delta that hands participant the
// lead. A negative maxDelta uses the configured bound.
func (s *Service) FindDelta(ctx context.Context, id string, side model.Side, participant string, maxDelta int) (types.FindResult, error) {
	p, _, snap, err := s.lookup(ctx, id)
	if err != nil {
		return types.FindResult{}, err
	}
	if maxDelta < 0 {
		maxDelta = s.maxDelta
	}
	res := types.FindResult{Participant: participant}
	if proj, ok := scenario.FindDelta(snap, p.Grid, side, participant, maxDelta); ok {
		view := types.FromProjection(proj)
		res.Found = true
		res.Projection = &view
	}
	return res, nil
}

// Scenarios projects each common scoring play for side.
func (s *Service) Scenarios(ctx context.Context, id string, side model.Side) ([]types.Scenario, error) {
	p, _, snap, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return types.FromNextScores(scenario.NextScores(snap, p.Grid, side, nil)), nil
}

// Status reports a pool's sync state and effective score.
func (s *Service) Status(ctx context.Context, id string) (types.Status, error) {
	_, ctrl, snap, err := s.lookup(ctx, id)
	if err != nil {
		return types.Status{}, err
	}
	return statusView(id, ctrl, snap), nil
}

func statusView(id string, ctrl *livesync.Controller, snap *model.Snapshot) types.Status {
	out := types.Status{PoolID: id, Label: livesync.LabelWaiting}
	if ctrl != nil {
		st := ctrl.Status()
		out.Label = st.Label
		out.Refreshing = st.Refreshing
		out.Synced = st.Synced
		out.Manual = st.Manual
		if !st.LastUpdated.IsZero() {
			at := st.LastUpdated
			out.LastUpdated = &at
		}
		if st.LastError != nil {
			out.LastError = st.LastError.Error()
		}
	}
	if snap != nil {
		out.State = snap.State.String()
		out.Period = snap.Period
		out.ScoreA = snap.ScoreA
		out.ScoreB = snap.ScoreB
		out.Clock = snap.Clock
		out.Detail = snap.Detail
	}
	return out
}

// Refresh polls the feed now. It is throttled per pool and returns
// livesync.ErrInFlight when a fetch is already running. Fetch failures are
// not errors here: they show up in the returned status.
func (s *Service) Refresh(ctx context.Context, id string) (types.Status, error) {
	p, ctrl, _, err := s.lookup(ctx, id)
	if err != nil {
		return types.Status{}, err
	}
	if ctrl == nil || !p.Syncable() {
		return types.Status{}, fmt.Errorf("%w: %s", ErrNotSyncable, id)
	}
	s.mu.RLock()
	lim := s.limiters[id]
	s.mu.RUnlock()
	if lim != nil && !lim.Allow() {
		metrics.RecordRefreshRejected()
		return types.Status{}, fmt.Errorf("%w: %s", ErrRateLimited, id)
	}

	if err := ctrl.Poll(ctx); err != nil {
		switch {
		case errors.Is(err, livesync.ErrInFlight):
			return types.Status{}, err
		case ctx.Err() != nil:
			return types.Status{}, ctx.Err()
		}
		s.logger.Debug(ctx, "manual refresh failed", logger.String("pool_id", id), logger.Error(err))
	}
	return s.Status(ctx, id)
}

// SetManualScores overrides the feed with commissioner-entered totals.
func (s *Service) SetManualScores(ctx context.Context, id string, scoreA, scoreB int) (types.Status, error) {
	ctrl, err := s.controller(ctx, id)
	if err != nil {
		return types.Status{}, err
	}
	if err := ctrl.SetManualOverride(ctx, scoreA, scoreB); err != nil {
		return types.Status{}, err
	}
	return s.Status(ctx, id)
}

// ClearManualScores hands scoring back to the feed.
func (s *Service) ClearManualScores(ctx context.Context, id string) (types.Status, error) {
	ctrl, err := s.controller(ctx, id)
	if err != nil {
		return types.Status{}, err
	}
	ctrl.ClearManualOverride(ctx)
	return s.Status(ctx, id)
}

// Pools lists the configured pools.
func (s *Service) Pools(ctx context.Context) ([]types.Pool, error) {
	pools, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.Pool, 0, len(pools))
	for _, p := range pools {
		view := types.Pool{
			ID:    p.ID,
			Name:  p.Name,
			TeamA: p.TeamA,
			TeamB: p.TeamB,
		}
		if !p.Date.IsZero() {
			view.Date = p.Date.Format(time.DateOnly)
		}
		if p.Grid != nil {
			view.Dynamic = p.Grid.Dynamic
			view.Participants = len(p.Grid.Participants())
		}
		out = append(out, view)
	}
	return out, nil
}

// GetStats returns service statistics.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var synced, manual, refreshing int
	for _, ctrl := range s.controllers {
		st := ctrl.Status()
		if st.Synced {
			synced++
		}
		if st.Manual {
			manual++
		}
		if st.Refreshing {
			refreshing++
		}
	}
	return map[string]interface{}{
		"started":            s.started,
		"pools":              len(s.controllers),
		"pools_active":       s.active,
		"pools_synced":       synced,
		"pools_manual":       manual,
		"pools_refreshing":   refreshing,
		"poll_interval_ms":   s.pollInterval.Milliseconds(),
		"fetch_timeout_ms":   s.fetchTimeout.Milliseconds(),
		"scenario_max_delta": s.maxDelta,
	}
}
