package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/squares/internal/adapters/feed"
	"github.com/okian/squares/internal/adapters/repository"
	"github.com/okian/squares/internal/domain/model"
	"github.com/okian/squares/internal/domain/types"
	"github.com/okian/squares/internal/livesync"
	"github.com/okian/squares/pkg/logger"
)

func init() {
	_ = logger.Init()
}

type recordingPublisher struct {
	mu  sync.Mutex
	got []types.Announcement
}

func (p *recordingPublisher) Publish(_ context.Context, a types.Announcement) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, a)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.got))
	for _, a := range p.got {
		out = append(out, a.Kind)
	}
	return out
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func testBoard() *model.Grid {
	g := model.NewGrid()
	g.Axes[model.SideA] = model.MustAxis(3, 8, 1, 0, 7, 2, 9, 4, 6, 5)
	g.Axes[model.SideB] = model.MustAxis(6, 2, 9, 4, 0, 7, 1, 5, 3, 8)
	g.SetOwners(3, 5, "Alice")
	g.SetOwners(0, 5, "Carol")
	g.SetOwners(2, 8, "Bob")
	g.SetOwners(4, 5, "Dave")
	return g
}

// secondQuarter is 10-7 in Q2 after a 3-7 first quarter.
func secondQuarter() model.Snapshot {
	snap := model.Snapshot{
		State:  model.StateInProgress,
		Period: 2,
		ScoreA: 10,
		ScoreB: 7,
	}
	snap.Breakdown[0] = model.PeriodScore{A: 3, B: 7}
	snap.Breakdown[1] = model.PeriodScore{A: 7, B: 0}
	return snap
}

func newTestService(t *testing.T, fetch livesync.FetcherFunc, opts ...Option) (*Service, *recordingPublisher) {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemStore()
	pools := []*repository.Pool{
		{
			ID:    "sb",
			Name:  "Big Game",
			TeamA: "KC",
			TeamB: "PHI",
			Date:  time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC),
			Grid:  testBoard(),
		},
		{ID: "office", Name: "Office", Grid: testBoard()},
	}
	if err := repository.Seed(ctx, store, pools); err != nil {
		t.Fatal(err)
	}
	pub := &recordingPublisher{}
	base := []Option{
		WithStore(store),
		WithFetcher(fetch),
		WithPublisher(pub),
		WithClock(clockwork.NewFakeClock()),
		WithLogger(logger.NewNop()),
	}
	return New(append(base, opts...)...), pub
}

func TestServiceQueries(t *testing.T) {
	Convey("Given a started service following a second-quarter game", t, func() {
		ctx := context.Background()
		var calls atomic.Int32
		svc, pub := newTestService(t, func(context.Context, feed.Query) (model.Snapshot, error) {
			calls.Add(1)
			return secondQuarter(), nil
		})
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })

		So(waitFor(func() bool {
			st, err := svc.Status(ctx, "sb")
			return err == nil && st.Synced && !st.Refreshing
		}), ShouldBeTrue)

		Convey("Then the status carries the live score", func() {
			st, err := svc.Status(ctx, "sb")
			So(err, ShouldBeNil)
			So(st.Label, ShouldEqual, livesync.LabelLive)
			So(st.ScoreA, ShouldEqual, 10)
			So(st.ScoreB, ShouldEqual, 7)
			So(st.LastUpdated, ShouldNotBeNil)
		})

		Convey("Then the leader is the cell for the current digits", func() {
			l, err := svc.Leader(ctx, "sb")
			So(err, ShouldBeNil)
			So(l.Found, ShouldBeTrue)
			So(l.Key, ShouldEqual, "7-0")
			So(l.Checkpoint, ShouldEqual, "Q2")
			So(l.Cell.Index, ShouldEqual, 35)
			So(l.Cell.Owners, ShouldResemble, []string{"Alice"})
		})

		Convey("Then the first quarter is a closed checkpoint", func() {
			h, err := svc.Highlights(ctx, "sb")
			So(err, ShouldBeNil)
			So(h.Label, ShouldEqual, "NOW")
			So(len(h.Winners), ShouldEqual, 1)
			So(h.Winners[0].Key, ShouldEqual, "7-3")
			So(h.Winners[0].Cell.Owners, ShouldResemble, []string{"Carol"})
		})

		Convey("Then the closure and the leader were announced", func() {
			So(waitFor(func() bool { return len(pub.kinds()) == 2 }), ShouldBeTrue)
			So(pub.kinds(), ShouldContain, types.KindCheckpointClosed)
			So(pub.kinds(), ShouldContain, types.KindLeaderChanged)
		})

		Convey("When projecting and searching", func() {
			p, err := svc.Project(ctx, "sb", model.SideB, 3)
			So(err, ShouldBeNil)
			So(p.Key, ShouldEqual, "0-0")
			So(p.Cell.Index, ShouldEqual, 34)

			found, err := svc.FindDelta(ctx, "sb", model.SideA, "dave", -1)
			So(err, ShouldBeNil)
			So(found.Found, ShouldBeTrue)
			So(found.Projection.Delta, ShouldEqual, 7)

			missing, err := svc.FindDelta(ctx, "sb", model.SideA, "Bob", -1)
			So(err, ShouldBeNil)
			So(missing.Found, ShouldBeFalse)
			So(missing.Projection, ShouldBeNil)

			plays, err := svc.Scenarios(ctx, "sb", model.SideA)
			So(err, ShouldBeNil)
			So(len(plays), ShouldEqual, 5)
			So(plays[1].Points, ShouldEqual, 3)
			So(plays[1].Projection.Digit, ShouldEqual, 3)
		})

		Convey("When manual scores are entered", func() {
			st, err := svc.SetManualScores(ctx, "sb", 21, 13)
			So(err, ShouldBeNil)
			So(st.Label, ShouldEqual, livesync.LabelManual)
			So(st.ScoreA, ShouldEqual, 21)

			Convey("Then the leader follows the manual totals", func() {
				l, err := svc.Leader(ctx, "sb")
				So(err, ShouldBeNil)
				So(l.Key, ShouldEqual, "3-1")
				So(l.Cell.Owners, ShouldResemble, []string{"Bob"})
			})

			Convey("Then highlights are suppressed", func() {
				h, err := svc.Highlights(ctx, "sb")
				So(err, ShouldBeNil)
				So(h.Winners, ShouldBeEmpty)
			})

			Convey("Then clearing returns to the feed", func() {
				st, err := svc.ClearManualScores(ctx, "sb")
				So(err, ShouldBeNil)
				So(st.Manual, ShouldBeFalse)
				So(st.ScoreA, ShouldEqual, 10)
			})
		})

		Convey("When negative manual scores are entered", func() {
			_, err := svc.SetManualScores(ctx, "sb", -1, 3)
			So(errors.Is(err, livesync.ErrInvalidScore), ShouldBeTrue)
		})

		Convey("When a refresh is requested", func() {
			before := calls.Load()
			st, err := svc.Refresh(ctx, "sb")
			So(err, ShouldBeNil)
			So(st.Synced, ShouldBeTrue)
			So(calls.Load(), ShouldEqual, before+1)
		})

		Convey("Then an unknown pool is not found", func() {
			_, err := svc.Leader(ctx, "nope")
			So(errors.Is(err, ErrPoolNotFound), ShouldBeTrue)
			_, err = svc.SetManualScores(ctx, "nope", 1, 1)
			So(errors.Is(err, ErrPoolNotFound), ShouldBeTrue)
		})

		Convey("Then the pool without a game only takes manual scores", func() {
			st, err := svc.Status(ctx, "office")
			So(err, ShouldBeNil)
			So(st.Label, ShouldEqual, livesync.LabelWaiting)

			_, err = svc.Refresh(ctx, "office")
			So(errors.Is(err, ErrNotSyncable), ShouldBeTrue)

			h, err := svc.Highlights(ctx, "office")
			So(err, ShouldBeNil)
			So(h.Label, ShouldEqual, "NOW")
			So(h.Winners, ShouldBeEmpty)

			_, err = svc.SetManualScores(ctx, "office", 10, 7)
			So(err, ShouldBeNil)
			l, err := svc.Leader(ctx, "office")
			So(err, ShouldBeNil)
			So(l.Key, ShouldEqual, "7-0")
		})

		Convey("Then pools and stats are listed", func() {
			pools, err := svc.Pools(ctx)
			So(err, ShouldBeNil)
			So(len(pools), ShouldEqual, 2)
			So(pools[1].ID, ShouldEqual, "sb")
			So(pools[1].Date, ShouldEqual, "2026-02-08")
			So(pools[1].Participants, ShouldEqual, 4)

			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["pools"], ShouldEqual, 2)
		})
	})
}

func TestServiceRefreshLimit(t *testing.T) {
	Convey("Given a service allowing one refresh per pool", t, func() {
		ctx := context.Background()
		svc, _ := newTestService(t, func(context.Context, feed.Query) (model.Snapshot, error) {
			return secondQuarter(), nil
		}, WithRefreshLimit(0.001, 1))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })
		So(waitFor(func() bool {
			st, _ := svc.Status(ctx, "sb")
			return st.Synced && !st.Refreshing
		}), ShouldBeTrue)

		Convey("When refreshing twice", func() {
			_, first := svc.Refresh(ctx, "sb")
			_, second := svc.Refresh(ctx, "sb")

			Convey("Then the second is rejected", func() {
				So(first, ShouldBeNil)
				So(errors.Is(second, ErrRateLimited), ShouldBeTrue)
			})
		})
	})

	Convey("Given a feed that is down", t, func() {
		ctx := context.Background()
		svc, _ := newTestService(t, func(context.Context, feed.Query) (model.Snapshot, error) {
			return model.Snapshot{}, errors.New("connection refused")
		})
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })
		So(waitFor(func() bool {
			st, _ := svc.Status(ctx, "sb")
			return st.LastError != "" && !st.Refreshing
		}), ShouldBeTrue)

		Convey("Then a refresh reports the failure in the status", func() {
			st, err := svc.Refresh(ctx, "sb")
			So(err, ShouldBeNil)
			So(st.Label, ShouldEqual, livesync.LabelOffline)
			So(st.Synced, ShouldBeFalse)
		})
	})
}

func TestServiceBoardsFile(t *testing.T) {
	Convey("Given a boards file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "boards.yaml")
		doc := `pools:
  - id: family
    name: Family
    axis_a: [0, 1, 2, 3, 4, 5, 6, 7, 8, 9]
    axis_b: [9, 8, 7, 6, 5, 4, 3, 2, 1, 0]
    cells:
      "0,9": [Grandma]
`
		So(os.WriteFile(path, []byte(doc), 0o600), ShouldBeNil)

		svc := New(
			WithBoardsFile(path),
			WithPublisher(&recordingPublisher{}),
			WithFetcher(livesync.FetcherFunc(func(context.Context, feed.Query) (model.Snapshot, error) {
				return model.Snapshot{}, feed.ErrNoMatch
			})),
			WithClock(clockwork.NewFakeClock()),
		)
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })

		Convey("Then its pools are served", func() {
			pools, err := svc.Pools(ctx)
			So(err, ShouldBeNil)
			So(len(pools), ShouldEqual, 1)
			So(pools[0].ID, ShouldEqual, "family")

			_, err = svc.SetManualScores(ctx, "family", 20, 10)
			So(err, ShouldBeNil)
			l, err := svc.Leader(ctx, "family")
			So(err, ShouldBeNil)
			So(l.Cell.Owners, ShouldResemble, []string{"Grandma"})
		})
	})

	Convey("Given a missing boards file", t, func() {
		svc := New(WithBoardsFile(filepath.Join(t.TempDir(), "none.yaml")))

		Convey("Then start fails", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, repository.ErrLoadPools), ShouldBeTrue)
		})
	})
}
