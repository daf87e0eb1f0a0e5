package winner_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/squares/internal/domain/model"
	"github.com/okian/squares/internal/domain/winner"
	. "github.com/smartystreets/goconvey/convey"
)

func board() *model.Grid {
	g := model.NewGrid()
	g.Axes[model.SideA] = model.MustAxis(3, 8, 1, 0, 7, 2, 9, 4, 6, 5)
	g.Axes[model.SideB] = model.MustAxis(6, 2, 9, 4, 0, 7, 1, 5, 3, 8)
	g.SetOwners(4, 3, "Dana", "Eli")
	g.SetOwners(4, 4, "Fran")
	return g
}

func thirdQuarterDone() *model.Snapshot {
	return &model.Snapshot{
		State:  model.StateInProgress,
		Period: 4,
		ScoreA: 20,
		ScoreB: 14,
		Breakdown: [model.PeriodSlots]model.PeriodScore{
			{A: 7, B: 0}, {A: 3, B: 14}, {A: 10, B: 0},
		},
	}
}

func TestComputeHighlights(t *testing.T) {
	Convey("Given three closed quarters", t, func() {
		h := winner.ComputeHighlights(thirdQuarterDone(), nil)

		Convey("Then pairs come from running sums, top side first", func() {
			want := map[string]string{"Q1": "0-7", "Q2": "4-0", "Q3": "4-0"}
			So(cmp.Diff(want, h.Keys()), ShouldBeEmpty)
			So(h.Label, ShouldEqual, winner.LabelNow)
		})

		Convey("Then no cells are placed without a board", func() {
			for _, w := range h.Winners {
				So(w.Cell, ShouldBeNil)
			}
		})
	})

	Convey("Given the second quarter in play", t, func() {
		snap := thirdQuarterDone()
		snap.Period = 2
		h := winner.ComputeHighlights(snap, nil)

		Convey("Then only Q1 has closed", func() {
			So(cmp.Diff(map[string]string{"Q1": "0-7"}, h.Keys()), ShouldBeEmpty)
		})
	})

	Convey("Given a final game", t, func() {
		snap := thirdQuarterDone()
		snap.State = model.StateFinal
		snap.Period = 4
		snap.ScoreA, snap.ScoreB = 27, 24
		snap.Breakdown[3] = model.PeriodScore{A: 7, B: 10}
		h := winner.ComputeHighlights(snap, board())

		Convey("Then Final uses the totals and the label flips", func() {
			w, ok := h.Winner(model.Final)
			So(ok, ShouldBeTrue)
			So(w.Pair, ShouldResemble, winner.Pair{B: 4, A: 7})
			So(w.Pair.Key(), ShouldEqual, "4-7")
			So(h.Label, ShouldEqual, winner.LabelFinal)
			So(len(h.Winners), ShouldEqual, 4)
		})

		Convey("Then each winner is placed on the board", func() {
			w, _ := h.Winner(model.Final)
			So(cmp.Diff(&winner.Cell{Index: 43, Row: 4, Col: 3, Owners: []string{"Dana", "Eli"}}, w.Cell), ShouldBeEmpty)
			q1, _ := h.Winner(model.Q1)
			So(cmp.Diff(&winner.Cell{Index: 44, Row: 4, Col: 4, Owners: []string{"Fran"}}, q1.Cell), ShouldBeEmpty)
		})

		Convey("Then recomputing gives the same result", func() {
			So(cmp.Diff(h, winner.ComputeHighlights(snap, board())), ShouldBeEmpty)
		})
	})

	Convey("Given a final game decided before any period advanced", t, func() {
		snap := &model.Snapshot{State: model.StateFinal, Period: 1, ScoreA: 3}
		h := winner.ComputeHighlights(snap, nil)

		Convey("Then every checkpoint is closed", func() {
			want := map[string]string{"Q1": "0-0", "Q2": "0-0", "Q3": "0-0", "Final": "0-3"}
			So(cmp.Diff(want, h.Keys()), ShouldBeEmpty)
		})
	})

	Convey("Given a manual snapshot", t, func() {
		snap := model.ManualSnapshot(27, 24, time.Time{})
		snap.State = model.StateFinal
		h := winner.ComputeHighlights(&snap, board())

		Convey("Then no winners are derived", func() {
			So(h.Winners, ShouldBeEmpty)
			So(h.Label, ShouldEqual, winner.LabelNow)
		})
	})

	Convey("Given no snapshot", t, func() {
		h := winner.ComputeHighlights(nil, board())
		So(h.Winners, ShouldBeEmpty)
		So(h.Label, ShouldEqual, winner.LabelNow)
	})
}

func TestDynamicHighlights(t *testing.T) {
	Convey("Given a dynamic board with its own Q1 axes", t, func() {
		g := board()
		g.Dynamic = true
		g.SetQuarterAxis(model.SideA, model.Q1, model.MustAxis(0, 1, 2, 3, 4, 5, 6, 7, 8, 9))
		g.SetQuarterAxis(model.SideB, model.Q1, model.MustAxis(0, 1, 2, 3, 4, 5, 6, 7, 8, 9))
		g.SetOwners(7, 0, "Gus")

		h := winner.ComputeHighlights(thirdQuarterDone(), g)

		Convey("Then Q1 is placed on the Q1 axes and Q2 on the base axes", func() {
			q1, _ := h.Winner(model.Q1)
			So(q1.Cell, ShouldNotBeNil)
			So(q1.Cell.Index, ShouldEqual, 70)
			So(q1.Cell.Owners, ShouldResemble, []string{"Gus"})

			q2, _ := h.Winner(model.Q2)
			So(q2.Cell, ShouldNotBeNil)
			So(q2.Cell.Row, ShouldEqual, 3)
			So(q2.Cell.Col, ShouldEqual, 3)
		})
	})
}

func TestActiveCheckpoint(t *testing.T) {
	Convey("Given snapshots across the game", t, func() {
		cases := []struct {
			state  model.GameState
			period int
			want   model.Checkpoint
		}{
			{model.StatePre, 0, model.Q1},
			{model.StateInProgress, 1, model.Q1},
			{model.StateInProgress, 2, model.Q2},
			{model.StateInProgress, 3, model.Q3},
			{model.StateInProgress, 4, model.Q4},
			{model.StateInProgress, 5, model.Q4},
			{model.StateFinal, 2, model.Final},
		}
		for _, c := range cases {
			snap := &model.Snapshot{State: c.state, Period: c.period}
			So(winner.ActiveCheckpoint(snap), ShouldEqual, c.want)
		}
		So(winner.ActiveCheckpoint(nil), ShouldEqual, model.NoCheckpoint)
	})
}

func TestComputeCurrentLeader(t *testing.T) {
	Convey("Given a live score on a static board", t, func() {
		snap := &model.Snapshot{State: model.StateInProgress, Period: 4, ScoreA: 17, ScoreB: 14}
		leader, ok := winner.ComputeCurrentLeader(snap, board())

		Convey("Then the cell comes from row A, column B", func() {
			So(ok, ShouldBeTrue)
			So(leader.Key, ShouldEqual, "4-7")
			So(leader.Row, ShouldEqual, 4)
			So(leader.Col, ShouldEqual, 3)
			So(leader.Index, ShouldEqual, 43)
			So(leader.Owners, ShouldResemble, []string{"Dana", "Eli"})
			So(leader.Checkpoint, ShouldEqual, model.Q4)
			So(leader.State, ShouldEqual, model.StateInProgress)
		})
	})

	Convey("Given an unowned cell", t, func() {
		snap := &model.Snapshot{Period: 1}
		leader, ok := winner.ComputeCurrentLeader(snap, board())

		Convey("Then the leader has an empty owner list", func() {
			So(ok, ShouldBeTrue)
			So(leader.Owners, ShouldNotBeNil)
			So(leader.Owners, ShouldBeEmpty)
		})
	})

	Convey("Given a board with an unassigned axis slot", t, func() {
		g := board()
		g.Axes[model.SideB][3] = model.NoDigit
		snap := &model.Snapshot{Period: 2, ScoreA: 7, ScoreB: 4}

		Convey("Then there is no leader", func() {
			_, ok := winner.ComputeCurrentLeader(snap, g)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given no snapshot or no board", t, func() {
		_, ok := winner.ComputeCurrentLeader(nil, board())
		So(ok, ShouldBeFalse)
		_, ok = winner.ComputeCurrentLeader(&model.Snapshot{ScoreA: 7}, nil)
		So(ok, ShouldBeFalse)
	})
}
