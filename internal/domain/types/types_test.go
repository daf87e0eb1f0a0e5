package types_test

import (
	"testing"

	"github.com/okian/squares/internal/domain/model"
	"github.com/okian/squares/internal/domain/scenario"
	types "github.com/okian/squares/internal/domain/types"
	"github.com/okian/squares/internal/domain/winner"
	. "github.com/smartystreets/goconvey/convey"
)

func TestViews(t *testing.T) {
	Convey("Given engine results", t, func() {
		cell := &winner.Cell{Index: 43, Row: 4, Col: 3, Owners: []string{"Dana"}}

		Convey("When converting highlights", func() {
			h := types.FromHighlights(winner.Highlights{
				Label: winner.LabelFinal,
				Winners: []winner.CheckpointWinner{
					{Checkpoint: model.Q1, Pair: winner.Pair{B: 0, A: 7}},
					{Checkpoint: model.Final, Pair: winner.Pair{B: 4, A: 7}, Cell: cell},
				},
			})

			Convey("Then keys and cells carry over", func() {
				So(h.Label, ShouldEqual, "FINAL")
				So(len(h.Winners), ShouldEqual, 2)
				So(h.Winners[0].Key, ShouldEqual, "0-7")
				So(h.Winners[0].Cell, ShouldBeNil)
				So(h.Winners[1].Checkpoint, ShouldEqual, "Final")
				So(h.Winners[1].Cell.Owners, ShouldResemble, []string{"Dana"})
			})
		})

		Convey("When converting empty highlights", func() {
			h := types.FromHighlights(winner.Highlights{Label: winner.LabelNow})
			So(h.Winners, ShouldNotBeNil)
			So(h.Winners, ShouldBeEmpty)
		})

		Convey("When converting a missing leader", func() {
			l := types.FromLeader(winner.Leader{}, false)
			So(l.Found, ShouldBeFalse)
			So(l.Cell, ShouldBeNil)
		})

		Convey("When converting a leader", func() {
			l := types.FromLeader(winner.Leader{
				Cell: *cell, Key: "4-7", State: model.StateInProgress, Checkpoint: model.Q4,
			}, true)
			So(l.Found, ShouldBeTrue)
			So(l.State, ShouldEqual, "in")
			So(l.Checkpoint, ShouldEqual, "Q4")
			So(l.Cell.Index, ShouldEqual, 43)
		})

		Convey("When converting scenarios", func() {
			s := types.FromNextScores([]scenario.NextScore{{
				Play:       scenario.Play{Name: "field goal", Points: 3},
				Projection: scenario.Projection{Side: model.SideB, Delta: 3, Digit: 7, Pair: winner.Pair{B: 7, A: 0}, Checkpoint: model.Q2},
			}})
			So(len(s), ShouldEqual, 1)
			So(s[0].Projection.Side, ShouldEqual, "B")
			So(s[0].Projection.Key, ShouldEqual, "7-0")
		})
	})
}
