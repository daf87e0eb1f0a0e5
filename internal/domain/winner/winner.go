// Package winner derives checkpoint winners and the currently leading cell
// from a score snapshot and a board. Every function here is pure.
package winner

import (
	"strconv"

	"github.com/okian/squares/internal/domain/model"
)

// Highlight labels.
const (
	LabelNow   = "NOW"
	LabelFinal = "FINAL"
)

// Pair is the winning digit pair. It is written top side first, (B, A),
// while the cell is found with row from A's axis and col from B's axis.
type Pair struct {
	B int `json:"b"`
	A int `json:"a"`
}

// PairOf builds the pair from two raw scores.
func PairOf(scoreA, scoreB int) Pair {
	return Pair{B: model.LastDigit(scoreB), A: model.LastDigit(scoreA)}
}

// Key is the "b-a" form used by consumers to match cells.
func (p Pair) Key() string {
	return strconv.Itoa(p.B) + "-" + strconv.Itoa(p.A)
}

// Cell is a resolved board square.
type Cell struct {
	Index  int      `json:"index"`
	Row    int      `json:"row"`
	Col    int      `json:"col"`
	Owners []string `json:"owners"`
}

// Locate resolves pair against the axes in force at cp. It reports false
// when either digit is missing from its axis.
func Locate(grid *model.Grid, cp model.Checkpoint, pair Pair) (Cell, bool) {
	row := grid.AxisFor(model.SideA, cp).IndexOf(pair.A)
	col := grid.AxisFor(model.SideB, cp).IndexOf(pair.B)
	if row < 0 || col < 0 {
		return Cell{}, false
	}
	return Cell{
		Index:  model.CellIndex(row, col),
		Row:    row,
		Col:    col,
		Owners: append([]string{}, grid.Owners(row, col)...),
	}, true
}

// CheckpointWinner is the result for one closed checkpoint.
type CheckpointWinner struct {
	Checkpoint model.Checkpoint
	Pair       Pair
	// Cell is nil when the board could not place the pair.
	Cell *Cell
}

// Highlights lists closed checkpoints in Q1, Q2, Q3, Final order.
type Highlights struct {
	Winners []CheckpointWinner
	Label   string
}

// Winner returns the record for cp if that checkpoint has closed.
func (h Highlights) Winner(cp model.Checkpoint) (CheckpointWinner, bool) {
	for _, w := range h.Winners {
		if w.Checkpoint == cp {
			return w, true
		}
	}
	return CheckpointWinner{}, false
}

// Keys maps checkpoint labels to pair keys.
func (h Highlights) Keys() map[string]string {
	out := make(map[string]string, len(h.Winners))
	for _, w := range h.Winners {
		out[w.Checkpoint.String()] = w.Pair.Key()
	}
	return out
}

// ComputeHighlights returns the winners of every closed checkpoint.
// A nil or manual snapshot yields no winners and the NOW label. Q1..Q3
// use running sums of per-quarter points; Final uses the final totals.
// When grid is non-nil each pair is placed on that checkpoint's axes.
func ComputeHighlights(snap *model.Snapshot, grid *model.Grid) Highlights {
	h := Highlights{Label: LabelNow}
	if snap == nil || snap.Manual {
		return h
	}
	final := snap.IsFinal()
	for i, cp := range []model.Checkpoint{model.Q1, model.Q2, model.Q3} {
		if snap.Period <= i+1 && !final {
			break
		}
		pair := PairOf(snap.Cumulative(model.SideA, cp), snap.Cumulative(model.SideB, cp))
		h.Winners = append(h.Winners, place(grid, cp, pair))
	}
	if final {
		h.Winners = append(h.Winners, place(grid, model.Final, PairOf(snap.ScoreA, snap.ScoreB)))
		h.Label = LabelFinal
	}
	return h
}

func place(grid *model.Grid, cp model.Checkpoint, pair Pair) CheckpointWinner {
	w := CheckpointWinner{Checkpoint: cp, Pair: pair}
	if grid == nil {
		return w
	}
	if cell, ok := Locate(grid, cp, pair); ok {
		w.Cell = &cell
	}
	return w
}

// ActiveCheckpoint picks the checkpoint whose axes apply right now.
func ActiveCheckpoint(snap *model.Snapshot) model.Checkpoint {
	switch {
	case snap == nil:
		return model.NoCheckpoint
	case snap.IsFinal():
		return model.Final
	case snap.Period <= 1:
		return model.Q1
	case snap.Period == 2:
		return model.Q2
	case snap.Period == 3:
		return model.Q3
	default:
		return model.Q4
	}
}

// Leader is the cell that owns the current score.
type Leader struct {
	Cell
	Key        string
	Pair       Pair
	State      model.GameState
	Checkpoint model.Checkpoint
}

// ComputeCurrentLeader resolves the cell owning the current score on the
// active checkpoint's axes. It reports false when the snapshot is nil or
// either digit is missing from its axis.
func ComputeCurrentLeader(snap *model.Snapshot, grid *model.Grid) (Leader, bool) {
	if snap == nil {
		return Leader{}, false
	}
	cp := ActiveCheckpoint(snap)
	pair := PairOf(snap.ScoreA, snap.ScoreB)
	cell, ok := Locate(grid, cp, pair)
	if !ok {
		return Leader{}, false
	}
	return Leader{
		Cell:       cell,
		Key:        pair.Key(),
		Pair:       pair,
		State:      snap.State,
		Checkpoint: cp,
	}, true
}
