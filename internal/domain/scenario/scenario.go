// Package scenario projects hypothetical scores onto the board.
package scenario

import (
	"github.com/okian/squares/internal/domain/model"
	"github.com/okian/squares/internal/domain/winner"
)

// DefaultMaxDelta bounds FindDelta when the caller gives a negative bound.
const DefaultMaxDelta = 60

// Projection is where the board lands if side scores delta more points.
type Projection struct {
	Side       model.Side
	Delta      int
	Digit      int
	Pair       winner.Pair
	Checkpoint model.Checkpoint
	// Cell is nil when either digit is missing from its axis.
	Cell *winner.Cell
}

// Owners returns the projected cell's owners, or nil when unplaced.
func (p Projection) Owners() []string {
	if p.Cell == nil {
		return nil
	}
	return p.Cell.Owners
}

// Project adds delta to side's score, holds the other side's digit and
// resolves the cell on the axes of the current checkpoint. A nil snapshot
// is treated as a scoreless pre-game.
func Project(snap *model.Snapshot, grid *model.Grid, side model.Side, delta int) Projection {
	if snap == nil {
		snap = &model.Snapshot{}
	}
	a, b := snap.ScoreA, snap.ScoreB
	if side == model.SideB {
		b += delta
	} else {
		a += delta
	}
	p := Projection{
		Side:       side,
		Delta:      delta,
		Pair:       winner.PairOf(a, b),
		Checkpoint: winner.ActiveCheckpoint(snap),
	}
	p.Digit = p.Pair.A
	if side == model.SideB {
		p.Digit = p.Pair.B
	}
	if cell, ok := winner.Locate(grid, p.Checkpoint, p.Pair); ok {
		p.Cell = &cell
	}
	return p
}

// FindDelta scans deltas 0..maxDelta and returns the first projection whose
// cell is co-owned by participant. Not finding one is a normal answer.
func FindDelta(snap *model.Snapshot, grid *model.Grid, side model.Side, participant string, maxDelta int) (Projection, bool) {
	if maxDelta < 0 {
		maxDelta = DefaultMaxDelta
	}
	// Only ten digits exist, so the scan past delta 9 repeats cells.
	limit := maxDelta
	if limit > model.AxisSize-1 {
		limit = model.AxisSize - 1
	}
	for d := 0; d <= limit; d++ {
		p := Project(snap, grid, side, d)
		if p.Cell != nil && grid.HasOwner(p.Cell.Index, participant) {
			return p, true
		}
	}
	return Projection{}, false
}

// Play is a common scoring play.
type Play struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// DefaultPlays returns the usual football scoring plays.
func DefaultPlays() []Play {
	return []Play{
		{Name: "safety", Points: 2},
		{Name: "field goal", Points: 3},
		{Name: "touchdown", Points: 6},
		{Name: "touchdown + extra point", Points: 7},
		{Name: "touchdown + two-point conversion", Points: 8},
	}
}

// NextScore pairs a play with where it would land the board.
type NextScore struct {
	Play       Play
	Projection Projection
}

// NextScores projects each play for side. Nil plays means DefaultPlays.
func NextScores(snap *model.Snapshot, grid *model.Grid, side model.Side, plays []Play) []NextScore {
	if plays == nil {
		plays = DefaultPlays()
	}
	out := make([]NextScore, 0, len(plays))
	for _, play := range plays {
		out = append(out, NextScore{Play: play, Projection: Project(snap, grid, side, play.Points)})
	}
	return out
}
