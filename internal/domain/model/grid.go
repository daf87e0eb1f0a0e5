package model

import (
	"fmt"
	"strings"
)

// Board geometry.
const (
	AxisSize  = 10
	CellCount = AxisSize * AxisSize
)

// Digit is an axis entry; NoDigit marks an unassigned slot.
type Digit int8

// NoDigit is an axis slot with no digit drawn yet.
const NoDigit Digit = -1

// Axis is the ordered digit assignment for one side's rows or columns.
type Axis [AxisSize]Digit

// UnsetAxis returns an axis with every slot unassigned.
func UnsetAxis() Axis {
	var a Axis
	for i := range a {
		a[i] = NoDigit
	}
	return a
}

// NewAxis builds an axis from exactly AxisSize digits; -1 marks a gap.
func NewAxis(digits ...int) (Axis, error) {
	if len(digits) != AxisSize {
		return Axis{}, fmt.Errorf("%w: axis has %d entries, want %d", ErrMalformedAxis, len(digits), AxisSize)
	}
	var a Axis
	for i, d := range digits {
		if d < int(NoDigit) || d > 9 {
			return Axis{}, fmt.Errorf("%w: entry %d is %d", ErrMalformedAxis, i, d)
		}
		a[i] = Digit(d)
	}
	return a, a.Validate()
}

// MustAxis is NewAxis for literals known to be well formed.
func MustAxis(digits ...int) Axis {
	a, err := NewAxis(digits...)
	if err != nil {
		panic(err)
	}
	return a
}

// IndexOf returns the slot holding digit, or -1 when absent.
func (a Axis) IndexOf(digit int) int {
	if digit < 0 || digit > 9 {
		return -1
	}
	for i, d := range a {
		if int(d) == digit {
			return i
		}
	}
	return -1
}

// Complete reports whether every slot holds a digit.
func (a Axis) Complete() bool {
	for _, d := range a {
		if d == NoDigit {
			return false
		}
	}
	return true
}

// Validate rejects out-of-range entries and repeated digits.
func (a Axis) Validate() error {
	var seen [AxisSize]bool
	for i, d := range a {
		if d == NoDigit {
			continue
		}
		if d < 0 || d > 9 {
			return fmt.Errorf("%w: entry %d is %d", ErrMalformedAxis, i, d)
		}
		if seen[d] {
			return fmt.Errorf("%w: digit %d repeats", ErrMalformedAxis, d)
		}
		seen[d] = true
	}
	return nil
}

// Grid is the 10x10 board: cell (row, col) lists the owners of that square.
// Rows follow side A's axis and columns side B's axis.
type Grid struct {
	// Dynamic boards redraw their axes for each quarter.
	Dynamic bool
	// Axes holds the base axis per side, indexed by Side.
	Axes [2]Axis
	// QuarterAxes holds per-quarter axes per side on dynamic boards.
	QuarterAxes [2]map[Checkpoint]Axis
	// Cells is row-major: index = row*10 + col.
	Cells [CellCount][]string
}

// NewGrid returns a static board with unassigned axes and empty cells.
func NewGrid() *Grid {
	return &Grid{Axes: [2]Axis{UnsetAxis(), UnsetAxis()}}
}

// SetQuarterAxis stores a per-quarter axis for side. Final is stored as Q4.
func (g *Grid) SetQuarterAxis(side Side, cp Checkpoint, axis Axis) {
	if g.QuarterAxes[side] == nil {
		g.QuarterAxes[side] = make(map[Checkpoint]Axis, len(Quarters))
	}
	g.QuarterAxes[side][cp.AxisCheckpoint()] = axis
}

// AxisFor resolves the axis for side at checkpoint. Static boards and
// NoCheckpoint use the base axis; dynamic boards fall back to it when the
// quarter has no stored axis. It never fails.
func (g *Grid) AxisFor(side Side, cp Checkpoint) Axis {
	if g == nil {
		return UnsetAxis()
	}
	if side != SideA && side != SideB {
		return UnsetAxis()
	}
	if !g.Dynamic || cp == NoCheckpoint {
		return g.Axes[side]
	}
	if axis, ok := g.QuarterAxes[side][cp.AxisCheckpoint()]; ok {
		return axis
	}
	return g.Axes[side]
}

// CellIndex converts a row/col pair into a row-major index.
func CellIndex(row, col int) int { return row*AxisSize + col }

// Owners returns the owners of (row, col); out-of-range cells have none.
func (g *Grid) Owners(row, col int) []string {
	if g == nil || row < 0 || row >= AxisSize || col < 0 || col >= AxisSize {
		return nil
	}
	return g.Cells[CellIndex(row, col)]
}

// SetOwners replaces the owners of (row, col).
func (g *Grid) SetOwners(row, col int, owners ...string) {
	if row < 0 || row >= AxisSize || col < 0 || col >= AxisSize {
		return
	}
	g.Cells[CellIndex(row, col)] = append([]string(nil), owners...)
}

// HasOwner reports whether participant co-owns the cell at index.
// Matching ignores case and surrounding space.
func (g *Grid) HasOwner(index int, participant string) bool {
	if g == nil || index < 0 || index >= CellCount {
		return false
	}
	want := strings.TrimSpace(participant)
	if want == "" {
		return false
	}
	for _, o := range g.Cells[index] {
		if strings.EqualFold(strings.TrimSpace(o), want) {
			return true
		}
	}
	return false
}

// Participants lists every distinct owner in board order.
func (g *Grid) Participants() []string {
	seen := map[string]bool{}
	var out []string
	for _, owners := range g.Cells {
		for _, o := range owners {
			if o == "" || seen[o] {
				continue
			}
			seen[o] = true
			out = append(out, o)
		}
	}
	return out
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	c := &Grid{Dynamic: g.Dynamic, Axes: g.Axes}
	for side := range g.QuarterAxes {
		if g.QuarterAxes[side] == nil {
			continue
		}
		c.QuarterAxes[side] = make(map[Checkpoint]Axis, len(g.QuarterAxes[side]))
		for cp, axis := range g.QuarterAxes[side] {
			c.QuarterAxes[side][cp] = axis
		}
	}
	for i, owners := range g.Cells {
		if owners != nil {
			c.Cells[i] = append([]string(nil), owners...)
		}
	}
	return c
}

// Validate checks axis shape. It is an administrator-input assertion, not
// something the engine needs before answering queries.
func (g *Grid) Validate() error {
	for _, side := range []Side{SideA, SideB} {
		if err := g.Axes[side].Validate(); err != nil {
			return fmt.Errorf("side %s base axis: %w", side, err)
		}
		for cp, axis := range g.QuarterAxes[side] {
			if cp < Q1 || cp > Q4 {
				return fmt.Errorf("%w: side %s has axis for %q", ErrMalformedAxis, side, cp)
			}
			if err := axis.Validate(); err != nil {
				return fmt.Errorf("side %s %s axis: %w", side, cp, err)
			}
		}
	}
	return nil
}
