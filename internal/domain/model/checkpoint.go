package model

// Side identifies one of the two teams on a board. Side A owns the rows
// (left axis), side B owns the columns (top axis).
type Side int

const (
	SideA Side = iota
	SideB
)

func (s Side) String() string {
	if s == SideB {
		return "B"
	}
	return "A"
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideB {
		return SideA
	}
	return SideB
}

// ParseSide accepts "A"/"B" and the row/column aliases "left"/"top".
func ParseSide(v string) (Side, bool) {
	switch v {
	case "A", "a", "left", "LEFT":
		return SideA, true
	case "B", "b", "top", "TOP":
		return SideB, true
	}
	return SideA, false
}

// Checkpoint is a scoring milestone. NoCheckpoint means "use the base axis".
type Checkpoint int

const (
	NoCheckpoint Checkpoint = iota
	Q1
	Q2
	Q3
	Q4
	Final
)

var checkpointNames = [...]string{"", "Q1", "Q2", "Q3", "Q4", "Final"}

func (c Checkpoint) String() string {
	if c < NoCheckpoint || c > Final {
		return ""
	}
	return checkpointNames[c]
}

// ParseCheckpoint maps a label back to its checkpoint.
func ParseCheckpoint(v string) (Checkpoint, bool) {
	for i, name := range checkpointNames {
		if i > 0 && name == v {
			return Checkpoint(i), true
		}
	}
	return NoCheckpoint, false
}

// AxisCheckpoint returns the checkpoint whose axis applies; Final uses Q4.
func (c Checkpoint) AxisCheckpoint() Checkpoint {
	if c == Final {
		return Q4
	}
	return c
}

// Quarters lists the checkpoints that carry their own axis on a dynamic board.
var Quarters = []Checkpoint{Q1, Q2, Q3, Q4}
