package model

import "time"

// GameState is the lifecycle of the game a pool follows.
type GameState int

const (
	StatePre GameState = iota
	StateInProgress
	StateFinal
)

func (s GameState) String() string {
	switch s {
	case StateInProgress:
		return "in"
	case StateFinal:
		return "post"
	default:
		return "pre"
	}
}

// ParseGameState maps feed state strings; anything unknown is pre-game.
func ParseGameState(v string) GameState {
	switch v {
	case "in", "in-progress", "STATUS_IN_PROGRESS":
		return StateInProgress
	case "post", "final", "STATUS_FINAL":
		return StateFinal
	default:
		return StatePre
	}
}

// PeriodScore is the points each side scored during one period.
type PeriodScore struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Of returns the side's points.
func (p PeriodScore) Of(side Side) int {
	if side == SideB {
		return p.B
	}
	return p.A
}

// Breakdown slots: four quarters then overtime.
const (
	PeriodSlots = 5
	OTSlot      = 4
)

// Snapshot is one immutable reading of the game from the score feed.
type Snapshot struct {
	State  GameState
	Period int
	ScoreA int
	ScoreB int
	// Breakdown holds incremental points per quarter, OT last.
	Breakdown [PeriodSlots]PeriodScore
	// Manual marks commissioner-entered scores.
	Manual bool
	Clock  string
	Detail string

	FetchedAt time.Time
	// Seq orders snapshots from one controller; higher is newer.
	Seq uint64
}

// Score returns the side's cumulative score.
func (s *Snapshot) Score(side Side) int {
	if side == SideB {
		return s.ScoreB
	}
	return s.ScoreA
}

// Digit returns the last digit of the side's score.
func (s *Snapshot) Digit(side Side) int {
	return LastDigit(s.Score(side))
}

// Cumulative sums the side's incremental points from Q1 through cp.
// Final and Q4 both sum all four quarters; overtime is excluded.
func (s *Snapshot) Cumulative(side Side, cp Checkpoint) int {
	through := int(cp.AxisCheckpoint())
	if through < int(Q1) {
		return 0
	}
	total := 0
	for i := 0; i < through && i < OTSlot; i++ {
		total += s.Breakdown[i].Of(side)
	}
	return total
}

// Overtime reports whether play has gone past the fourth quarter.
func (s *Snapshot) Overtime() bool { return s.Period > 4 }

// IsFinal reports whether the game is over.
func (s *Snapshot) IsFinal() bool { return s.State == StateFinal }

// LastDigit is n mod 10, kept non-negative.
func LastDigit(n int) int {
	return ((n % AxisSize) + AxisSize) % AxisSize
}

// ManualSnapshot builds the snapshot used while a commissioner overrides
// scoring: in progress, third period, totals attributed to Q3.
func ManualSnapshot(scoreA, scoreB int, at time.Time) Snapshot {
	snap := Snapshot{
		State:     StateInProgress,
		Period:    3,
		ScoreA:    scoreA,
		ScoreB:    scoreB,
		Manual:    true,
		Detail:    "Manual Entry",
		FetchedAt: at,
	}
	snap.Breakdown[int(Q3)-1] = PeriodScore{A: scoreA, B: scoreB}
	return snap
}
