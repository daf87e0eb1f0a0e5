// Package types contains the JSON views shared by the HTTP API and the
// announcement publisher.
package types

import (
	"time"

	"github.com/okian/squares/internal/domain/scenario"
	"github.com/okian/squares/internal/domain/winner"
)

// Cell is a resolved board square.
type Cell struct {
	Index  int      `json:"index"`
	Row    int      `json:"row"`
	Col    int      `json:"col"`
	Owners []string `json:"owners"`
}

func cellOf(c *winner.Cell) *Cell {
	if c == nil {
		return nil
	}
	return &Cell{Index: c.Index, Row: c.Row, Col: c.Col, Owners: c.Owners}
}

// CheckpointWinner is one closed checkpoint.
type CheckpointWinner struct {
	Checkpoint string `json:"checkpoint"`
	Key        string `json:"key"`
	DigitB     int    `json:"digit_b"`
	DigitA     int    `json:"digit_a"`
	Cell       *Cell  `json:"cell,omitempty"`
}

// Highlights is the checkpoint winner list plus the display label.
type Highlights struct {
	Label   string             `json:"label"`
	Winners []CheckpointWinner `json:"winners"`
}

// FromHighlights converts engine highlights into their JSON view.
func FromHighlights(h winner.Highlights) Highlights {
	out := Highlights{Label: h.Label, Winners: make([]CheckpointWinner, 0, len(h.Winners))}
	for _, w := range h.Winners {
		out.Winners = append(out.Winners, CheckpointWinner{
			Checkpoint: w.Checkpoint.String(),
			Key:        w.Pair.Key(),
			DigitB:     w.Pair.B,
			DigitA:     w.Pair.A,
			Cell:       cellOf(w.Cell),
		})
	}
	return out
}

// Leader is the currently winning cell. Found is false when no cell
// matches the score, in which case the other fields are empty.
type Leader struct {
	Found      bool   `json:"found"`
	Key        string `json:"key,omitempty"`
	Checkpoint string `json:"checkpoint,omitempty"`
	State      string `json:"state,omitempty"`
	Cell       *Cell  `json:"cell,omitempty"`
}

// FromLeader converts a leader result.
func FromLeader(l winner.Leader, ok bool) Leader {
	if !ok {
		return Leader{}
	}
	return Leader{
		Found:      true,
		Key:        l.Key,
		Checkpoint: l.Checkpoint.String(),
		State:      l.State.String(),
		Cell:       cellOf(&l.Cell),
	}
}

// Projection is a hypothetical score's landing cell.
type Projection struct {
	Side       string `json:"side"`
	Delta      int    `json:"delta"`
	Digit      int    `json:"digit"`
	Key        string `json:"key"`
	Checkpoint string `json:"checkpoint"`
	Cell       *Cell  `json:"cell,omitempty"`
}

// FromProjection converts a scenario projection.
func FromProjection(p scenario.Projection) Projection {
	return Projection{
		Side:       p.Side.String(),
		Delta:      p.Delta,
		Digit:      p.Digit,
		Key:        p.Pair.Key(),
		Checkpoint: p.Checkpoint.String(),
		Cell:       cellOf(p.Cell),
	}
}

// FindResult answers "how many more points until participant wins".
type FindResult struct {
	Participant string      `json:"participant"`
	Found       bool        `json:"found"`
	Projection  *Projection `json:"projection,omitempty"`
}

// Scenario is one scoring play's projection.
type Scenario struct {
	Play       string     `json:"play"`
	Points     int        `json:"points"`
	Projection Projection `json:"projection"`
}

// FromNextScores converts a list of play projections.
func FromNextScores(next []scenario.NextScore) []Scenario {
	out := make([]Scenario, 0, len(next))
	for _, n := range next {
		out = append(out, Scenario{Play: n.Play.Name, Points: n.Play.Points, Projection: FromProjection(n.Projection)})
	}
	return out
}

// Status is the sync state of one pool.
type Status struct {
	PoolID      string     `json:"pool_id"`
	Label       string     `json:"label"`
	Refreshing  bool       `json:"refreshing"`
	Synced      bool       `json:"synced"`
	Manual      bool       `json:"manual"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	State       string     `json:"state,omitempty"`
	Period      int        `json:"period,omitempty"`
	ScoreA      int        `json:"score_a"`
	ScoreB      int        `json:"score_b"`
	Clock       string     `json:"clock,omitempty"`
	Detail      string     `json:"detail,omitempty"`
}

// Pool summarises a configured pool.
type Pool struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TeamA        string `json:"team_a"`
	TeamB        string `json:"team_b"`
	Date         string `json:"date,omitempty"`
	Dynamic      bool   `json:"dynamic"`
	Participants int    `json:"participants"`
}

// Announcement kinds.
const (
	KindLeaderChanged    = "leader.changed"
	KindCheckpointClosed = "checkpoint.closed"
)

// Announcement is the event published when the board's winner moves.
type Announcement struct {
	ID         string    `json:"id"`
	PoolID     string    `json:"pool_id"`
	Kind       string    `json:"kind"`
	Checkpoint string    `json:"checkpoint"`
	Key        string    `json:"key"`
	Owners     []string  `json:"owners"`
	ScoreA     int       `json:"score_a"`
	ScoreB     int       `json:"score_b"`
	Manual     bool      `json:"manual,omitempty"`
	At         time.Time `json:"at"`
}
