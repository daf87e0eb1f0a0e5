package feed

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/okian/squares/internal/domain/model"
	"github.com/okian/squares/internal/domain/teams"
)

// scoreboard is the subset of the ESPN scoreboard document the engine reads.
type scoreboard struct {
	Events []event `json:"events"`
}

type event struct {
	ID           string        `json:"id"`
	Status       *status       `json:"status"`
	Competitions []competition `json:"competitions"`
}

type competition struct {
	Status      *status      `json:"status"`
	Competitors []competitor `json:"competitors"`
}

type competitor struct {
	Team struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"team"`
	Score      number `json:"score"`
	Linescores []struct {
		Value number `json:"value"`
	} `json:"linescores"`
}

type status struct {
	Period       int    `json:"period"`
	DisplayClock string `json:"displayClock"`
	Type         struct {
		State  string `json:"state"`
		Detail string `json:"detail"`
	} `json:"type"`
}

// number accepts a JSON number or a numeric string; anything else is zero.
type number int

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = number(math.Round(f))
	return nil
}

// competitors returns the first competition's competitors.
func (e *event) competitors() []competitor {
	if len(e.Competitions) == 0 {
		return nil
	}
	return e.Competitions[0].Competitors
}

func findCompetitor(cs []competitor, abbr string) (competitor, bool) {
	for _, c := range cs {
		if teams.Equal(c.Team.Abbreviation, abbr) {
			return c, true
		}
	}
	return competitor{}, false
}

// match finds the event featuring both teams and returns the side A and
// side B competitors.
func (sb *scoreboard) match(teamA, teamB string) (*event, competitor, competitor, bool) {
	for i := range sb.Events {
		ev := &sb.Events[i]
		cs := ev.competitors()
		a, okA := findCompetitor(cs, teamA)
		b, okB := findCompetitor(cs, teamB)
		if okA && okB {
			return ev, a, b, true
		}
	}
	return nil, competitor{}, competitor{}, false
}

func (ev *event) gameStatus() status {
	if len(ev.Competitions) > 0 && ev.Competitions[0].Status != nil {
		return *ev.Competitions[0].Status
	}
	if ev.Status != nil {
		return *ev.Status
	}
	return status{}
}

func toSnapshot(ev *event, a, b competitor) model.Snapshot {
	st := ev.gameStatus()
	snap := model.Snapshot{
		State:  model.ParseGameState(st.Type.State),
		Period: st.Period,
		ScoreA: int(a.Score),
		ScoreB: int(b.Score),
		Clock:  st.DisplayClock,
		Detail: st.Type.Detail,
	}
	for i := 0; i < model.PeriodSlots; i++ {
		if i < len(a.Linescores) {
			snap.Breakdown[i].A = int(a.Linescores[i].Value)
		}
		if i < len(b.Linescores) {
			snap.Breakdown[i].B = int(b.Linescores[i].Value)
		}
	}
	// Multiple overtimes fold into the OT slot.
	for i := model.PeriodSlots; i < len(a.Linescores); i++ {
		snap.Breakdown[model.OTSlot].A += int(a.Linescores[i].Value)
	}
	for i := model.PeriodSlots; i < len(b.Linescores); i++ {
		snap.Breakdown[model.OTSlot].B += int(b.Linescores[i].Value)
	}
	return snap
}

// decodeScoreboard reports ErrNoData when the events key is missing or null;
// an empty list decodes fine and simply matches nothing.
func decodeScoreboard(body []byte) (*scoreboard, error) {
	var sb scoreboard
	if err := json.Unmarshal(body, &sb); err != nil {
		return nil, err
	}
	if sb.Events == nil {
		return nil, ErrNoData
	}
	return &sb, nil
}
