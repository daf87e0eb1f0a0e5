package livesync

import (
	"time"

	"github.com/okian/squares/internal/domain/model"
)

// Display labels.
const (
	LabelWaiting = "WAITING"
	LabelLive    = "LIVE"
	LabelFinal   = "FINAL"
	LabelOffline = "OFFLINE"
	LabelNoMatch = "NO MATCH FOUND"
	LabelManual  = "MANUAL"
)

// Failure classifies the most recent failed fetch.
type Failure int

const (
	FailureNone Failure = iota
	// FailureTransient is a network error or bad response; the next tick retries.
	FailureTransient
	FailureTimeout
	// FailureNoMatch means the feed has no game for the pool's teams and
	// date, which usually needs an administrator to fix the pool.
	FailureNoMatch
)

func (f Failure) String() string {
	switch f {
	case FailureTransient:
		return "transient"
	case FailureTimeout:
		return "timeout"
	case FailureNoMatch:
		return "no_match"
	default:
		return ""
	}
}

// Status is what consumers render about a pool's sync state.
type Status struct {
	Label       string
	Refreshing  bool
	Synced      bool
	Manual      bool
	LastUpdated time.Time
	LastError   error
	Failure     Failure
}

func label(manual bool, failure Failure, snap *model.Snapshot) string {
	switch {
	case manual:
		return LabelManual
	case failure == FailureNoMatch:
		return LabelNoMatch
	case failure != FailureNone:
		return LabelOffline
	case snap == nil:
		return LabelWaiting
	}
	switch snap.State {
	case model.StateInProgress:
		return LabelLive
	case model.StateFinal:
		return LabelFinal
	default:
		return LabelWaiting
	}
}
