package feed

import "errors"

var (
	// ErrNoMatch means the scoreboard has no game for the configured teams
	// and date. It points at pool configuration, not an outage.
	ErrNoMatch = errors.New("no matching game")
	// ErrNoData means the response carried no events list at all.
	ErrNoData = errors.New("scoreboard has no data")
	// ErrBadStatus is a non-2xx response.
	ErrBadStatus = errors.New("unexpected status")
	// ErrDecode is a body that is not scoreboard JSON.
	ErrDecode = errors.New("decode scoreboard")
)
