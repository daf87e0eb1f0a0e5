package livesync

import "errors"

// Sentinel kinds for sync errors.
var (
	// ErrInFlight means a fetch is already outstanding; the poll was skipped.
	ErrInFlight = errors.New("fetch already in flight")
	// ErrTimeout means the fetch exceeded its deadline and was cancelled.
	ErrTimeout = errors.New("fetch timed out")
	// ErrStale means a newer snapshot landed first and this one was dropped.
	ErrStale = errors.New("stale snapshot discarded")
	// ErrAlreadyRunning is returned by a second Start.
	ErrAlreadyRunning = errors.New("controller already running")
	// ErrInvalidScore rejects negative manual scores.
	ErrInvalidScore = errors.New("invalid score")
)
