package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrPoolNotFound = errors.New("pool not found")
	ErrRateLimited  = errors.New("refresh rate limited")
	ErrNotSyncable  = errors.New("pool has no game to sync")
)
