package repository

import "errors"

// Sentinel kinds for pool store errors.
var (
	ErrNotFound    = errors.New("pool not found")
	ErrInvalidPool = errors.New("invalid pool")
	ErrLoadPools   = errors.New("load pools")
)
