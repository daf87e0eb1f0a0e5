package model

import "errors"

// Sentinel kinds for board definition errors.
var (
	ErrMalformedAxis = errors.New("malformed axis")
)
