package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested key does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrInvalidKey is returned when a blank key is supplied.
	ErrInvalidKey = errors.New("persistence: invalid key")
)
