package repository

import "errors"

// Sentinel kinds for save store errors.
var (
	ErrNotFound = errors.New("save not found")
	ErrCorrupt  = errors.New("save corrupt")
	ErrNoClient = errors.New("redis client is nil")
)
