package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and lock backends return
// these, optionally wrapped, and services translate them into domain errors.
//
// For validation failures use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrLockHeld    = errors.New("lock held")
	ErrUnavailable = errors.New("unavailable")
)
