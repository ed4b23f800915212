package questdrive

import "errors"

var (
	// Binding errors.
	ErrNoProvider      = errors.New("questdrive: no capability provider configured")
	ErrBindingFailed   = errors.New("questdrive: required capability binding failed")
	ErrSessionNotReady = errors.New("questdrive: session not ready")
	ErrAlreadyStarted  = errors.New("questdrive: engine already started")
	ErrNotStarted      = errors.New("questdrive: engine not started")
	ErrStrategyMissing = errors.New("questdrive: no strategy for task kind")
)
