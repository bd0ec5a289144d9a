package repository

import "errors"

// Sentinel kinds for activity store errors.
var (
	ErrUnknownContestant = errors.New("unknown contestant")
	ErrUnknownGame       = errors.New("unknown game")
	ErrUnknownSession    = errors.New("unknown session")
	ErrSessionEnded      = errors.New("session already ended")
	ErrStoreUnavailable  = errors.New("activity store unavailable")
)
