package world

import "errors"

// Error kinds returned by world actions. None of them is fatal: callers log
// the error and retry on a later tick.
var (
	ErrNotFound      = errors.New("not found")
	ErrBusy          = errors.New("busy")
	ErrNotEnough     = errors.New("not enough resources")
	ErrNoPath        = errors.New("no path")
	ErrFull          = errors.New("full")
	ErrInvalidArgs   = errors.New("invalid arguments")
	ErrInvalidTarget = errors.New("invalid target")
	ErrNotInRange    = errors.New("not in range")
	ErrNoBodyPart    = errors.New("no body part")
)
