package models

import "errors"

// Core error taxonomy. Store and service layers return these (optionally
// wrapped); the HTTP layer maps each one to a fixed status/message pair and
// never exposes storage errors to callers.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("conflict")
	ErrInvalidState     = errors.New("invalid state")
	ErrAlreadyApplied   = errors.New("already applied")
	ErrNotAcceptable    = errors.New("not acceptable")
)
