package interview

import "errors"

var (
	ErrRoleRequired     = errors.New("role is required")
	ErrEmptyMessage     = errors.New("message is required")
	ErrAlreadyStarted   = errors.New("interview already started")
	ErrNotStarted       = errors.New("interview not started")
	ErrSessionCompleted = errors.New("interview already completed")
	ErrSessionActive    = errors.New("interview still in progress")
)
