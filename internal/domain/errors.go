package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrNoDishes       = errors.New("no dishes or tasks found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotImplemented = errors.New("not implemented")

	ErrRunnerBusy    = errors.New("timeline is already running")
	ErrNotAlarming   = errors.New("no alarm to acknowledge")
	ErrNotWaiting    = errors.New("acknowledge the alarm before advancing")
	ErrNoMoreSteps   = errors.New("no more steps in plan")
	ErrRunnerStopped = errors.New("timeline is not running")
)
