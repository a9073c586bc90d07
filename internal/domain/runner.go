package domain

import "time"

// RunnerState is the lifecycle of the timeline runner.
type RunnerState int

const (
	RunnerIdle RunnerState = iota
	RunnerRunning
	RunnerAlarming
	// RunnerWaiting follows an acknowledged alarm until the cook advances.
	RunnerWaiting
	RunnerAllDone
)

// String returns a human-readable runner state.
func (s RunnerState) String() string {
	switch s {
	case RunnerIdle:
		return "idle"
	case RunnerRunning:
		return "running"
	case RunnerAlarming:
		return "alarming"
	case RunnerWaiting:
		return "waiting"
	case RunnerAllDone:
		return "all_done"
	default:
		return "unknown"
	}
}

// ItemStatus tracks one timeline item through a cook session.
type ItemStatus int

const (
	ItemPending ItemStatus = iota
	ItemActive
	ItemFinished
	// ItemCompleted means the cook acknowledged the item, e.g. it is in
	// the appliance.
	ItemCompleted
)

// String returns a human-readable item status.
func (s ItemStatus) String() string {
	switch s {
	case ItemPending:
		return "pending"
	case ItemActive:
		return "active"
	case ItemFinished:
		return "finished"
	case ItemCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Timer is a countdown for one item in the active step.
type Timer struct {
	ItemID    string
	Label     string
	Total     time.Duration
	Remaining time.Duration
	EndsAt    time.Time
}

// RunnerSnapshot is a copy of the runner state for rendering.
type RunnerSnapshot struct {
	State      RunnerState
	Step       int
	StepCount  int
	Timers     []Timer
	Statuses   map[string]ItemStatus
	NextStep   *Step
	UpdatedAt  time.Time
	AlarmSince time.Time
}
