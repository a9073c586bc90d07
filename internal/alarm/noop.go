package alarm

import "github.com/hammamikhairi/cooksync/internal/domain"

// Compile-time interface check.
var _ domain.AlarmPlayer = NoOp{}

// NoOp is an alarm that makes no sound. Used when sound is disabled.
type NoOp struct{}

// Start does nothing.
func (NoOp) Start() {}

// Stop does nothing.
func (NoOp) Stop() {}

// Playing always reports false.
func (NoOp) Playing() bool { return false }
