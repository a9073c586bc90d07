package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/logger"
)

// SnapshotSource is anything that can report runner state.
type SnapshotSource interface {
	Snapshot() domain.RunnerSnapshot
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets how often the watcher checks runner state.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.interval = d
	}
}

// WithIdleThreshold sets how long the runner may sit waiting or alarming
// before the watcher nudges.
func WithIdleThreshold(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.threshold = d
	}
}

// WithWatchClock replaces the watcher's time source.
func WithWatchClock(now func() time.Time) WatcherOption {
	return func(w *Watcher) {
		w.now = now
	}
}

// Watcher periodically inspects the runner and nudges when the cook has
// left an alarm ringing or forgotten to move on to the next step. Runs on
// a slower cycle than the runner (default: 1 minute).
type Watcher struct {
	source    SnapshotSource
	notifier  domain.Notifier
	log       *logger.Logger
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time
}

// NewWatcher creates a watcher with the given dependencies.
func NewWatcher(source SnapshotSource, notifier domain.Notifier, log *logger.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		source:    source,
		notifier:  notifier,
		log:       log,
		interval:  1 * time.Minute,
		threshold: 2 * time.Minute,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the watcher loop. Blocks until ctx is cancelled.
// Intended to be called as a goroutine.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("watcher started (interval=%s)", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher stopped")
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

// check runs one watcher cycle.
func (w *Watcher) check(ctx context.Context) {
	snap := w.source.Snapshot()

	w.log.Debug("watcher: state=%s step=%d/%d timers=%d",
		snap.State, snap.Step+1, snap.StepCount, len(snap.Timers))

	msg := w.buildMessage(snap, w.now())
	if msg == "" {
		return
	}
	if err := w.notifier.Notify(ctx, msg); err != nil {
		w.log.Error("watcher: notify: %v", err)
	}
}

// buildMessage decides what to tell the cook based on current state.
func (w *Watcher) buildMessage(snap domain.RunnerSnapshot, now time.Time) string {
	switch snap.State {
	case domain.RunnerAlarming:
		ringing := now.Sub(snap.AlarmSince).Round(time.Second)
		if ringing < w.threshold {
			return ""
		}
		return fmt.Sprintf("[Watcher] The alarm has been going for %s. Say \"ok\" once you're on it.", ringing)

	case domain.RunnerWaiting:
		idle := now.Sub(snap.UpdatedAt).Round(time.Second)
		if idle < w.threshold {
			return ""
		}
		msg := fmt.Sprintf("[Watcher] Step %d has been waiting for %s.", snap.Step+2, idle)
		if snap.NextStep != nil {
			msg += fmt.Sprintf(" Put in %s and say \"next\".", itemNames(snap.NextStep.Items))
		}
		return msg

	case domain.RunnerRunning:
		for _, t := range snap.Timers {
			w.log.Debug("watcher: timer %s (%s) remaining=%s", t.ItemID, t.Label, t.Remaining.Round(time.Second))
		}
	}
	return ""
}
