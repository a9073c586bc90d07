// Package timer runs a cooking plan step by step: countdowns to the next
// step, an alarm when it is due, and reminders until the cook reacts.
package timer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/cooksync/internal/alarm"
	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/logger"
)

// Option configures the runner.
type Option func(*Runner)

// WithTickInterval sets how often the runner recomputes its timers.
func WithTickInterval(d time.Duration) Option {
	return func(r *Runner) {
		r.tickInterval = d
	}
}

// WithMinute sets the wall-clock length of one plan minute. Shorter values
// are handy for demos.
func WithMinute(d time.Duration) Option {
	return func(r *Runner) {
		r.minute = d
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithNotifier sets where alarm and reminder messages go.
func WithNotifier(n domain.Notifier) Option {
	return func(r *Runner) {
		r.notifier = n
	}
}

// WithAlarm sets the alarm player.
func WithAlarm(a domain.AlarmPlayer) Option {
	return func(r *Runner) {
		r.alarm = a
	}
}

// WithObserver registers a callback that receives a snapshot after every
// tick and state change. It runs after the runner is unlocked.
func WithObserver(fn func(domain.RunnerSnapshot)) Option {
	return func(r *Runner) {
		r.observer = fn
	}
}

// WithNotifyCooldown sets the minimum time between repeated alarm reminders.
func WithNotifyCooldown(d time.Duration) Option {
	return func(r *Runner) {
		r.notifyCooldown = d
	}
}

// WithMaxEscalation sets the escalation level after which the runner stops
// repeating alarm reminders. The tone keeps playing.
func WithMaxEscalation(level int) Option {
	return func(r *Runner) {
		r.maxEscalation = level
	}
}

// Runner drives a plan through Idle, Running, Alarming, Waiting and
// AllDone. All methods are safe for concurrent use.
type Runner struct {
	notifier       domain.Notifier
	alarm          domain.AlarmPlayer
	log            *logger.Logger
	observer       func(domain.RunnerSnapshot)
	now            func() time.Time
	tickInterval   time.Duration
	minute         time.Duration
	notifyCooldown time.Duration
	maxEscalation  int

	mu           sync.Mutex
	plan         *domain.Plan
	state        domain.RunnerState
	step         int
	timers       []domain.Timer
	statuses     map[string]domain.ItemStatus
	changedAt    time.Time
	alarmSince   time.Time
	lastNotified time.Time
	escalation   int
	cancel       context.CancelFunc

	// Deliveries queued under mu and sent by unlock.
	outbox  []note
	changed bool
}

// note is a queued notification.
type note struct {
	msg    string
	urgent bool
}

// New creates an idle runner for the given plan. A nil plan is allowed;
// Load one before starting.
func New(plan *domain.Plan, log *logger.Logger, opts ...Option) *Runner {
	r := &Runner{
		notifier:       noopNotifier{},
		alarm:          alarm.NoOp{},
		log:            log,
		now:            time.Now,
		tickInterval:   1 * time.Second,
		minute:         time.Minute,
		notifyCooldown: 15 * time.Second,
		maxEscalation:  3,
		plan:           plan,
		statuses:       make(map[string]domain.ItemStatus),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.resetStatuses()
	return r
}

// Load replaces the plan. Only allowed while idle or finished.
func (r *Runner) Load(plan *domain.Plan) error {
	r.mu.Lock()
	defer r.unlock(context.Background())

	if r.state != domain.RunnerIdle && r.state != domain.RunnerAllDone {
		return domain.ErrRunnerBusy
	}
	r.plan = plan
	r.state = domain.RunnerIdle
	r.timers = nil
	r.resetStatuses()
	r.changedAt = r.now()
	r.emit()
	return nil
}

// Start begins the first step and the background tick loop. Non-blocking.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.unlock(ctx)

	if r.state != domain.RunnerIdle && r.state != domain.RunnerAllDone {
		return domain.ErrRunnerBusy
	}
	if r.plan.Empty() || len(r.plan.Steps) == 0 {
		return domain.ErrNoDishes
	}

	r.resetStatuses()
	r.startStep(0, r.now())

	childCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	go r.loop(childCtx)

	r.log.Info("runner started: %d steps, %d min total (tick=%s)",
		len(r.plan.Steps), r.plan.TotalTime, r.tickInterval)
	r.notify(r.stepMessage(0))
	r.emit()
	return nil
}

// Acknowledge silences the alarm. On the last step the plan is done;
// otherwise the runner waits for Advance.
func (r *Runner) Acknowledge() error {
	r.mu.Lock()
	defer r.unlock(context.Background())

	if r.state != domain.RunnerAlarming {
		return domain.ErrNotAlarming
	}
	r.alarm.Stop()
	r.alarmSince = time.Time{}
	r.escalation = 0
	r.changedAt = r.now()

	if r.step >= len(r.plan.Steps)-1 {
		r.state = domain.RunnerAllDone
		r.timers = nil
		r.stopLoop()
		r.log.Info("runner: all done")
		r.notify("[Done] Everything is ready. Serve it up.")
		r.emit()
		return nil
	}

	for _, it := range r.plan.Steps[r.step].Items {
		r.statuses[it.ID] = domain.ItemCompleted
	}
	r.state = domain.RunnerWaiting
	r.log.Debug("runner: step %d acknowledged, waiting", r.step+1)
	r.emit()
	return nil
}

// Advance starts the next step's timers.
func (r *Runner) Advance() error {
	r.mu.Lock()
	defer r.unlock(context.Background())

	switch r.state {
	case domain.RunnerWaiting:
	case domain.RunnerAlarming:
		return domain.ErrNotWaiting
	case domain.RunnerRunning:
		return domain.ErrNotAlarming
	default:
		return domain.ErrRunnerStopped
	}

	next := r.step + 1
	if next >= len(r.plan.Steps) {
		return domain.ErrNoMoreSteps
	}
	r.startStep(next, r.now())
	r.notify(r.stepMessage(next))
	r.emit()
	return nil
}

// Stop cancels the timers and the alarm and returns to Idle, keeping the plan.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.unlock(context.Background())

	if r.state == domain.RunnerIdle {
		return
	}
	r.halt()
	r.log.Info("runner stopped")
	r.emit()
}

// Reset is Stop plus clearing every item status.
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.unlock(context.Background())

	r.halt()
	r.resetStatuses()
	r.log.Debug("runner reset")
	r.emit()
}

// State returns the current state.
func (r *Runner) State() domain.RunnerState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Snapshot returns a copy of the runner state for rendering.
func (r *Runner) Snapshot() domain.RunnerSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// loop is the main tick loop.
func (r *Runner) loop(ctx context.Context) {
	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx, r.now())
		}
	}
}

// tick runs one cycle. Remaining time is derived from the end timestamp so
// late ticks never accumulate drift.
func (r *Runner) tick(ctx context.Context, now time.Time) {
	r.mu.Lock()
	defer r.unlock(ctx)

	switch r.state {
	case domain.RunnerRunning:
		done := true
		for i := range r.timers {
			rem := r.timers[i].EndsAt.Sub(now)
			if rem < 0 {
				rem = 0
			}
			r.timers[i].Remaining = rem
			if rem > 0 {
				done = false
			}
		}
		if done {
			r.fire(now)
		}

	case domain.RunnerAlarming:
		if r.escalation > r.maxEscalation {
			break
		}
		if now.Sub(r.lastNotified) < r.notifyCooldown {
			break
		}
		r.notify(r.escalationMessage())
		r.lastNotified = now
		r.escalation++

	default:
		return
	}
	r.emit()
}

// fire moves the runner into Alarming once the step's timers reach zero.
func (r *Runner) fire(now time.Time) {
	for _, it := range r.plan.Steps[r.step].Items {
		r.statuses[it.ID] = domain.ItemFinished
	}
	r.state = domain.RunnerAlarming
	r.alarmSince = now
	r.changedAt = now
	r.lastNotified = now
	r.escalation = 1
	r.alarm.Start()

	msg := r.alarmMessage()
	r.log.Info("runner: step %d due: %s", r.step+1, msg)
	r.outbox = append(r.outbox, note{msg: msg, urgent: true})
}

// startStep activates step k. Every timer in the step counts down to the
// next step's start, or to the plan's finish on the last step.
func (r *Runner) startStep(k int, now time.Time) {
	step := r.plan.Steps[k]
	end := r.plan.TotalTime
	if k+1 < len(r.plan.Steps) {
		end = r.plan.Steps[k+1].StartDelay
	}
	total := time.Duration(max(end-step.StartDelay, 0)) * r.minute

	r.timers = r.timers[:0]
	for _, it := range step.Items {
		r.statuses[it.ID] = domain.ItemActive
		r.timers = append(r.timers, domain.Timer{
			ItemID:    it.ID,
			Label:     it.Name,
			Total:     total,
			Remaining: total,
			EndsAt:    now.Add(total),
		})
	}
	r.step = k
	r.state = domain.RunnerRunning
	r.changedAt = now
	r.log.Debug("runner: step %d/%d started, %s until next", k+1, len(r.plan.Steps), total)
}

// halt cancels everything and goes idle. Caller holds the lock.
func (r *Runner) halt() {
	r.stopLoop()
	r.alarm.Stop()
	r.state = domain.RunnerIdle
	r.step = 0
	r.timers = nil
	r.alarmSince = time.Time{}
	r.escalation = 0
	r.changedAt = r.now()
}

func (r *Runner) stopLoop() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Runner) resetStatuses() {
	r.statuses = make(map[string]domain.ItemStatus)
	if r.plan == nil {
		return
	}
	for _, it := range r.plan.Timeline {
		r.statuses[it.ID] = domain.ItemPending
	}
}

func (r *Runner) snapshot() domain.RunnerSnapshot {
	snap := domain.RunnerSnapshot{
		State:      r.state,
		Step:       r.step,
		Timers:     append([]domain.Timer(nil), r.timers...),
		Statuses:   make(map[string]domain.ItemStatus, len(r.statuses)),
		UpdatedAt:  r.changedAt,
		AlarmSince: r.alarmSince,
	}
	for k, v := range r.statuses {
		snap.Statuses[k] = v
	}
	if r.plan != nil {
		snap.StepCount = len(r.plan.Steps)
		if r.step+1 < len(r.plan.Steps) {
			next := r.plan.Steps[r.step+1]
			next.Items = append([]domain.TimelineItem(nil), next.Items...)
			snap.NextStep = &next
		}
	}
	return snap
}

// emit marks the state as changed so unlock hands a snapshot to the observer.
func (r *Runner) emit() {
	r.changed = true
}

// notify queues a message for delivery once the lock is released.
func (r *Runner) notify(msg string) {
	if msg != "" {
		r.outbox = append(r.outbox, note{msg: msg})
	}
}

// unlock releases mu, then sends the queued notifications and the observer
// snapshot. Notifiers may block (a terminal UI printing through its event
// loop) and may call Snapshot, so nothing is delivered under the lock.
func (r *Runner) unlock(ctx context.Context) {
	notes := r.outbox
	r.outbox = nil
	var snap *domain.RunnerSnapshot
	if r.changed && r.observer != nil {
		s := r.snapshot()
		snap = &s
	}
	r.changed = false
	r.mu.Unlock()

	for _, n := range notes {
		var err error
		if n.urgent {
			err = r.notifier.NotifyUrgent(ctx, n.msg)
		} else {
			err = r.notifier.Notify(ctx, n.msg)
		}
		if err != nil {
			r.log.Error("runner: notify: %v", err)
		}
	}
	if snap != nil {
		r.observer(*snap)
	}
}

// stepMessage tells the cook what goes in at step k.
func (r *Runner) stepMessage(k int) string {
	if k == 0 {
		return fmt.Sprintf("[Step 1] Set the %s to %d°C. Start: %s.",
			applianceName(r.plan.Appliance), r.plan.ApplianceTemp, itemNames(r.plan.Steps[0].Items))
	}
	return fmt.Sprintf("[Step %d] Now: %s.", k+1, itemNames(r.plan.Steps[k].Items))
}

func (r *Runner) alarmMessage() string {
	if r.step+1 < len(r.plan.Steps) {
		return fmt.Sprintf("[Alarm] Time for %s.", itemNames(r.plan.Steps[r.step+1].Items))
	}
	return "[Alarm] Everything is done. Take it out."
}

// escalationMessage returns a message based on the escalation level.
func (r *Runner) escalationMessage() string {
	what := "Dinner"
	if r.step+1 < len(r.plan.Steps) {
		what = itemNames(r.plan.Steps[r.step+1].Items)
	}
	switch r.escalation {
	case 1:
		return fmt.Sprintf("[Alarm] %s -- check it now.", what)
	case 2:
		return fmt.Sprintf("[Alarm] %s. Now.", what)
	default:
		return fmt.Sprintf("[Alarm] %s.", what)
	}
}

func applianceName(a domain.ApplianceType) string {
	if a == domain.UserAirFryer {
		return "air fryer"
	}
	return "oven"
}

// itemNames joins names into "A", "A and B" or "A, B and C".
func itemNames(items []domain.TimelineItem) string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	if len(names) <= 1 {
		return strings.Join(names, "")
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string) error       { return nil }
func (noopNotifier) NotifyUrgent(context.Context, string) error { return nil }
