package timer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/logger"
	"github.com/hammamikhairi/cooksync/internal/plan"
)

// mockNotifier collects notifications for testing.
type mockNotifier struct {
	mu       sync.Mutex
	messages []string
	urgent   []string
}

func (m *mockNotifier) Notify(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockNotifier) NotifyUrgent(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urgent = append(m.urgent, msg)
	return nil
}

func (m *mockNotifier) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages), len(m.urgent)
}

// mockAlarm records whether it is playing.
type mockAlarm struct {
	mu      sync.Mutex
	playing bool
	starts  int
}

func (a *mockAlarm) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.playing {
		a.starts++
	}
	a.playing = true
}

func (a *mockAlarm) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.playing = false
}

func (a *mockAlarm) Playing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) at(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Add(d)
}

func (c *fakeClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func dish(id string, temp float64, oven domain.OvenType, minutes int, instr ...domain.Instruction) *domain.Dish {
	return &domain.Dish{
		ID: id, Name: id, Temperature: temp, Unit: domain.Celsius,
		Appliance: domain.ApplianceOven, OvenType: oven, CookingTime: minutes,
		Instructions: instr,
	}
}

type fixture struct {
	runner   *Runner
	notifier *mockNotifier
	alarm    *mockAlarm
	clock    *fakeClock
	start    time.Time
}

func setupRunner(t *testing.T, p *domain.Plan, opts ...Option) *fixture {
	t.Helper()
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	f := &fixture{
		notifier: &mockNotifier{},
		alarm:    &mockAlarm{},
		clock:    &fakeClock{now: start},
		start:    start,
	}
	base := []Option{
		WithTickInterval(time.Hour), // tests drive tick directly
		WithClock(f.clock.Now),
		WithNotifier(f.notifier),
		WithAlarm(f.alarm),
	}
	f.runner = New(p, logger.New(logger.LevelOff, nil), append(base, opts...)...)
	t.Cleanup(f.runner.Stop)
	return f
}

// advanceTo moves the clock to start+d and ticks once.
func (f *fixture) advanceTo(d time.Duration) {
	now := f.start.Add(d)
	f.clock.set(now)
	f.runner.tick(context.Background(), now)
}

func twoDishPlan() *domain.Plan {
	return plan.New().Build([]*domain.Dish{
		dish("A", 200, domain.OvenFan, 15),
		dish("B", 220, domain.OvenElectric, 35),
	}, nil, domain.UserFan)
}

func TestRunnerFullCycle(t *testing.T) {
	f := setupRunner(t, twoDishPlan())
	r := f.runner

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap := r.Snapshot()
	if snap.State != domain.RunnerRunning || snap.Step != 0 || snap.StepCount != 2 {
		t.Fatalf("unexpected snapshot after start: %+v", snap)
	}
	if len(snap.Timers) != 1 || snap.Timers[0].ItemID != "B" || snap.Timers[0].Remaining != 20*time.Minute {
		t.Fatalf("B should count down 20 minutes to A's start, got %+v", snap.Timers)
	}
	if snap.Statuses["B"] != domain.ItemActive || snap.Statuses["A"] != domain.ItemPending {
		t.Fatalf("unexpected statuses: %v", snap.Statuses)
	}

	f.advanceTo(10*time.Minute + 30*time.Second)
	if got := r.Snapshot().Timers[0].Remaining; got != 9*time.Minute+30*time.Second {
		t.Fatalf("expected 9m30s left, got %s", got)
	}

	f.advanceTo(20 * time.Minute)
	if r.State() != domain.RunnerAlarming {
		t.Fatalf("expected alarming, got %s", r.State())
	}
	if !f.alarm.Playing() {
		t.Fatal("alarm should be playing")
	}
	if _, urgent := f.notifier.counts(); urgent != 1 {
		t.Fatalf("expected 1 urgent notification, got %d", urgent)
	}
	if err := r.Advance(); !errors.Is(err, domain.ErrNotWaiting) {
		t.Fatalf("advance while alarming should fail with ErrNotWaiting, got %v", err)
	}

	if err := r.Acknowledge(); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if r.State() != domain.RunnerWaiting || f.alarm.Playing() {
		t.Fatalf("expected waiting with a silent alarm, got %s playing=%v", r.State(), f.alarm.Playing())
	}
	if r.Snapshot().Statuses["B"] != domain.ItemCompleted {
		t.Fatal("B should be completed after acknowledge")
	}

	if err := r.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	snap = r.Snapshot()
	if snap.Step != 1 || snap.Timers[0].ItemID != "A" || snap.Timers[0].Total != 15*time.Minute {
		t.Fatalf("A should count its own 15 minutes, got %+v", snap.Timers)
	}
	if snap.NextStep != nil {
		t.Fatal("last step has no next step")
	}

	f.advanceTo(35 * time.Minute)
	if r.State() != domain.RunnerAlarming {
		t.Fatalf("expected the final alarm, got %s", r.State())
	}
	if err := r.Acknowledge(); err != nil {
		t.Fatalf("final acknowledge: %v", err)
	}
	if r.State() != domain.RunnerAllDone {
		t.Fatalf("acknowledging the last step should finish the plan, got %s", r.State())
	}
	if err := r.Acknowledge(); !errors.Is(err, domain.ErrNotAlarming) {
		t.Fatalf("expected ErrNotAlarming, got %v", err)
	}
	if err := r.Advance(); !errors.Is(err, domain.ErrRunnerStopped) {
		t.Fatalf("expected ErrRunnerStopped, got %v", err)
	}
}

func TestRunnerLateTickHasNoDrift(t *testing.T) {
	f := setupRunner(t, twoDishPlan())
	if err := f.runner.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	// A single tick long after the deadline still fires exactly once.
	f.advanceTo(45 * time.Minute)
	if f.runner.State() != domain.RunnerAlarming {
		t.Fatalf("expected alarming, got %s", f.runner.State())
	}
	if got := f.runner.Snapshot().Timers[0].Remaining; got != 0 {
		t.Fatalf("remaining should clamp to 0, got %s", got)
	}
	f.advanceTo(45*time.Minute + time.Second)
	if _, urgent := f.notifier.counts(); urgent != 1 {
		t.Fatalf("expected one urgent notification, got %d", urgent)
	}
	if f.alarm.starts != 1 {
		t.Fatalf("alarm should start once, got %d", f.alarm.starts)
	}
}

func TestRunnerEscalation(t *testing.T) {
	f := setupRunner(t, twoDishPlan(), WithNotifyCooldown(15*time.Second), WithMaxEscalation(2))
	if err := f.runner.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.advanceTo(20 * time.Minute)
	base, _ := f.notifier.counts()

	tests := []struct {
		at   time.Duration
		want int
	}{
		{20*time.Minute + 5*time.Second, 0},  // cooldown
		{20*time.Minute + 15*time.Second, 1}, // level 1
		{20*time.Minute + 20*time.Second, 1}, // cooldown again
		{20*time.Minute + 30*time.Second, 2}, // level 2
		{20*time.Minute + 45*time.Second, 2}, // past max escalation
		{25 * time.Minute, 2},
	}
	for _, tt := range tests {
		f.advanceTo(tt.at)
		got, _ := f.notifier.counts()
		if got-base != tt.want {
			t.Fatalf("at %s: expected %d reminders, got %d", tt.at, tt.want, got-base)
		}
	}
	if !f.alarm.Playing() {
		t.Fatal("the tone keeps playing after reminders stop")
	}
}

func TestRunnerZeroLengthStep(t *testing.T) {
	p := plan.New().Build([]*domain.Dish{
		dish("chicken", 200, domain.OvenFan, 35),
		dish("wedges", 200, domain.OvenFan, 15, domain.Instruction{Label: "Past the end", AfterMinutes: 40}),
	}, nil, domain.UserFan)
	if len(p.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(p.Steps))
	}

	f := setupRunner(t, p)
	r := f.runner
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.advanceTo(20 * time.Minute)
	if err := r.Acknowledge(); err != nil {
		t.Fatalf("ack step 1: %v", err)
	}
	if err := r.Advance(); err != nil {
		t.Fatalf("advance to step 2: %v", err)
	}
	f.advanceTo(35 * time.Minute)
	if err := r.Acknowledge(); err != nil {
		t.Fatalf("ack step 2: %v", err)
	}
	if err := r.Advance(); err != nil {
		t.Fatalf("advance to step 3: %v", err)
	}

	snap := r.Snapshot()
	if snap.Timers[0].Total != 0 {
		t.Fatalf("clamped instruction should count down nothing, got %s", snap.Timers[0].Total)
	}
	f.advanceTo(35 * time.Minute)
	if r.State() != domain.RunnerAlarming {
		t.Fatalf("zero-length step should alarm on the next tick, got %s", r.State())
	}
	if err := r.Acknowledge(); err != nil {
		t.Fatalf("final ack: %v", err)
	}
	if r.State() != domain.RunnerAllDone {
		t.Fatalf("expected all done, got %s", r.State())
	}
}

func TestRunnerSingleStep(t *testing.T) {
	p := plan.New().Build([]*domain.Dish{dish("pizza", 220, domain.OvenFan, 12)}, nil, domain.UserFan)
	f := setupRunner(t, p)

	if err := f.runner.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.advanceTo(12 * time.Minute)
	if err := f.runner.Acknowledge(); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if f.runner.State() != domain.RunnerAllDone {
		t.Fatalf("ack on the only step should finish, got %s", f.runner.State())
	}
}

func TestRunnerStartErrors(t *testing.T) {
	f := setupRunner(t, nil)
	if err := f.runner.Start(context.Background()); !errors.Is(err, domain.ErrNoDishes) {
		t.Fatalf("expected ErrNoDishes without a plan, got %v", err)
	}

	if err := f.runner.Load(&domain.Plan{TotalTime: 10}); err != nil {
		t.Fatalf("load empty plan: %v", err)
	}
	if err := f.runner.Start(context.Background()); !errors.Is(err, domain.ErrNoDishes) {
		t.Fatalf("expected ErrNoDishes for an empty plan, got %v", err)
	}

	if err := f.runner.Load(twoDishPlan()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := f.runner.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.runner.Start(context.Background()); !errors.Is(err, domain.ErrRunnerBusy) {
		t.Fatalf("expected ErrRunnerBusy, got %v", err)
	}
	if err := f.runner.Load(twoDishPlan()); !errors.Is(err, domain.ErrRunnerBusy) {
		t.Fatalf("load while running should fail, got %v", err)
	}
}

func TestRunnerStopAndReset(t *testing.T) {
	f := setupRunner(t, twoDishPlan())
	r := f.runner
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.advanceTo(20 * time.Minute)

	r.Stop()
	snap := r.Snapshot()
	if snap.State != domain.RunnerIdle || len(snap.Timers) != 0 {
		t.Fatalf("stop should go idle with no timers, got %+v", snap)
	}
	if f.alarm.Playing() {
		t.Fatal("stop must silence the alarm")
	}
	if snap.Statuses["B"] != domain.ItemFinished {
		t.Fatal("stop keeps item statuses")
	}

	r.Reset()
	if r.Snapshot().Statuses["B"] != domain.ItemPending {
		t.Fatal("reset clears item statuses")
	}
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("restart after reset: %v", err)
	}
}

func TestRunnerObserver(t *testing.T) {
	var mu sync.Mutex
	var states []domain.RunnerState
	f := setupRunner(t, twoDishPlan(), WithObserver(func(s domain.RunnerSnapshot) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s.State)
	}))

	if err := f.runner.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.advanceTo(20 * time.Minute)

	mu.Lock()
	defer mu.Unlock()
	if len(states) < 2 || states[0] != domain.RunnerRunning || states[len(states)-1] != domain.RunnerAlarming {
		t.Fatalf("unexpected observed states: %v", states)
	}
}

// handoffNotifier reads the runner from another goroutine before each
// message is accepted, the way a terminal UI's event loop renders a
// snapshot between prints.
type handoffNotifier struct {
	runner  *Runner
	mu      sync.Mutex
	count   int
	blocked int
}

func (n *handoffNotifier) deliver() {
	done := make(chan struct{})
	go func() {
		n.runner.Snapshot()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		n.mu.Lock()
		n.blocked++
		n.mu.Unlock()
		<-done
	}
	n.mu.Lock()
	n.count++
	n.mu.Unlock()
}

func (n *handoffNotifier) Notify(context.Context, string) error       { n.deliver(); return nil }
func (n *handoffNotifier) NotifyUrgent(context.Context, string) error { n.deliver(); return nil }

func TestRunnerNotifiesOutsideLock(t *testing.T) {
	notifier := &handoffNotifier{}
	var observed int
	f := setupRunner(t, twoDishPlan(),
		WithNotifier(notifier),
		WithNotifyCooldown(0),
		WithObserver(func(domain.RunnerSnapshot) {
			observed++
			_ = notifier.runner.State()
		}),
	)
	notifier.runner = f.runner
	r := f.runner

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.advanceTo(20 * time.Minute)             // alarm
	f.advanceTo(20*time.Minute + time.Second) // reminder
	if err := r.Acknowledge(); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if err := r.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if notifier.blocked != 0 {
		t.Fatalf("%d notifications were sent while the runner was locked", notifier.blocked)
	}
	if notifier.count != 4 {
		t.Fatalf("expected start, alarm, reminder and step messages, got %d", notifier.count)
	}
	if observed == 0 {
		t.Fatal("observer was never called")
	}
}

func TestItemNames(t *testing.T) {
	items := func(names ...string) []domain.TimelineItem {
		out := make([]domain.TimelineItem, len(names))
		for i, n := range names {
			out[i].Name = n
		}
		return out
	}
	tests := []struct {
		in   []domain.TimelineItem
		want string
	}{
		{items("Salmon"), "Salmon"},
		{items("Salmon", "Carrots"), "Salmon and Carrots"},
		{items("A", "B", "C"), "A, B and C"},
	}
	for _, tt := range tests {
		if got := itemNames(tt.in); got != tt.want {
			t.Fatalf("itemNames = %q, want %q", got, tt.want)
		}
	}
}
