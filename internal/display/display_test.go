package display

import (
	"strings"
	"testing"
	"time"

	"github.com/hammamikhairi/cooksync/internal/domain"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{-time.Second, "0s"},
		{0, "0s"},
		{42 * time.Second, "42s"},
		{4*time.Minute + 5*time.Second, "4m05s"},
		{65 * time.Minute, "1h05m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitle(t *testing.T) {
	now := time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		snap domain.RunnerSnapshot
		want []string
	}{
		{"idle", domain.RunnerSnapshot{}, []string{"CookSync"}},
		{
			name: "running",
			snap: domain.RunnerSnapshot{
				State: domain.RunnerRunning, Step: 0, StepCount: 2,
				Timers: []domain.Timer{{Label: "Bake", EndsAt: now.Add(20 * time.Minute)}},
			},
			want: []string{"Step 1/2", "Bake: 20m00s"},
		},
		{
			name: "alarming",
			snap: domain.RunnerSnapshot{State: domain.RunnerAlarming, Step: 1, StepCount: 2},
			want: []string{"Step 2/2", "ALARM"},
		},
		{
			name: "waiting",
			snap: domain.RunnerSnapshot{
				State: domain.RunnerWaiting, Step: 0, StepCount: 2,
				NextStep: &domain.Step{Items: []domain.TimelineItem{{Name: "Chips"}}},
			},
			want: []string{"put in Chips"},
		},
		{"done", domain.RunnerSnapshot{State: domain.RunnerAllDone}, []string{"All done"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Title(tt.snap, now)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("title %q missing %q", got, w)
				}
			}
		})
	}
}

func TestStatusBarIdle(t *testing.T) {
	if bar := StatusBar(domain.RunnerSnapshot{}, time.Now(), 80); bar != "" {
		t.Fatalf("idle runner should render no bar, got %q", bar)
	}
}

func TestCentre(t *testing.T) {
	out := centre("ab\nabcd\n", "hi", 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "   ") {
		t.Fatalf("expected the art padded by 3, got %q", lines[0])
	}
}
