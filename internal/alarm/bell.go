package alarm

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/hammamikhairi/cooksync/internal/domain"
)

// Compile-time interface check.
var _ domain.AlarmPlayer = (*Bell)(nil)

// Bell rings the terminal bell on an interval. Used when no audio device
// is available.
type Bell struct {
	out      io.Writer
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

// TTYPath is the controlling terminal. The bell writes there so it never
// interleaves with a full-screen UI drawing on stdout.
const TTYPath = "/dev/tty"

// NewBell creates a bell writing to out. If out is nil, the controlling
// terminal is opened, falling back to stderr.
func NewBell(out io.Writer, interval time.Duration) *Bell {
	if out == nil {
		out = openTerminal(TTYPath)
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Bell{out: out, interval: interval}
}

// Start rings immediately and then every interval. No-op while ringing.
func (b *Bell) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.ring()

	go func() {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.mu.Lock()
				if b.cancel != nil {
					b.ring()
				}
				b.mu.Unlock()
			}
		}
	}()
}

// Stop halts the bell.
func (b *Bell) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

// Playing reports whether the bell is ringing.
func (b *Bell) Playing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancel != nil
}

// openTerminal opens path for writing, or returns stderr when it can't.
func openTerminal(path string) io.Writer {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return os.Stderr
	}
	return f
}

func (b *Bell) ring() {
	_, _ = io.WriteString(b.out, "\a")
}
