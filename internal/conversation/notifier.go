package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*CLINotifier)(nil)

// ANSI escape codes for terminal formatting.
const (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"
	red   = "\033[31m"
	cyan  = "\033[36m"
)

// PrintFunc is a function used to print formatted output.
// Matches the signature of both fmt.Printf and display.UI.Printf.
type PrintFunc func(format string, a ...interface{})

// Entry is one delivered notification.
type Entry struct {
	At      time.Time
	Message string
	Urgent  bool
}

// NotifierOption configures the CLINotifier.
type NotifierOption func(*CLINotifier)

// WithHistory keeps the last n notifications for Recent.
func WithHistory(n int) NotifierOption {
	return func(c *CLINotifier) { c.keep = n }
}

// WithNotifyClock sets the time source used to stamp messages.
func WithNotifyClock(now func() time.Time) NotifierOption {
	return func(c *CLINotifier) { c.now = now }
}

// CLINotifier writes timestamped notifications to the terminal.
type CLINotifier struct {
	log     *logger.Logger
	printFn PrintFunc
	now     func() time.Time
	keep    int

	mu      sync.Mutex
	history []Entry
}

// NewCLINotifier creates a terminal notifier.
// If printFn is nil, fmt.Printf is used.
func NewCLINotifier(log *logger.Logger, printFn PrintFunc, opts ...NotifierOption) *CLINotifier {
	if printFn == nil {
		printFn = func(format string, a ...interface{}) {
			fmt.Printf(format+"\n", a...)
		}
	}
	n := &CLINotifier{log: log, printFn: printFn, now: time.Now, keep: 20}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Notify prints a normal notification.
func (n *CLINotifier) Notify(ctx context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	at := n.record(message, false)
	n.printFn("%s%s%s %s%s%s", dim, at.Format("15:04"), reset, cyan, message, reset)
	return nil
}

// NotifyUrgent prints an urgent notification in bold red.
func (n *CLINotifier) NotifyUrgent(ctx context.Context, message string) error {
	n.log.Debug("notify-urgent: %s", message)
	at := n.record(message, true)
	n.printFn("%s%s%s %s%s%s%s", dim, at.Format("15:04"), reset, red, bold, message, reset)
	return nil
}

// Recent returns the kept notifications, oldest first.
func (n *CLINotifier) Recent() []Entry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Entry(nil), n.history...)
}

func (n *CLINotifier) record(message string, urgent bool) time.Time {
	at := n.now()
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.keep <= 0 {
		return at
	}
	n.history = append(n.history, Entry{At: at, Message: message, Urgent: urgent})
	if over := len(n.history) - n.keep; over > 0 {
		n.history = n.history[over:]
	}
	return at
}
