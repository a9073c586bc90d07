// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type manages a persistent step status bar and an input
// prompt at the bottom of the terminal. All application output is
// printed above the rendered area via Program.Println / Printf,
// ensuring concurrent writes never garble the display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/cooksync/internal/domain"
)

// Prompt is the plain-text input prompt.
const Prompt = "cook> "

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	timerRunStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	alarmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5")).
			Bold(true)

	waitingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dd3fc")).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// BannerStyle is muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

// SnapshotSource is anything that can report runner state.
type SnapshotSource interface {
	Snapshot() domain.RunnerSnapshot
}

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may
// safely call [UI.Println], [UI.Printf], and read from
// [UI.InputChan] at any time after [UI.WaitReady] returns.
type UI struct {
	program *tea.Program
	inputCh chan string
	readyCh chan struct{}
	source  SnapshotSource
	done    atomic.Bool
}

// NewUI creates the display. Call Run() to start.
func NewUI(source SnapshotSource) *UI {
	return &UI{
		source:  source,
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
	}
}

// Println prints a line above the prompt. Thread-safe.
// If the program hasn't started yet, falls back to fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt. Thread-safe.
func (u *UI) Printf(format string, a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format+"\n", a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// ── Styled print helpers ─────────────────────────────────────────

// PrintChat prints a conversational line.
func (u *UI) PrintChat(text string) {
	u.Println(chatStyle.Render("  " + text))
}

// PrintStep prints a step header like "Step 2/3 at 20 min".
func (u *UI) PrintStep(text string) {
	u.Println(stepStyle.Render("  " + text))
}

// PrintLine prints primary text, e.g. a dish row.
func (u *UI) PrintLine(text string) {
	u.Println(primaryStyle.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an urgent/error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render(strings.TrimSpace(Prompt)) + " " + userInputEchoStyle.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// Styled prompts add ANSI bytes that break textinput's width math.
	ti.Prompt = Prompt
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60 // updated on first WindowSizeMsg

	m := model{
		source:  u.source,
		input:   ti,
		inputCh: u.inputCh,
		readyCh: u.readyCh,
		now:     time.Now,
		echoFn: func(v string) {
			u.PrintUserInput(v)
		},
	}

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	source  SnapshotSource
	input   textinput.Model
	inputCh chan<- string
	readyCh chan struct{}
	echoFn  func(string)
	now     func() time.Time
	snap    domain.RunnerSnapshot
	width   int
}

type tickMsg time.Time

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tickCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.inputCh <- v
				// Echo outside Update so Println can't deadlock.
				echoFn := m.echoFn
				return m, func() tea.Msg {
					echoFn(v)
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > len(Prompt) {
			m.input.Width = msg.Width - len(Prompt)
		}
		return m, nil

	case tickMsg:
		if m.source != nil {
			m.snap = m.source.Snapshot()
		}
		return m, tea.Batch(tickCmd(), tea.SetWindowTitle(Title(m.snap, m.now())))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder

	if bar := StatusBar(m.snap, m.now(), m.width); bar != "" {
		b.WriteString(bar)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

// StatusBar renders the runner state as a one-line bar. Idle runners
// render nothing.
func StatusBar(snap domain.RunnerSnapshot, now time.Time, width int) string {
	parts := statusParts(snap, now, true)
	if len(parts) == 0 {
		return ""
	}
	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "
	if width <= 0 {
		width = 80
	}
	return barBg.Width(width).Render(content)
}

// Title is the plain-text terminal title for the runner state.
func Title(snap domain.RunnerSnapshot, now time.Time) string {
	parts := statusParts(snap, now, false)
	if len(parts) == 0 {
		return "CookSync"
	}
	return "CookSync | " + strings.Join(parts, " | ")
}

func statusParts(snap domain.RunnerSnapshot, now time.Time, styled bool) []string {
	render := func(s lipgloss.Style, text string) string {
		if styled {
			return s.Render(text)
		}
		return text
	}

	step := fmt.Sprintf("Step %d/%d", snap.Step+1, snap.StepCount)
	switch snap.State {
	case domain.RunnerIdle:
		return nil
	case domain.RunnerAllDone:
		return []string{render(stepStyle, "All done")}
	case domain.RunnerAlarming:
		return []string{render(labelStyle, step), render(alarmStyle, "ALARM, say ok")}
	case domain.RunnerWaiting:
		next := "say next"
		if snap.NextStep != nil {
			names := make([]string, 0, len(snap.NextStep.Items))
			for _, it := range snap.NextStep.Items {
				names = append(names, it.Name)
			}
			next = "put in " + strings.Join(names, ", ") + ", then say next"
		}
		return []string{render(labelStyle, step), render(waitingStyle, next)}
	}

	parts := []string{render(labelStyle, step)}
	for _, t := range snap.Timers {
		rem := t.EndsAt.Sub(now)
		parts = append(parts, render(labelStyle, t.Label+": ")+render(timerRunStyle, FormatDuration(rem)))
	}
	return parts
}

// FormatDuration renders a countdown like "4m05s". Negative values show as 0s.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
