// CookSync: a terminal companion that fetches your dishes from the
// server, works out when each one goes in, and rings when it is time.
//
// Usage:
//
//	cooksync [-server http://localhost:8000] [-appliance Fan] [-sound tone] [-verbose]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hammamikhairi/cooksync/internal/alarm"
	"github.com/hammamikhairi/cooksync/internal/client"
	"github.com/hammamikhairi/cooksync/internal/config"
	"github.com/hammamikhairi/cooksync/internal/conversation"
	"github.com/hammamikhairi/cooksync/internal/display"
	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/logger"
	"github.com/hammamikhairi/cooksync/internal/timer"
)

func main() {
	configFile := flag.String("config", "", "optional YAML config file")
	envFile := flag.String("env-file", ".env", "dotenv file to load (missing is fine)")
	server := flag.String("server", "", "server URL, overrides config")
	token := flag.String("token", "", "bearer token, overrides config")
	appliance := flag.String("appliance", "", "Fan, Electric, Gas or Air Fryer")
	sound := flag.String("sound", "", "alarm sound: tone, bell or off")
	minute := flag.Duration("minute", 0, "length of one plan minute, e.g. 1s for a dry run")
	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", "", "file to write logs to (use \"stderr\" to log to console)")
	flag.Parse()

	cfg, err := config.LoadClient(config.WithConfigFile(*configFile), config.WithEnvFile(*envFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	override(&cfg.ServerURL, strings.TrimRight(*server, "/"))
	override(&cfg.Token, *token)
	override(&cfg.Appliance, *appliance)
	override(&cfg.Sound, *sound)
	override(&cfg.LogFile, *logFile)
	if *minute > 0 {
		cfg.Minute = *minute
	}

	logLevel := logger.ParseLevel(cfg.LogLevel)
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Logs go to a file by default so the terminal UI stays clean.
	var logOut io.Writer = os.Stderr
	if cfg.LogFile != "" && cfg.LogFile != "stderr" {
		if dir := filepath.Dir(cfg.LogFile); dir != "" && dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", cfg.LogFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}
	log := logger.New(logLevel, logOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	player := newAlarm(cfg.Sound, log.With("alarm"))
	defer player.Stop()

	api := client.New(cfg.ServerURL, log.With("client"), client.WithToken(cfg.Token))

	// The UI needs the runner and the runner prints through the UI, so
	// the notifier forwards to a UI assigned right after.
	var ui *display.UI
	notifier := conversation.NewCLINotifier(log, func(format string, a ...interface{}) {
		ui.Printf(format, a...)
	})
	runner := timer.New(nil, log.With("runner"),
		timer.WithNotifier(notifier),
		timer.WithAlarm(player),
		timer.WithMinute(cfg.Minute),
	)
	ui = display.NewUI(runner)
	watcher := timer.NewWatcher(runner, notifier, log.With("watcher"))

	app := &cliApp{
		api:       api,
		runner:    runner,
		parser:    conversation.NewKeywordParser(log),
		notifier:  notifier,
		appliance: domain.ParseApplianceType(cfg.Appliance),
		log:       log,
		ui:        ui,
	}

	fmt.Print(display.RenderBanner(fmt.Sprintf("%s | %s", cfg.ServerURL, app.appliance)))
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Println()

	go watcher.Run(ctx)
	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal; blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	runner.Stop()
	cancel()
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// newAlarm picks the alarm sound, falling back to the terminal bell when
// no audio device is available.
func newAlarm(sound string, log *logger.Logger) domain.AlarmPlayer {
	switch sound {
	case "off":
		return alarm.NoOp{}
	case "bell":
		return alarm.NewBell(nil, 2*time.Second)
	}
	p, err := alarm.NewTonePlayer(log, alarm.DefaultTone)
	if err != nil {
		log.Warn("audio unavailable, using the terminal bell: %v", err)
		return alarm.NewBell(nil, 2*time.Second)
	}
	return p
}

type cliApp struct {
	api       *client.Client
	runner    *timer.Runner
	parser    domain.IntentParser
	notifier  *conversation.CLINotifier
	appliance domain.ApplianceType
	log       *logger.Logger
	ui        *display.UI
	dishes    []*domain.Dish // last listed, for numbered edits
	tasks     []*domain.Task
	plan      *domain.Plan
}

func (a *cliApp) run(ctx context.Context) {
	a.listDishes(ctx)

	for {
		var input string
		var ok bool
		select {
		case <-ctx.Done():
			return
		case input, ok = <-a.ui.InputChan():
			if !ok {
				return
			}
		}

		intent, err := a.parser.Parse(ctx, input)
		if err != nil {
			a.log.Error("parsing input: %v", err)
			continue
		}
		a.log.Debug("intent: %s (args=%q)", intent.Type, intent.Args)
		if intent.Type == domain.IntentQuit {
			a.runner.Stop()
			a.ui.PrintChat("Bye. Enjoy your meal.")
			return
		}
		a.handleIntent(ctx, intent)
	}
}

func (a *cliApp) handleIntent(ctx context.Context, intent *domain.Intent) {
	switch intent.Type {
	case domain.IntentHelp:
		a.showHelp()
	case domain.IntentListDishes:
		a.listDishes(ctx)
	case domain.IntentPlan:
		a.calculate(ctx)
	case domain.IntentSetAppliance:
		a.setAppliance(ctx, intent.Args[0])
	case domain.IntentStart:
		a.start(ctx)
	case domain.IntentAcknowledge:
		a.report(a.runner.Acknowledge())
	case domain.IntentAdvance:
		a.report(a.runner.Advance())
	case domain.IntentStop:
		a.runner.Stop()
		a.ui.PrintChat("Timers stopped. Say 'start' to begin again.")
	case domain.IntentReset:
		a.runner.Reset()
		a.ui.PrintChat("Timeline reset.")
	case domain.IntentStatus:
		a.status()
	case domain.IntentEditTime:
		a.editTime(ctx, intent.Args[0], intent.Args[1])
	case domain.IntentRemove:
		a.remove(ctx, intent.Args[0])
	case domain.IntentClear:
		a.clear(ctx)
	case domain.IntentAddDish:
		a.addDish(ctx, intent.Args[0])
	case domain.IntentAddTask:
		a.addTask(ctx, intent.Args[0])
	case domain.IntentEditTask:
		a.editTask(ctx, intent.Args[0], intent.Args[1])
	case domain.IntentRemoveTask:
		a.removeTask(ctx, intent.Args[0])
	case domain.IntentWhoAmI:
		a.whoami(ctx)
	default:
		text := ""
		if len(intent.Args) > 0 {
			text = intent.Args[0]
		}
		a.ui.PrintHint(fmt.Sprintf("Didn't catch %q. Type 'help' for commands.", text))
	}
}

// report prints a runner error in plain words.
func (a *cliApp) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotAlarming):
		a.ui.PrintHint("Nothing is ringing right now.")
	case errors.Is(err, domain.ErrNotWaiting):
		a.ui.PrintHint("Say 'ok' to silence the alarm first.")
	case errors.Is(err, domain.ErrRunnerStopped):
		a.ui.PrintHint("The timeline isn't running. Say 'start'.")
	case errors.Is(err, domain.ErrRunnerBusy):
		a.ui.PrintHint("The timeline is already running. Say 'stop' first.")
	default:
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
	}
}

func (a *cliApp) listDishes(ctx context.Context) {
	dishes, err := a.api.Dishes(ctx)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Could not load dishes: %v", err))
		return
	}
	a.dishes = dishes
	if len(dishes) == 0 {
		a.ui.PrintChat("No dishes yet. Try: " + conversation.DishUsage)
	} else {
		a.ui.PrintStep("Dishes:")
		for i, d := range dishes {
			a.ui.PrintLine(fmt.Sprintf("%d. %s", i+1, describeDish(d)))
		}
	}

	tasks, err := a.api.Tasks(ctx)
	if err != nil {
		a.log.Warn("listing tasks: %v", err)
		return
	}
	a.tasks = tasks
	if len(tasks) > 0 {
		a.ui.PrintStep("Tasks:")
		for i, t := range tasks {
			if t.Kind == domain.TaskTrigger {
				a.ui.PrintLine(fmt.Sprintf("%d. %s at %d min", i+1, t.Name, t.TriggerAt))
			} else {
				a.ui.PrintLine(fmt.Sprintf("%d. %s for %d min", i+1, t.Name, t.Duration))
			}
		}
	}
}

func describeDish(d *domain.Dish) string {
	where := string(d.Appliance)
	if d.InOven() && d.OvenType != "" {
		where = string(d.OvenType) + " oven"
	}
	if d.Appliance == domain.ApplianceMicrowave {
		return fmt.Sprintf("%s, %d min in the microwave", d.Name, d.CookingTime)
	}
	return fmt.Sprintf("%s, %.0f°%s for %d min (%s)", d.Name, d.Temperature, d.Unit, d.CookingTime, where)
}

func (a *cliApp) calculate(ctx context.Context) bool {
	p, err := a.api.CalculatePlan(ctx, a.appliance)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			a.ui.PrintChat("Nothing to plan yet. Add dishes or tasks first.")
		} else {
			a.ui.PrintUrgent(fmt.Sprintf("Could not calculate the plan: %v", err))
		}
		return false
	}
	if p.Empty() {
		a.ui.PrintChat("Nothing to plan yet. Add dishes or tasks first.")
		return false
	}
	if err := a.runner.Load(p); err != nil {
		a.report(err)
		return false
	}
	a.plan = p
	a.showPlan(p)
	return true
}

func (a *cliApp) showPlan(p *domain.Plan) {
	if p.Appliance == domain.UserAirFryer {
		a.ui.PrintStep(fmt.Sprintf("Air fryer at %d°C, ready in %d min", p.ApplianceTemp, p.TotalTime))
	} else {
		a.ui.PrintStep(fmt.Sprintf("%s oven at %d°C, ready in %d min", p.Appliance, p.ApplianceTemp, p.TotalTime))
	}
	for _, s := range p.Steps {
		var names []string
		for _, it := range s.Items {
			switch it.Kind {
			case domain.ItemInstruction:
				names = append(names, it.Name)
			case domain.ItemTask:
				names = append(names, fmt.Sprintf("%s (%d min)", it.Name, it.AdjustedTime))
			default:
				names = append(names, fmt.Sprintf("put in %s (%d min)", it.Name, it.AdjustedTime))
			}
		}
		a.ui.PrintLine(fmt.Sprintf("%3d min  %s", s.StartDelay, strings.Join(names, ", ")))
	}
	a.ui.PrintHint("Say 'start' when the oven is hot.")
}

func (a *cliApp) setAppliance(ctx context.Context, name string) {
	a.appliance = domain.ParseApplianceType(name)
	a.ui.PrintChat(fmt.Sprintf("Cooking with %s.", a.appliance))
	if a.plan != nil && a.runner.State() == domain.RunnerIdle {
		a.calculate(ctx)
	}
}

func (a *cliApp) start(ctx context.Context) {
	// Always replan from the server so edits made elsewhere are picked up.
	if st := a.runner.State(); st == domain.RunnerIdle || st == domain.RunnerAllDone {
		if !a.calculate(ctx) {
			return
		}
	}
	a.report(a.runner.Start(ctx))
}

func (a *cliApp) status() {
	snap := a.runner.Snapshot()
	if snap.State == domain.RunnerIdle {
		a.ui.PrintChat("Not cooking right now.")
	} else {
		a.ui.PrintChat(display.Title(snap, time.Now()))
	}
	recent := a.notifier.Recent()
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	for _, e := range recent {
		a.ui.PrintHint(fmt.Sprintf("%s %s", e.At.Format("15:04"), e.Message))
	}
}

func (a *cliApp) dishAt(arg string) (*domain.Dish, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(a.dishes) {
		a.ui.PrintHint(fmt.Sprintf("No dish %s. Say 'list' to see the numbers.", arg))
		return nil, false
	}
	return a.dishes[n-1], true
}

func (a *cliApp) editTime(ctx context.Context, which, minutes string) {
	d, ok := a.dishAt(which)
	if !ok {
		return
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 1 {
		a.ui.PrintHint("Cooking time must be a whole number of minutes, at least 1.")
		return
	}
	updated, err := a.api.UpdateDishTime(ctx, d.ID, m)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Could not update %s: %v", d.Name, err))
		return
	}
	a.ui.PrintChat(fmt.Sprintf("%s now cooks for %d min.", updated.Name, updated.CookingTime))
	a.listDishes(ctx)
}

func (a *cliApp) remove(ctx context.Context, which string) {
	d, ok := a.dishAt(which)
	if !ok {
		return
	}
	if err := a.api.RemoveDish(ctx, d.ID); err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Could not remove %s: %v", d.Name, err))
		return
	}
	a.ui.PrintChat(fmt.Sprintf("Removed %s.", d.Name))
	a.listDishes(ctx)
}

func (a *cliApp) clear(ctx context.Context) {
	dishes, err := a.api.ClearDishes(ctx)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Could not clear dishes: %v", err))
		return
	}
	a.dishes = nil
	tasks, err := a.api.ClearTasks(ctx)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Could not clear tasks: %v", err))
	} else {
		a.tasks = nil
	}

	// The loaded plan belongs to the deleted kitchen.
	a.plan = nil
	if st := a.runner.State(); st == domain.RunnerIdle || st == domain.RunnerAllDone {
		a.report(a.runner.Load(nil))
	}
	a.ui.PrintChat(fmt.Sprintf("Deleted %d dishes and %d tasks.", dishes, tasks))
}

func (a *cliApp) addDish(ctx context.Context, args string) {
	in, err := conversation.ParseDish(args)
	if err != nil {
		a.ui.PrintHint(fmt.Sprintf("%v. Usage: %s", err, conversation.DishUsage))
		return
	}
	d, err := a.api.AddDish(ctx, in)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Could not add %s: %v", in.Name, err))
		return
	}
	a.ui.PrintChat(fmt.Sprintf("Added %s.", describeDish(d)))
	a.listDishes(ctx)
}

func (a *cliApp) addTask(ctx context.Context, args string) {
	in, err := conversation.ParseTask(args)
	if err != nil {
		a.ui.PrintHint(fmt.Sprintf("%v. Usage: %s", err, conversation.TaskUsage))
		return
	}
	t, err := a.api.AddTask(ctx, in)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Could not add %s: %v", in.Name, err))
		return
	}
	a.ui.PrintChat(fmt.Sprintf("Added task %s.", t.Name))
	a.listDishes(ctx)
}

func (a *cliApp) taskAt(arg string) (*domain.Task, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(a.tasks) {
		a.ui.PrintHint(fmt.Sprintf("No task %s. Say 'list' to see the numbers.", arg))
		return nil, false
	}
	return a.tasks[n-1], true
}

func (a *cliApp) editTask(ctx context.Context, which, minutes string) {
	t, ok := a.taskAt(which)
	if !ok {
		return
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || (t.Kind != domain.TaskTrigger && m < 1) {
		a.ui.PrintHint("A task's duration must be a whole number of minutes, at least 1.")
		return
	}
	updated, err := a.api.UpdateTaskTime(ctx, t.ID, m)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Could not update %s: %v", t.Name, err))
		return
	}
	if updated.Kind == domain.TaskTrigger {
		a.ui.PrintChat(fmt.Sprintf("%s now happens at %d min.", updated.Name, updated.TriggerAt))
	} else {
		a.ui.PrintChat(fmt.Sprintf("%s now takes %d min.", updated.Name, updated.Duration))
	}
	a.listDishes(ctx)
}

func (a *cliApp) removeTask(ctx context.Context, which string) {
	t, ok := a.taskAt(which)
	if !ok {
		return
	}
	if err := a.api.RemoveTask(ctx, t.ID); err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Could not remove %s: %v", t.Name, err))
		return
	}
	a.ui.PrintChat(fmt.Sprintf("Removed task %s.", t.Name))
	a.listDishes(ctx)
}

func (a *cliApp) whoami(ctx context.Context) {
	u, err := a.api.Me(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			a.ui.PrintHint("Not signed in. Set COOKSYNC_TOKEN or pass -token.")
			return
		}
		a.ui.PrintUrgent(fmt.Sprintf("Could not load your account: %v", err))
		return
	}
	if u.Email == "" {
		a.ui.PrintChat(fmt.Sprintf("Signed in as %s.", u.Name))
		return
	}
	a.ui.PrintChat(fmt.Sprintf("Signed in as %s <%s>.", u.Name, u.Email))
}

func (a *cliApp) showHelp() {
	a.ui.PrintStep("Commands:")
	for _, line := range []string{
		"list              show dishes and tasks",
		"plan              calculate the cooking plan",
		"oven <type>       Fan, Electric, Gas or Air Fryer",
		"start             start the timeline",
		"ok                silence the alarm",
		"next              the next items are in, start their timers",
		"stop / reset      stop the timers / start over",
		"status            where are we",
		conversation.DishUsage,
		conversation.TaskUsage,
		"edit <n> <min>    change dish n's cooking time",
		"edit task <n> <m> change task n's minutes",
		"remove <n>        delete dish n",
		"remove task <n>   delete task n",
		"clear             delete every dish and task",
		"whoami            show the signed-in account",
		"quit              exit",
	} {
		a.ui.PrintLine(line)
	}
}
