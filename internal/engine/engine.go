// Package engine drives the scheduling loop. A Runner evaluates the
// weekly schedule and recurring tasks once per tick, fires alerts
// through the dispatcher, and tracks what already fired so re-entering
// the same minute stays silent.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sergiudm/remind/internal/alert"
	"github.com/sergiudm/remind/internal/config"
	"github.com/sergiudm/remind/internal/logging"
	"github.com/sergiudm/remind/internal/recurrence"
	"github.com/sergiudm/remind/internal/report"
	"github.com/sergiudm/remind/internal/schedule"
	"github.com/sergiudm/remind/internal/store"
	"github.com/sergiudm/remind/internal/timeutil"
)

// TickInterval is how often the loop re-evaluates the schedule. It must
// divide a minute so no "HH:MM" trigger is skipped.
const TickInterval = 20 * time.Second

// Deps collects everything a Runner needs.
type Deps struct {
	Config     *config.Config
	Weekly     *schedule.Weekly
	Dispatcher *alert.Dispatcher
	Tasks      *store.Tasks
	Log        *store.ActionLog
	Deadlines  *store.Deadlines
	Habits     *store.Habits
	Reports    *report.Generator

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Runner is the scheduling engine. All mutable state is confined to the
// tick goroutine; alerts leave through the dispatcher asynchronously.
type Runner struct {
	cfg        *config.Config
	weekly     *schedule.Weekly
	dispatcher *alert.Dispatcher
	tasks      *store.Tasks
	log        *store.ActionLog
	deadlines  *store.Deadlines
	habits     *store.Habits
	reports    *report.Generator
	clock      func() time.Time

	dailySummary  *recurrence.Daily
	urgentTasks   []recurrence.Daily
	urgentDDL     []recurrence.Daily
	habitPrompt   *recurrence.Daily
	weeklyReview  *recurrence.Weekly
	monthlyReview *recurrence.Monthly

	// disabled lists recurrence specs that failed to parse on the last
	// config apply. A bad spec never stops the engine, its rule just
	// stays off. Guarded by disabledMu so callers can inspect it while
	// the loop runs.
	disabledMu sync.Mutex
	disabled   []string

	reloads chan reloadState

	// fired holds idempotence keys handled since the last midnight
	// reset. pendingEnd maps an "HH:MM" end time to the block title
	// awaiting its end alarm.
	fired      map[string]struct{}
	pendingEnd map[string]string
	lastReset  string

	prompts sync.WaitGroup
}

type reloadState struct {
	cfg    *config.Config
	weekly *schedule.Weekly
}

// New builds a Runner, parsing the recurrence specs out of the config.
// A spec that fails to parse disables its rule and is reported by
// DisabledRules; it never prevents the engine from starting.
func New(d Deps) *Runner {
	if d.Clock == nil {
		d.Clock = time.Now
	}

	r := &Runner{
		cfg:        d.Config,
		weekly:     d.Weekly,
		dispatcher: d.Dispatcher,
		tasks:      d.Tasks,
		log:        d.Log,
		deadlines:  d.Deadlines,
		habits:     d.Habits,
		reports:    d.Reports,
		clock:      d.Clock,
		fired:      make(map[string]struct{}),
		pendingEnd: make(map[string]string),
		reloads:    make(chan reloadState, 1),
	}
	r.applySpecs(d.Config)
	return r
}

// applySpecs rebuilds the recurrence rules from cfg.
func (r *Runner) applySpecs(cfg *config.Config) {
	r.disabledMu.Lock()
	r.disabled = nil
	r.disabledMu.Unlock()
	r.dailySummary, r.habitPrompt = nil, nil
	r.urgentTasks, r.urgentDDL = nil, nil
	r.weeklyReview, r.monthlyReview = nil, nil

	if rule, err := recurrence.NewDaily("daily_summary", cfg.DailySummaryTime); err != nil {
		r.disable("daily_summary", err)
	} else {
		r.dailySummary = &rule
	}
	for _, at := range cfg.DailyUrgentTimes {
		if rule, err := recurrence.NewDaily("urgent_tasks", at); err != nil {
			r.disable("urgent_tasks", err)
		} else {
			r.urgentTasks = append(r.urgentTasks, rule)
		}
	}
	for _, at := range cfg.DDLUrgentTimes {
		if rule, err := recurrence.NewDaily("urgent_ddl", at); err != nil {
			r.disable("urgent_ddl", err)
		} else {
			r.urgentDDL = append(r.urgentDDL, rule)
		}
	}
	if cfg.HabitPromptTime != "" {
		if rule, err := recurrence.NewDaily("habit_check", cfg.HabitPromptTime); err != nil {
			r.disable("habit_check", err)
		} else {
			r.habitPrompt = &rule
		}
	}
	if cfg.WeeklyReviewSpec != "" {
		if rule, err := recurrence.ParseWeekly("weekly_review", cfg.WeeklyReviewSpec); err != nil {
			r.disable("weekly_review", err)
		} else {
			r.weeklyReview = &rule
		}
	}
	if cfg.MonthlyReviewSpec != "" {
		if rule, err := recurrence.ParseMonthly("monthly_review", cfg.MonthlyReviewSpec); err != nil {
			r.disable("monthly_review", err)
		} else {
			r.monthlyReview = &rule
		}
	}
}

func (r *Runner) disable(name string, err error) {
	r.disabledMu.Lock()
	r.disabled = append(r.disabled, fmt.Sprintf("%s: %v", name, err))
	r.disabledMu.Unlock()
	logging.Warn("engine", "disabled %s: %v", name, err)
}

// DisabledRules reports recurrence specs rejected on the last config
// apply.
func (r *Runner) DisabledRules() []string {
	r.disabledMu.Lock()
	defer r.disabledMu.Unlock()
	return append([]string(nil), r.disabled...)
}

// Reload hands a freshly loaded configuration and schedule to the loop.
// The swap happens on the tick goroutine, so a tick never sees a
// half-applied update. Callers keep the old configuration when loading
// the new one failed; Reload is only for a successful load.
func (r *Runner) Reload(cfg *config.Config, weekly *schedule.Weekly) {
	select {
	case r.reloads <- reloadState{cfg: cfg, weekly: weekly}:
	default:
		logging.Warn("engine", "reload already pending, dropped")
	}
}

// Run ticks until ctx is cancelled. Missed review reports are generated
// on entry so a daemon that slept through an occurrence catches up.
func (r *Runner) Run(ctx context.Context) {
	if err := r.reports.GenerateDue(r.clock(), r.weeklyReview, r.monthlyReview); err != nil {
		logging.Warn("engine", "report catch-up failed: %v", err)
	}

	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	logging.Info("engine", "Started (tick %s)", TickInterval)
	r.Tick(r.clock())
	for {
		select {
		case <-ctx.Done():
			logging.Info("engine", "Stopping")
			r.prompts.Wait()
			r.dispatcher.Wait()
			return
		case s := <-r.reloads:
			r.cfg = s.cfg
			r.weekly = s.weekly
			r.applySpecs(s.cfg)
			logging.Info("engine", "Configuration reloaded")
		case <-ticker.C:
			r.Tick(r.clock())
		}
	}
}

// Tick evaluates one instant. Steps run in a fixed order: schedule
// starts, block ends, recurring tasks, then the midnight reset. A
// failure in one step never blocks the others.
func (r *Runner) Tick(now time.Time) {
	defer func() {
		if v := recover(); v != nil {
			logging.Warn("engine", "tick panic: %v", v)
		}
	}()

	nowStr := timeutil.ClockOf(now)
	today := r.weekly.Today(r.cfg, now)

	r.tickStarts(today, nowStr)
	r.tickEnds(nowStr)
	r.tickRecurring(now)
	r.tickMidnight(now)
}

func (r *Runner) tickStarts(today map[string]schedule.Entry, nowStr string) {
	entry, ok := today[nowStr]
	if !ok {
		return
	}
	if _, done := r.fired[nowStr]; done {
		return
	}

	switch entry.Kind {
	case schedule.KindMessage, schedule.KindPointRef:
		r.dispatcher.Dispatch("Reminder", entry.Text)
	case schedule.KindBlockRef:
		minutes, known := r.cfg.BlockMinutes(entry.Block)
		if !known {
			// Deliberately not marked fired: the warning repeats every
			// tick so a config typo stays visible.
			logging.Warn("engine", "schedule references %v at %s", schedule.ErrUnknownBlock, nowStr)
			return
		}
		end, err := timeutil.AddMinutes(nowStr, minutes)
		if err != nil {
			logging.Warn("engine", "cannot compute end of %s: %v", entry.Title, err)
			return
		}
		r.dispatcher.Dispatch(entry.Title, fmt.Sprintf("%s ⏱ (%dmin)", entry.Title, minutes))
		r.pendingEnd[end] = entry.Title
	}
	r.fired[nowStr] = struct{}{}
}

func (r *Runner) tickEnds(nowStr string) {
	title, ok := r.pendingEnd[nowStr]
	if !ok {
		return
	}
	if _, done := r.fired[nowStr]; done {
		return
	}
	delete(r.pendingEnd, nowStr)
	r.fired[nowStr] = struct{}{}
	r.dispatcher.Dispatch(title, fmt.Sprintf("%s finished! Take a break 🎉", title))
}

func (r *Runner) tickRecurring(now time.Time) {
	skip := r.cfg.ShouldSkip(now)

	if !skip {
		if r.dailySummary != nil {
			r.fireDaily(*r.dailySummary, now, r.sendDailySummary)
		}
		for _, rule := range r.urgentTasks {
			r.fireDaily(rule, now, r.sendUrgentTasks)
		}
		for _, rule := range r.urgentDDL {
			r.fireDaily(rule, now, r.sendUrgentDeadlines)
		}
		if r.habitPrompt != nil {
			r.fireDaily(*r.habitPrompt, now, r.runHabitPrompt)
		}
	}

	// Reviews run even on skip days.
	if r.weeklyReview != nil && r.weeklyReview.Due(now) {
		key := r.weeklyReview.Key(now)
		if _, done := r.fired[key]; !done {
			r.fired[key] = struct{}{}
			r.runWeeklyReview(now)
		}
	}
	if r.monthlyReview != nil && r.monthlyReview.Due(now) {
		key := r.monthlyReview.Key(now)
		if _, done := r.fired[key]; !done {
			r.fired[key] = struct{}{}
			r.runMonthlyReview(now)
		}
	}
}

// fireDaily marks the rule's key before running the action, so a
// failing action still fires only once per day.
func (r *Runner) fireDaily(rule recurrence.Daily, now time.Time, action func(time.Time)) {
	if !rule.Due(now) {
		return
	}
	key := rule.Key(now)
	if _, done := r.fired[key]; done {
		return
	}
	r.fired[key] = struct{}{}
	action(now)
}

func (r *Runner) tickMidnight(now time.Time) {
	today := timeutil.DateOf(now)
	if r.lastReset == "" {
		r.lastReset = today
		return
	}
	if today == r.lastReset {
		return
	}
	r.fired = make(map[string]struct{})
	r.pendingEnd = make(map[string]string)
	r.lastReset = today
	logging.Info("engine", "Daily state reset for %s", today)
}

func (r *Runner) sendDailySummary(now time.Time) {
	completed, err := r.log.CompletedOn(now)
	if err != nil {
		logging.Warn("engine", "daily summary: %v", err)
		return
	}

	var b strings.Builder
	b.WriteString("📋 Daily Summary\n")
	if len(completed) == 0 {
		b.WriteString("Nothing completed today.")
	} else {
		fmt.Fprintf(&b, "Completed today (%d):\n", len(completed))
		for _, task := range completed {
			fmt.Fprintf(&b, "  ✅ %s\n", task)
		}
	}
	r.dispatcher.Dispatch("Daily Summary", strings.TrimRight(b.String(), "\n"))
}

func (r *Runner) sendUrgentTasks(time.Time) {
	urgent, err := r.tasks.Urgent()
	if err != nil {
		logging.Warn("engine", "urgent tasks: %v", err)
		return
	}
	if len(urgent) == 0 {
		return
	}
	var b strings.Builder
	b.WriteString("🔥 Urgent tasks:\n")
	for _, task := range urgent {
		fmt.Fprintf(&b, "  • %s (p%d)\n", task.Description, task.Priority)
	}
	r.dispatcher.Dispatch("Urgent Tasks", strings.TrimRight(b.String(), "\n"))
}

func (r *Runner) sendUrgentDeadlines(now time.Time) {
	urgent, err := r.deadlines.Urgent(now)
	if err != nil {
		logging.Warn("engine", "urgent deadlines: %v", err)
		return
	}
	if len(urgent) == 0 {
		return
	}
	var b strings.Builder
	b.WriteString("⚠️ Upcoming deadlines:\n")
	for _, d := range urgent {
		switch {
		case d.DaysLeft < 0:
			fmt.Fprintf(&b, "  • %s was due %s (%d days ago)\n", d.Event, d.Deadline.Deadline, -d.DaysLeft)
		case d.DaysLeft == 0:
			fmt.Fprintf(&b, "  • %s is due today!\n", d.Event)
		default:
			fmt.Fprintf(&b, "  • %s: %d days left (%s)\n", d.Event, d.DaysLeft, d.Deadline.Deadline)
		}
	}
	r.dispatcher.Dispatch("Deadlines", strings.TrimRight(b.String(), "\n"))
}

// runHabitPrompt asks which habits were completed today. The prompt
// blocks on user input, so it runs off the tick goroutine. Dismissing
// the prompt records nothing; confirming an empty selection records an
// empty day.
func (r *Runner) runHabitPrompt(now time.Time) {
	habits, err := r.habits.Options()
	if err != nil {
		logging.Warn("engine", "habit prompt: %v", err)
		return
	}
	if len(habits) == 0 {
		return
	}
	options := make([]string, len(habits))
	for i, habit := range habits {
		options[i] = habit.Name
	}

	r.prompts.Add(1)
	go func() {
		defer r.prompts.Done()
		selected, outcome, err := r.dispatcher.Prompt("Which habits did you complete today?", options)
		if err != nil {
			logging.Warn("engine", "habit prompt: %v", err)
			return
		}
		if outcome != alert.Acknowledged {
			logging.Debug("engine", "habit prompt %s, nothing recorded", outcome)
			return
		}
		if err := r.habits.RecordCompletion(now, selected); err != nil {
			logging.Warn("engine", "habit record: %v", err)
		}
	}()
}

func (r *Runner) runWeeklyReview(now time.Time) {
	path, created, err := r.reports.GenerateWeekly(now)
	if err != nil {
		logging.Warn("engine", "weekly review: %v", err)
		return
	}
	if created {
		r.dispatcher.Dispatch("Weekly Review", fmt.Sprintf("📝 Weekly review time! Report saved to %s", path))
	} else {
		r.dispatcher.Dispatch("Weekly Review", "📝 Weekly review time!")
	}
}

func (r *Runner) runMonthlyReview(now time.Time) {
	path, created, err := r.reports.GenerateMonthly(now)
	if err != nil {
		logging.Warn("engine", "monthly review: %v", err)
		return
	}
	if created {
		r.dispatcher.Dispatch("Monthly Review", fmt.Sprintf("📆 Monthly review time! Report saved to %s", path))
	} else {
		r.dispatcher.Dispatch("Monthly Review", "📆 Monthly review time!")
	}
}

// Wait blocks until background prompts and alerts drain. Tests use it
// to observe everything a tick produced.
func (r *Runner) Wait() {
	r.prompts.Wait()
	r.dispatcher.Wait()
}
