package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/sergiudm/remind/internal/config"
	"github.com/sergiudm/remind/internal/recurrence"
	"github.com/sergiudm/remind/internal/schedule"
	"github.com/sergiudm/remind/internal/timeutil"
)

var checkCommand = cli.Command{
	Name:   "check",
	Usage:  "validate settings and schedule files",
	Action: check,
}

func check(ctx *cli.Context) error {
	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	cfg, err := loadConfig()
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("✗ %v", err), 1)
	}
	fmt.Printf("✓ %s\n", config.SettingsFile)

	checkClock := func(name, at string) {
		if at == "" {
			return
		}
		if _, err := timeutil.ParseClock(at); err != nil {
			fail("%s: %v", name, err)
		}
	}
	checkClock("tasks.daily_summary", cfg.DailySummaryTime)
	checkClock("tasks.habit_check", cfg.HabitPromptTime)
	for _, at := range cfg.DailyUrgentTimes {
		checkClock("tasks.daily_urgent", at)
	}
	for _, at := range cfg.DDLUrgentTimes {
		checkClock("tasks.ddl_urgent", at)
	}
	if spec := cfg.WeeklyReviewSpec; spec != "" {
		if _, err := recurrence.ParseWeekly("weekly_review", spec); err != nil {
			fail("tasks.weekly_review: %v", err)
		}
	}
	if spec := cfg.MonthlyReviewSpec; spec != "" {
		if _, err := recurrence.ParseMonthly("monthly_review", spec); err != nil {
			fail("tasks.monthly_review: %v", err)
		}
	}

	weekly, err := schedule.LoadWeekly(cfg.OddWeeksPath(), cfg.EvenWeeksPath())
	if err != nil {
		fail("%v", err)
	} else {
		fmt.Println("✓ odd_weeks.toml, even_weeks.toml")
		checkTree(cfg, weekly, timeutil.ParityOdd, "odd_weeks.toml", fail)
		checkTree(cfg, weekly, timeutil.ParityEven, "even_weeks.toml", fail)
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		for _, p := range problems {
			color.Red("✗ %s", p)
		}
		return cli.NewExitError(fmt.Sprintf("%d problem(s) found", len(problems)), 1)
	}
	color.Green("Configuration looks good.")
	return nil
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func checkTree(cfg *config.Config, weekly *schedule.Weekly, parity timeutil.Parity, file string, fail func(string, ...any)) {
	for _, day := range weekdays {
		for at, entry := range weekly.EffectiveFor(day, parity, cfg) {
			if _, err := timeutil.ParseClock(at); err != nil {
				fail("%s %s: bad time key %q", file, day, at)
			}
			if entry.Kind == schedule.KindBlockRef {
				if _, ok := cfg.BlockMinutes(entry.Block); !ok {
					fail("%s %s %s: unknown time block %q", file, day, at, entry.Block)
				}
			}
		}
	}
}
