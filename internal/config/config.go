// Package config loads settings.toml into an immutable typed view.
// A Config is built once per load; reloading constructs a fresh instance
// so a failed reload never leaves a half-mutated configuration behind.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sergiudm/remind/internal/timeutil"
)

// ErrLoad indicates the settings file could not be read or parsed.
// It is fatal at startup; on reload the caller keeps the previous Config.
var ErrLoad = errors.New("cannot load settings")

// SettingsFile is the settings file name inside the config directory.
const SettingsFile = "settings.toml"

// Config is the typed, read-only view over settings.toml.
type Config struct {
	dir string

	SoundFile        string
	AlertInterval    time.Duration
	MaxAlertDuration time.Duration

	// Blocks maps activity name to duration in minutes.
	Blocks map[string]int
	// Points maps activity key to the message fired for it.
	Points map[string]string

	skipDays map[string]bool

	DailySummaryTime  string
	WeeklyReviewSpec  string
	MonthlyReviewSpec string
	DailyUrgentTimes  []string
	DDLUrgentTimes    []string
	HabitPromptTime   string

	tasksPath   string
	logPath     string
	ddlPath     string
	recordPath  string
	habitsPath  string
	reportsPath string
}

// Load reads <dir>/settings.toml and returns a fresh Config.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, SettingsFile))
	v.SetConfigType("toml")

	v.SetDefault("settings.sound_file", "/System/Library/Sounds/Ping.aiff")
	v.SetDefault("settings.alarm_interval", 5)
	v.SetDefault("settings.max_alarm_duration", 300)
	v.SetDefault("tasks.daily_summary", "22:00")
	v.SetDefault("paths.tasks_path", "tasks/tasks.json")
	v.SetDefault("paths.log_path", "tasks/tasks.log")
	v.SetDefault("paths.ddl_path", "ddl.json")
	v.SetDefault("paths.record_path", "tasks/record.json")
	v.SetDefault("paths.habits_path", "habits.toml")
	v.SetDefault("paths.reports_path", "~/Desktop/reports")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	blocks := make(map[string]int)
	for name, minutes := range v.GetStringMap("time_blocks") {
		d := toInt(minutes)
		if d <= 0 {
			return nil, fmt.Errorf("%w: time block %q has non-positive duration", ErrLoad, name)
		}
		blocks[name] = d
	}

	skip := make(map[string]bool)
	for _, day := range v.GetStringSlice("settings.skip_days") {
		skip[strings.ToLower(day)] = true
	}

	cfg := &Config{
		dir:               dir,
		SoundFile:         v.GetString("settings.sound_file"),
		AlertInterval:     time.Duration(v.GetInt("settings.alarm_interval")) * time.Second,
		MaxAlertDuration:  time.Duration(v.GetInt("settings.max_alarm_duration")) * time.Second,
		Blocks:            blocks,
		Points:            v.GetStringMapString("time_points"),
		skipDays:          skip,
		DailySummaryTime:  v.GetString("tasks.daily_summary"),
		WeeklyReviewSpec:  v.GetString("tasks.weekly_review"),
		MonthlyReviewSpec: v.GetString("tasks.monthly_review"),
		DailyUrgentTimes:  v.GetStringSlice("tasks.daily_urgent"),
		DDLUrgentTimes:    v.GetStringSlice("tasks.ddl_urgent"),
		HabitPromptTime:   v.GetString("tasks.habit_check"),
		tasksPath:         v.GetString("paths.tasks_path"),
		logPath:           v.GetString("paths.log_path"),
		ddlPath:           v.GetString("paths.ddl_path"),
		recordPath:        v.GetString("paths.record_path"),
		habitsPath:        v.GetString("paths.habits_path"),
		reportsPath:       v.GetString("paths.reports_path"),
	}
	return cfg, nil
}

// Dir returns the config directory this Config was loaded from.
func (c *Config) Dir() string { return c.dir }

// BlockMinutes looks up a time block duration by name. Viper lowercases
// TOML keys, so the lookup folds case to keep mixed-case config names
// resolvable.
func (c *Config) BlockMinutes(name string) (int, bool) {
	d, ok := c.Blocks[strings.ToLower(name)]
	return d, ok
}

// PointMessage looks up a time point message by key, folding case like
// BlockMinutes.
func (c *Config) PointMessage(name string) (string, bool) {
	m, ok := c.Points[strings.ToLower(name)]
	return m, ok
}

// ShouldSkip reports whether the entire daily schedule is suppressed for
// the weekday of t.
func (c *Config) ShouldSkip(t time.Time) bool {
	return c.skipDays[timeutil.WeekdayName(t)]
}

// SkipDays returns the configured skip-day names.
func (c *Config) SkipDays() []string {
	days := make([]string, 0, len(c.skipDays))
	for d := range c.skipDays {
		days = append(days, d)
	}
	return days
}

// TasksPath returns the resolved location of tasks.json.
func (c *Config) TasksPath() string { return c.resolve(c.tasksPath) }

// TaskLogPath returns the resolved location of the task action log.
func (c *Config) TaskLogPath() string { return c.resolve(c.logPath) }

// DeadlinesPath returns the resolved location of ddl.json.
func (c *Config) DeadlinesPath() string { return c.resolve(c.ddlPath) }

// HabitRecordPath returns the resolved location of record.json.
func (c *Config) HabitRecordPath() string { return c.resolve(c.recordPath) }

// HabitsPath returns the resolved location of habits.toml.
func (c *Config) HabitsPath() string { return c.resolve(c.habitsPath) }

// ReportsPath returns the resolved reports output directory.
func (c *Config) ReportsPath() string { return c.resolve(c.reportsPath) }

// OddWeeksPath returns the odd-week schedule file location.
func (c *Config) OddWeeksPath() string { return filepath.Join(c.dir, "odd_weeks.toml") }

// EvenWeeksPath returns the even-week schedule file location.
func (c *Config) EvenWeeksPath() string { return filepath.Join(c.dir, "even_weeks.toml") }

// resolve expands ~ and environment variables; relative paths are taken
// relative to the config directory.
func (c *Config) resolve(raw string) string {
	expanded := os.ExpandEnv(raw)
	if strings.HasPrefix(expanded, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			expanded = home + expanded[1:]
		}
	}
	if filepath.IsAbs(expanded) {
		return expanded
	}
	return filepath.Join(c.dir, expanded)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
