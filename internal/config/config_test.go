package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSettings(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, SettingsFile), []byte(content), 0644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, "")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AlertInterval != 5*time.Second {
		t.Errorf("Expected default alert interval 5s, got %v", cfg.AlertInterval)
	}
	if cfg.MaxAlertDuration != 300*time.Second {
		t.Errorf("Expected default max alert duration 300s, got %v", cfg.MaxAlertDuration)
	}
	if cfg.DailySummaryTime != "22:00" {
		t.Errorf("Expected default daily summary 22:00, got %s", cfg.DailySummaryTime)
	}
	if cfg.SoundFile == "" {
		t.Error("Expected a default sound file")
	}
	if len(cfg.Blocks) != 0 || len(cfg.Points) != 0 {
		t.Error("Expected empty blocks/points when sections are absent")
	}
}

func TestLoadFull(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, `
[settings]
sound_file = "/tmp/ding.aiff"
alarm_interval = 10
max_alarm_duration = 120
skip_days = ["Sunday", "saturday"]

[time_blocks]
pomodoro = 25
break = 5

[time_points]
go_to_bed = "Time to sleep"

[tasks]
daily_summary = "21:30"
weekly_review = "sunday 20:00"
monthly_review = "1 20:00"
daily_urgent = ["10:00", "20:00"]
ddl_urgent = ["09:00"]
habit_check = "21:00"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AlertInterval != 10*time.Second {
		t.Errorf("Expected 10s alert interval, got %v", cfg.AlertInterval)
	}
	if cfg.Blocks["pomodoro"] != 25 || cfg.Blocks["break"] != 5 {
		t.Errorf("Unexpected blocks: %v", cfg.Blocks)
	}
	if cfg.Points["go_to_bed"] != "Time to sleep" {
		t.Errorf("Unexpected points: %v", cfg.Points)
	}
	if cfg.WeeklyReviewSpec != "sunday 20:00" || cfg.MonthlyReviewSpec != "1 20:00" {
		t.Errorf("Unexpected review specs: %q %q", cfg.WeeklyReviewSpec, cfg.MonthlyReviewSpec)
	}
	if len(cfg.DailyUrgentTimes) != 2 || cfg.DailyUrgentTimes[0] != "10:00" {
		t.Errorf("Unexpected daily urgent times: %v", cfg.DailyUrgentTimes)
	}
	if cfg.HabitPromptTime != "21:00" {
		t.Errorf("Unexpected habit prompt time: %q", cfg.HabitPromptTime)
	}
}

func TestShouldSkip(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, `
[settings]
skip_days = ["sunday"]
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	sunday := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)

	if !cfg.ShouldSkip(sunday) {
		t.Error("Expected Sunday to be skipped")
	}
	if cfg.ShouldSkip(monday) {
		t.Error("Expected Monday not to be skipped")
	}
}

func TestShouldSkipCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, `
[settings]
skip_days = ["SUNDAY"]
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	sunday := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)
	if !cfg.ShouldSkip(sunday) {
		t.Error("Expected skip-day match to ignore case")
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir); err == nil {
		t.Fatal("Expected error for missing settings file")
	} else if !errors.Is(err, ErrLoad) {
		t.Errorf("Expected ErrLoad, got %v", err)
	}
}

func TestLoadRejectsNonPositiveBlock(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, `
[time_blocks]
pomodoro = 0
`)
	if _, err := Load(dir); err == nil {
		t.Fatal("Expected error for zero-duration block")
	}
}

func TestPathResolution(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, `
[paths]
tasks_path = "tasks/tasks.json"
ddl_path = "/abs/ddl.json"
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := cfg.TasksPath(); got != filepath.Join(dir, "tasks", "tasks.json") {
		t.Errorf("Relative path not resolved against config dir: %s", got)
	}
	if got := cfg.DeadlinesPath(); got != "/abs/ddl.json" {
		t.Errorf("Absolute path should pass through: %s", got)
	}
	if got := cfg.OddWeeksPath(); got != filepath.Join(dir, "odd_weeks.toml") {
		t.Errorf("Unexpected odd weeks path: %s", got)
	}
}
