package schedule

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sergiudm/remind/internal/config"
	"github.com/sergiudm/remind/internal/timeutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	settings := `
[time_blocks]
pomodoro = 25
deep_work = 90

[time_points]
go_to_bed = "Time to sleep"

[settings]
skip_days = ["sunday"]
`
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte(settings), 0644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return cfg
}

func TestResolveClassification(t *testing.T) {
	cfg := testConfig(t)

	e, err := Resolve("pomodoro", cfg)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if e.Kind != KindBlockRef || e.Block != "pomodoro" || e.Title != "pomodoro" {
		t.Errorf("Expected block ref for pomodoro, got %+v", e)
	}

	e, err = Resolve("go_to_bed", cfg)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if e.Kind != KindPointRef || e.Text != "Time to sleep" {
		t.Errorf("Expected point ref with resolved text, got %+v", e)
	}

	e, err = Resolve("Drink some water", cfg)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if e.Kind != KindMessage || e.Text != "Drink some water" {
		t.Errorf("Expected literal message, got %+v", e)
	}
}

func TestResolveMixedCaseNames(t *testing.T) {
	dir := t.TempDir()
	settings := `
[time_blocks]
DeepWork = 90

[time_points]
GoToBed = "Time to sleep"
`
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte(settings), 0644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Viper lowercases TOML keys; schedule entries written with the
	// original casing must still resolve.
	e, err := Resolve("DeepWork", cfg)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if e.Kind != KindBlockRef || e.Title != "DeepWork" {
		t.Errorf("Expected block ref for DeepWork, got %+v", e)
	}
	if minutes, ok := cfg.BlockMinutes(e.Block); !ok || minutes != 90 {
		t.Errorf("Expected 90min lookup for %q, got %d %v", e.Block, minutes, ok)
	}

	e, err = Resolve(map[string]any{"block": "DeepWork"}, cfg)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if _, ok := cfg.BlockMinutes(e.Block); !ok {
		t.Errorf("Structured mixed-case block should stay resolvable, got %+v", e)
	}

	e, err = Resolve("GoToBed", cfg)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if e.Kind != KindPointRef || e.Text != "Time to sleep" {
		t.Errorf("Expected point ref for GoToBed, got %+v", e)
	}
}

func TestResolveStructuredBlock(t *testing.T) {
	cfg := testConfig(t)

	e, err := Resolve(map[string]any{"block": "deep_work", "title": "Thesis writing"}, cfg)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if e.Kind != KindBlockRef || e.Block != "deep_work" || e.Title != "Thesis writing" {
		t.Errorf("Unexpected structured block entry: %+v", e)
	}

	// Unknown blocks stay as block refs so the engine can report them.
	e, err = Resolve(map[string]any{"block": "nonexistent"}, cfg)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if e.Kind != KindBlockRef || e.Block != "nonexistent" {
		t.Errorf("Expected unknown block to survive resolution: %+v", e)
	}

	if _, err := Resolve(map[string]any{"title": "no block key"}, cfg); err == nil {
		t.Error("Expected error for table without block key")
	}
	if _, err := Resolve(42, cfg); err == nil {
		t.Error("Expected error for unsupported entry type")
	}
}

func TestEffectiveForOverlay(t *testing.T) {
	cfg := testConfig(t)
	w := NewWeekly(map[string]map[string]any{
		"common": {
			"09:00": "pomodoro",
			"12:00": "Lunch time",
		},
		"monday": {
			"09:00": "deep_work",
			"15:00": "go_to_bed",
		},
	}, nil)

	got := w.EffectiveFor("monday", timeutil.ParityOdd, cfg)

	if len(got) != 3 {
		t.Fatalf("Expected 3 entries, got %d: %v", len(got), got)
	}
	if got["09:00"].Block != "deep_work" {
		t.Errorf("Day bucket should override common at 09:00, got %+v", got["09:00"])
	}
	if got["12:00"].Kind != KindMessage || got["12:00"].Text != "Lunch time" {
		t.Errorf("Common entry should survive at 12:00, got %+v", got["12:00"])
	}
	if got["15:00"].Kind != KindPointRef {
		t.Errorf("Day-only entry missing at 15:00, got %+v", got["15:00"])
	}
}

func TestEffectiveForParitySelectsTree(t *testing.T) {
	cfg := testConfig(t)
	w := NewWeekly(
		map[string]map[string]any{"monday": {"09:00": "odd week message"}},
		map[string]map[string]any{"monday": {"09:00": "even week message"}},
	)

	odd := w.EffectiveFor("monday", timeutil.ParityOdd, cfg)
	even := w.EffectiveFor("monday", timeutil.ParityEven, cfg)

	if odd["09:00"].Text != "odd week message" {
		t.Errorf("Unexpected odd entry: %+v", odd["09:00"])
	}
	if even["09:00"].Text != "even week message" {
		t.Errorf("Unexpected even entry: %+v", even["09:00"])
	}
}

func TestTodayEmptyOnSkipDay(t *testing.T) {
	cfg := testConfig(t)
	w := NewWeekly(map[string]map[string]any{
		"common": {"09:00": "pomodoro"},
		"sunday": {"10:00": "deep_work"},
	}, nil)

	// 2025-01-05 is a Sunday, configured as a skip day.
	sunday := time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC)
	if got := w.Today(cfg, sunday); len(got) != 0 {
		t.Errorf("Expected empty schedule on skip day, got %v", got)
	}

	monday := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	if got := w.Today(cfg, monday); len(got) != 1 {
		t.Errorf("Expected common schedule on Monday, got %v", got)
	}
}

func TestLoadWeekly(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	oddPath := filepath.Join(dir, "odd_weeks.toml")
	evenPath := filepath.Join(dir, "even_weeks.toml")

	odd := `
[common]
"09:00" = "pomodoro"

[monday]
"14:00" = { block = "deep_work", title = "Research" }
`
	if err := os.WriteFile(oddPath, []byte(odd), 0644); err != nil {
		t.Fatalf("write odd: %v", err)
	}
	if err := os.WriteFile(evenPath, []byte("[common]\n"), 0644); err != nil {
		t.Fatalf("write even: %v", err)
	}

	w, err := LoadWeekly(oddPath, evenPath)
	if err != nil {
		t.Fatalf("LoadWeekly failed: %v", err)
	}

	got := w.EffectiveFor("monday", timeutil.ParityOdd, cfg)
	if got["09:00"].Block != "pomodoro" {
		t.Errorf("Unexpected 09:00 entry: %+v", got["09:00"])
	}
	if got["14:00"].Title != "Research" {
		t.Errorf("Unexpected 14:00 entry: %+v", got["14:00"])
	}
}

func TestLoadWeeklyMissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadWeekly(filepath.Join(dir, "odd_weeks.toml"), filepath.Join(dir, "even_weeks.toml")); err == nil {
		t.Error("Expected error for missing schedule files")
	}
}
