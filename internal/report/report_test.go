package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sergiudm/remind/internal/recurrence"
	"github.com/sergiudm/remind/internal/store"
)

type fixture struct {
	gen    *Generator
	log    *store.ActionLog
	habits *store.Habits
	dir    string
}

func newFixture(t *testing.T, habitsToml string) *fixture {
	t.Helper()
	dir := t.TempDir()
	habitsPath := filepath.Join(dir, "habits.toml")
	if habitsToml != "" {
		if err := os.WriteFile(habitsPath, []byte(habitsToml), 0644); err != nil {
			t.Fatalf("write habits: %v", err)
		}
	}
	log := store.NewActionLog(filepath.Join(dir, "tasks.log"))
	habits := store.NewHabits(habitsPath, filepath.Join(dir, "record.json"))
	reports := filepath.Join(dir, "reports")
	return &fixture{
		gen:    NewGenerator(reports, log, habits),
		log:    log,
		habits: habits,
		dir:    reports,
	}
}

func TestGenerateWeekly(t *testing.T) {
	f := newFixture(t, "[habits]\n1 = \"reading\"\n2 = \"running\"\n")

	// Week of Mon 2025-03-03 .. Sun 2025-03-09.
	f.log.Append(time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC), store.ActionDeleted, "ship release", nil)
	f.log.Append(time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC), store.ActionDeleted, "sunday chores", nil)
	f.log.Append(time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC), store.ActionDeleted, "next week", nil)
	f.habits.RecordCompletion(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), []string{"reading"})

	occ := time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC)
	path, created, err := f.gen.GenerateWeekly(occ)
	if err != nil {
		t.Fatalf("GenerateWeekly failed: %v", err)
	}
	if !created {
		t.Fatal("Expected a new report file")
	}
	if filepath.Base(path) != "weekly_report_20250303_20250309.md" {
		t.Errorf("Unexpected report name %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	body := string(data)
	for _, want := range []string{
		"# Weekly Report 2025-03-03 ~ 2025-03-09",
		"- ship release",
		"- sunday chores",
		"| reading | 1/7 | 14% |",
		"| running | 0/7 | 0% |",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Report missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "next week") {
		t.Error("Report should not include completions outside the week")
	}
}

func TestGenerateWeeklySkipsExisting(t *testing.T) {
	f := newFixture(t, "")
	occ := time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC)

	if err := os.MkdirAll(f.dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := f.gen.WeeklyPath(occ)
	if err := os.WriteFile(path, []byte("hand-edited"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, created, err := f.gen.GenerateWeekly(occ)
	if err != nil {
		t.Fatalf("GenerateWeekly failed: %v", err)
	}
	if created {
		t.Error("Expected existing report to be left alone")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "hand-edited" {
		t.Error("Existing report was overwritten")
	}
}

func TestGenerateMonthlyCoversPreviousMonth(t *testing.T) {
	f := newFixture(t, "")

	f.log.Append(time.Date(2025, 2, 14, 10, 0, 0, 0, time.UTC), store.ActionDeleted, "february task", nil)
	f.log.Append(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), store.ActionDeleted, "march task", nil)

	// Review on March 1st covers February.
	occ := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	path, created, err := f.gen.GenerateMonthly(occ)
	if err != nil {
		t.Fatalf("GenerateMonthly failed: %v", err)
	}
	if !created {
		t.Fatal("Expected a new report file")
	}
	if filepath.Base(path) != "monthly_report_202502.md" {
		t.Errorf("Unexpected report name %s", filepath.Base(path))
	}

	data, _ := os.ReadFile(path)
	body := string(data)
	if !strings.Contains(body, "february task") {
		t.Errorf("Report missing february task:\n%s", body)
	}
	if strings.Contains(body, "march task") {
		t.Error("Report should not include the review month itself")
	}
}

func TestGenerateDueCatchesUp(t *testing.T) {
	f := newFixture(t, "")

	weekly, _ := recurrence.ParseWeekly("weekly_review", "sunday 20:00")
	monthly, _ := recurrence.ParseMonthly("monthly_review", "1 20:00")

	// Wednesday after both occurrences have passed.
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	if err := f.gen.GenerateDue(now, &weekly, &monthly); err != nil {
		t.Fatalf("GenerateDue failed: %v", err)
	}

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		t.Fatalf("read reports dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 reports, got %d", len(entries))
	}

	// Running again changes nothing.
	if err := f.gen.GenerateDue(now, &weekly, &monthly); err != nil {
		t.Fatalf("GenerateDue failed: %v", err)
	}
	entries, _ = os.ReadDir(f.dir)
	if len(entries) != 2 {
		t.Errorf("Expected idempotent catch-up, got %d reports", len(entries))
	}
}
