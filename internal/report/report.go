// Package report renders weekly and monthly markdown reviews from the
// task action log and habit records. Generation is idempotent on the
// output path: an existing report file is never overwritten.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sergiudm/remind/internal/logging"
	"github.com/sergiudm/remind/internal/recurrence"
	"github.com/sergiudm/remind/internal/store"
)

// Generator writes reports into a single output directory.
type Generator struct {
	dir    string
	log    *store.ActionLog
	habits *store.Habits
}

// NewGenerator creates a report generator writing to dir.
func NewGenerator(dir string, log *store.ActionLog, habits *store.Habits) *Generator {
	return &Generator{dir: dir, log: log, habits: habits}
}

// WeeklyPath returns the output path for the week containing occ.
func (g *Generator) WeeklyPath(occ time.Time) string {
	start, end := weekWindow(occ)
	name := fmt.Sprintf("weekly_report_%s_%s.md", start.Format("20060102"), end.Format("20060102"))
	return filepath.Join(g.dir, name)
}

// MonthlyPath returns the output path for the month reviewed at occ.
// The reviewed month is the one containing the day before the
// occurrence, so a review on the 1st covers the month just ended.
func (g *Generator) MonthlyPath(occ time.Time) string {
	target := occ.AddDate(0, 0, -1)
	return filepath.Join(g.dir, fmt.Sprintf("monthly_report_%s.md", target.Format("200601")))
}

// GenerateWeekly writes the report for the Monday-to-Sunday week
// containing occ. It reports whether a new file was created.
func (g *Generator) GenerateWeekly(occ time.Time) (string, bool, error) {
	path := g.WeeklyPath(occ)
	if exists(path) {
		return path, false, nil
	}

	start, end := weekWindow(occ)
	endOfWindow := end.AddDate(0, 0, 1).Add(-time.Second)

	var b strings.Builder
	fmt.Fprintf(&b, "# Weekly Report %s ~ %s\n\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err := g.writeCompleted(&b, start, endOfWindow); err != nil {
		return "", false, err
	}
	if err := g.writeHabits(&b, start, end, 7); err != nil {
		return "", false, err
	}

	if err := g.write(path, b.String()); err != nil {
		return "", false, err
	}
	return path, true, nil
}

// GenerateMonthly writes the report for the month before occ. It
// reports whether a new file was created.
func (g *Generator) GenerateMonthly(occ time.Time) (string, bool, error) {
	path := g.MonthlyPath(occ)
	if exists(path) {
		return path, false, nil
	}

	target := occ.AddDate(0, 0, -1)
	start := time.Date(target.Year(), target.Month(), 1, 0, 0, 0, 0, target.Location())
	end := start.AddDate(0, 1, -1)
	endOfWindow := end.AddDate(0, 0, 1).Add(-time.Second)

	var b strings.Builder
	fmt.Fprintf(&b, "# Monthly Report %s\n\n", target.Format("2006-01"))
	if err := g.writeCompleted(&b, start, endOfWindow); err != nil {
		return "", false, err
	}
	if err := g.writeHabits(&b, start, end, end.Day()); err != nil {
		return "", false, err
	}

	if err := g.write(path, b.String()); err != nil {
		return "", false, err
	}
	return path, true, nil
}

// GenerateDue writes any report whose most recent occurrence has no
// file yet. It lets a restarted daemon catch up on reviews it slept
// through.
func (g *Generator) GenerateDue(now time.Time, weekly *recurrence.Weekly, monthly *recurrence.Monthly) error {
	if weekly != nil {
		path, created, err := g.GenerateWeekly(weekly.LastOccurrence(now))
		if err != nil {
			return err
		}
		if created {
			logging.Info("report", "Generated %s", filepath.Base(path))
		}
	}
	if monthly != nil {
		path, created, err := g.GenerateMonthly(monthly.LastOccurrence(now))
		if err != nil {
			return err
		}
		if created {
			logging.Info("report", "Generated %s", filepath.Base(path))
		}
	}
	return nil
}

func (g *Generator) writeCompleted(b *strings.Builder, start, end time.Time) error {
	completed, err := g.log.CompletedBetween(start, end)
	if err != nil {
		return err
	}
	b.WriteString("## Completed Tasks\n\n")
	if len(completed) == 0 {
		b.WriteString("No tasks completed in this period.\n\n")
		return nil
	}
	for _, task := range completed {
		fmt.Fprintf(b, "- %s\n", task)
	}
	b.WriteString("\n")
	return nil
}

func (g *Generator) writeHabits(b *strings.Builder, start, end time.Time, periodDays int) error {
	habits, err := g.habits.Options()
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		return nil
	}
	counts, _, err := g.habits.CompletionCounts(start, end)
	if err != nil {
		return err
	}

	b.WriteString("## Habits\n\n")
	b.WriteString("| Habit | Done | Rate |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, habit := range habits {
		done := counts[habit.Name]
		rate := float64(done) / float64(periodDays) * 100
		fmt.Fprintf(b, "| %s | %d/%d | %.0f%% |\n", habit.Name, done, periodDays, rate)
	}
	b.WriteString("\n")
	return nil
}

func (g *Generator) write(path, content string) error {
	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// weekWindow returns the Monday and Sunday of the week containing t.
func weekWindow(t time.Time) (time.Time, time.Time) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	back := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -back)
	return start, start.AddDate(0, 0, 6)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
