package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Habit is one configured habit: a stable id mapped to a display name
// in the [habits] table of habits.toml.
type Habit struct {
	ID   string
	Name string
}

// HabitRecord is one day's completion answer. Completed maps habit id
// to name; an empty map is a real "nothing done today" answer.
type HabitRecord struct {
	Date      string            `json:"date"`
	Completed map[string]string `json:"completed"`
	Timestamp string            `json:"timestamp"`
}

// Habits tracks configured habits and their daily completion records.
type Habits struct {
	mu         sync.Mutex
	habitsPath string
	recordPath string
}

// NewHabits creates a habit store over the given config and record files.
func NewHabits(habitsPath, recordPath string) *Habits {
	return &Habits{habitsPath: habitsPath, recordPath: recordPath}
}

// Options returns the configured habits sorted by id. A missing habits
// file means no habits are tracked.
func (h *Habits) Options() ([]Habit, error) {
	if _, err := os.Stat(h.habitsPath); os.IsNotExist(err) {
		return []Habit{}, nil
	}

	v := viper.New()
	v.SetConfigFile(h.habitsPath)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read habits: %w", err)
	}

	table := v.GetStringMapString("habits")
	habits := make([]Habit, 0, len(table))
	for id, name := range table {
		habits = append(habits, Habit{ID: id, Name: name})
	}
	sort.Slice(habits, func(i, j int) bool { return habits[i].ID < habits[j].ID })
	return habits, nil
}

// RecordCompletion appends a record of which habit names were completed
// on now's date. Names that match no configured habit are ignored. An
// empty selection still appends an empty record.
func (h *Habits) RecordCompletion(now time.Time, selectedNames []string) error {
	habits, err := h.Options()
	if err != nil {
		return err
	}
	selected := make(map[string]bool, len(selectedNames))
	for _, name := range selectedNames {
		selected[name] = true
	}
	completed := make(map[string]string)
	for _, habit := range habits {
		if selected[habit.Name] {
			completed[habit.ID] = habit.Name
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	records, err := h.load()
	if err != nil {
		return err
	}
	records = append(records, HabitRecord{
		Date:      now.Format(DeadlineDateLayout),
		Completed: completed,
		Timestamp: now.Format(time.RFC3339),
	})
	return h.save(records)
}

// Records returns all completion records in file order.
func (h *Habits) Records() ([]HabitRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load()
}

// CompletionCounts tallies per-habit-name completions for dates in
// [start, end], inclusive, along with the number of answered days.
// When a date has several records the latest answer wins.
func (h *Habits) CompletionCounts(start, end time.Time) (map[string]int, int, error) {
	records, err := h.Records()
	if err != nil {
		return nil, 0, err
	}

	from := start.Format(DeadlineDateLayout)
	to := end.Format(DeadlineDateLayout)
	byDate := make(map[string]map[string]string)
	for _, rec := range records {
		if rec.Date < from || rec.Date > to {
			continue
		}
		byDate[rec.Date] = rec.Completed
	}

	counts := make(map[string]int)
	for _, completed := range byDate {
		for _, name := range completed {
			counts[name]++
		}
	}
	return counts, len(byDate), nil
}

func (h *Habits) load() ([]HabitRecord, error) {
	data, err := os.ReadFile(h.recordPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []HabitRecord{}, nil
		}
		return nil, fmt.Errorf("read habit record: %w", err)
	}
	var records []HabitRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse habit record: %w", err)
	}
	return records, nil
}

func (h *Habits) save(records []HabitRecord) error {
	if err := os.MkdirAll(filepath.Dir(h.recordPath), 0755); err != nil {
		return fmt.Errorf("create record dir: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal habit record: %w", err)
	}
	if err := os.WriteFile(h.recordPath, data, 0644); err != nil {
		return fmt.Errorf("write habit record: %w", err)
	}
	return nil
}
