package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Action kinds recorded in the task log. Removing a task is treated as
// completing it, so reports mine "deleted" entries for what got done.
const (
	ActionAdded   = "added"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TimestampLayout is the wall-clock format used in the action log.
const TimestampLayout = "2006-01-02 15:04:05"

// Action is one logged task event.
type Action struct {
	Timestamp string         `json:"timestamp"`
	Action    string         `json:"action"`
	Task      string         `json:"task"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ActionLog is the append-only JSON log of task events. Reports mine it
// for what was completed in a period.
type ActionLog struct {
	mu   sync.Mutex
	path string
}

// NewActionLog creates an action log at the given path.
func NewActionLog(path string) *ActionLog {
	return &ActionLog{path: path}
}

// Append records one event at the given time.
func (l *ActionLog) Append(now time.Time, action, task string, metadata map[string]any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return err
	}
	entries = append(entries, Action{
		Timestamp: now.Format(TimestampLayout),
		Action:    action,
		Task:      task,
		Metadata:  metadata,
	})
	return l.save(entries)
}

// All returns every logged event in order.
func (l *ActionLog) All() ([]Action, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// CompletedBetween returns tasks completed in [start, end], inclusive.
// Entries with unparseable timestamps are skipped.
func (l *ActionLog) CompletedBetween(start, end time.Time) ([]string, error) {
	entries, err := l.All()
	if err != nil {
		return nil, err
	}
	var tasks []string
	for _, e := range entries {
		if e.Action != ActionDeleted {
			continue
		}
		at, err := time.ParseInLocation(TimestampLayout, e.Timestamp, start.Location())
		if err != nil {
			continue
		}
		if at.Before(start) || at.After(end) {
			continue
		}
		tasks = append(tasks, e.Task)
	}
	return tasks, nil
}

// CompletedOn returns tasks completed on the calendar day of t. The
// window ends one second before the next calendar midnight, so it stays
// exact on DST-shortened days.
func (l *ActionLog) CompletedOn(t time.Time) ([]string, error) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return l.CompletedBetween(start, start.AddDate(0, 0, 1).Add(-time.Second))
}

func (l *ActionLog) load() ([]Action, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Action{}, nil
		}
		return nil, fmt.Errorf("read action log: %w", err)
	}
	var entries []Action
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse action log: %w", err)
	}
	return entries, nil
}

func (l *ActionLog) save(entries []Action) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal action log: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("write action log: %w", err)
	}
	return nil
}
