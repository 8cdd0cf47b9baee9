package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrBadDeadline indicates a deadline date spec could not be parsed.
var ErrBadDeadline = errors.New("invalid deadline date")

// DeadlineDateLayout is the stored deadline date format.
const DeadlineDateLayout = "2006-01-02"

// urgentWindowDays is the inclusive days-left threshold for urgency.
const urgentWindowDays = 3

// Deadline is one dated event.
type Deadline struct {
	Event    string `json:"event"`
	Deadline string `json:"deadline"`
	Added    string `json:"added"`
}

// UrgentDeadline is a deadline inside the urgency window. Negative
// DaysLeft means the date has already passed.
type UrgentDeadline struct {
	Deadline
	DaysLeft int
}

// Deadlines is the JSON-backed deadline list.
type Deadlines struct {
	mu   sync.RWMutex
	path string
}

// NewDeadlines creates a deadline store at the given path.
func NewDeadlines(path string) *Deadlines {
	return &Deadlines{path: path}
}

// Add records an event due on a "month.day" date, such as "6.15". A
// date already past this year rolls over to next year. Re-adding an
// event replaces its date.
func (s *Deadlines) Add(event, spec string, now time.Time) (Deadline, error) {
	due, err := resolveDate(spec, now)
	if err != nil {
		return Deadline{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return Deadline{}, err
	}
	d := Deadline{Event: event, Deadline: due, Added: now.Format(time.RFC3339)}
	replaced := false
	for i := range entries {
		if entries[i].Event == event {
			entries[i] = d
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, d)
	}
	if err := s.save(entries); err != nil {
		return Deadline{}, err
	}
	return d, nil
}

// Remove deletes events by name. A name that matches nothing is an
// error; earlier removals in the same call stick.
func (s *Deadlines) Remove(events ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	for _, event := range events {
		found := false
		for i := range entries {
			if entries[i].Event == event {
				entries = append(entries[:i], entries[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			if err := s.save(entries); err != nil {
				return err
			}
			return fmt.Errorf("%w: deadline %q", ErrNotFound, event)
		}
	}
	return s.save(entries)
}

// List returns all deadlines sorted by date, then event name.
func (s *Deadlines) List() ([]Deadline, error) {
	s.mu.RLock()
	entries, err := s.load()
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Deadline != entries[j].Deadline {
			return entries[i].Deadline < entries[j].Deadline
		}
		return entries[i].Event < entries[j].Event
	})
	return entries, nil
}

// Urgent returns deadlines due within the urgency window or already
// overdue, closest first. Entries with unparseable dates are skipped.
func (s *Deadlines) Urgent(now time.Time) ([]UrgentDeadline, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	var urgent []UrgentDeadline
	for _, d := range all {
		due, err := time.ParseInLocation(DeadlineDateLayout, d.Deadline, now.Location())
		if err != nil {
			continue
		}
		daysLeft := calendarDays(now, due)
		if daysLeft > urgentWindowDays {
			continue
		}
		urgent = append(urgent, UrgentDeadline{Deadline: d, DaysLeft: daysLeft})
	}
	sort.Slice(urgent, func(i, j int) bool {
		if urgent[i].DaysLeft != urgent[j].DaysLeft {
			return urgent[i].DaysLeft < urgent[j].DaysLeft
		}
		if urgent[i].Deadline.Deadline != urgent[j].Deadline.Deadline {
			return urgent[i].Deadline.Deadline < urgent[j].Deadline.Deadline
		}
		return urgent[i].Event < urgent[j].Event
	})
	return urgent, nil
}

// calendarDays counts date boundaries from from to to. Comparing UTC
// midnights of the calendar dates keeps the count exact across
// DST-shortened local days.
func calendarDays(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// resolveDate turns a "month.day" spec into the next occurrence of that
// date on or after today, formatted as YYYY-MM-DD.
func resolveDate(spec string, now time.Time) (string, error) {
	parts := strings.Split(spec, ".")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: %q", ErrBadDeadline, spec)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return "", fmt.Errorf("%w: %q", ErrBadDeadline, spec)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return "", fmt.Errorf("%w: %q", ErrBadDeadline, spec)
	}

	due := time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, now.Location())
	if due.Month() != time.Month(month) || due.Day() != day {
		return "", fmt.Errorf("%w: %q is not a real date", ErrBadDeadline, spec)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if due.Before(today) {
		due = time.Date(now.Year()+1, time.Month(month), day, 0, 0, 0, 0, now.Location())
	}
	return due.Format(DeadlineDateLayout), nil
}

func (s *Deadlines) load() ([]Deadline, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Deadline{}, nil
		}
		return nil, fmt.Errorf("read deadlines: %w", err)
	}
	var entries []Deadline
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse deadlines: %w", err)
	}
	return entries, nil
}

func (s *Deadlines) save(entries []Deadline) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create deadlines dir: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal deadlines: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write deadlines: %w", err)
	}
	return nil
}
