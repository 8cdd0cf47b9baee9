// Package recurrence matches wall-clock recurrence specs against ticks.
// Rules answer "is this tick an occurrence" and produce the idempotence
// key that marks the occurrence as handled.
package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sergiudm/remind/internal/timeutil"
)

// ErrInvalidSpec indicates a recurrence spec string could not be parsed.
var ErrInvalidSpec = errors.New("invalid recurrence spec")

// Rule is a recurring wall-clock trigger.
type Rule interface {
	// Due reports whether now is an occurrence of the rule.
	Due(now time.Time) bool
	// Key returns the idempotence key for the occurrence containing now.
	Key(now time.Time) string
}

// Daily fires once per day at a fixed "HH:MM".
type Daily struct {
	Name string
	At   string
}

// NewDaily validates the clock string and returns a daily rule.
func NewDaily(name, at string) (Daily, error) {
	if _, err := timeutil.ParseClock(at); err != nil {
		return Daily{}, fmt.Errorf("%w: %q: %v", ErrInvalidSpec, at, err)
	}
	return Daily{Name: name, At: at}, nil
}

func (d Daily) Due(now time.Time) bool {
	return timeutil.ClockOf(now) == d.At
}

// Key is stable within a day, so the midnight reset re-arms the rule.
func (d Daily) Key(time.Time) string {
	return d.Name + "_" + d.At
}

var weekdayAliases = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday,
}

// Weekly fires once per week on a fixed weekday at a fixed "HH:MM".
type Weekly struct {
	Name    string
	Weekday time.Weekday
	At      string
}

// ParseWeekly parses a "<weekday> HH:MM" spec such as "sunday 20:00".
// Common weekday abbreviations are accepted.
func ParseWeekly(name, spec string) (Weekly, error) {
	fields := strings.Fields(spec)
	if len(fields) != 2 {
		return Weekly{}, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
	}
	day, ok := weekdayAliases[strings.ToLower(fields[0])]
	if !ok {
		return Weekly{}, fmt.Errorf("%w: unknown weekday %q", ErrInvalidSpec, fields[0])
	}
	if _, err := timeutil.ParseClock(fields[1]); err != nil {
		return Weekly{}, fmt.Errorf("%w: %q: %v", ErrInvalidSpec, spec, err)
	}
	return Weekly{Name: name, Weekday: day, At: fields[1]}, nil
}

func (w Weekly) Due(now time.Time) bool {
	return now.Weekday() == w.Weekday && timeutil.ClockOf(now) == w.At
}

// Key embeds the occurrence date so a restart within the same minute
// stays idempotent across the midnight reset.
func (w Weekly) Key(now time.Time) string {
	return w.Name + "_" + timeutil.DateOf(now)
}

// LastOccurrence returns the most recent occurrence at or before now.
func (w Weekly) LastOccurrence(now time.Time) time.Time {
	c, _ := timeutil.ParseClock(w.At)
	back := (int(now.Weekday()) - int(w.Weekday) + 7) % 7
	day := now.AddDate(0, 0, -back)
	at := time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, now.Location())
	if at.After(now) {
		at = at.AddDate(0, 0, -7)
	}
	return at
}

// Monthly fires once per month on a fixed day-of-month at a fixed
// "HH:MM". Days past the end of a short month clamp to its last day.
type Monthly struct {
	Name string
	Day  int
	At   string
}

// ParseMonthly parses a "<day> HH:MM" spec such as "1 20:00".
func ParseMonthly(name, spec string) (Monthly, error) {
	fields := strings.Fields(spec)
	if len(fields) != 2 {
		return Monthly{}, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
	}
	day, err := strconv.Atoi(fields[0])
	if err != nil || day < 1 || day > 31 {
		return Monthly{}, fmt.Errorf("%w: day %q out of range", ErrInvalidSpec, fields[0])
	}
	if _, err := timeutil.ParseClock(fields[1]); err != nil {
		return Monthly{}, fmt.Errorf("%w: %q: %v", ErrInvalidSpec, spec, err)
	}
	return Monthly{Name: name, Day: day, At: fields[1]}, nil
}

func (m Monthly) Due(now time.Time) bool {
	return now.Day() == m.dayIn(now.Year(), now.Month()) && timeutil.ClockOf(now) == m.At
}

// Key embeds the occurrence month.
func (m Monthly) Key(now time.Time) string {
	return m.Name + "_" + now.Format("2006-01")
}

// LastOccurrence returns the most recent occurrence at or before now.
func (m Monthly) LastOccurrence(now time.Time) time.Time {
	c, _ := timeutil.ParseClock(m.At)
	at := m.occurrenceIn(now.Year(), now.Month(), c, now.Location())
	if at.After(now) {
		prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		at = m.occurrenceIn(prev.Year(), prev.Month(), c, now.Location())
	}
	return at
}

func (m Monthly) occurrenceIn(year int, month time.Month, c timeutil.Clock, loc *time.Location) time.Time {
	return time.Date(year, month, m.dayIn(year, month), c.Hour, c.Minute, 0, 0, loc)
}

func (m Monthly) dayIn(year int, month time.Month) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if m.Day > last {
		return last
	}
	return m.Day
}
