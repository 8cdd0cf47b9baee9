// Package timeutil provides the "HH:MM" clock-string arithmetic the
// scheduling engine is built on. Schedules key events by minute-of-day
// strings, so parsing and wraparound arithmetic live here.
package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidFormat indicates a clock string is not a valid 24h "HH:MM".
var ErrInvalidFormat = errors.New("invalid HH:MM time")

// Clock is a minute-resolution time of day.
type Clock struct {
	Hour   int
	Minute int
}

// String formats the clock back to zero-padded "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns the minute-of-day index (0..1439).
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// ParseClock parses a strict zero-padded 24h "HH:MM" string. All four
// field characters must be digits; signs are not accepted.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || !isTwoDigits(parts[0]) || !isTwoDigits(parts[1]) {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	c := Clock{
		Hour:   int(parts[0][0]-'0')*10 + int(parts[0][1]-'0'),
		Minute: int(parts[1][0]-'0')*10 + int(parts[1][1]-'0'),
	}
	if c.Hour > 23 || c.Minute > 59 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return c, nil
}

func isTwoDigits(s string) bool {
	return len(s) == 2 && s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}

// AddMinutes adds n minutes to an "HH:MM" string, wrapping past midnight.
func AddMinutes(s string, n int) (string, error) {
	c, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	total := (c.Minutes() + n) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return Clock{Hour: total / 60, Minute: total % 60}.String(), nil
}

// Parity classifies the ISO week number of a date.
type Parity string

const (
	ParityOdd  Parity = "odd"
	ParityEven Parity = "even"
)

// WeekParity returns the ISO-8601 week parity for t.
func WeekParity(t time.Time) Parity {
	_, week := t.ISOWeek()
	if week%2 == 1 {
		return ParityOdd
	}
	return ParityEven
}

// WeekdayName returns the lowercase English weekday name for t.
func WeekdayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// ClockOf formats t as an "HH:MM" string.
func ClockOf(t time.Time) string {
	return t.Format("15:04")
}

// DateOf formats t as a "YYYY-MM-DD" string.
func DateOf(t time.Time) string {
	return t.Format("2006-01-02")
}
