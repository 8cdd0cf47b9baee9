package schedule

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/sergiudm/remind/internal/config"
	"github.com/sergiudm/remind/internal/logging"
	"github.com/sergiudm/remind/internal/timeutil"
)

// commonKey is the bucket applied to every weekday before the day bucket
// overrides it.
const commonKey = "common"

// Weekly holds the odd-week and even-week schedule trees. Each tree maps
// a weekday name (or "common") to raw "HH:MM" -> entry pairs; entries are
// resolved against the live Config when a day view is built.
type Weekly struct {
	odd  map[string]map[string]any
	even map[string]map[string]any
}

// LoadWeekly reads odd_weeks.toml and even_weeks.toml.
func LoadWeekly(oddPath, evenPath string) (*Weekly, error) {
	odd, err := loadTree(oddPath)
	if err != nil {
		return nil, err
	}
	even, err := loadTree(evenPath)
	if err != nil {
		return nil, err
	}
	return &Weekly{odd: odd, even: even}, nil
}

// NewWeekly builds a Weekly from in-memory trees.
func NewWeekly(odd, even map[string]map[string]any) *Weekly {
	if odd == nil {
		odd = map[string]map[string]any{}
	}
	if even == nil {
		even = map[string]map[string]any{}
	}
	return &Weekly{odd: odd, even: even}
}

func loadTree(path string) (map[string]map[string]any, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("cannot load schedule %s: %w", path, err)
	}

	tree := make(map[string]map[string]any)
	for day, raw := range v.AllSettings() {
		bucket, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("cannot load schedule %s: %s is not a table", path, day)
		}
		tree[day] = bucket
	}
	return tree, nil
}

// EffectiveFor merges the common bucket with the named weekday bucket for
// the given week parity. Day entries win over common entries at the same
// time key. Entries that cannot be classified are dropped with a warning.
func (w *Weekly) EffectiveFor(day string, parity timeutil.Parity, cfg *config.Config) map[string]Entry {
	tree := w.odd
	if parity == timeutil.ParityEven {
		tree = w.even
	}

	merged := make(map[string]any)
	for at, raw := range tree[commonKey] {
		merged[at] = raw
	}
	for at, raw := range tree[day] {
		merged[at] = raw
	}

	entries := make(map[string]Entry, len(merged))
	for at, raw := range merged {
		entry, err := Resolve(raw, cfg)
		if err != nil {
			logging.Warn("schedule", "dropping entry at %s: %v", at, err)
			continue
		}
		entries[at] = entry
	}
	return entries
}

// Today returns the effective schedule for now's weekday and week parity.
// On a configured skip day the schedule is empty.
func (w *Weekly) Today(cfg *config.Config, now time.Time) map[string]Entry {
	if cfg.ShouldSkip(now) {
		return map[string]Entry{}
	}
	return w.EffectiveFor(timeutil.WeekdayName(now), timeutil.WeekParity(now), cfg)
}
