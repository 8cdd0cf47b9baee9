package schedule

import (
	"errors"
	"fmt"

	"github.com/sergiudm/remind/internal/config"
)

// ErrUnknownBlock indicates a schedule entry names a block that is not
// defined in [time_blocks]. The entry never fires; the engine logs it on
// every tick for which its time key is current.
var ErrUnknownBlock = errors.New("unknown time block")

// Kind discriminates the schedule entry union.
type Kind int

const (
	// KindMessage is a one-shot alert with literal text.
	KindMessage Kind = iota
	// KindBlockRef starts a duration-bearing activity with an end alarm.
	KindBlockRef
	// KindPointRef is a one-shot alert whose text comes from [time_points].
	KindPointRef
)

// Entry is a resolved schedule entry. Raw config values are sniffed once
// at load time, never per tick.
type Entry struct {
	Kind  Kind
	Text  string // message text (KindMessage) or resolved point text (KindPointRef)
	Block string // block name (KindBlockRef)
	Title string // display title (KindBlockRef)
}

// Resolve classifies a raw config value into an Entry.
//
// A bare string naming a block becomes a BlockRef titled by the block name;
// a bare string naming a point key becomes a PointRef; any other string is
// a literal message. A table carrying a "block" key is a BlockRef with an
// optional title override, kept even when the block is unknown so the
// engine can report it.
func Resolve(raw any, cfg *config.Config) (Entry, error) {
	switch v := raw.(type) {
	case string:
		if _, ok := cfg.BlockMinutes(v); ok {
			return Entry{Kind: KindBlockRef, Block: v, Title: v}, nil
		}
		if msg, ok := cfg.PointMessage(v); ok {
			return Entry{Kind: KindPointRef, Text: msg}, nil
		}
		return Entry{Kind: KindMessage, Text: v}, nil
	case map[string]any:
		block, ok := v["block"].(string)
		if !ok {
			return Entry{}, fmt.Errorf("schedule entry table has no block key: %v", v)
		}
		title := block
		if t, ok := v["title"].(string); ok && t != "" {
			title = t
		}
		return Entry{Kind: KindBlockRef, Block: block, Title: title}, nil
	default:
		return Entry{}, fmt.Errorf("unsupported schedule entry type %T", raw)
	}
}
