// Package alert delivers user-facing notifications. A Dispatcher owns
// the repeat-until-acknowledged loop; Channels only know how to make a
// single delivery attempt.
package alert

import (
	"context"
	"sync"
	"time"

	"github.com/sergiudm/remind/internal/logging"
)

// Outcome is the result of a delivery attempt or prompt.
type Outcome int

const (
	// Acknowledged means the user saw and dismissed the alert.
	Acknowledged Outcome = iota
	// TimedOut means the attempt expired without a response.
	TimedOut
	// Cancelled means the user explicitly dismissed the interaction.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Acknowledged:
		return "acknowledged"
	case TimedOut:
		return "timed-out"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Channel makes single delivery attempts on some medium.
type Channel interface {
	// Alert makes one delivery attempt and reports how it ended.
	// An attempt should respect ctx and return TimedOut when it expires.
	Alert(ctx context.Context, title, message string) (Outcome, error)

	// PromptYesNo asks a yes/no question. The answer is meaningful only
	// when the outcome is Acknowledged.
	PromptYesNo(ctx context.Context, question string) (bool, Outcome, error)

	// PromptMultiSelect asks the user to pick zero or more options.
	// A Cancelled outcome means no answer was given at all; an
	// Acknowledged outcome with an empty selection is a real answer.
	PromptMultiSelect(ctx context.Context, title string, options []string) ([]string, Outcome, error)
}

// Dispatcher fans alerts out to a channel without blocking callers.
// Each alert repeats at the configured interval until acknowledged or
// until the maximum duration elapses. A failed delivery counts as
// delivered so a broken channel cannot wedge the engine.
type Dispatcher struct {
	channel     Channel
	interval    time.Duration
	maxDuration time.Duration
	wg          sync.WaitGroup
}

// NewDispatcher creates a dispatcher over the given channel.
func NewDispatcher(channel Channel, interval, maxDuration time.Duration) *Dispatcher {
	return &Dispatcher{channel: channel, interval: interval, maxDuration: maxDuration}
}

// Dispatch queues one alert and returns immediately.
func (d *Dispatcher) Dispatch(title, message string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(title, message)
	}()
}

func (d *Dispatcher) deliver(title, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), d.maxDuration)
	defer cancel()

	for {
		outcome, err := d.channel.Alert(ctx, title, message)
		if err != nil {
			logging.Warn("alert", "delivery failed, giving up on %q: %v", logging.Truncate(message, 60), err)
			return
		}
		if outcome != TimedOut {
			logging.Debug("alert", "%s: %s", outcome, logging.Truncate(message, 60))
			return
		}
		select {
		case <-ctx.Done():
			logging.Warn("alert", "unacknowledged after %s: %s", d.maxDuration, logging.Truncate(message, 60))
			return
		case <-time.After(d.interval):
		}
	}
}

// Prompt asks a multi-select question, bounded by the maximum alert
// duration. It blocks the caller.
func (d *Dispatcher) Prompt(title string, options []string) ([]string, Outcome, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.maxDuration)
	defer cancel()
	return d.channel.PromptMultiSelect(ctx, title, options)
}

// Wait blocks until all in-flight alerts finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
