package alert

import (
	"context"
	"sync"
)

// RecordingChannel captures alerts in memory instead of delivering them.
// Tests script its outcomes and inspect what was sent.
type RecordingChannel struct {
	mu       sync.Mutex
	messages []string
	titles   []string
	prompts  []string

	// AlertOutcome is returned by every Alert attempt.
	AlertOutcome Outcome
	// AlertErr, when set, makes Alert attempts fail.
	AlertErr error

	// Selection and PromptOutcome script PromptMultiSelect answers.
	Selection     []string
	PromptOutcome Outcome

	// YesNoAnswer scripts PromptYesNo; its outcome follows PromptOutcome.
	YesNoAnswer bool
}

// NewRecordingChannel returns a channel that acknowledges everything.
func NewRecordingChannel() *RecordingChannel {
	return &RecordingChannel{AlertOutcome: Acknowledged, PromptOutcome: Acknowledged}
}

func (c *RecordingChannel) Alert(ctx context.Context, title, message string) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.AlertErr != nil {
		return TimedOut, c.AlertErr
	}
	c.messages = append(c.messages, message)
	c.titles = append(c.titles, title)
	return c.AlertOutcome, nil
}

func (c *RecordingChannel) PromptYesNo(ctx context.Context, question string) (bool, Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, question)
	return c.YesNoAnswer, c.PromptOutcome, nil
}

func (c *RecordingChannel) PromptMultiSelect(ctx context.Context, title string, options []string) ([]string, Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, title)
	return c.Selection, c.PromptOutcome, nil
}

// Messages returns a copy of all delivered alert messages.
func (c *RecordingChannel) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.messages))
	copy(out, c.messages)
	return out
}

// Titles returns the alert titles in delivery order, parallel to
// Messages.
func (c *RecordingChannel) Titles() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.titles))
	copy(out, c.titles)
	return out
}

// Prompts returns a copy of all prompt titles shown.
func (c *RecordingChannel) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.prompts))
	copy(out, c.prompts)
	return out
}
