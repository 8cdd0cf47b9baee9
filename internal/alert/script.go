package alert

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/sergiudm/remind/internal/logging"
)

// ScriptChannel delivers alerts through macOS system tooling: afplay for
// the alarm sound and osascript dialogs for acknowledgement. On other
// platforms it degrades to log-only delivery.
type ScriptChannel struct {
	soundFile string
}

// NewScriptChannel creates a channel that plays the given sound file
// alongside each dialog.
func NewScriptChannel(soundFile string) *ScriptChannel {
	return &ScriptChannel{soundFile: soundFile}
}

// Alert plays the sound and shows a dialog that gives up when ctx does.
func (c *ScriptChannel) Alert(ctx context.Context, title, message string) (Outcome, error) {
	if title == "" {
		title = "Remind"
	}
	if runtime.GOOS != "darwin" {
		logging.Info("alert", "[%s] %s", title, message)
		return Acknowledged, nil
	}

	if c.soundFile != "" {
		// Sound is best effort; the dialog is the acknowledgement path.
		if err := exec.CommandContext(ctx, "afplay", c.soundFile).Run(); err != nil {
			logging.Debug("alert", "afplay failed: %v", err)
		}
	}

	// The per-attempt give-up stays short so the sound replays each round.
	script := fmt.Sprintf(
		`display dialog %s with title %s buttons {"OK"} default button "OK" giving up after 5`,
		osaQuote(message), osaQuote(title))

	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		if ctx.Err() != nil {
			return TimedOut, nil
		}
		if exit, ok := err.(*exec.ExitError); ok && exit.ExitCode() == 1 {
			return Cancelled, nil
		}
		return TimedOut, fmt.Errorf("osascript: %w", err)
	}
	if strings.Contains(string(out), "gave up:true") {
		return TimedOut, nil
	}
	return Acknowledged, nil
}

// PromptYesNo shows a two-button dialog. Closing it without answering
// maps to Cancelled.
func (c *ScriptChannel) PromptYesNo(ctx context.Context, question string) (bool, Outcome, error) {
	if runtime.GOOS != "darwin" {
		logging.Info("alert", "prompt unavailable on %s: %s", runtime.GOOS, question)
		return false, Cancelled, nil
	}

	script := fmt.Sprintf(
		`display dialog %s with title "Remind" buttons {"No", "Yes"} default button "Yes"`,
		osaQuote(question))
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		if ctx.Err() != nil {
			return false, TimedOut, nil
		}
		if exit, ok := err.(*exec.ExitError); ok && exit.ExitCode() == 1 {
			return false, Cancelled, nil
		}
		return false, Cancelled, fmt.Errorf("osascript: %w", err)
	}
	return strings.Contains(string(out), "button returned:Yes"), Acknowledged, nil
}

// PromptMultiSelect shows a choose-from-list dialog. Cancel returns a
// Cancelled outcome; confirming with nothing selected is an answer.
func (c *ScriptChannel) PromptMultiSelect(ctx context.Context, title string, options []string) ([]string, Outcome, error) {
	if runtime.GOOS != "darwin" {
		logging.Info("alert", "prompt unavailable on %s: %s", runtime.GOOS, title)
		return nil, Cancelled, nil
	}
	if len(options) == 0 {
		return nil, Acknowledged, nil
	}

	quoted := make([]string, len(options))
	for i, opt := range options {
		quoted[i] = osaQuote(opt)
	}
	script := fmt.Sprintf(
		`choose from list {%s} with title %s with prompt "Select completed items" with multiple selections allowed and empty selection allowed`,
		strings.Join(quoted, ", "), osaQuote(title))

	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, TimedOut, nil
		}
		return nil, Cancelled, fmt.Errorf("osascript: %w", err)
	}

	answer := strings.TrimSpace(string(out))
	if answer == "false" {
		return nil, Cancelled, nil
	}
	if answer == "" {
		return []string{}, Acknowledged, nil
	}
	parts := strings.Split(answer, ", ")
	return parts, Acknowledged, nil
}

func osaQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
