package alert

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/sergiudm/remind/internal/logging"
)

// DiscordChannel delivers alerts as messages to a Discord channel.
// Posted messages have no acknowledgement path, so a successful send
// counts as acknowledged and never repeats.
type DiscordChannel struct {
	session   *discordgo.Session
	channelID string
}

// NewDiscordChannel connects a bot session for the given token.
func NewDiscordChannel(token, channelID string) (*DiscordChannel, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("discord open: %w", err)
	}
	logging.Info("discord", "Connected")
	return &DiscordChannel{session: session, channelID: channelID}, nil
}

// Alert posts the message once, with the title as a bold header.
func (c *DiscordChannel) Alert(ctx context.Context, title, message string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return TimedOut, nil
	}
	if title != "" {
		message = "**" + title + "**\n" + message
	}
	if _, err := c.session.ChannelMessageSend(c.channelID, message); err != nil {
		return TimedOut, fmt.Errorf("discord send: %w", err)
	}
	return Acknowledged, nil
}

// PromptYesNo is not supported over Discord. The question is posted for
// visibility and reported as cancelled.
func (c *DiscordChannel) PromptYesNo(ctx context.Context, question string) (bool, Outcome, error) {
	if _, err := c.session.ChannelMessageSend(c.channelID, question); err != nil {
		logging.Warn("discord", "prompt post failed: %v", err)
	}
	return false, Cancelled, nil
}

// PromptMultiSelect is not supported over Discord. The prompt is posted
// for visibility and reported as cancelled so nothing gets recorded.
func (c *DiscordChannel) PromptMultiSelect(ctx context.Context, title string, options []string) ([]string, Outcome, error) {
	body := title
	for _, opt := range options {
		body += "\n- " + opt
	}
	if _, err := c.session.ChannelMessageSend(c.channelID, body); err != nil {
		logging.Warn("discord", "prompt post failed: %v", err)
	}
	return nil, Cancelled, nil
}

// Close shuts the underlying session down.
func (c *DiscordChannel) Close() error {
	return c.session.Close()
}
