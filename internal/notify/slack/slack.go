// Package slack implements the notify Adapter for Slack using the Web API.
package slack

import (
	"context"
	"fmt"
	"sync"

	slackapi "github.com/slack-go/slack"
	"github.com/veldhuis/atelier/internal/notify"
)

// digestColor is the attachment sidebar color for review digests.
const digestColor = "#4a6fa5"

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	AuthTestContext(ctx context.Context) (*slackapi.AuthTestResponse, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Adapter implements notify.Adapter for Slack.
type Adapter struct {
	client    slackClient
	channelID string
	mu        sync.Mutex
	connected bool
}

// AdapterOpts holds parameters for creating a Slack Adapter.
type AdapterOpts struct {
	Token     string // xoxb-... Slack bot token
	ChannelID string // default channel to post to
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// New creates a Slack Adapter.
func New(opts AdapterOpts) (*Adapter, error) {
	if opts.Client == nil && opts.Token == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("slack: channel is required")
	}

	a := &Adapter{channelID: opts.ChannelID}
	if opts.Client != nil {
		a.client = opts.Client
	} else {
		a.client = slackapi.New(opts.Token)
	}
	return a, nil
}

// Connect verifies the bot token against the Slack API.
func (a *Adapter) Connect(ctx context.Context) error {
	if _, err := a.client.AuthTestContext(ctx); err != nil {
		return fmt.Errorf("slack: auth test: %w", err)
	}
	a.mu.Lock()
	a.connected = true
	a.mu.Unlock()
	return nil
}

// Send posts a digest message to the configured channel.
func (a *Adapter) Send(ctx context.Context, msg notify.Message) error {
	a.mu.Lock()
	if !a.connected {
		a.mu.Unlock()
		return fmt.Errorf("slack: not connected")
	}
	a.mu.Unlock()

	channelID := msg.ChannelID
	if channelID == "" {
		channelID = a.channelID
	}

	if _, _, err := a.client.PostMessageContext(ctx, channelID, buildMessageOptions(msg)...); err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}

// Close marks the adapter disconnected. The Web API client holds no
// persistent connection.
func (a *Adapter) Close() error {
	a.mu.Lock()
	a.connected = false
	a.mu.Unlock()
	return nil
}

// buildMessageOptions translates a notify.Message into Slack message options:
// the title as message text, the body and fields as one attachment.
func buildMessageOptions(msg notify.Message) []slackapi.MsgOption {
	attachment := slackapi.Attachment{
		Color: digestColor,
		Text:  msg.Body,
	}
	for _, f := range msg.Fields {
		attachment.Fields = append(attachment.Fields, slackapi.AttachmentField{
			Title: f.Name,
			Value: f.Value,
			Short: true,
		})
	}
	return []slackapi.MsgOption{
		slackapi.MsgOptionText(msg.Title, false),
		slackapi.MsgOptionAttachments(attachment),
	}
}
