// Package discord implements the notify Adapter for Discord.
package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/veldhuis/atelier/internal/notify"
)

// digestColor is the embed sidebar color for review digests.
const digestColor = 0x4a6fa5

// session abstracts the discordgo methods we use, enabling test mocks.
type session interface {
	Open() error
	Close() error
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Adapter implements notify.Adapter for Discord.
type Adapter struct {
	sess      session
	channelID string
	mu        sync.Mutex
	connected bool
}

// AdapterOpts holds parameters for creating a Discord Adapter.
type AdapterOpts struct {
	Token     string // bot token
	ChannelID string // default channel to post to
	// For testing: inject a mock session instead of a real gateway session.
	Session session
}

// New creates a Discord Adapter.
func New(opts AdapterOpts) (*Adapter, error) {
	if opts.Session == nil && opts.Token == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("discord: channel is required")
	}

	a := &Adapter{channelID: opts.ChannelID}
	if opts.Session != nil {
		a.sess = opts.Session
	} else {
		sess, err := discordgo.New("Bot " + opts.Token)
		if err != nil {
			return nil, fmt.Errorf("discord: create session: %w", err)
		}
		a.sess = sess
	}
	return a, nil
}

// Connect opens the gateway session.
func (a *Adapter) Connect(ctx context.Context) error {
	if err := a.sess.Open(); err != nil {
		return fmt.Errorf("discord: open session: %w", err)
	}
	a.mu.Lock()
	a.connected = true
	a.mu.Unlock()
	return nil
}

// Send delivers a digest message as a Discord embed.
func (a *Adapter) Send(ctx context.Context, msg notify.Message) error {
	a.mu.Lock()
	if !a.connected {
		a.mu.Unlock()
		return fmt.Errorf("discord: not connected")
	}
	a.mu.Unlock()

	channelID := msg.ChannelID
	if channelID == "" {
		channelID = a.channelID
	}

	if _, err := a.sess.ChannelMessageSendComplex(channelID, buildMessageSend(msg), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: send message: %w", err)
	}
	return nil
}

// Close shuts down the gateway session.
func (a *Adapter) Close() error {
	a.mu.Lock()
	connected := a.connected
	a.connected = false
	a.mu.Unlock()

	if !connected {
		return nil
	}
	if err := a.sess.Close(); err != nil {
		return fmt.Errorf("discord: close session: %w", err)
	}
	return nil
}

// buildMessageSend translates a notify.Message into a Discord embed.
func buildMessageSend(msg notify.Message) *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Body,
		Color:       digestColor,
	}
	for _, f := range msg.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: true,
		})
	}
	return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}
}
