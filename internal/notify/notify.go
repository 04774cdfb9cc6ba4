// Package notify delivers review digests to chat platforms (Slack, Discord).
package notify

import "context"

// Adapter is the interface platform-specific implementations must satisfy.
// Digest delivery is outbound-only; each adapter handles connection
// management and message formatting for one platform.
type Adapter interface {
	// Connect establishes a connection or verifies credentials.
	Connect(ctx context.Context) error

	// Send delivers an outbound message to the platform.
	Send(ctx context.Context, msg Message) error

	// Close shuts down the adapter.
	Close() error
}

// Message is a formatted digest ready for delivery.
type Message struct {
	ChannelID string  // target channel; empty uses the adapter default
	Title     string  // digest headline
	Body      string  // detail text (platform-neutral plain text)
	Fields    []Field // key-value metadata pairs
}

// Field is a key-value pair displayed alongside the digest.
type Field struct {
	Name  string
	Value string
}
