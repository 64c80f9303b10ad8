// Package board keeps a Discord channel in sync with the published stream
// schedule. Each cycle fetches the schedule, reads the channel back through
// the markers embedded in message footers, and either leaves the channel
// alone or clears and reposts it in full. The channel itself is the only
// record of what was posted; nothing is persisted between cycles.
package board

import (
	"context"

	"github.com/SebPartof2/stw222-bot/discordapi"
)

// Channel is the message surface a sync cycle reads and mutates.
// *discordapi.ChannelClient implements it against the real API; tests use an
// in-memory fake.
type Channel interface {
	// Messages returns up to limit messages, newest first.
	Messages(ctx context.Context, limit int) ([]discordapi.Message, error)
	// Send posts a message and returns the created record.
	Send(ctx context.Context, m discordapi.OutgoingMessage) (*discordapi.Message, error)
	// BulkDelete removes a batch of messages in one call.
	BulkDelete(ctx context.Context, ids []string) error
	// Delete removes a single message.
	Delete(ctx context.Context, messageID string) error
}
