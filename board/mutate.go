package board

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SebPartof2/stw222-bot/discordapi"
	"github.com/SebPartof2/stw222-bot/telemetry"
)

// bulkDeleteMaxAge is the API ceiling for bulk deletion. Messages at or past
// this age must be removed one at a time.
const bulkDeleteMaxAge = 14 * 24 * time.Hour

// Clear removes every message in the channel, page by page: one bulk call
// for messages young enough, then best-effort individual deletes for the
// rest. A page pass that deletes nothing aborts the cycle instead of
// spinning on the same page forever.
func Clear(ctx context.Context, ch Channel) error {
	logger := telemetry.LoggerWithCorr(ctx).With(slog.String("component", "board"))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msgs, err := ch.Messages(ctx, pageLimit)
		if err != nil {
			return fmt.Errorf("clear channel: %w", err)
		}
		if len(msgs) == 0 {
			return nil
		}

		cutoff := time.Now().Add(-bulkDeleteMaxAge)
		var young, single []string
		for _, m := range msgs {
			if m.Timestamp.After(cutoff) {
				young = append(young, m.ID)
			} else {
				single = append(single, m.ID)
			}
		}

		deleted := 0
		if len(young) >= 2 {
			if err := ch.BulkDelete(ctx, young); err != nil {
				logger.Warn("bulk delete failed, falling back to individual deletes",
					slog.Int("count", len(young)), slog.Any("err", err))
				single = append(single, young...)
			} else {
				deleted += len(young)
			}
		} else {
			// The bulk endpoint rejects batches under two messages.
			single = append(single, young...)
		}

		for _, id := range single {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := ch.Delete(ctx, id); err != nil {
				if discordapi.IsNotFound(err) {
					// Already gone counts as progress.
					deleted++
					continue
				}
				logger.Warn("failed to delete message, skipping",
					slog.String("message_id", id), slog.Any("err", err))
				continue
			}
			deleted++
		}

		telemetry.AddMessagesDeleted(deleted)
		if deleted == 0 {
			return fmt.Errorf("clear channel: no progress on a page of %d messages", len(msgs))
		}
		logger.Debug("cleared page", slog.Int("page_size", len(msgs)), slog.Int("deleted", deleted))
	}
}

// Post replays the stream messages in schedule order with a fixed delay
// between sends, then posts the header. The header goes out even for an
// empty schedule; a send failure aborts before the header so the next cycle
// sees an incomplete channel and rebuilds it.
func Post(ctx context.Context, ch Channel, streams []discordapi.OutgoingMessage, header discordapi.OutgoingMessage, delay time.Duration) error {
	posted := 0
	for i, m := range streams {
		if i > 0 {
			if err := pause(ctx, delay); err != nil {
				telemetry.AddMessagesPosted(posted)
				return err
			}
		}
		if _, err := ch.Send(ctx, m); err != nil {
			telemetry.AddMessagesPosted(posted)
			return fmt.Errorf("post stream %d of %d: %w", i+1, len(streams), err)
		}
		posted++
	}
	if len(streams) > 0 {
		if err := pause(ctx, delay); err != nil {
			telemetry.AddMessagesPosted(posted)
			return err
		}
	}
	if _, err := ch.Send(ctx, header); err != nil {
		telemetry.AddMessagesPosted(posted)
		return fmt.Errorf("post header: %w", err)
	}
	posted++
	telemetry.AddMessagesPosted(posted)
	return nil
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
