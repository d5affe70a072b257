package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

const (
	// DefaultPollTimeout is the server-side long-poll wait in seconds. It
	// must stay below the HTTP client timeout.
	DefaultPollTimeout = 25

	pollRetryDelay = 3 * time.Second
)

// OffsetStore persists the last confirmed update offset between runs so a
// restart does not replay updates.
type OffsetStore interface {
	Offset() (int64, error)
	SaveOffset(offset int64) error
}

// Poller drives the bot through getUpdates long polling, the default way of
// receiving updates when no public HTTPS endpoint is available.
type Poller struct {
	client     *Client
	offsets    OffsetStore
	onUpdate   UpdateHandler
	timeout    int
	retryDelay time.Duration
}

func NewPoller(client *Client, offsets OffsetStore, onUpdate UpdateHandler) *Poller {
	return &Poller{
		client:     client,
		offsets:    offsets,
		onUpdate:   onUpdate,
		timeout:    DefaultPollTimeout,
		retryDelay: pollRetryDelay,
	}
}

// Run polls until ctx is cancelled, dispatching updates in delivery order.
// Transport errors are logged and the loop resumes after a short delay; a
// failed poll must not kill the bot.
func (p *Poller) Run(ctx context.Context) error {
	offset, err := p.offsets.Offset()
	if err != nil {
		return fmt.Errorf("loading update offset: %w", err)
	}

	for {
		updates, err := p.client.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			delay := p.retryDelay
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
				delay = time.Duration(apiErr.RetryAfter) * time.Second
			}
			log.Printf("poller: getUpdates failed: %v (retrying in %s)", err, delay)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		for _, upd := range updates {
			p.onUpdate(ctx, upd)

			offset = upd.UpdateID + 1
			if err := p.offsets.SaveOffset(offset); err != nil {
				log.Printf("poller: failed to save offset %d: %v", offset, err)
			}
		}
	}
}
