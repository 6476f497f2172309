package redis

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/alicehocane/watch/internal/store"
)

// Subscribe opens a live subscription to a room's change events. The
// returned channel closes when ctx is cancelled; a consumer seeing it
// closed must treat any later callback work as stale and do nothing.
func (r repo) Subscribe(ctx context.Context, roomID string) (<-chan store.Event, error) {
	pubsub := r.rc.Subscribe(ctx, r.getEventsChannel(roomID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to room events: %w", err)
	}

	out := make(chan store.Event, 16)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var ev store.Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					r.logger.WarnContext(ctx, "failed to unmarshal room event", "error", err)
					continue
				}

				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
