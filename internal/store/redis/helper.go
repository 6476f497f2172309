package redis

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/alicehocane/watch/internal/store"
)

func (r repo) getRoomKey(roomID string) string {
	return "room:" + roomID
}

func (r repo) getPlaybackKey(roomID string) string {
	return "room:" + roomID + ":playback"
}

func (r repo) getChatSeqKey(roomID string) string {
	return "room:" + roomID + ":chat"
}

func (r repo) getChatItemsKey(roomID string) string {
	return "room:" + roomID + ":chat:items"
}

func (r repo) getPresenceKey(roomID, participantID string) string {
	return "room:" + roomID + ":presence:" + participantID
}

func (r repo) getPresencePattern(roomID string) string {
	return "room:" + roomID + ":presence:*"
}

func (r repo) getEventsChannel(roomID string) string {
	return "room:" + roomID + ":events"
}

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}

// publishEvent is fire-and-forget: the write already succeeded, a missed
// notification only delays observers until the next heartbeat.
func (r repo) publishEvent(ctx context.Context, ev *store.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to marshal event", "kind", ev.Kind, "error", err)
		return
	}

	if err := r.rc.Publish(ctx, r.getEventsChannel(ev.RoomID), payload).Err(); err != nil {
		r.logger.WarnContext(ctx, "failed to publish event", "kind", ev.Kind, "error", err)
	}
}
