package redis

import (
	"context"
	"fmt"

	"github.com/alicehocane/watch/internal/domain"
	"github.com/alicehocane/watch/internal/store"
)

// SetPresence writes the record with a short TTL. The session refreshes it
// periodically while connected; when the connection drops the refreshes
// stop and expiry removes the record.
func (r repo) SetPresence(ctx context.Context, roomID string, presence domain.Presence) error {
	presenceKey := r.getPresenceKey(roomID, presence.ParticipantID)
	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, presenceKey, presence)
	pipe.Expire(ctx, presenceKey, r.presenceTTL)
	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set presence: %w", err)
	}

	r.publishEvent(ctx, &store.Event{
		Kind:     store.EventPresenceUpdated,
		RoomID:   roomID,
		Presence: &presence,
	})

	return nil
}

func (r repo) RemovePresence(ctx context.Context, roomID, participantID string) error {
	presenceKey := r.getPresenceKey(roomID, participantID)
	if err := r.rc.Del(ctx, presenceKey).Err(); err != nil {
		return fmt.Errorf("failed to remove presence: %w", err)
	}

	r.publishEvent(ctx, &store.Event{
		Kind:     store.EventPresenceRemoved,
		RoomID:   roomID,
		Presence: &domain.Presence{ParticipantID: participantID},
	})

	return nil
}

func (r repo) ListPresence(ctx context.Context, roomID string) ([]domain.Presence, error) {
	var (
		presences []domain.Presence
		cursor    uint64
	)

	for {
		keys, next, err := r.rc.Scan(ctx, cursor, r.getPresencePattern(roomID), 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan presence keys: %w", err)
		}

		for _, key := range keys {
			res := r.rc.HGetAll(ctx, key)
			if err := res.Err(); err != nil {
				return nil, fmt.Errorf("failed to get presence: %w", err)
			}

			if len(res.Val()) == 0 {
				// expired between scan and read
				continue
			}

			var presence domain.Presence
			if err := res.Scan(&presence); err != nil {
				return nil, fmt.Errorf("failed to scan presence: %w", err)
			}

			presences = append(presences, presence)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return presences, nil
}
