package redis

import (
	"context"
	"fmt"

	"github.com/alicehocane/watch/internal/domain"
	"github.com/alicehocane/watch/internal/store"
)

func (r repo) CreateRoom(ctx context.Context, params *store.CreateRoomParams) error {
	pipe := r.rc.TxPipeline()

	roomKey := r.getRoomKey(params.Room.ID)
	pipe.HSet(ctx, roomKey, params.Room)
	pipe.Expire(ctx, roomKey, r.expireDuration)

	playbackKey := r.getPlaybackKey(params.Room.ID)
	pipe.HSet(ctx, playbackKey, params.Playback)
	pipe.Expire(ctx, playbackKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomID string) (domain.Room, error) {
	roomKey := r.getRoomKey(roomID)
	res := r.rc.HGetAll(ctx, roomKey)
	if err := res.Err(); err != nil {
		return domain.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	if len(res.Val()) == 0 {
		return domain.Room{}, domain.ErrRoomNotFound
	}

	var room domain.Room
	if err := res.Scan(&room); err != nil {
		return domain.Room{}, fmt.Errorf("failed to scan room: %w", err)
	}

	r.rc.Expire(ctx, roomKey, r.expireDuration)

	return room, nil
}

// UpdateAllowEveryoneControl patches the single mutable room field and
// notifies subscribers with the updated record.
func (r repo) UpdateAllowEveryoneControl(ctx context.Context, roomID string, allow bool) error {
	roomKey := r.getRoomKey(roomID)
	cmd := r.rc.Exists(ctx, roomKey)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("failed to check if room exists: %w", err)
	}

	if cmd.Val() == 0 {
		return domain.ErrRoomNotFound
	}

	if err := r.rc.HSet(ctx, roomKey, "allow_everyone_control", allow).Err(); err != nil {
		return fmt.Errorf("failed to update allow everyone control: %w", err)
	}

	r.rc.Expire(ctx, roomKey, r.expireDuration)

	room, err := r.GetRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to get updated room: %w", err)
	}

	r.publishEvent(ctx, &store.Event{
		Kind:   store.EventRoomUpdated,
		RoomID: roomID,
		Room:   &room,
	})

	return nil
}
