package redis

import (
	"context"
	"fmt"

	"github.com/alicehocane/watch/internal/domain"
	"github.com/alicehocane/watch/internal/store"
)

func (r repo) GetPlayback(ctx context.Context, roomID string) (domain.PlaybackState, error) {
	playbackKey := r.getPlaybackKey(roomID)
	res := r.rc.HGetAll(ctx, playbackKey)
	if err := res.Err(); err != nil {
		return domain.PlaybackState{}, fmt.Errorf("failed to get playback: %w", err)
	}

	if len(res.Val()) == 0 {
		return domain.PlaybackState{}, domain.ErrPlaybackNotFound
	}

	var state domain.PlaybackState
	if err := res.Scan(&state); err != nil {
		return domain.PlaybackState{}, fmt.Errorf("failed to scan playback: %w", err)
	}

	r.rc.Expire(ctx, playbackKey, r.expireDuration)

	return state, nil
}

// SetPlayback is a full replace, last writer wins.
func (r repo) SetPlayback(ctx context.Context, roomID string, state domain.PlaybackState) error {
	playbackKey := r.getPlaybackKey(roomID)
	cmd := r.rc.Exists(ctx, playbackKey)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("failed to check if playback exists: %w", err)
	}

	if cmd.Val() == 0 {
		return domain.ErrPlaybackNotFound
	}

	if err := r.rc.HSet(ctx, playbackKey, state).Err(); err != nil {
		return fmt.Errorf("failed to set playback: %w", err)
	}

	r.rc.Expire(ctx, playbackKey, r.expireDuration)

	r.publishEvent(ctx, &store.Event{
		Kind:     store.EventPlaybackUpdated,
		RoomID:   roomID,
		Playback: &state,
	})

	return nil
}
