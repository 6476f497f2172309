package controller

import (
	"github.com/alicehocane/watch/internal/domain"
	"github.com/alicehocane/watch/internal/session"
	"github.com/alicehocane/watch/pkg/ytmeta"
)

// Output is the envelope for every message the daemon sends to the
// attached UI, both room notifications and surface commands.
type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type joinedRoomPayload struct {
	Snapshot  session.Snapshot  `json:"snapshot"`
	Source    sourcePayload     `json:"source"`
	VideoData *ytmeta.VideoData `json:"video_data,omitempty"`
}

type sourcePayload struct {
	Kind    string `json:"kind"`
	URL     string `json:"url"`
	VideoID string `json:"video_id,omitempty"`
}

type roomUpdatedPayload struct {
	Room       domain.Room `json:"room"`
	CanControl bool        `json:"can_control"`
}

type playbackUpdatedPayload struct {
	Playback domain.PlaybackState `json:"playback"`
}

type chatMessagePayload struct {
	Message domain.ChatMessage `json:"message"`
}

type presenceUpdatedPayload struct {
	Presence domain.Presence `json:"presence"`
}

type presenceRemovedPayload struct {
	ParticipantID string `json:"participant_id"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type seekPayload struct {
	Seconds float64 `json:"seconds"`
}

type setMutedPayload struct {
	Muted bool `json:"muted"`
}
