package domain

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrPlaybackNotFound = errors.New("playback state not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnplayableSource = errors.New("unplayable video source")
)

type Room struct {
	ID                   string `json:"id" redis:"id"`
	VideoURL             string `json:"video_url" redis:"video_url"`
	HostID               string `json:"host_id" redis:"host_id"`
	AllowEveryoneControl bool   `json:"allow_everyone_control" redis:"allow_everyone_control"`
	CreatedAt            int64  `json:"created_at" redis:"created_at"`
}

// CanControl reports whether participantID is allowed to publish playback
// state for this room. Authority is computed, never stored.
func (r Room) CanControl(participantID string) bool {
	return participantID == r.HostID || r.AllowEveryoneControl
}
