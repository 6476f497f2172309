// Package store defines the records and change events exchanged with the
// external real-time store. The core consumes it through the five
// primitives the sync protocol needs: point read, point/patch write, live
// subscription, bounded-tail chat query with server-assigned ids, and
// disconnect-triggered presence cleanup. Any document store with live
// subscriptions can implement it; the shipped adapter is Redis.
package store

import "github.com/alicehocane/watch/internal/domain"

type EventKind string

const (
	EventRoomUpdated     EventKind = "room_updated"
	EventPlaybackUpdated EventKind = "playback_updated"
	EventChatAppended    EventKind = "chat_appended"
	EventPresenceUpdated EventKind = "presence_updated"
	EventPresenceRemoved EventKind = "presence_removed"
)

type Event struct {
	Kind     EventKind             `json:"kind"`
	RoomID   string                `json:"room_id"`
	Room     *domain.Room          `json:"room,omitempty"`
	Playback *domain.PlaybackState `json:"playback,omitempty"`
	Chat     *domain.ChatMessage   `json:"chat,omitempty"`
	Presence *domain.Presence      `json:"presence,omitempty"`
}

// CreateRoomParams carries the room record and its initial playback state.
// They are written as one logical unit so no subscriber ever observes a
// room without a playback state.
type CreateRoomParams struct {
	Room     domain.Room
	Playback domain.PlaybackState
}

type AppendChatMessageParams struct {
	AuthorID string
	Username string
	Text     string
	SentAt   int64
}
