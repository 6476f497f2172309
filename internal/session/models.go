package session

import (
	"context"
	"time"

	"github.com/alicehocane/watch/internal/domain"
	"github.com/alicehocane/watch/internal/player"
	"github.com/alicehocane/watch/internal/store"
)

const (
	// HeartbeatInterval is how often the current controller re-publishes
	// playback state while playing. Drift accumulates continuously but the
	// periodic republish bounds it for every viewer.
	HeartbeatInterval = 3 * time.Second

	// ChatTailLimit bounds the history fetched on join.
	ChatTailLimit = 200
)

type State int

const (
	StateNoRoom State = iota
	StateJoining
	StateInRoom
)

type iStore interface {
	CreateRoom(ctx context.Context, params *store.CreateRoomParams) error
	GetRoom(ctx context.Context, roomID string) (domain.Room, error)
	UpdateAllowEveryoneControl(ctx context.Context, roomID string, allow bool) error
	GetPlayback(ctx context.Context, roomID string) (domain.PlaybackState, error)
	SetPlayback(ctx context.Context, roomID string, state domain.PlaybackState) error
	AppendChatMessage(ctx context.Context, roomID string, params *store.AppendChatMessageParams) (domain.ChatMessage, error)
	ChatTail(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error)
	SetPresence(ctx context.Context, roomID string, presence domain.Presence) error
	RemovePresence(ctx context.Context, roomID, participantID string) error
	ListPresence(ctx context.Context, roomID string) ([]domain.Presence, error)
	Subscribe(ctx context.Context, roomID string) (<-chan store.Event, error)
}

type iIdentity interface {
	ParticipantID() string
	Username() string
	Rename(username string) error
}

// Notifier is how the session talks back to whatever UI is attached.
type Notifier interface {
	RoomUpdated(room domain.Room, canControl bool)
	PlaybackUpdated(state domain.PlaybackState)
	ChatMessage(msg domain.ChatMessage)
	PresenceUpdated(presence domain.Presence)
	PresenceRemoved(participantID string)
	SessionError(err error)
}

// ControllerFactory builds the room's playback controller wired to the
// session's local-event sinks. Invoked exactly once per session.
type ControllerFactory func(events player.Events) player.Controller

// Snapshot is what a participant sees immediately after joining.
type Snapshot struct {
	Room       domain.Room          `json:"room"`
	Playback   domain.PlaybackState `json:"playback"`
	Messages   []domain.ChatMessage `json:"messages"`
	Presence   []domain.Presence    `json:"presence"`
	CanControl bool                 `json:"can_control"`
}
