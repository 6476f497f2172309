package controller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alicehocane/watch/internal/domain"
	"github.com/alicehocane/watch/internal/player"
)

const (
	outJoinedRoom      = "JOINED_ROOM"
	outRoomUpdated     = "ROOM_UPDATED"
	outPlaybackUpdated = "PLAYBACK_UPDATED"
	outChatMessage     = "CHAT_MESSAGE"
	outPresenceUpdated = "PRESENCE_UPDATED"
	outPresenceRemoved = "PRESENCE_REMOVED"
	outError           = "ERROR"
	outSurfacePlay     = "SURFACE_PLAY"
	outSurfacePause    = "SURFACE_PAUSE"
	outSurfaceSeek     = "SURFACE_SEEK"
	outSurfaceSetMuted = "SURFACE_SET_MUTED"
)

const playAckTimeout = 5 * time.Second

var errPlayNotAcknowledged = errors.New("surface did not acknowledge play")

// surfaceBridge relays between a session and the UI on the far side of
// the websocket. The UI hosts the actual media surface, so the bridge
// doubles as the controller's backend driver: commands go out as
// messages, the surface reports state and events back in. The bridge
// caches the last reported state so CurrentTime and friends never block
// on the network.
type surfaceBridge struct {
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex

	mu          sync.Mutex
	currentTime float64
	widgetState player.WidgetState
	paused      bool
	playAck     chan error
}

func newSurfaceBridge(conn *websocket.Conn, logger *slog.Logger) *surfaceBridge {
	return &surfaceBridge{
		conn:   conn,
		logger: logger,
		paused: true,
	}
}

func (b *surfaceBridge) send(out *Output) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if err := b.conn.WriteJSON(out); err != nil {
		b.logger.Debug("failed to write to ui", "type", out.Type, "error", err)
	}
}

func (b *surfaceBridge) CurrentTime() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.currentTime
}

func (b *surfaceBridge) PlayerState() player.WidgetState {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.widgetState
}

func (b *surfaceBridge) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.paused
}

func (b *surfaceBridge) reportState(currentTime float64, state string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.currentTime = currentTime

	switch state {
	case "playing":
		b.widgetState, b.paused = player.WidgetStatePlaying, false
	case "paused":
		b.widgetState, b.paused = player.WidgetStatePaused, true
	case "buffering":
		b.widgetState, b.paused = player.WidgetStateBuffering, false
	case "ended":
		b.widgetState, b.paused = player.WidgetStateEnded, true
	default:
		b.widgetState, b.paused = player.WidgetStateUnstarted, true
	}
}

func (b *surfaceBridge) playResult(blocked bool, detail string) {
	b.mu.Lock()
	ack := b.playAck
	b.playAck = nil
	b.mu.Unlock()

	if ack == nil {
		return
	}

	switch {
	case blocked:
		ack <- player.ErrAutoplayBlocked
	case detail != "":
		ack <- errors.New(detail)
	default:
		ack <- nil
	}
}

// session.Notifier

func (b *surfaceBridge) RoomUpdated(room domain.Room, canControl bool) {
	b.send(&Output{Type: outRoomUpdated, Payload: roomUpdatedPayload{Room: room, CanControl: canControl}})
}

func (b *surfaceBridge) PlaybackUpdated(state domain.PlaybackState) {
	b.send(&Output{Type: outPlaybackUpdated, Payload: playbackUpdatedPayload{Playback: state}})
}

func (b *surfaceBridge) ChatMessage(msg domain.ChatMessage) {
	b.send(&Output{Type: outChatMessage, Payload: chatMessagePayload{Message: msg}})
}

func (b *surfaceBridge) PresenceUpdated(presence domain.Presence) {
	b.send(&Output{Type: outPresenceUpdated, Payload: presenceUpdatedPayload{Presence: presence}})
}

func (b *surfaceBridge) PresenceRemoved(participantID string) {
	b.send(&Output{Type: outPresenceRemoved, Payload: presenceRemovedPayload{ParticipantID: participantID}})
}

func (b *surfaceBridge) SessionError(err error) {
	b.send(&Output{Type: outError, Payload: errorPayload{Message: err.Error()}})
}

// surface is the mode-agnostic half the connection handler talks to.
type surface interface {
	ingest(in SurfaceEventInput)
	Close() error
}

// widgetSurface drives the embedded platform widget mounted in the UI.
type widgetSurface struct {
	*surfaceBridge
	events    chan player.WidgetEvent
	closeOnce sync.Once
}

func newWidgetSurface(b *surfaceBridge) *widgetSurface {
	return &widgetSurface{surfaceBridge: b, events: make(chan player.WidgetEvent, 16)}
}

func (s *widgetSurface) PlayVideo() {
	s.send(&Output{Type: outSurfacePlay})
}

func (s *widgetSurface) PauseVideo() {
	s.send(&Output{Type: outSurfacePause})
}

func (s *widgetSurface) SeekTo(seconds float64) {
	s.send(&Output{Type: outSurfaceSeek, Payload: seekPayload{Seconds: seconds}})
}

func (s *widgetSurface) Events() <-chan player.WidgetEvent {
	return s.events
}

func (s *widgetSurface) Close() error {
	s.closeOnce.Do(func() { close(s.events) })
	return nil
}

func (s *widgetSurface) ingest(in SurfaceEventInput) {
	var ev player.WidgetEvent

	switch in.Kind {
	case "play":
		ev = player.WidgetEvent{Kind: player.WidgetEventPlaying, Seconds: in.Seconds}
	case "pause":
		ev = player.WidgetEvent{Kind: player.WidgetEventPaused, Seconds: in.Seconds}
	case "seeked":
		ev = player.WidgetEvent{Kind: player.WidgetEventSeeked, Seconds: in.Seconds}
	case "ended":
		ev = player.WidgetEvent{Kind: player.WidgetEventEnded, Seconds: in.Seconds}
	case "error":
		ev = player.WidgetEvent{Kind: player.WidgetEventError, Err: errors.New(in.Detail)}
	default:
		return
	}

	select {
	case s.events <- ev:
	default:
		s.logger.Debug("surface event dropped", "kind", in.Kind)
	}
}

// mediaSurface drives the native media element mounted in the UI. Play is
// synchronous: the UI acknowledges the attempt with PLAY_RESULT so the
// autoplay outcome can be reported to the caller.
type mediaSurface struct {
	*surfaceBridge
	events    chan player.MediaEvent
	closeOnce sync.Once
}

func newMediaSurface(b *surfaceBridge) *mediaSurface {
	return &mediaSurface{surfaceBridge: b, events: make(chan player.MediaEvent, 16)}
}

func (s *mediaSurface) Play(ctx context.Context) error {
	ack := make(chan error, 1)
	s.mu.Lock()
	s.playAck = ack
	s.mu.Unlock()

	s.send(&Output{Type: outSurfacePlay})

	timer := time.NewTimer(playAckTimeout)
	defer timer.Stop()

	select {
	case err := <-ack:
		return err
	case <-ctx.Done():
		s.clearAck(ack)
		return ctx.Err()
	case <-timer.C:
		s.clearAck(ack)
		return errPlayNotAcknowledged
	}
}

func (s *mediaSurface) clearAck(ack chan error) {
	s.mu.Lock()
	if s.playAck == ack {
		s.playAck = nil
	}
	s.mu.Unlock()
}

func (s *mediaSurface) Pause() {
	s.send(&Output{Type: outSurfacePause})
}

func (s *mediaSurface) SetCurrentTime(seconds float64) {
	s.send(&Output{Type: outSurfaceSeek, Payload: seekPayload{Seconds: seconds}})
}

func (s *mediaSurface) SetMuted(muted bool) {
	s.send(&Output{Type: outSurfaceSetMuted, Payload: setMutedPayload{Muted: muted}})
}

func (s *mediaSurface) Events() <-chan player.MediaEvent {
	return s.events
}

func (s *mediaSurface) Close() error {
	s.closeOnce.Do(func() { close(s.events) })
	return nil
}

func (s *mediaSurface) ingest(in SurfaceEventInput) {
	var ev player.MediaEvent

	switch in.Kind {
	case "play":
		ev = player.MediaEvent{Kind: player.MediaEventPlay, Seconds: in.Seconds}
	case "pause", "ended":
		ev = player.MediaEvent{Kind: player.MediaEventPause, Seconds: in.Seconds}
	case "seeked":
		ev = player.MediaEvent{Kind: player.MediaEventSeeked, Seconds: in.Seconds}
	case "error":
		ev = player.MediaEvent{Kind: player.MediaEventError, Err: &player.MediaError{
			Kind:   mediaErrorKind(in.ErrorKind),
			Detail: in.Detail,
		}}
	default:
		return
	}

	select {
	case s.events <- ev:
	default:
		s.logger.Debug("surface event dropped", "kind", in.Kind)
	}
}

func mediaErrorKind(kind string) player.MediaErrorKind {
	switch kind {
	case "decode":
		return player.MediaErrorDecode
	case "network":
		return player.MediaErrorNetwork
	default:
		return player.MediaErrorUnsupported
	}
}
