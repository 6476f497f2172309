package session

import (
	"context"
	"sync"

	"github.com/alicehocane/watch/internal/domain"
	"github.com/alicehocane/watch/internal/player"
)

type fakeController struct {
	mu               sync.Mutex
	playing          bool
	current          float64
	needsInteraction bool
	plays            int
	pauses           int
	seeks            []float64
	gestures         int
}

func newFakeController() *fakeController {
	return &fakeController{}
}

func (f *fakeController) Play(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.plays++
	f.playing = true

	return nil
}

func (f *fakeController) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pauses++
	f.playing = false
}

func (f *fakeController) Seek(toSeconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seeks = append(f.seeks, toSeconds)
	f.current = toSeconds
}

func (f *fakeController) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.current
}

func (f *fakeController) IsPlaying() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.playing
}

func (f *fakeController) NeedsInteraction() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.needsInteraction
}

func (f *fakeController) StartGesture(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.gestures++
	f.needsInteraction = false
	f.playing = true

	return nil
}

func (f *fakeController) Close() {}

func (f *fakeController) setPlaying(playing bool) {
	f.mu.Lock()
	f.playing = playing
	f.mu.Unlock()
}

func (f *fakeController) setCurrent(seconds float64) {
	f.mu.Lock()
	f.current = seconds
	f.mu.Unlock()
}

func (f *fakeController) setNeedsInteraction(needs bool) {
	f.mu.Lock()
	f.needsInteraction = needs
	f.mu.Unlock()
}

func (f *fakeController) playCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.plays
}

func (f *fakeController) pauseCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.pauses
}

func (f *fakeController) seekCalls() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]float64(nil), f.seeks...)
}

type fakeIdentity struct {
	mu            sync.Mutex
	participantID string
	username      string
}

func (f *fakeIdentity) ParticipantID() string {
	return f.participantID
}

func (f *fakeIdentity) Username() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.username
}

func (f *fakeIdentity) Rename(username string) error {
	f.mu.Lock()
	f.username = username
	f.mu.Unlock()

	return nil
}

type roomUpdate struct {
	room       domain.Room
	canControl bool
}

type fakeNotifier struct {
	roomCh     chan roomUpdate
	playbackCh chan domain.PlaybackState
	chatCh     chan domain.ChatMessage
	errCh      chan error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		roomCh:     make(chan roomUpdate, 32),
		playbackCh: make(chan domain.PlaybackState, 32),
		chatCh:     make(chan domain.ChatMessage, 32),
		errCh:      make(chan error, 32),
	}
}

func (f *fakeNotifier) RoomUpdated(room domain.Room, canControl bool) {
	f.roomCh <- roomUpdate{room: room, canControl: canControl}
}

func (f *fakeNotifier) PlaybackUpdated(state domain.PlaybackState) {
	select {
	case f.playbackCh <- state:
	default:
	}
}

func (f *fakeNotifier) ChatMessage(msg domain.ChatMessage) {
	f.chatCh <- msg
}

func (f *fakeNotifier) PresenceUpdated(domain.Presence) {}

func (f *fakeNotifier) PresenceRemoved(string) {}

func (f *fakeNotifier) SessionError(err error) {
	select {
	case f.errCh <- err:
	default:
	}
}

func controllerFactory(ctrl *fakeController) (ControllerFactory, *player.Events) {
	events := &player.Events{}
	return func(ev player.Events) player.Controller {
		*events = ev
		return ctrl
	}, events
}
