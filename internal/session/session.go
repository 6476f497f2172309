package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alicehocane/watch/internal/domain"
	"github.com/alicehocane/watch/internal/player"
	"github.com/alicehocane/watch/internal/store"
	"github.com/alicehocane/watch/pkg/randstr"
)

var ErrAlreadyInRoom = errors.New("session is already in a room")

const roomIDLength = 8

type Config struct {
	HeartbeatInterval time.Duration
	PresenceInterval  time.Duration
}

type Deps struct {
	Store      iStore
	Identity   iIdentity
	Notifier   Notifier
	Controller ControllerFactory
	Logger     *slog.Logger
}

// Session orchestrates one participant's membership in one room: it runs
// the live subscriptions, the heartbeat, and every control gesture. A
// single event-loop goroutine owns the playback controller, so publishes
// are serialized and no two reconciliation paths ever touch the controller
// concurrently. A session is single-use; leaving is terminal.
type Session struct {
	store     iStore
	identity  iIdentity
	notifier  Notifier
	logger    *slog.Logger
	cfg       Config
	rec       *Reconciler
	generator *randstr.Generator
	ctrl      player.Controller
	cmds      chan func(ctx context.Context)

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}

	// owned by the event loop once InRoom
	room   domain.Room
	latest domain.PlaybackState
}

func New(deps *Deps, cfg *Config) *Session {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = HeartbeatInterval
	}
	if cfg.PresenceInterval <= 0 {
		cfg.PresenceInterval = 10 * time.Second
	}

	s := Session{
		store:    deps.Store,
		identity: deps.Identity,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		cfg:      *cfg,
		rec:      NewReconciler(),
		state:    StateNoRoom,
		cmds:     make(chan func(ctx context.Context), 32),
	}

	letterBytes := []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	s.generator = randstr.New(letterBytes)

	s.ctrl = deps.Controller(player.Events{
		OnLocalPlay:  func() { s.enqueue(s.localPlay) },
		OnLocalPause: func() { s.enqueue(s.localPause) },
		OnLocalSeek: func(toSeconds float64) {
			s.enqueue(func(ctx context.Context) { s.localSeek(ctx, toSeconds) })
		},
		OnError: func(err error) { s.notifier.SessionError(err) },
	})

	return &s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Create writes the room record together with its initial paused playback
// state as one logical unit, then joins it. No subscriber can ever observe
// the room without a playback state.
func (s *Session) Create(ctx context.Context, videoURL string) (Snapshot, error) {
	roomID := s.generator.GenerateRandomString(roomIDLength)
	now := time.Now().UnixMilli()

	if err := s.store.CreateRoom(ctx, &store.CreateRoomParams{
		Room: domain.Room{
			ID:        roomID,
			VideoURL:  videoURL,
			HostID:    s.identity.ParticipantID(),
			CreatedAt: now,
		},
		Playback: domain.PlaybackState{
			IsPlaying:   false,
			CurrentTime: 0,
			UpdatedAt:   now,
			UpdatedBy:   s.identity.ParticipantID(),
		},
	}); err != nil {
		return Snapshot{}, fmt.Errorf("failed to create room: %w", err)
	}

	return s.Join(ctx, roomID)
}

// Join fetches the room snapshot, establishes the live subscription and
// starts the event loop. On any failure the session falls back to NoRoom.
func (s *Session) Join(ctx context.Context, roomID string) (Snapshot, error) {
	s.mu.Lock()
	if s.state != StateNoRoom || s.done != nil {
		s.mu.Unlock()
		return Snapshot{}, ErrAlreadyInRoom
	}
	s.state = StateJoining
	s.mu.Unlock()

	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return s.failJoin(fmt.Errorf("failed to get room: %w", err))
	}

	playback, err := s.store.GetPlayback(ctx, roomID)
	if err != nil {
		return s.failJoin(fmt.Errorf("failed to get playback: %w", err))
	}

	messages, err := s.store.ChatTail(ctx, roomID, ChatTailLimit)
	if err != nil {
		return s.failJoin(fmt.Errorf("failed to get chat tail: %w", err))
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	events, err := s.store.Subscribe(loopCtx, roomID)
	if err != nil {
		cancel()
		return s.failJoin(fmt.Errorf("failed to subscribe: %w", err))
	}

	if err := s.store.SetPresence(ctx, roomID, domain.Presence{
		ParticipantID: s.identity.ParticipantID(),
		Username:      s.identity.Username(),
		LastSeen:      time.Now().UnixMilli(),
	}); err != nil {
		cancel()
		return s.failJoin(fmt.Errorf("failed to set presence: %w", err))
	}

	presence, err := s.store.ListPresence(ctx, roomID)
	if err != nil {
		cancel()
		return s.failJoin(fmt.Errorf("failed to list presence: %w", err))
	}

	s.room = room
	s.latest = playback

	done := make(chan struct{})
	s.mu.Lock()
	s.state = StateInRoom
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.loop(loopCtx, events, done)

	// initial reconciliation runs on the loop so the controller keeps a
	// single owner
	s.enqueue(func(ctx context.Context) { s.apply(ctx, playback) })

	return Snapshot{
		Room:       room,
		Playback:   playback,
		Messages:   messages,
		Presence:   presence,
		CanControl: room.CanControl(s.identity.ParticipantID()),
	}, nil
}

func (s *Session) failJoin(err error) (Snapshot, error) {
	s.mu.Lock()
	s.state = StateNoRoom
	s.mu.Unlock()

	return Snapshot{}, err
}

// Leave tears the session down deterministically: the heartbeat ticker and
// the subscription are cancelled, and it returns only after the loop has
// exited, so nothing stale can fire afterwards. Idempotent.
func (s *Session) Leave() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.state = StateNoRoom
	s.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

// Close releases the session whether or not it ever joined a room.
func (s *Session) Close() {
	s.mu.Lock()
	started := s.done != nil
	s.mu.Unlock()

	if started {
		s.Leave()
		return
	}

	s.ctrl.Close()
}

// Play, Pause, SeekTo, SeekBy, SyncNow, StartGesture, SendChat,
// SetAllowEveryoneControl and Rename are the UI-facing commands. They hop
// onto the event loop and are dropped silently once the session has left
// its room.

func (s *Session) Play() { s.enqueue(s.gesturePlay) }

func (s *Session) Pause() { s.enqueue(s.gesturePause) }

func (s *Session) SeekTo(seconds float64) {
	s.enqueue(func(ctx context.Context) { s.gestureSeek(ctx, seconds) })
}

func (s *Session) SeekBy(deltaSeconds float64) {
	s.enqueue(func(ctx context.Context) {
		s.gestureSeek(ctx, s.ctrl.CurrentTime()+deltaSeconds)
	})
}

// SyncNow fetches the playback state once, bypassing the live
// subscription. Useful after a backgrounded tab missed notifications.
func (s *Session) SyncNow() {
	s.enqueue(func(ctx context.Context) {
		state, err := s.store.GetPlayback(ctx, s.room.ID)
		if err != nil {
			s.notifier.SessionError(fmt.Errorf("failed to fetch playback state: %w", err))
			return
		}

		s.apply(ctx, state)
		s.notifier.PlaybackUpdated(state)
	})
}

// StartGesture relays the user's one explicit start interaction and then
// applies whatever remote state was withheld while the gate was closed.
func (s *Session) StartGesture() {
	s.enqueue(func(ctx context.Context) {
		if err := s.ctrl.StartGesture(ctx); err != nil {
			s.logger.DebugContext(ctx, "start gesture failed", "error", err)
		}

		s.apply(ctx, s.latest)
	})
}

func (s *Session) SendChat(text string) {
	s.enqueue(func(ctx context.Context) {
		if _, err := s.store.AppendChatMessage(ctx, s.room.ID, &store.AppendChatMessageParams{
			AuthorID: s.identity.ParticipantID(),
			Username: s.identity.Username(),
			Text:     text,
			SentAt:   time.Now().UnixMilli(),
		}); err != nil {
			s.notifier.SessionError(fmt.Errorf("failed to send chat message: %w", err))
		}
	})
}

func (s *Session) SetAllowEveryoneControl(allow bool) {
	s.enqueue(func(ctx context.Context) {
		if s.room.HostID != s.identity.ParticipantID() {
			s.logger.DebugContext(ctx, "allow everyone control toggle ignored: not host")
			return
		}

		if err := s.store.UpdateAllowEveryoneControl(ctx, s.room.ID, allow); err != nil {
			s.notifier.SessionError(fmt.Errorf("failed to update room: %w", err))
		}
	})
}

func (s *Session) Rename(username string) {
	s.enqueue(func(ctx context.Context) {
		if err := s.identity.Rename(username); err != nil {
			s.notifier.SessionError(fmt.Errorf("failed to rename: %w", err))
			return
		}

		s.refreshPresence(ctx)
	})
}

func (s *Session) enqueue(fn func(ctx context.Context)) {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return
	}

	select {
	case s.cmds <- fn:
	case <-done:
	}
}

func (s *Session) loop(ctx context.Context, events <-chan store.Event, done chan struct{}) {
	defer close(done)
	defer s.teardown()

	heartbeat := time.NewTicker(s.cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	presence := time.NewTicker(s.cfg.PresenceInterval)
	defer presence.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-s.cmds:
			fn(ctx)
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.handleEvent(ctx, ev)
		case <-heartbeat.C:
			s.heartbeat(ctx)
		case <-presence.C:
			s.refreshPresence(ctx)
		}
	}
}

func (s *Session) teardown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.RemovePresence(ctx, s.room.ID, s.identity.ParticipantID()); err != nil {
		s.logger.WarnContext(ctx, "failed to remove presence", "error", err)
	}

	s.ctrl.Close()
}

func (s *Session) canControl() bool {
	return s.room.CanControl(s.identity.ParticipantID())
}

func (s *Session) handleEvent(ctx context.Context, ev store.Event) {
	switch ev.Kind {
	case store.EventRoomUpdated:
		if ev.Room == nil {
			return
		}

		s.room = *ev.Room
		s.notifier.RoomUpdated(s.room, s.canControl())
	case store.EventPlaybackUpdated:
		if ev.Playback == nil {
			return
		}

		s.apply(ctx, *ev.Playback)
		s.notifier.PlaybackUpdated(*ev.Playback)
	case store.EventChatAppended:
		if ev.Chat == nil {
			return
		}

		s.notifier.ChatMessage(*ev.Chat)
	case store.EventPresenceUpdated:
		if ev.Presence == nil {
			return
		}

		s.notifier.PresenceUpdated(*ev.Presence)
	case store.EventPresenceRemoved:
		if ev.Presence == nil {
			return
		}

		s.notifier.PresenceRemoved(ev.Presence.ParticipantID)
	}
}

// apply absorbs a shared playback state and, unless the interaction gate
// is still closed, reconciles the local controller against it.
func (s *Session) apply(ctx context.Context, state domain.PlaybackState) {
	s.latest = state

	if s.ctrl.NeedsInteraction() {
		return
	}

	if err := s.rec.Reconcile(ctx, state, s.ctrl); err != nil {
		if errors.Is(err, player.ErrAutoplayBlocked) || errors.Is(err, player.ErrInteractionRequired) {
			s.logger.DebugContext(ctx, "playback blocked during reconcile", "error", err)
			return
		}

		s.notifier.SessionError(err)
	}
}

func (s *Session) heartbeat(ctx context.Context) {
	if !s.canControl() || !s.ctrl.IsPlaying() || s.ctrl.NeedsInteraction() {
		return
	}

	s.publish(ctx, true, s.ctrl.CurrentTime())
}

func (s *Session) refreshPresence(ctx context.Context) {
	if err := s.store.SetPresence(ctx, s.room.ID, domain.Presence{
		ParticipantID: s.identity.ParticipantID(),
		Username:      s.identity.Username(),
		LastSeen:      time.Now().UnixMilli(),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to refresh presence", "error", err)
	}
}

// publish replaces the shared playback state with a full snapshot. A
// failed publish never marks local state authoritative; the next heartbeat
// self-heals once the store is reachable again.
func (s *Session) publish(ctx context.Context, isPlaying bool, position float64) {
	state := domain.PlaybackState{
		IsPlaying:   isPlaying,
		CurrentTime: position,
		UpdatedAt:   time.Now().UnixMilli(),
		UpdatedBy:   s.identity.ParticipantID(),
	}

	if err := s.store.SetPlayback(ctx, s.room.ID, state); err != nil {
		s.logger.WarnContext(ctx, "failed to publish playback state", "error", err)
		return
	}

	s.latest = state
}

func (s *Session) gesturePlay(ctx context.Context) {
	if !s.canControl() {
		s.logger.DebugContext(ctx, "play ignored: no control authority")
		return
	}

	var err error
	if s.ctrl.NeedsInteraction() {
		// a UI button press is a genuine interaction
		err = s.ctrl.StartGesture(ctx)
	} else {
		err = s.ctrl.Play(ctx)
	}
	if err != nil {
		s.logger.DebugContext(ctx, "local play did not start", "error", err)
	}

	s.publish(ctx, true, s.ctrl.CurrentTime())
}

func (s *Session) gesturePause(ctx context.Context) {
	if !s.canControl() {
		s.logger.DebugContext(ctx, "pause ignored: no control authority")
		return
	}

	s.ctrl.Pause()
	s.publish(ctx, false, s.ctrl.CurrentTime())
}

func (s *Session) gestureSeek(ctx context.Context, toSeconds float64) {
	if !s.canControl() {
		s.logger.DebugContext(ctx, "seek ignored: no control authority")
		return
	}

	if toSeconds < 0 {
		toSeconds = 0
	}

	s.ctrl.Seek(toSeconds)
	s.publish(ctx, s.ctrl.IsPlaying(), toSeconds)
}

func (s *Session) localPlay(ctx context.Context) {
	if !s.canControl() {
		return
	}

	s.publish(ctx, true, s.ctrl.CurrentTime())
}

func (s *Session) localPause(ctx context.Context) {
	if !s.canControl() {
		return
	}

	s.publish(ctx, false, s.ctrl.CurrentTime())
}

func (s *Session) localSeek(ctx context.Context, toSeconds float64) {
	if !s.canControl() {
		return
	}

	s.publish(ctx, s.ctrl.IsPlaying(), toSeconds)
}
