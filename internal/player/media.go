package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type MediaErrorKind int

const (
	MediaErrorUnsupported MediaErrorKind = iota
	MediaErrorDecode
	MediaErrorNetwork
)

// MediaError is a decode/network/source failure reported by the native
// media element. Never auto-retried.
type MediaError struct {
	Kind   MediaErrorKind
	Detail string
}

func (e *MediaError) Error() string {
	switch e.Kind {
	case MediaErrorDecode:
		return fmt.Sprintf("media decode failed: %s", e.Detail)
	case MediaErrorNetwork:
		return fmt.Sprintf("media network failure: %s", e.Detail)
	default:
		return fmt.Sprintf("unsupported media source: %s", e.Detail)
	}
}

type MediaEventKind int

const (
	MediaEventPlay MediaEventKind = iota
	MediaEventPause
	MediaEventSeeked
	MediaEventError
)

type MediaEvent struct {
	Kind    MediaEventKind
	Seconds float64
	Err     *MediaError
}

// MediaElement is the control surface of a native media element. Play is
// synchronous and returns ErrAutoplayBlocked when the platform's autoplay
// policy refuses it. The events channel closes when the element closes.
type MediaElement interface {
	Play(ctx context.Context) error
	Pause()
	SetCurrentTime(seconds float64)
	CurrentTime() float64
	Paused() bool
	SetMuted(muted bool)
	Events() <-chan MediaEvent
	Close() error
}

type interactionGate int

const (
	// no user gesture yet: remote state is absorbed but never applied
	gateLocked interactionGate = iota
	// playing muted after an autoplay refusal, waiting for the one-shot
	// tap-to-start gesture to unmute
	gateMutedFallback
	gateOpen
)

type mediaBackend struct {
	el     MediaElement
	events Events
	sup    *suppressor
	done   chan struct{}

	mu   sync.Mutex
	gate interactionGate
}

// NewMedia wraps a native media element. The backend starts with the
// interaction gate locked: until the user performs one explicit start
// gesture, Play reports ErrInteractionRequired and the session must hold
// remote state back instead of applying it.
func NewMedia(el MediaElement, events Events) *mediaBackend {
	return newMedia(el, events, defaultSuppressWindow)
}

func newMedia(el MediaElement, events Events, suppressWindow time.Duration) *mediaBackend {
	b := mediaBackend{
		el:     el,
		events: events,
		sup:    newSuppressor(suppressWindow),
		done:   make(chan struct{}),
	}
	go b.pump()

	return &b
}

func (b *mediaBackend) Play(ctx context.Context) error {
	if b.NeedsInteraction() {
		return ErrInteractionRequired
	}

	b.sup.arm()
	err := b.el.Play(ctx)
	if err == nil {
		return nil
	}

	if !errors.Is(err, ErrAutoplayBlocked) {
		return fmt.Errorf("failed to play: %w", err)
	}

	// one muted retry, then wait for a genuine gesture to unmute
	b.el.SetMuted(true)
	b.sup.arm()
	if err := b.el.Play(ctx); err != nil {
		b.setGate(gateLocked)
		return ErrAutoplayBlocked
	}

	b.setGate(gateMutedFallback)

	return nil
}

func (b *mediaBackend) Pause() {
	b.sup.arm()
	b.el.Pause()
}

func (b *mediaBackend) Seek(toSeconds float64) {
	b.sup.arm()
	b.el.SetCurrentTime(toSeconds)
}

func (b *mediaBackend) CurrentTime() float64 {
	return b.el.CurrentTime()
}

func (b *mediaBackend) IsPlaying() bool {
	return !b.el.Paused()
}

func (b *mediaBackend) NeedsInteraction() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.gate == gateLocked
}

// StartGesture opens the interaction gate. It must only be wired to a
// genuine user gesture: it unmutes the muted fallback and starts playback
// if the element is still paused.
func (b *mediaBackend) StartGesture(ctx context.Context) error {
	b.mu.Lock()
	wasMuted := b.gate == gateMutedFallback
	b.gate = gateOpen
	b.mu.Unlock()

	if wasMuted {
		b.el.SetMuted(false)
	}

	if b.el.Paused() {
		b.sup.arm()
		if err := b.el.Play(ctx); err != nil {
			return fmt.Errorf("failed to play after start gesture: %w", err)
		}
	}

	return nil
}

func (b *mediaBackend) Close() {
	select {
	case <-b.done:
	default:
		close(b.done)
	}
	b.el.Close()
}

func (b *mediaBackend) setGate(g interactionGate) {
	b.mu.Lock()
	b.gate = g
	b.mu.Unlock()
}

func (b *mediaBackend) pump() {
	for {
		select {
		case <-b.done:
			return
		case ev, ok := <-b.el.Events():
			if !ok {
				return
			}

			if ev.Kind == MediaEventError {
				b.events.error(ev.Err)
				continue
			}

			if b.sup.active() {
				continue
			}

			switch ev.Kind {
			case MediaEventPlay:
				// pressing play on the element itself is an interaction
				b.mu.Lock()
				b.gate = gateOpen
				b.mu.Unlock()
				b.events.localPlay()
			case MediaEventPause:
				b.events.localPause()
			case MediaEventSeeked:
				b.events.localSeek(ev.Seconds)
			}
		}
	}
}
