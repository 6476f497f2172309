package player

import (
	"context"
	"errors"
)

var (
	ErrAutoplayBlocked     = errors.New("autoplay blocked by platform policy")
	ErrInteractionRequired = errors.New("user interaction required")
)

// Controller abstracts a single media backend behind one capability set.
// Exactly two implementations exist: the embedded widget backend and the
// native media backend. Programmatic calls never fire the local-event
// callbacks; those are reserved for genuine user actions reported by the
// underlying surface.
type Controller interface {
	// Play is best effort. The native backend reports ErrAutoplayBlocked
	// when platform policy refuses an audible start and it could not fall
	// back to a muted one.
	Play(ctx context.Context) error
	// Pause is idempotent.
	Pause()
	// Seek relocates the playback head. The resulting surface events are
	// suppressed so a remote-triggered correction is never re-published as
	// a user action.
	Seek(toSeconds float64)
	CurrentTime() float64
	IsPlaying() bool
	// NeedsInteraction reports whether remote state must be withheld from
	// the surface until StartGesture. Always false for the widget backend.
	NeedsInteraction() bool
	// StartGesture must be called on a genuine user gesture. It unmutes a
	// muted fallback and resumes playback.
	StartGesture(ctx context.Context) error
	Close()
}

// Events carries the local-event notifications of a backend. Fired only for
// genuine, non-suppressed, user-originated actions. Nil callbacks are
// skipped.
type Events struct {
	OnLocalPlay  func()
	OnLocalPause func()
	OnLocalSeek  func(toSeconds float64)
	OnError      func(err error)
}

func (e Events) localPlay() {
	if e.OnLocalPlay != nil {
		e.OnLocalPlay()
	}
}

func (e Events) localPause() {
	if e.OnLocalPause != nil {
		e.OnLocalPause()
	}
}

func (e Events) localSeek(toSeconds float64) {
	if e.OnLocalSeek != nil {
		e.OnLocalSeek(toSeconds)
	}
}

func (e Events) error(err error) {
	if e.OnError != nil {
		e.OnError(err)
	}
}
