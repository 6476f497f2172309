package player

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaGateLockedUntilStartGesture(t *testing.T) {
	el := newFakeMediaElement()
	rec := eventRecorder{}
	b := newMedia(el, rec.events(), testSuppressWindow)
	defer b.Close()

	require.True(t, b.NeedsInteraction())
	assert.ErrorIs(t, b.Play(context.Background()), ErrInteractionRequired)
	assert.True(t, el.Paused(), "a gated play must not reach the element")

	require.NoError(t, b.StartGesture(context.Background()))
	assert.False(t, b.NeedsInteraction())
	assert.False(t, el.Paused(), "start gesture must resume a paused element")
	waitSuppressWindow()

	plays, _, _ := rec.counts()
	assert.Zero(t, plays, "gesture-triggered play is programmatic, not a local event")
}

func TestMediaElementPlayGestureOpensGate(t *testing.T) {
	el := newFakeMediaElement()
	rec := eventRecorder{}
	b := newMedia(el, rec.events(), testSuppressWindow)
	defer b.Close()

	// the user pressed play on the element itself
	el.emit(MediaEvent{Kind: MediaEventPlay})

	assert.Eventually(t, func() bool {
		plays, _, _ := rec.counts()
		return plays == 1 && !b.NeedsInteraction()
	}, time.Second, 5*time.Millisecond)
}

func TestMediaAutoplayBlockedFallsBackMuted(t *testing.T) {
	el := newFakeMediaElement()
	el.blockAudible = true
	rec := eventRecorder{}
	b := newMedia(el, rec.events(), testSuppressWindow)
	defer b.Close()

	// gate opened by a direct element gesture
	el.emit(MediaEvent{Kind: MediaEventPlay})
	assert.Eventually(t, func() bool { return !b.NeedsInteraction() }, time.Second, 5*time.Millisecond)

	require.NoError(t, b.Play(context.Background()))
	assert.True(t, el.isMuted(), "blocked play must retry muted")
	assert.False(t, el.Paused())

	// the one-shot gesture unmutes without another play
	require.NoError(t, b.StartGesture(context.Background()))
	assert.False(t, el.isMuted())
	assert.False(t, el.Paused())
}

func TestMediaSuppressesProgrammaticSeek(t *testing.T) {
	el := newFakeMediaElement()
	rec := eventRecorder{}
	b := newMedia(el, rec.events(), testSuppressWindow)
	defer b.Close()

	b.Seek(102)
	waitSuppressWindow()

	_, _, seeks := rec.counts()
	assert.Zero(t, seeks)
	assert.Equal(t, 102.0, b.CurrentTime())

	// a genuine user seek afterwards still comes through
	el.emit(MediaEvent{Kind: MediaEventSeeked, Seconds: 55})
	assert.Eventually(t, func() bool {
		to, ok := rec.lastSeek()
		return ok && to == 55.0
	}, time.Second, 5*time.Millisecond)
}

func TestMediaPauseIdempotent(t *testing.T) {
	el := newFakeMediaElement()
	rec := eventRecorder{}
	b := newMedia(el, rec.events(), testSuppressWindow)
	defer b.Close()

	b.Pause()
	b.Pause()
	waitSuppressWindow()

	_, pauses, _ := rec.counts()
	assert.Zero(t, pauses)
	assert.False(t, b.IsPlaying())
}

func TestMediaErrorSurfaced(t *testing.T) {
	el := newFakeMediaElement()
	rec := eventRecorder{}
	b := newMedia(el, rec.events(), testSuppressWindow)
	defer b.Close()

	el.emit(MediaEvent{Kind: MediaEventError, Err: &MediaError{Kind: MediaErrorNetwork, Detail: "CORS"}})

	assert.Eventually(t, func() bool { return len(rec.errors()) == 1 }, time.Second, 5*time.Millisecond)

	var mediaErr *MediaError
	require.True(t, errors.As(rec.errors()[0], &mediaErr))
	assert.Equal(t, MediaErrorNetwork, mediaErr.Kind)
}
