package player

import (
	"context"
	"sync"
)

type eventRecorder struct {
	mu     sync.Mutex
	plays  int
	pauses int
	seeks  []float64
	errs   []error
}

func (r *eventRecorder) events() Events {
	return Events{
		OnLocalPlay: func() {
			r.mu.Lock()
			r.plays++
			r.mu.Unlock()
		},
		OnLocalPause: func() {
			r.mu.Lock()
			r.pauses++
			r.mu.Unlock()
		},
		OnLocalSeek: func(toSeconds float64) {
			r.mu.Lock()
			r.seeks = append(r.seeks, toSeconds)
			r.mu.Unlock()
		},
		OnError: func(err error) {
			r.mu.Lock()
			r.errs = append(r.errs, err)
			r.mu.Unlock()
		},
	}
}

func (r *eventRecorder) counts() (plays, pauses, seeks int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.plays, r.pauses, len(r.seeks)
}

func (r *eventRecorder) lastSeek() (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.seeks) == 0 {
		return 0, false
	}

	return r.seeks[len(r.seeks)-1], true
}

func (r *eventRecorder) errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]error(nil), r.errs...)
}

// fakeWidget mimics an embedded widget: every command results in an async
// state report on the events channel, just like a real widget would emit.
type fakeWidget struct {
	mu      sync.Mutex
	state   WidgetState
	current float64
	ch      chan WidgetEvent
}

func newFakeWidget() *fakeWidget {
	return &fakeWidget{ch: make(chan WidgetEvent, 16)}
}

func (w *fakeWidget) PlayVideo() {
	w.mu.Lock()
	w.state = WidgetStatePlaying
	w.mu.Unlock()
	w.ch <- WidgetEvent{Kind: WidgetEventPlaying}
}

func (w *fakeWidget) PauseVideo() {
	w.mu.Lock()
	w.state = WidgetStatePaused
	w.mu.Unlock()
	w.ch <- WidgetEvent{Kind: WidgetEventPaused}
}

func (w *fakeWidget) SeekTo(seconds float64) {
	w.mu.Lock()
	w.current = seconds
	w.mu.Unlock()
	w.ch <- WidgetEvent{Kind: WidgetEventSeeked, Seconds: seconds}
}

func (w *fakeWidget) CurrentTime() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.current
}

func (w *fakeWidget) PlayerState() WidgetState {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state
}

func (w *fakeWidget) Events() <-chan WidgetEvent { return w.ch }

func (w *fakeWidget) Close() error {
	close(w.ch)
	return nil
}

// emit injects an event as if the user acted on the widget directly.
func (w *fakeWidget) emit(ev WidgetEvent) { w.ch <- ev }

type fakeMediaElement struct {
	mu           sync.Mutex
	paused       bool
	muted        bool
	current      float64
	blockAudible bool
	ch           chan MediaEvent
}

func newFakeMediaElement() *fakeMediaElement {
	return &fakeMediaElement{paused: true, ch: make(chan MediaEvent, 16)}
}

func (m *fakeMediaElement) Play(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.blockAudible && !m.muted {
		return ErrAutoplayBlocked
	}

	m.paused = false
	m.ch <- MediaEvent{Kind: MediaEventPlay}

	return nil
}

func (m *fakeMediaElement) Pause() {
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
	m.ch <- MediaEvent{Kind: MediaEventPause}
}

func (m *fakeMediaElement) SetCurrentTime(seconds float64) {
	m.mu.Lock()
	m.current = seconds
	m.mu.Unlock()
	m.ch <- MediaEvent{Kind: MediaEventSeeked, Seconds: seconds}
}

func (m *fakeMediaElement) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.current
}

func (m *fakeMediaElement) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.paused
}

func (m *fakeMediaElement) SetMuted(muted bool) {
	m.mu.Lock()
	m.muted = muted
	m.mu.Unlock()
}

func (m *fakeMediaElement) isMuted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.muted
}

func (m *fakeMediaElement) Events() <-chan MediaEvent { return m.ch }

func (m *fakeMediaElement) Close() error {
	close(m.ch)
	return nil
}

func (m *fakeMediaElement) emit(ev MediaEvent) { m.ch <- ev }
