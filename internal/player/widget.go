package player

import (
	"context"
	"time"
)

type WidgetState int

const (
	WidgetStateUnstarted WidgetState = iota
	WidgetStatePlaying
	WidgetStatePaused
	WidgetStateBuffering
	WidgetStateEnded
)

type WidgetEventKind int

const (
	WidgetEventPlaying WidgetEventKind = iota
	WidgetEventPaused
	WidgetEventSeeked
	WidgetEventEnded
	WidgetEventError
)

type WidgetEvent struct {
	Kind    WidgetEventKind
	Seconds float64
	Err     error
}

// WidgetDriver is the control surface of an embedded platform player.
// Commands are fire-and-forget; the widget reports the resulting state
// transitions asynchronously on Events, indistinguishable from
// user-triggered ones. The events channel closes when the driver closes.
type WidgetDriver interface {
	PlayVideo()
	PauseVideo()
	SeekTo(seconds float64)
	CurrentTime() float64
	PlayerState() WidgetState
	Events() <-chan WidgetEvent
	Close() error
}

type widgetBackend struct {
	driver WidgetDriver
	events Events
	sup    *suppressor
	done   chan struct{}
}

// NewWidget wraps an embedded platform widget. Because the widget reports
// every state transition asynchronously, play and pause commands arm the
// suppressor too, not only seeks.
func NewWidget(driver WidgetDriver, events Events) *widgetBackend {
	return newWidget(driver, events, defaultSuppressWindow)
}

func newWidget(driver WidgetDriver, events Events, suppressWindow time.Duration) *widgetBackend {
	b := widgetBackend{
		driver: driver,
		events: events,
		sup:    newSuppressor(suppressWindow),
		done:   make(chan struct{}),
	}
	go b.pump()

	return &b
}

func (b *widgetBackend) Play(_ context.Context) error {
	b.sup.arm()
	b.driver.PlayVideo()

	// autoplay negotiation is the widget's own business
	return nil
}

func (b *widgetBackend) Pause() {
	b.sup.arm()
	b.driver.PauseVideo()
}

func (b *widgetBackend) Seek(toSeconds float64) {
	b.sup.arm()
	b.driver.SeekTo(toSeconds)
}

func (b *widgetBackend) CurrentTime() float64 {
	return b.driver.CurrentTime()
}

func (b *widgetBackend) IsPlaying() bool {
	return b.driver.PlayerState() == WidgetStatePlaying
}

func (b *widgetBackend) NeedsInteraction() bool {
	return false
}

func (b *widgetBackend) StartGesture(_ context.Context) error {
	return nil
}

func (b *widgetBackend) Close() {
	select {
	case <-b.done:
	default:
		close(b.done)
	}
	b.driver.Close()
}

func (b *widgetBackend) pump() {
	for {
		select {
		case <-b.done:
			return
		case ev, ok := <-b.driver.Events():
			if !ok {
				return
			}

			if ev.Kind == WidgetEventError {
				b.events.error(ev.Err)
				continue
			}

			if b.sup.active() {
				continue
			}

			switch ev.Kind {
			case WidgetEventPlaying:
				b.events.localPlay()
			case WidgetEventPaused, WidgetEventEnded:
				b.events.localPause()
			case WidgetEventSeeked:
				b.events.localSeek(ev.Seconds)
			}
		}
	}
}
