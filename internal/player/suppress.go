package player

import (
	"sync"
	"time"
)

const defaultSuppressWindow = 250 * time.Millisecond

// suppressor inhibits local-event notifications while a programmatic
// playback change is in flight. Armed right before the programmatic call,
// expired shortly after, so the surface events the call provokes are never
// mistaken for user actions and re-broadcast.
type suppressor struct {
	mu     sync.Mutex
	window time.Duration
	until  time.Time
}

func newSuppressor(window time.Duration) *suppressor {
	if window <= 0 {
		window = defaultSuppressWindow
	}

	return &suppressor{window: window}
}

func (s *suppressor) arm() {
	s.mu.Lock()
	s.until = time.Now().Add(s.window)
	s.mu.Unlock()
}

func (s *suppressor) active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return time.Now().Before(s.until)
}
