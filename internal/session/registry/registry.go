// Package registry tracks the live sessions hosted by this process, one
// per attached UI.
package registry

import (
	"errors"
	"sync"

	"github.com/alicehocane/watch/internal/session"
)

var (
	ErrAlreadyExists = errors.New("session already exists")
	ErrNotFound      = errors.New("session not found")
)

type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

func New() *Registry {
	return &Registry{sessions: make(map[string]*session.Session)}
}

// Add rejects a second concurrent session for the same participant; one
// device profile drives one session at a time.
func (r *Registry) Add(participantID string, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[participantID]; ok {
		return ErrAlreadyExists
	}

	r.sessions[participantID] = s

	return nil
}

func (r *Registry) Remove(participantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, participantID)
}

func (r *Registry) Get(participantID string) (*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[participantID]
	if !ok {
		return nil, ErrNotFound
	}

	return s, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// CloseAll leaves every session, used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := make([]*session.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]*session.Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
