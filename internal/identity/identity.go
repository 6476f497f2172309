// Package identity owns the device-local participant identity: an opaque
// id generated once and reused across rooms and sessions, plus the display
// name. It is a convention key, not a credential.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const fileName = "identity.json"

type record struct {
	ParticipantID string `json:"participant_id"`
	Username      string `json:"username"`
}

type Identity struct {
	mu   sync.RWMutex
	path string
	rec  record
}

// Load reads the persisted identity from dataDir, creating a fresh one on
// first run. Call it once at startup; the participant id is immutable for
// the process lifetime, the name changes only through Rename.
func Load(dataDir string) (*Identity, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	id := Identity{path: filepath.Join(dataDir, fileName)}

	raw, err := os.ReadFile(id.path)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &id.rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal identity: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read identity: %w", err)
	}

	if id.rec.ParticipantID == "" {
		id.rec.ParticipantID = uuid.NewString()
		if id.rec.Username == "" {
			id.rec.Username = "viewer-" + id.rec.ParticipantID[:8]
		}

		if err := id.persist(); err != nil {
			return nil, err
		}
	}

	return &id, nil
}

func (i *Identity) ParticipantID() string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return i.rec.ParticipantID
}

func (i *Identity) Username() string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return i.rec.Username
}

// Rename updates the display name and re-persists it.
func (i *Identity) Rename(username string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.rec.Username = username

	return i.persist()
}

func (i *Identity) persist() error {
	raw, err := json.MarshalIndent(i.rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	if err := os.WriteFile(i.path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write identity: %w", err)
	}

	return nil
}
