// Package session is the identity collaborator: it persists the
// signed-in owner id in the state directory and emits sign-in/sign-out
// transitions. Authentication protocol internals (how the owner id was
// obtained) are outside this package.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	stdsync "sync"

	"github.com/stikie/stikie/pkg/adapters/statefile"
	"github.com/stikie/stikie/pkg/core"
)

type persisted struct {
	OwnerID string `json:"ownerId"`
}

// Manager implements core.SessionSource backed by a session file.
type Manager struct {
	mu      stdsync.Mutex
	ownerID string
	dir     string
	logger  *slog.Logger
	events  chan core.SessionEvent
}

var _ core.SessionSource = (*Manager)(nil)

// NewManager loads any persisted session from dir.
func NewManager(dir string, logger *slog.Logger) (*Manager, error) {
	m := &Manager{
		dir:    dir,
		logger: logger,
		events: make(chan core.SessionEvent, 4),
	}

	data, err := os.ReadFile(m.path())
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	m.ownerID = p.OwnerID
	return m, nil
}

func (m *Manager) path() string {
	return filepath.Join(m.dir, statefile.SessionFile)
}

// OwnerID returns the authenticated owner id, or false when anonymous.
func (m *Manager) OwnerID() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ownerID, m.ownerID != ""
}

// Sessions returns the channel of session transitions.
func (m *Manager) Sessions() <-chan core.SessionEvent {
	return m.events
}

// SignIn persists the owner id and emits a sign-in event. Owner ids
// come from the external identity provider and must be UUIDs.
func (m *Manager) SignIn(ownerID string) error {
	if !core.IsCanonicalID(ownerID) {
		return fmt.Errorf("owner id must be a UUID, got %q", ownerID)
	}

	m.mu.Lock()
	m.ownerID = ownerID
	err := m.persistLocked()
	m.mu.Unlock()
	if err != nil {
		return err
	}

	if m.logger != nil {
		m.logger.Info("signed in", "owner", ownerID)
	}
	m.emit(core.SessionEvent{Type: core.SessionSignIn, OwnerID: ownerID})
	return nil
}

// SignOut removes the persisted session and emits a sign-out event.
// A no-op when already anonymous.
func (m *Manager) SignOut() error {
	m.mu.Lock()
	owner := m.ownerID
	if owner == "" {
		m.mu.Unlock()
		return nil
	}
	m.ownerID = ""
	err := os.Remove(m.path())
	m.mu.Unlock()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	if m.logger != nil {
		m.logger.Info("signed out", "owner", owner)
	}
	m.emit(core.SessionEvent{Type: core.SessionSignOut, OwnerID: owner})
	return nil
}

func (m *Manager) persistLocked() error {
	data, err := json.Marshal(persisted{OwnerID: m.ownerID})
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (m *Manager) emit(ev core.SessionEvent) {
	select {
	case m.events <- ev:
	default:
		if m.logger != nil {
			m.logger.Warn("session event dropped, no subscriber", "type", string(ev.Type))
		}
	}
}
