// Package statefile persists board state as independently keyed JSON
// files in a single directory. Every write is atomic (temp file +
// rename) so a crash mid-write never leaves a torn state file.
package statefile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/stikie/stikie/pkg/core"
)

// State file names inside the state directory.
const (
	NotesFile    = "notes.json"
	CanvasFile   = "canvas.json"
	SettingsFile = "settings.json"
	QueueFile    = "sync-queue.json"
	SessionFile  = "session.json"
)

// Store reads and writes the state files under Dir.
type Store struct {
	Dir    string
	Logger *slog.Logger
}

// New creates the state directory if needed and returns a Store.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &Store{Dir: dir, Logger: logger}, nil
}

// ReadNotes loads the note collection, migrating older persisted
// shapes field-by-field. A missing file is an empty collection.
func (s *Store) ReadNotes() ([]core.Note, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, NotesFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read notes file: %w", err)
	}
	return core.ParseNotes(data, time.Now().UnixMilli())
}

// WriteNotes persists the full note collection.
func (s *Store) WriteNotes(notes []core.Note) error {
	if notes == nil {
		notes = []core.Note{}
	}
	return s.writeJSON(NotesFile, notes)
}

// ReadViewport loads the canvas pan/zoom state.
func (s *Store) ReadViewport() (core.Viewport, error) {
	vp := core.DefaultViewport()
	err := s.readJSON(CanvasFile, &vp)
	if os.IsNotExist(err) {
		return core.DefaultViewport(), nil
	}
	if err != nil {
		return core.DefaultViewport(), err
	}
	if vp.Zoom == 0 {
		vp.Zoom = 1
	}
	return vp, nil
}

// WriteViewport persists the canvas pan/zoom state.
func (s *Store) WriteViewport(vp core.Viewport) error {
	return s.writeJSON(CanvasFile, vp)
}

// ReadSettings loads user customization settings.
func (s *Store) ReadSettings() (core.Settings, error) {
	var cfg core.Settings
	err := s.readJSON(SettingsFile, &cfg)
	if os.IsNotExist(err) {
		return core.Settings{}, nil
	}
	return cfg, err
}

// WriteSettings persists user customization settings.
func (s *Store) WriteSettings(cfg core.Settings) error {
	return s.writeJSON(SettingsFile, cfg)
}

// ReadQueue loads the durable sync queue. A missing file is an empty
// queue.
func (s *Store) ReadQueue() ([]core.QueueEntry, error) {
	var entries []core.QueueEntry
	err := s.readJSON(QueueFile, &entries)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return entries, err
}

// WriteQueue rewrites the durable sync queue in full. The queue is a
// single read-modify-write resource; there is no partial-update API.
func (s *Store) WriteQueue(entries []core.QueueEntry) error {
	if entries == nil {
		entries = []core.QueueEntry{}
	}
	return s.writeJSON(QueueFile, entries)
}

func (s *Store) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (s *Store) writeJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", name, err)
	}
	path := filepath.Join(s.Dir, name)
	if s.Logger != nil {
		s.Logger.Debug("writing state file", "path", path, "bytes", len(data))
	}
	if err := writeFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
