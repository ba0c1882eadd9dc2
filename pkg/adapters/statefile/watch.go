package statefile

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// ChangeEvent reports an external modification to a state file.
type ChangeEvent struct {
	// File is the state file name relative to the directory,
	// e.g. "notes.json".
	File      string
	Timestamp int64
}

const watchDebounce = 50 * time.Millisecond

// Watch observes the state directory and emits a ChangeEvent for every
// state file whose name matches pattern (doublestar glob, e.g. "*.json"
// or NotesFile). Rapid bursts for the same file are debounced. The
// channel closes when ctx is cancelled.
//
// Atomic writes land as a rename of a temp file, so the watcher only
// reacts to Create/Write/Rename events on non-temp names.
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan ChangeEvent, error) {
	if pattern == "" {
		pattern = "*.json"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern: %s", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.Dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.Dir, err)
	}

	events := make(chan ChangeEvent, 8)
	go s.watchLoop(ctx, watcher, pattern, events)
	return events, nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, pattern string, events chan<- ChangeEvent) {
	defer close(events)
	defer watcher.Close()

	var mu sync.Mutex
	pending := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range pending {
			t.Stop()
		}
	}()

	emit := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := pending[name]; ok {
			t.Stop()
		}
		pending[name] = time.AfterFunc(watchDebounce, func() {
			mu.Lock()
			delete(pending, name)
			mu.Unlock()
			select {
			case events <- ChangeEvent{File: name, Timestamp: time.Now().Unix()}:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, TempFilePrefix) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if match, _ := doublestar.Match(pattern, name); !match {
				continue
			}
			if s.Logger != nil {
				s.Logger.Debug("state file changed", "file", name)
			}
			emit(name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if s.Logger != nil {
				s.Logger.Error("fsnotify error", "error", err)
			}
		}
	}
}
