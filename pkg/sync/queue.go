// Package sync implements the offline-first synchronization engine: a
// durable retry queue for failed remote operations, a per-note
// debouncing dispatcher deciding when and how urgently mutations are
// pushed, and a session reconciler merging local notes with a newly
// authenticated owner's remote set.
package sync

import (
	"context"
	"log/slog"
	"sort"
	stdsync "sync"
	"time"

	"github.com/stikie/stikie/pkg/core"
)

// QueueStore is the durable storage backing the queue. The queue is a
// single read-modify-write resource: the full entry list is read,
// recomputed, and rewritten on every change.
type QueueStore interface {
	ReadQueue() ([]core.QueueEntry, error)
	WriteQueue([]core.QueueEntry) error
}

// Queue is the durable journal of remote operations that could not be
// completed. Entries are coalesced per (note id, kind) and replayed
// oldest-first on Drain.
type Queue struct {
	mu     stdsync.Mutex
	store  QueueStore
	remote core.Remote
	logger *slog.Logger
	now    func() time.Time
}

// NewQueue returns a queue replaying entries against remote.
func NewQueue(store QueueStore, remote core.Remote, logger *slog.Logger) *Queue {
	return &Queue{store: store, remote: remote, logger: logger, now: time.Now}
}

// SetClock overrides the time source. Test hook.
func (q *Queue) SetClock(now func() time.Time) {
	q.now = now
}

// Enqueue appends an entry, first removing any existing entry with the
// same (note id, kind) pair so only the newest intent survives.
func (q *Queue) Enqueue(entry core.QueueEntry) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := q.readLocked()
	kept := entries[:0]
	for _, e := range entries {
		if e.NoteID == entry.NoteID && e.Kind == entry.Kind {
			continue
		}
		kept = append(kept, e)
	}
	entry.Timestamp = q.now().UnixMilli()
	kept = append(kept, entry)
	if err := q.store.WriteQueue(kept); err != nil {
		if q.logger != nil {
			q.logger.Warn("failed to persist sync queue", "error", err)
		}
		return err
	}
	return nil
}

// PeekAll returns the current entries without mutating the queue.
func (q *Queue) PeekAll() []core.QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.readLocked()
}

// Clear empties the queue. Called on a successful full drain and on
// sign-out.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.WriteQueue(nil)
}

// Drain replays entries oldest-first against the remote store. Each
// entry is attempted independently; after the pass the queue holds
// exactly the entries that failed again. Drain never fails; it
// returns how many entries remain.
func (q *Queue) Drain(ctx context.Context, ownerID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := q.readLocked()
	if len(entries) == 0 {
		return 0
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Timestamp < entries[b].Timestamp
	})

	var failed []core.QueueEntry
	for _, entry := range entries {
		if err := q.replay(ctx, entry, ownerID); err != nil {
			if q.logger != nil {
				q.logger.Debug("queue entry still failing",
					"kind", string(entry.Kind), "note", entry.NoteID, "error", err)
			}
			failed = append(failed, entry)
		}
	}

	if err := q.store.WriteQueue(failed); err != nil && q.logger != nil {
		q.logger.Warn("failed to rewrite sync queue after drain", "error", err)
	}
	if q.logger != nil {
		q.logger.Info("sync queue drained",
			"attempted", len(entries), "remaining", len(failed))
	}
	return len(failed)
}

func (q *Queue) replay(ctx context.Context, entry core.QueueEntry, ownerID string) error {
	switch entry.Kind {
	case core.OpUpsert:
		if entry.Payload == nil {
			// Corrupt entry; dropping it is the only safe move.
			return nil
		}
		return q.remote.Upsert(ctx, *entry.Payload, ownerID)
	case core.OpDelete:
		return q.remote.Delete(ctx, entry.NoteID)
	default:
		return nil
	}
}

// readLocked loads the persisted entries, treating a read failure as an
// empty queue after logging it.
func (q *Queue) readLocked() []core.QueueEntry {
	entries, err := q.store.ReadQueue()
	if err != nil {
		if q.logger != nil {
			q.logger.Warn("failed to read sync queue", "error", err)
		}
		return nil
	}
	return entries
}
