package sync

import (
	"context"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/stikie/stikie/pkg/core"
)

// DefaultDebounce is the coalescing window for content-edit pushes.
const DefaultDebounce = 500 * time.Millisecond

// NoteSource supplies the current state of a note by id. The dispatcher
// reads the note at push time, not at schedule time, so content typed
// during a debounce window is included in the eventual push.
type NoteSource interface {
	Note(id string) (core.Note, bool)
	Notes() []core.Note
}

// Dispatcher decides when and how urgently note mutations are pushed to
// the remote store. It owns the per-note debounce timers and funnels
// every remote failure into the durable queue. It has no durable state
// of its own. All push operations are no-ops when there is no
// authenticated owner.
type Dispatcher struct {
	mu       stdsync.Mutex
	timers   map[string]*time.Timer
	inflight stdsync.WaitGroup

	source   NoteSource
	remote   core.Remote
	queue    *Queue
	identity core.Identity
	logger   *slog.Logger
	delay    time.Duration
}

// DispatcherConfig wires a Dispatcher.
type DispatcherConfig struct {
	Source   NoteSource
	Remote   core.Remote
	Queue    *Queue
	Identity core.Identity
	Logger   *slog.Logger
	// Debounce defaults to DefaultDebounce when zero.
	Debounce time.Duration
}

// NewDispatcher returns a dispatcher with no pending timers.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	delay := cfg.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Dispatcher{
		timers:   make(map[string]*time.Timer),
		source:   cfg.Source,
		remote:   cfg.Remote,
		queue:    cfg.Queue,
		identity: cfg.Identity,
		logger:   cfg.Logger,
		delay:    delay,
	}
}

// PushNow pushes the current state of the note asynchronously. Absent
// notes and anonymous sessions are silent no-ops.
func (d *Dispatcher) PushNow(id string) {
	if _, ok := d.identity.OwnerID(); !ok {
		return
	}
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		d.push(context.Background(), id)
	}()
}

// PushDebounced schedules a push after the debounce window, cancelling
// any pending timer for the same note id. The note state is read when
// the timer fires, so the last scheduled push for an id wins with the
// latest content.
func (d *Dispatcher) PushDebounced(id string) {
	if _, ok := d.identity.OwnerID(); !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[id]; ok && t.Stop() {
		d.inflight.Done()
	}
	d.inflight.Add(1)
	d.timers[id] = time.AfterFunc(d.delay, func() {
		defer d.inflight.Done()
		d.mu.Lock()
		delete(d.timers, id)
		d.mu.Unlock()
		d.push(context.Background(), id)
	})
}

// PushDelete pushes a remote delete asynchronously, enqueueing a delete
// entry on failure.
func (d *Dispatcher) PushDelete(id string) {
	if _, ok := d.identity.OwnerID(); !ok {
		return
	}
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		if err := d.remote.Delete(context.Background(), id); err != nil {
			if d.logger != nil {
				d.logger.Debug("remote delete failed, queueing", "note", id, "error", err)
			}
			_ = d.queue.Enqueue(core.QueueEntry{Kind: core.OpDelete, NoteID: id})
		}
	}()
}

// PushBatch pushes multiple notes in one batched upsert. On failure it
// falls back to one queue entry per note, so a later drain retries them
// independently.
func (d *Dispatcher) PushBatch(ids []string) {
	owner, ok := d.identity.OwnerID()
	if !ok {
		return
	}
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()

		var notes []core.Note
		for _, id := range ids {
			if n, ok := d.source.Note(id); ok {
				notes = append(notes, n)
			}
		}
		if len(notes) == 0 {
			return
		}
		if err := d.remote.BatchUpsert(context.Background(), notes, owner); err != nil {
			if d.logger != nil {
				d.logger.Debug("batch push failed, queueing per note",
					"count", len(notes), "error", err)
			}
			for i := range notes {
				n := notes[i]
				_ = d.queue.Enqueue(core.QueueEntry{
					Kind: core.OpUpsert, NoteID: n.ID, Payload: &n,
				})
			}
		}
	}()
}

// push looks up the note and owner at fire time and upserts, enqueueing
// on failure. A note deleted meanwhile, or a session signed out
// meanwhile, turns the push into a no-op.
func (d *Dispatcher) push(ctx context.Context, id string) {
	owner, ok := d.identity.OwnerID()
	if !ok {
		return
	}
	note, ok := d.source.Note(id)
	if !ok {
		return
	}
	if err := d.remote.Upsert(ctx, note, owner); err != nil {
		if d.logger != nil {
			d.logger.Debug("remote upsert failed, queueing", "note", id, "error", err)
		}
		_ = d.queue.Enqueue(core.QueueEntry{
			Kind: core.OpUpsert, NoteID: id, Payload: &note,
		})
	}
}

// Flush fires every pending debounce timer early and waits for all
// in-flight pushes to settle. Short-lived callers (the CLI) flush
// before exiting so a debounced content edit is never lost with the
// process.
func (d *Dispatcher) Flush(ctx context.Context) error {
	d.mu.Lock()
	for id, t := range d.timers {
		if t.Stop() {
			delete(d.timers, id)
			go func(id string) {
				defer d.inflight.Done()
				d.push(context.Background(), id)
			}(id)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
