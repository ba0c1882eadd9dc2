package sync_test

import (
	"context"
	"errors"
	stdsync "sync"

	"github.com/stikie/stikie/pkg/core"
)

// memQueueStore keeps queue entries in memory.
type memQueueStore struct {
	mu      stdsync.Mutex
	entries []core.QueueEntry
	readErr error
}

func (m *memQueueStore) ReadQueue() ([]core.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	out := make([]core.QueueEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *memQueueStore) WriteQueue(entries []core.QueueEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make([]core.QueueEntry, len(entries))
	copy(m.entries, entries)
	return nil
}

// fakeRemote records calls and fails on demand.
type fakeRemote struct {
	mu      stdsync.Mutex
	upserts []core.Note
	deletes []string
	batches [][]core.Note

	fetched  []core.Note
	fetchErr error

	failIDs    map[string]bool // per-note upsert/delete failures
	failAll    bool
	failBatch  bool
	deletedAll []string
}

var errRemoteDown = errors.New("remote unreachable")

func (f *fakeRemote) FetchAll(ctx context.Context, ownerID string) ([]core.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]core.Note, len(f.fetched))
	copy(out, f.fetched)
	return out, nil
}

func (f *fakeRemote) Upsert(ctx context.Context, n core.Note, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll || f.failIDs[n.ID] {
		return errRemoteDown
	}
	f.upserts = append(f.upserts, n)
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, noteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll || f.failIDs[noteID] {
		return errRemoteDown
	}
	f.deletes = append(f.deletes, noteID)
	return nil
}

func (f *fakeRemote) BatchUpsert(ctx context.Context, notes []core.Note, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll || f.failBatch {
		return errRemoteDown
	}
	batch := make([]core.Note, len(notes))
	copy(batch, notes)
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeRemote) DeleteAllForOwner(ctx context.Context, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errRemoteDown
	}
	f.deletedAll = append(f.deletedAll, ownerID)
	return nil
}

func (f *fakeRemote) upsertIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.upserts))
	for _, n := range f.upserts {
		out = append(out, n.ID)
	}
	return out
}

// fakeIdentity is a fixed owner ("" means anonymous).
type fakeIdentity struct {
	owner string
}

func (f *fakeIdentity) OwnerID() (string, bool) {
	return f.owner, f.owner != ""
}

// mapSource serves note state from a mutable map.
type mapSource struct {
	mu    stdsync.Mutex
	notes map[string]core.Note
}

func newMapSource(notes ...core.Note) *mapSource {
	s := &mapSource{notes: make(map[string]core.Note)}
	for _, n := range notes {
		s.notes[n.ID] = n
	}
	return s
}

func (s *mapSource) set(n core.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[n.ID] = n
}

func (s *mapSource) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notes, id)
}

func (s *mapSource) Note(id string) (core.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	return n, ok
}

func (s *mapSource) Notes() []core.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, n)
	}
	return out
}

// memBoard implements sync.BoardStore in memory.
type memBoard struct {
	mu      stdsync.Mutex
	notes   []core.Note
	cleared int
}

func (b *memBoard) Notes() []core.Note {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]core.Note, len(b.notes))
	copy(out, b.notes)
	return out
}

func (b *memBoard) SetNotesDirectly(notes []core.Note) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notes = make([]core.Note, len(notes))
	copy(b.notes, notes)
	return nil
}

func (b *memBoard) ClearAllNotes() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notes = nil
	b.cleared++
	return nil
}
