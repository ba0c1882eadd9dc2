package store_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stikie/stikie/pkg/core"
	"github.com/stikie/stikie/pkg/store"
)

// memPersister implements store.Persister in memory and counts writes.
type memPersister struct {
	notes      []core.Note
	viewport   core.Viewport
	noteWrites int
	failWrites bool
}

func newMemPersister() *memPersister {
	return &memPersister{viewport: core.DefaultViewport()}
}

func (p *memPersister) ReadNotes() ([]core.Note, error) {
	out := make([]core.Note, len(p.notes))
	copy(out, p.notes)
	return out, nil
}

func (p *memPersister) WriteNotes(notes []core.Note) error {
	if p.failWrites {
		return errors.New("disk full")
	}
	p.noteWrites++
	p.notes = make([]core.Note, len(notes))
	copy(p.notes, notes)
	return nil
}

func (p *memPersister) ReadViewport() (core.Viewport, error) { return p.viewport, nil }
func (p *memPersister) WriteViewport(vp core.Viewport) error { p.viewport = vp; return nil }

// spyScheduler records push intents in order.
type spyScheduler struct {
	now       []string
	debounced []string
	deleted   []string
	batches   [][]string
}

func (s *spyScheduler) PushNow(id string)       { s.now = append(s.now, id) }
func (s *spyScheduler) PushDebounced(id string) { s.debounced = append(s.debounced, id) }
func (s *spyScheduler) PushDelete(id string)    { s.deleted = append(s.deleted, id) }
func (s *spyScheduler) PushBatch(ids []string)  { s.batches = append(s.batches, ids) }

func newTestStore(t *testing.T, p *memPersister) (*store.Store, *spyScheduler) {
	t.Helper()
	s, err := store.New(p,
		store.WithClock(func() time.Time { return time.UnixMilli(1700000000000) }),
	)
	require.NoError(t, err)
	sched := &spyScheduler{}
	s.SetScheduler(sched)
	return s, sched
}

func TestAddNote_Defaults(t *testing.T) {
	p := newMemPersister()
	s, sched := newTestStore(t, p)

	id, err := s.AddNote(&core.Point{X: 10, Y: 20})
	require.NoError(t, err)

	n, ok := s.Note(id)
	require.True(t, ok)
	assert.Equal(t, "", n.Content)
	assert.Equal(t, core.ColorYellow, n.Color)
	assert.Equal(t, 10.0, n.X)
	assert.Equal(t, 20.0, n.Y)
	assert.Equal(t, core.DefaultNoteWidth, n.Width)
	assert.Equal(t, core.DefaultNoteHeight, n.Height)
	assert.Equal(t, int64(1700000000000), n.CreatedAt)
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)

	// The new note is selected, persisted, and pushed immediately.
	assert.Equal(t, id, s.SelectedNote())
	assert.Len(t, p.notes, 1)
	assert.Equal(t, []string{id}, sched.now)
}

func TestAddNote_SmartPlacementOffsetsFromLast(t *testing.T) {
	p := newMemPersister()
	s, _ := newTestStore(t, p)

	first, err := s.AddNote(&core.Point{X: 100, Y: 100})
	require.NoError(t, err)
	second, err := s.AddNote(nil)
	require.NoError(t, err)

	a, _ := s.Note(first)
	b, _ := s.Note(second)
	assert.Equal(t, a.X+30, b.X)
	assert.Equal(t, a.Y+30, b.Y)
}

func TestUpdateNote_ContentDebounced(t *testing.T) {
	s, sched := newTestStore(t, newMemPersister())
	id, _ := s.AddNote(&core.Point{})

	content := "typing"
	require.NoError(t, s.UpdateNote(id, store.Update{Content: &content}))

	n, _ := s.Note(id)
	assert.Equal(t, "typing", n.Content)
	assert.Equal(t, []string{id}, sched.debounced)
	// Only the creation used the immediate path.
	assert.Equal(t, []string{id}, sched.now)
}

func TestUpdateNote_MovePushesImmediately(t *testing.T) {
	s, sched := newTestStore(t, newMemPersister())
	id, _ := s.AddNote(&core.Point{})

	require.NoError(t, s.MoveNote(id, 55, 66))

	n, _ := s.Note(id)
	assert.Equal(t, 55.0, n.X)
	assert.Equal(t, 66.0, n.Y)
	assert.Empty(t, sched.debounced)
	assert.Equal(t, []string{id, id}, sched.now)
}

func TestResizeNote_ClampsToMinimum(t *testing.T) {
	s, _ := newTestStore(t, newMemPersister())
	id, _ := s.AddNote(&core.Point{})

	require.NoError(t, s.ResizeNote(id, 10, 10))

	n, _ := s.Note(id)
	assert.Equal(t, core.MinNoteWidth, n.Width)
	assert.Equal(t, core.MinNoteHeight, n.Height)
}

func TestUpdateNote_NotFound(t *testing.T) {
	s, _ := newTestStore(t, newMemPersister())
	err := s.MoveNote("missing", 0, 0)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCycleColor(t *testing.T) {
	s, _ := newTestStore(t, newMemPersister())
	id, _ := s.AddNote(&core.Point{})

	require.NoError(t, s.CycleColor(id))
	n, _ := s.Note(id)
	assert.Equal(t, core.ColorPink, n.Color)
}

func TestTogglePin_LimitRefusedWithoutMutation(t *testing.T) {
	s, _ := newTestStore(t, newMemPersister())

	var ids []string
	for i := 0; i < core.MaxPinnedNotes+1; i++ {
		id, err := s.AddNote(&core.Point{X: float64(i * 100)})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	for i := 0; i < core.MaxPinnedNotes; i++ {
		require.NoError(t, s.TogglePin(ids[i]))
	}
	assert.Equal(t, core.MaxPinnedNotes, s.PinnedCount())

	extra := ids[core.MaxPinnedNotes]
	before, _ := s.Note(extra)
	err := s.TogglePin(extra)
	assert.ErrorIs(t, err, core.ErrPinLimit)

	after, _ := s.Note(extra)
	assert.Equal(t, before, after, "refused pin must not mutate the note")
	assert.Equal(t, core.MaxPinnedNotes, s.PinnedCount())
}

func TestTogglePin_ConvertsCoordinates(t *testing.T) {
	s, _ := newTestStore(t, newMemPersister())
	require.NoError(t, s.SetViewport(100, 50))
	require.NoError(t, s.SetZoom(2.0))

	id, _ := s.AddNote(&core.Point{X: 10, Y: 20})

	// canvas -> screen: x*zoom + pan
	require.NoError(t, s.TogglePin(id))
	n, _ := s.Note(id)
	assert.True(t, n.Pinned)
	assert.Equal(t, 10*2.0+100, n.X)
	assert.Equal(t, 20*2.0+50, n.Y)

	// screen -> canvas restores the original position
	require.NoError(t, s.TogglePin(id))
	n, _ = s.Note(id)
	assert.False(t, n.Pinned)
	assert.InDelta(t, 10, n.X, 1e-9)
	assert.InDelta(t, 20, n.Y, 1e-9)
}

func TestTogglePin_ArchivedIgnored(t *testing.T) {
	s, _ := newTestStore(t, newMemPersister())
	id, _ := s.AddNote(&core.Point{})
	require.NoError(t, s.Archive(id))

	require.NoError(t, s.TogglePin(id))
	n, _ := s.Note(id)
	assert.False(t, n.Pinned)
}

func TestArchive_UnpinsAndStamps(t *testing.T) {
	s, sched := newTestStore(t, newMemPersister())
	id, _ := s.AddNote(&core.Point{})
	require.NoError(t, s.TogglePin(id))

	require.NoError(t, s.Archive(id))

	n, _ := s.Note(id)
	assert.True(t, n.Archived)
	assert.False(t, n.Pinned)
	require.NotNil(t, n.ArchivedAt)
	assert.Equal(t, int64(1700000000000), *n.ArchivedAt)
	assert.Contains(t, sched.now, id)
}

func TestUndoDelete_RestoresArchivedNote(t *testing.T) {
	s, _ := newTestStore(t, newMemPersister())
	id, _ := s.AddNote(&core.Point{})
	require.NoError(t, s.Archive(id))

	restored, err := s.UndoDelete()
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, id, restored.ID)
	assert.False(t, restored.Archived)
	assert.Nil(t, restored.ArchivedAt)

	n, _ := s.Note(id)
	assert.False(t, n.Archived)
}

func TestUndoDelete_ReinsertsDeletedAtOriginalIndex(t *testing.T) {
	s, _ := newTestStore(t, newMemPersister())
	a, _ := s.AddNote(&core.Point{X: 1})
	b, _ := s.AddNote(&core.Point{X: 2})
	c, _ := s.AddNote(&core.Point{X: 3})

	require.NoError(t, s.PermanentlyDelete(b))
	require.Len(t, s.Notes(), 2)

	restored, err := s.UndoDelete()
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, b, restored.ID)

	notes := s.Notes()
	require.Len(t, notes, 3)
	assert.Equal(t, []string{a, b, c}, []string{notes[0].ID, notes[1].ID, notes[2].ID})
}

func TestUndoDelete_EmptyStack(t *testing.T) {
	s, _ := newTestStore(t, newMemPersister())
	restored, err := s.UndoDelete()
	require.NoError(t, err)
	assert.Nil(t, restored)
}

func TestPermanentlyDelete_SchedulesRemoteDelete(t *testing.T) {
	s, sched := newTestStore(t, newMemPersister())
	id, _ := s.AddNote(&core.Point{})

	require.NoError(t, s.PermanentlyDelete(id))

	_, ok := s.Note(id)
	assert.False(t, ok)
	assert.Equal(t, []string{id}, sched.deleted)
}

func TestClearArchive_DeletesEachArchivedNote(t *testing.T) {
	s, sched := newTestStore(t, newMemPersister())
	keep, _ := s.AddNote(&core.Point{})
	archivedA, _ := s.AddNote(&core.Point{})
	archivedB, _ := s.AddNote(&core.Point{})
	require.NoError(t, s.Archive(archivedA))
	require.NoError(t, s.Archive(archivedB))

	require.NoError(t, s.ClearArchive())

	notes := s.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, keep, notes[0].ID)
	assert.ElementsMatch(t, []string{archivedA, archivedB}, sched.deleted)
}

func TestDuplicateNote(t *testing.T) {
	s, _ := newTestStore(t, newMemPersister())
	id, _ := s.AddNote(&core.Point{X: 10, Y: 20})
	content := "original"
	require.NoError(t, s.UpdateNote(id, store.Update{Content: &content}))

	dupID, err := s.DuplicateNote(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, dupID)

	dup, ok := s.Note(dupID)
	require.True(t, ok)
	assert.Equal(t, "original", dup.Content)
	assert.Equal(t, 40.0, dup.X)
	assert.Equal(t, 50.0, dup.Y)
	assert.False(t, dup.Pinned)
	assert.Equal(t, dupID, s.SelectedNote())
}

func TestDuplicateNote_ArchivedRefused(t *testing.T) {
	s, _ := newTestStore(t, newMemPersister())
	id, _ := s.AddNote(&core.Point{})
	require.NoError(t, s.Archive(id))

	_, err := s.DuplicateNote(id)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestExportImport_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t, newMemPersister())
	id, _ := s.AddNote(&core.Point{X: 5, Y: 6})
	content := "round trip"
	require.NoError(t, s.UpdateNote(id, store.Update{Content: &content}))

	data, err := s.ExportNotes()
	require.NoError(t, err)

	p2 := newMemPersister()
	s2, sched2 := newTestStore(t, p2)
	require.NoError(t, s2.ImportNotes(data))

	notes := s2.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, id, notes[0].ID)
	assert.Equal(t, "round trip", notes[0].Content)
	// Imported notes are pushed in one batch.
	require.Len(t, sched2.batches, 1)
	assert.Equal(t, []string{id}, sched2.batches[0])
}

func TestImportNotes_MalformedLeavesBoardUntouched(t *testing.T) {
	s, sched := newTestStore(t, newMemPersister())
	id, _ := s.AddNote(&core.Point{})

	err := s.ImportNotes([]byte(`{"broken":`))
	assert.ErrorIs(t, err, core.ErrBadSnapshot)

	notes := s.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, id, notes[0].ID)
	assert.Empty(t, sched.batches)
}

func TestSetNotesDirectly_NoPushesAndClearsUndo(t *testing.T) {
	s, sched := newTestStore(t, newMemPersister())
	id, _ := s.AddNote(&core.Point{})
	require.NoError(t, s.Archive(id))
	pushes := len(sched.now)

	replacement := []core.Note{{ID: core.NewID(), Color: core.ColorBlue}}
	require.NoError(t, s.SetNotesDirectly(replacement))

	assert.Len(t, sched.now, pushes, "silent replace must not schedule pushes")
	restored, err := s.UndoDelete()
	require.NoError(t, err)
	assert.Nil(t, restored, "undo stack should be cleared")
}

func TestClearAllNotes(t *testing.T) {
	p := newMemPersister()
	s, _ := newTestStore(t, p)
	s.AddNote(&core.Point{})
	s.AddNote(&core.Point{})

	require.NoError(t, s.ClearAllNotes())
	assert.Empty(t, s.Notes())
	assert.Empty(t, p.notes)
	assert.Equal(t, "", s.SelectedNote())
}

func TestSetZoom_Clamped(t *testing.T) {
	s, _ := newTestStore(t, newMemPersister())

	require.NoError(t, s.SetZoom(5.0))
	assert.Equal(t, 2.0, s.Viewport().Zoom)

	require.NoError(t, s.SetZoom(0.1))
	assert.Equal(t, 0.5, s.Viewport().Zoom)

	require.NoError(t, s.SetZoom(1.3))
	assert.Equal(t, 1.3, s.Viewport().Zoom)
}

func TestMutation_PersistFailureKeepsInMemoryChange(t *testing.T) {
	p := newMemPersister()
	s, _ := newTestStore(t, p)
	id, _ := s.AddNote(&core.Point{})

	p.failWrites = true
	err := s.MoveNote(id, 99, 99)
	require.Error(t, err)

	// The move stands in memory even though the write failed.
	n, _ := s.Note(id)
	assert.Equal(t, 99.0, n.X)
}

func TestReload_ReplacesInMemoryState(t *testing.T) {
	p := newMemPersister()
	s, _ := newTestStore(t, p)
	s.AddNote(&core.Point{})

	// Another process rewrote the file.
	external := core.Note{ID: core.NewID(), Content: "external", Color: core.ColorGreen}
	p.notes = []core.Note{external}

	require.NoError(t, s.Reload())
	notes := s.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, "external", notes[0].Content)
}
