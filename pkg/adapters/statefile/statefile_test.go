package statefile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stikie/stikie/pkg/adapters/statefile"
	"github.com/stikie/stikie/pkg/core"
)

func newStore(t *testing.T) *statefile.Store {
	t.Helper()
	s, err := statefile.New(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	_, err := statefile.New(dir, nil)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNotes_RoundTrip(t *testing.T) {
	s := newStore(t)

	notes := []core.Note{
		{ID: core.NewID(), Content: "first", Color: core.ColorYellow, Width: 220, Height: 180, CreatedAt: 1, UpdatedAt: 1},
		{ID: core.NewID(), Content: "second", Color: core.ColorBlue, Pinned: true, Width: 220, Height: 180, CreatedAt: 2, UpdatedAt: 2},
	}
	require.NoError(t, s.WriteNotes(notes))

	loaded, err := s.ReadNotes()
	require.NoError(t, err)
	assert.Equal(t, notes, loaded)
}

func TestReadNotes_MissingFileIsEmptyBoard(t *testing.T) {
	s := newStore(t)
	notes, err := s.ReadNotes()
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestReadNotes_MigratesOlderShape(t *testing.T) {
	s := newStore(t)

	// A file written by an earlier version, missing size and timestamps.
	old := []byte(`[{"id":"xk9f2","content":"legacy","color":"pink","x":5,"y":6}]`)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, statefile.NotesFile), old, 0644))

	notes, err := s.ReadNotes()
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "xk9f2", notes[0].ID)
	assert.Equal(t, core.DefaultNoteWidth, notes[0].Width)
	assert.Equal(t, core.DefaultNoteHeight, notes[0].Height)
	assert.NotZero(t, notes[0].CreatedAt)
}

func TestViewport_RoundTripAndZoomBackfill(t *testing.T) {
	s := newStore(t)

	// Missing file falls back to the default viewport.
	vp, err := s.ReadViewport()
	require.NoError(t, err)
	assert.Equal(t, core.DefaultViewport(), vp)

	require.NoError(t, s.WriteViewport(core.Viewport{X: -120, Y: 40, Zoom: 1.5}))
	vp, err = s.ReadViewport()
	require.NoError(t, err)
	assert.Equal(t, core.Viewport{X: -120, Y: 40, Zoom: 1.5}, vp)

	// A canvas file persisted before zoom existed gets zoom backfilled.
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, statefile.CanvasFile), []byte(`{"x":10,"y":20}`), 0644))
	vp, err = s.ReadViewport()
	require.NoError(t, err)
	assert.Equal(t, 1.0, vp.Zoom)
}

func TestQueue_RoundTrip(t *testing.T) {
	s := newStore(t)

	note := core.Note{ID: core.NewID(), Content: "queued"}
	entries := []core.QueueEntry{
		{Kind: core.OpUpsert, NoteID: note.ID, Payload: &note, Timestamp: 100},
		{Kind: core.OpDelete, NoteID: "gone", Timestamp: 200},
	}
	require.NoError(t, s.WriteQueue(entries))

	loaded, err := s.ReadQueue()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, entries[0].NoteID, loaded[0].NoteID)
	require.NotNil(t, loaded[0].Payload)
	assert.Equal(t, "queued", loaded[0].Payload.Content)
	assert.Nil(t, loaded[1].Payload)
}

func TestReadQueue_MissingFileIsEmpty(t *testing.T) {
	s := newStore(t)
	entries, err := s.ReadQueue()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSettings_RoundTrip(t *testing.T) {
	s := newStore(t)

	cfg, err := s.ReadSettings()
	require.NoError(t, err)
	assert.False(t, cfg.DarkMode)

	require.NoError(t, s.WriteSettings(core.Settings{DarkMode: true}))
	cfg, err = s.ReadSettings()
	require.NoError(t, err)
	assert.True(t, cfg.DarkMode)
}

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.WriteNotes([]core.Note{{ID: core.NewID()}}))

	entries, err := os.ReadDir(s.Dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), statefile.TempFilePrefix)
	}
}
