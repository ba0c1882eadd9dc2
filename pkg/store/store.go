// Package store holds the in-memory source of truth for the note
// collection. Every mutation writes through to durable local storage
// before any remote push is scheduled; remote pushes are handed to a
// Scheduler and never block or fail a local mutation.
package store

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/stikie/stikie/pkg/core"
)

// Scheduler receives push intents from the store. A nil Scheduler means
// local-only mode: mutations persist locally and nothing is pushed.
type Scheduler interface {
	// PushNow pushes the current state of a note immediately.
	PushNow(id string)

	// PushDebounced coalesces rapid pushes for the same note id into
	// one, using the latest note state at fire time.
	PushDebounced(id string)

	// PushDelete pushes a remote delete for a note id.
	PushDelete(id string)

	// PushBatch pushes multiple notes in one batched call.
	PushBatch(ids []string)
}

// Persister is the durable local storage the store writes through to.
type Persister interface {
	ReadNotes() ([]core.Note, error)
	WriteNotes([]core.Note) error
	ReadViewport() (core.Viewport, error)
	WriteViewport(core.Viewport) error
}

// UndoOp marks how a note left the live collection.
type UndoOp string

const (
	UndoArchived UndoOp = "archived"
	UndoDeleted  UndoOp = "deleted"
)

type undoEntry struct {
	note  core.Note
	index int
	op    UndoOp
}

// Update is a partial note mutation. Nil fields are left untouched.
type Update struct {
	Content *string
	Color   *core.NoteColor
	X       *float64
	Y       *float64
	Width   *float64
	Height  *float64
}

// Store is the authoritative note collection plus board-adjacent
// transient state (viewport, selection, search). All access goes
// through its mutation API; there is no direct field access.
type Store struct {
	mu        sync.Mutex
	notes     []core.Note
	viewport  core.Viewport
	undo      []undoEntry
	persister Persister
	scheduler Scheduler
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	viewW     float64
	viewH     float64

	searchQuery string
	selectedID  string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides the id generator.
func WithIDFunc(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithViewSize sets the reference view size used for smart placement
// and layout centering.
func WithViewSize(w, h float64) Option {
	return func(s *Store) { s.viewW, s.viewH = w, h }
}

// New loads the persisted collection and viewport and returns a ready
// store. Attach a Scheduler afterwards with SetScheduler; until then
// the store runs in local-only mode.
func New(p Persister, opts ...Option) (*Store, error) {
	s := &Store{
		persister: p,
		now:       time.Now,
		newID:     core.NewID,
		viewW:     defaultViewWidth,
		viewH:     defaultViewHeight,
	}
	for _, opt := range opts {
		opt(s)
	}

	notes, err := p.ReadNotes()
	if err != nil {
		return nil, err
	}
	vp, err := p.ReadViewport()
	if err != nil {
		return nil, err
	}
	s.notes = notes
	s.viewport = vp
	return s, nil
}

// SetScheduler attaches the push scheduler. Called once during wiring,
// after the scheduler has been constructed with this store as its note
// source.
func (s *Store) SetScheduler(sched Scheduler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduler = sched
}

// nowMillis returns the current time in epoch milliseconds.
func (s *Store) nowMillis() int64 {
	return s.now().UnixMilli()
}

// persistLocked writes the full collection through to durable storage.
// The in-memory mutation stands even if persistence fails; the error is
// logged and surfaced to the caller.
func (s *Store) persistLocked() error {
	err := s.persister.WriteNotes(s.notes)
	if err != nil && s.logger != nil {
		s.logger.Warn("failed to persist notes", "error", err)
	}
	return err
}

func (s *Store) indexOf(id string) int {
	for i := range s.notes {
		if s.notes[i].ID == id {
			return i
		}
	}
	return -1
}

// AddNote creates a note with defaults at the given position, or at a
// smart position near existing notes when at is nil. Returns the new id
// and schedules an immediate push.
func (s *Store) AddNote(at *core.Point) (string, error) {
	s.mu.Lock()
	var pos core.Point
	if at != nil {
		pos = *at
	} else {
		pos = s.smartPositionLocked()
	}
	now := s.nowMillis()
	id := s.newID()
	s.notes = append(s.notes, core.Note{
		ID:        id,
		Content:   "",
		Color:     core.ColorYellow,
		X:         pos.X,
		Y:         pos.Y,
		Width:     core.DefaultNoteWidth,
		Height:    core.DefaultNoteHeight,
		CreatedAt: now,
		UpdatedAt: now,
	})
	s.selectedID = id
	err := s.persistLocked()
	sched := s.scheduler
	s.mu.Unlock()

	if sched != nil {
		sched.PushNow(id)
	}
	return id, err
}

// smartPositionLocked offsets from the last note, falling back to a
// jittered viewport center when that would overlap.
func (s *Store) smartPositionLocked() core.Point {
	centerX := (-s.viewport.X + s.viewW/2) / s.viewport.Zoom
	centerY := (-s.viewport.Y + s.viewH/2) / s.viewport.Zoom

	if len(s.notes) == 0 {
		return core.Point{X: centerX - 100, Y: centerY - 75}
	}

	last := s.notes[len(s.notes)-1]
	newX := last.X + 30
	newY := last.Y + 30

	for _, n := range s.notes {
		if abs(n.X-newX) < 20 && abs(n.Y-newY) < 20 {
			newX = centerX - 100 + (rand.Float64()-0.5)*200
			newY = centerY - 75 + (rand.Float64()-0.5)*200
			break
		}
	}
	return core.Point{X: newX, Y: newY}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// UpdateNote merges the non-nil fields of upd into the note and bumps
// its updated timestamp. A content change schedules a debounced push;
// any other change pushes immediately.
func (s *Store) UpdateNote(id string, upd Update) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i == -1 {
		s.mu.Unlock()
		return core.ErrNotFound
	}
	n := &s.notes[i]
	if upd.Content != nil {
		n.Content = *upd.Content
	}
	if upd.Color != nil {
		n.Color = *upd.Color
	}
	if upd.X != nil {
		n.X = *upd.X
	}
	if upd.Y != nil {
		n.Y = *upd.Y
	}
	if upd.Width != nil {
		n.Width = max(core.MinNoteWidth, *upd.Width)
	}
	if upd.Height != nil {
		n.Height = max(core.MinNoteHeight, *upd.Height)
	}
	n.UpdatedAt = s.nowMillis()
	err := s.persistLocked()
	sched := s.scheduler
	contentChanged := upd.Content != nil
	s.mu.Unlock()

	if sched != nil {
		if contentChanged {
			sched.PushDebounced(id)
		} else {
			sched.PushNow(id)
		}
	}
	return err
}

// MoveNote repositions a note. Immediate push.
func (s *Store) MoveNote(id string, x, y float64) error {
	return s.UpdateNote(id, Update{X: &x, Y: &y})
}

// ResizeNote resizes a note, clamped to the minimum size. Immediate
// push.
func (s *Store) ResizeNote(id string, width, height float64) error {
	return s.UpdateNote(id, Update{Width: &width, Height: &height})
}

// CycleColor advances a note through the palette. Immediate push.
func (s *Store) CycleColor(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i == -1 {
		s.mu.Unlock()
		return core.ErrNotFound
	}
	s.notes[i].Color = core.NextColor(s.notes[i].Color)
	s.notes[i].UpdatedAt = s.nowMillis()
	err := s.persistLocked()
	sched := s.scheduler
	s.mu.Unlock()

	if sched != nil {
		sched.PushNow(id)
	}
	return err
}

// Archive soft-deletes a note: it stays in the collection with the
// archived flag set and is forcibly unpinned. The pre-archive snapshot
// goes on the undo stack. Immediate push.
func (s *Store) Archive(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i == -1 {
		s.mu.Unlock()
		return core.ErrNotFound
	}
	snapshot := s.notes[i]
	at := s.nowMillis()
	s.notes[i].Archived = true
	s.notes[i].ArchivedAt = &at
	s.notes[i].Pinned = false
	s.undo = append(s.undo, undoEntry{note: snapshot, index: i, op: UndoArchived})
	if s.selectedID == id {
		s.selectedID = ""
	}
	err := s.persistLocked()
	sched := s.scheduler
	s.mu.Unlock()

	if sched != nil {
		sched.PushNow(id)
	}
	return err
}

// UndoDelete pops the undo stack. An archived entry is un-archived in
// place; a permanently deleted entry is re-inserted at its original
// index. Returns nil when the stack is empty. The restored note is
// pushed immediately.
func (s *Store) UndoDelete() (*core.Note, error) {
	s.mu.Lock()
	if len(s.undo) == 0 {
		s.mu.Unlock()
		return nil, nil
	}
	last := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]

	var restored core.Note
	switch last.op {
	case UndoArchived:
		i := s.indexOf(last.note.ID)
		if i != -1 {
			s.notes[i].Archived = false
			s.notes[i].ArchivedAt = nil
			restored = s.notes[i]
		} else {
			// The archived note was purged meanwhile; re-insert the snapshot.
			restored = last.note
			restored.Archived = false
			restored.ArchivedAt = nil
			s.notes = append(s.notes, restored)
		}
	default:
		restored = last.note
		i := min(last.index, len(s.notes))
		s.notes = append(s.notes[:i], append([]core.Note{restored}, s.notes[i:]...)...)
	}
	err := s.persistLocked()
	sched := s.scheduler
	s.mu.Unlock()

	if sched != nil {
		sched.PushNow(restored.ID)
	}
	return &restored, err
}

// RestoreNote un-archives a note without touching the undo stack.
// Immediate push.
func (s *Store) RestoreNote(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i == -1 {
		s.mu.Unlock()
		return core.ErrNotFound
	}
	s.notes[i].Archived = false
	s.notes[i].ArchivedAt = nil
	err := s.persistLocked()
	sched := s.scheduler
	s.mu.Unlock()

	if sched != nil {
		sched.PushNow(id)
	}
	return err
}

// TogglePin flips a note between canvas-space and viewport-fixed
// positioning, converting its coordinates with the current pan/zoom.
// Pinning beyond the cap is refused with ErrPinLimit and nothing is
// mutated. Archived notes are ignored. Immediate push on success.
func (s *Store) TogglePin(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i == -1 {
		s.mu.Unlock()
		return core.ErrNotFound
	}
	n := &s.notes[i]
	if n.Archived {
		s.mu.Unlock()
		return nil
	}

	if !n.Pinned {
		if s.pinnedCountLocked() >= core.MaxPinnedNotes {
			s.mu.Unlock()
			return core.ErrPinLimit
		}
		// canvas -> screen
		n.X = n.X*s.viewport.Zoom + s.viewport.X
		n.Y = n.Y*s.viewport.Zoom + s.viewport.Y
		n.Pinned = true
	} else {
		// screen -> canvas
		n.X = (n.X - s.viewport.X) / s.viewport.Zoom
		n.Y = (n.Y - s.viewport.Y) / s.viewport.Zoom
		n.Pinned = false
	}
	n.UpdatedAt = s.nowMillis()
	err := s.persistLocked()
	sched := s.scheduler
	s.mu.Unlock()

	if sched != nil {
		sched.PushNow(id)
	}
	return err
}

func (s *Store) pinnedCountLocked() int {
	count := 0
	for _, n := range s.notes {
		if n.Pinned && !n.Archived {
			count++
		}
	}
	return count
}

// PinnedCount returns how many live notes are pinned.
func (s *Store) PinnedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pinnedCountLocked()
}

// PermanentlyDelete removes a note from the collection entirely and
// records it on the undo stack. Schedules a remote delete.
func (s *Store) PermanentlyDelete(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i == -1 {
		s.mu.Unlock()
		return core.ErrNotFound
	}
	s.undo = append(s.undo, undoEntry{note: s.notes[i], index: i, op: UndoDeleted})
	s.notes = append(s.notes[:i], s.notes[i+1:]...)
	if s.selectedID == id {
		s.selectedID = ""
	}
	err := s.persistLocked()
	sched := s.scheduler
	s.mu.Unlock()

	if sched != nil {
		sched.PushDelete(id)
	}
	return err
}

// ClearArchive removes every archived note in one batch, scheduling one
// remote delete per removed id.
func (s *Store) ClearArchive() error {
	s.mu.Lock()
	var kept []core.Note
	var removed []string
	for _, n := range s.notes {
		if n.Archived {
			removed = append(removed, n.ID)
		} else {
			kept = append(kept, n)
		}
	}
	s.notes = kept
	err := s.persistLocked()
	sched := s.scheduler
	s.mu.Unlock()

	if sched != nil {
		for _, id := range removed {
			sched.PushDelete(id)
		}
	}
	return err
}

// DuplicateNote clones a live note with a new id, offset +30,+30 in
// canvas space, never pinned, fresh timestamps. Returns the new id and
// pushes it immediately.
func (s *Store) DuplicateNote(id string) (string, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i == -1 || s.notes[i].Archived {
		s.mu.Unlock()
		return "", core.ErrNotFound
	}
	source := s.notes[i]

	baseX, baseY := source.X, source.Y
	if source.Pinned {
		// screen -> canvas before offsetting
		baseX = (source.X - s.viewport.X) / s.viewport.Zoom
		baseY = (source.Y - s.viewport.Y) / s.viewport.Zoom
	}
	now := s.nowMillis()
	dup := source
	dup.ID = s.newID()
	dup.X = baseX + 30
	dup.Y = baseY + 30
	dup.Pinned = false
	dup.CreatedAt = now
	dup.UpdatedAt = now
	s.notes = append(s.notes, dup)
	s.selectedID = dup.ID
	err := s.persistLocked()
	sched := s.scheduler
	s.mu.Unlock()

	if sched != nil {
		sched.PushNow(dup.ID)
	}
	return dup.ID, err
}

// Arrange repositions all live, unpinned notes with the given layout
// and batch-pushes them.
func (s *Store) Arrange(kind LayoutKind) error {
	s.mu.Lock()
	var active []int
	for i, n := range s.notes {
		if !n.Archived && !n.Pinned {
			active = append(active, i)
		}
	}
	if len(active) == 0 {
		s.mu.Unlock()
		return nil
	}
	if kind == LayoutTimeline {
		sort.SliceStable(active, func(a, b int) bool {
			return s.notes[active[a]].CreatedAt < s.notes[active[b]].CreatedAt
		})
	}
	positions := layoutPositions(kind, len(active), s.viewport, s.viewW, s.viewH)
	now := s.nowMillis()
	ids := make([]string, 0, len(active))
	for j, i := range active {
		s.notes[i].X = positions[j].X
		s.notes[i].Y = positions[j].Y
		s.notes[i].UpdatedAt = now
		ids = append(ids, s.notes[i].ID)
	}
	err := s.persistLocked()
	sched := s.scheduler
	s.mu.Unlock()

	if sched != nil {
		sched.PushBatch(ids)
	}
	return err
}

// ExportNotes serializes the full collection.
func (s *Store) ExportNotes() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.MarshalIndent(s.notes, "", "  ")
}

// ImportNotes replaces the entire collection with a deserialized
// snapshot, backfilling missing fields, and batch-pushes every imported
// note. On a malformed snapshot the collection is left untouched and
// ErrBadSnapshot is returned.
func (s *Store) ImportNotes(data []byte) error {
	notes, err := core.ParseNotes(data, s.nowMillis())
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.notes = notes
	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.ID)
	}
	perr := s.persistLocked()
	sched := s.scheduler
	s.mu.Unlock()

	if sched != nil && len(ids) > 0 {
		sched.PushBatch(ids)
	}
	return perr
}

// SetNotesDirectly silently replaces the collection. Used only by the
// session reconciler: the replacement is the result of a sync, not a
// cause of one, so no pushes are scheduled. Clears the undo stack.
func (s *Store) SetNotesDirectly(notes []core.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = notes
	s.undo = nil
	return s.persistLocked()
}

// ClearAllNotes wipes the collection and the undo stack. Used on
// sign-out. No pushes are scheduled.
func (s *Store) ClearAllNotes() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = nil
	s.undo = nil
	s.selectedID = ""
	return s.persistLocked()
}

// Reload re-reads the persisted collection and viewport, replacing the
// in-memory state. Used when the state files changed externally. No
// pushes are scheduled.
func (s *Store) Reload() error {
	notes, err := s.persister.ReadNotes()
	if err != nil {
		return err
	}
	vp, err := s.persister.ReadViewport()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = notes
	s.viewport = vp
	return nil
}

// Notes returns a copy of the collection.
func (s *Store) Notes() []core.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Note, len(s.notes))
	copy(out, s.notes)
	return out
}

// Note returns the current state of a single note.
func (s *Store) Note(id string) (core.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i == -1 {
		return core.Note{}, false
	}
	return s.notes[i], true
}

// SetViewport pans the canvas and persists the viewport.
func (s *Store) SetViewport(x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport.X = x
	s.viewport.Y = y
	return s.persister.WriteViewport(s.viewport)
}

// SetZoom sets the zoom factor, clamped to [0.5, 2.0], and persists the
// viewport.
func (s *Store) SetZoom(zoom float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport.Zoom = min(2.0, max(0.5, zoom))
	return s.persister.WriteViewport(s.viewport)
}

// Viewport returns the current canvas pan/zoom state.
func (s *Store) Viewport() core.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// SetSearchQuery and SetSelectedNote track transient board state.
func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = q
}

// SearchQuery returns the transient search query.
func (s *Store) SearchQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchQuery
}

// SetSelectedNote tracks the selected note id ("" for none).
func (s *Store) SetSelectedNote(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = id
}

// SelectedNote returns the selected note id, or "".
func (s *Store) SelectedNote() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}
