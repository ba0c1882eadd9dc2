package core

import (
	"github.com/google/uuid"
)

// NoteColor is one of the fixed color tags a note can carry.
type NoteColor string

const (
	ColorYellow NoteColor = "yellow"
	ColorPink   NoteColor = "pink"
	ColorBlue   NoteColor = "blue"
	ColorGreen  NoteColor = "green"
	ColorOrange NoteColor = "orange"
	ColorPurple NoteColor = "purple"
)

// NoteColors lists the palette in cycle order.
var NoteColors = []NoteColor{
	ColorYellow, ColorPink, ColorBlue, ColorGreen, ColorOrange, ColorPurple,
}

const (
	// MaxPinnedNotes caps how many notes may be pinned at once.
	MaxPinnedNotes = 5

	DefaultNoteWidth  = 220.0
	DefaultNoteHeight = 180.0
	MinNoteWidth      = 150.0
	MinNoteHeight     = 100.0
)

// Note is the central entity of the domain. Coordinates are in canvas
// space, except when Pinned is true: a pinned note holds viewport-fixed
// (screen) coordinates until it is unpinned again. Timestamps are Unix
// epoch milliseconds; ArchivedAt is nil while the note is live.
type Note struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Color      NoteColor `json:"color"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Pinned     bool      `json:"pinned"`
	Archived   bool      `json:"archived"`
	ArchivedAt *int64    `json:"archivedAt"`
	CreatedAt  int64     `json:"createdAt"`
	UpdatedAt  int64     `json:"updatedAt"`
}

// Point is a position in canvas or screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is the pan/zoom state of the board canvas.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport returns the untouched canvas state.
func DefaultViewport() Viewport {
	return Viewport{X: 0, Y: 0, Zoom: 1}
}

// Settings holds user customization persisted alongside the notes.
type Settings struct {
	DarkMode bool `json:"darkMode"`
}

// NewID mints a canonical UUID note identifier.
func NewID() string {
	return uuid.NewString()
}

// IsCanonicalID reports whether id is a canonical UUID string. Notes
// created before an account existed may carry shorter legacy ids; those
// are re-minted the first time they sync to a remote owner.
func IsCanonicalID(id string) bool {
	if len(id) != 36 {
		return false
	}
	return uuid.Validate(id) == nil
}

// NextColor returns the palette color following c, wrapping around.
// Unknown colors restart the cycle.
func NextColor(c NoteColor) NoteColor {
	for i, known := range NoteColors {
		if known == c {
			return NoteColors[(i+1)%len(NoteColors)]
		}
	}
	return NoteColors[0]
}

// MigrateNote backfills defaults for fields missing from an older
// persisted shape, so state files written by previous versions (and
// imported snapshots) remain loadable.
func MigrateNote(raw map[string]any, nowMillis int64) Note {
	n := Note{
		ID:        stringField(raw, "id"),
		Content:   stringField(raw, "content"),
		Color:     NoteColor(stringField(raw, "color")),
		X:         floatField(raw, "x", 0),
		Y:         floatField(raw, "y", 0),
		Width:     floatField(raw, "width", DefaultNoteWidth),
		Height:    floatField(raw, "height", DefaultNoteHeight),
		Pinned:    boolField(raw, "pinned"),
		Archived:  boolField(raw, "archived"),
		CreatedAt: intField(raw, "createdAt", nowMillis),
		UpdatedAt: intField(raw, "updatedAt", nowMillis),
	}
	if n.ID == "" {
		n.ID = NewID()
	}
	if n.Color == "" {
		n.Color = ColorYellow
	}
	if v, ok := raw["archivedAt"]; ok && v != nil {
		if f, ok := v.(float64); ok {
			at := int64(f)
			n.ArchivedAt = &at
		}
	}
	return n
}

func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

func floatField(raw map[string]any, key string, def float64) float64 {
	if v, ok := raw[key].(float64); ok {
		return v
	}
	return def
}

func intField(raw map[string]any, key string, def int64) int64 {
	if v, ok := raw[key].(float64); ok {
		return int64(v)
	}
	return def
}

func boolField(raw map[string]any, key string) bool {
	if v, ok := raw[key].(bool); ok {
		return v
	}
	return false
}
