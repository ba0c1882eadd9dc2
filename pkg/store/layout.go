package store

import (
	"fmt"
	"math"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/stikie/stikie/pkg/core"
)

// LayoutKind names a deterministic arrangement of the live, unpinned
// notes.
type LayoutKind string

const (
	LayoutGrid     LayoutKind = "grid"
	LayoutRadial   LayoutKind = "radial"
	LayoutTimeline LayoutKind = "timeline"
)

const (
	defaultViewWidth  = 1440.0
	defaultViewHeight = 900.0

	layoutGap = 30.0
)

// layoutPositions computes n positions in canvas space, centered on the
// visible viewport. Pure function of (kind, n, viewport, view size).
func layoutPositions(kind LayoutKind, n int, vp core.Viewport, viewW, viewH float64) []core.Point {
	centerX := (-vp.X + viewW/2) / vp.Zoom
	centerY := (-vp.Y + viewH/2) / vp.Zoom

	switch kind {
	case LayoutRadial:
		return radialPositions(n, centerX, centerY)
	case LayoutTimeline:
		return timelinePositions(n, centerX, centerY)
	default:
		return gridPositions(n, centerX, centerY)
	}
}

func gridPositions(n int, centerX, centerY float64) []core.Point {
	cols := int(math.Max(1, math.Floor(math.Sqrt(float64(n)*1.5))))
	rows := (n + cols - 1) / cols
	totalW := float64(cols)*core.DefaultNoteWidth + float64(cols-1)*layoutGap
	totalH := float64(rows)*core.DefaultNoteHeight + float64(rows-1)*layoutGap
	startX := centerX - totalW/2
	startY := centerY - totalH/2

	out := make([]core.Point, n)
	for i := 0; i < n; i++ {
		col := i % cols
		row := i / cols
		out[i] = core.Point{
			X: startX + float64(col)*(core.DefaultNoteWidth+layoutGap),
			Y: startY + float64(row)*(core.DefaultNoteHeight+layoutGap),
		}
	}
	return out
}

func radialPositions(n int, centerX, centerY float64) []core.Point {
	if n == 1 {
		return []core.Point{{X: centerX - core.DefaultNoteWidth/2, Y: centerY - core.DefaultNoteHeight/2}}
	}
	// Radius grows with the circumference needed to keep notes apart.
	radius := math.Max(260, float64(n)*(core.DefaultNoteWidth+layoutGap)/(2*math.Pi))
	out := make([]core.Point, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		out[i] = core.Point{
			X: centerX + radius*math.Cos(angle) - core.DefaultNoteWidth/2,
			Y: centerY + radius*math.Sin(angle) - core.DefaultNoteHeight/2,
		}
	}
	return out
}

func timelinePositions(n int, centerX, centerY float64) []core.Point {
	totalW := float64(n)*core.DefaultNoteWidth + float64(n-1)*layoutGap
	startX := centerX - totalW/2
	out := make([]core.Point, n)
	for i := 0; i < n; i++ {
		// Alternate above/below the axis so long rows stay readable.
		offsetY := 0.0
		if i%2 == 1 {
			offsetY = core.DefaultNoteHeight/2 + layoutGap
		}
		out[i] = core.Point{
			X: startX + float64(i)*(core.DefaultNoteWidth+layoutGap),
			Y: centerY - core.DefaultNoteHeight/2 + offsetY,
		}
	}
	return out
}

// MatchNotes returns the notes whose id or content matches the glob
// pattern (case-insensitive on content).
func (s *Store) MatchNotes(pattern string) ([]core.Note, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid match pattern: %s", pattern)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Note
	lowered := strings.ToLower(pattern)
	for _, n := range s.notes {
		if ok, _ := doublestar.Match(pattern, n.ID); ok {
			out = append(out, n)
			continue
		}
		if ok, _ := doublestar.Match(lowered, strings.ToLower(n.Content)); ok {
			out = append(out, n)
		}
	}
	return out, nil
}
