// Package viewport owns the zoom/pan transform from calendar time to
// horizontal screen position. State is a plain value threaded through
// function arguments and returns; nothing here mutates shared globals, so
// the transform is replaceable by the caller at will.
package viewport

import (
	"time"

	"github.com/TzIsf62C/timeline-visualizer/internal/timeline"
)

// State is the externally observable viewport value.
type State struct {
	Zoom float64
	PanX float64
	PanY float64
}

// Bounds clamp the zoom factor. Zoom is clamped, never the pan range.
type Bounds struct {
	Min float64
	Max float64
}

// DefaultBounds matches the documented [0.1, 10] zoom window.
var DefaultBounds = Bounds{Min: 0.1, Max: 10}

// NewState returns the identity transform.
func NewState() State {
	return State{Zoom: 1}
}

// Geometry describes the screen area the transform maps into. The
// available width differs between the unified view (full width minus
// margins) and the grouped views (width minus the frozen label column).
type Geometry struct {
	Width         int
	Height        int
	Mode          timeline.Mode
	Margin        int
	LabelColWidth int
	TopMargin     int
	BottomMargin  int
}

// AvailableWidth is the horizontal space content occupies at zoom 1.
func (g Geometry) AvailableWidth() float64 {
	if g.Mode == timeline.ModeUnified {
		return float64(g.Width - 2*g.Margin)
	}
	return float64(g.Width - g.LabelColWidth - g.Margin)
}

// LeftEdge is the x position of the content origin before panning.
func (g Geometry) LeftEdge() float64 {
	if g.Mode == timeline.ModeUnified {
		return float64(g.Margin)
	}
	return float64(g.LabelColWidth)
}

// Mapping is the affine time→x transform for one render pass.
type Mapping struct {
	ContentStart time.Time
	ContentEnd   time.Time
	Scale        float64 // px per nanosecond
	OriginX      float64 // left edge + panX
}

// TimeToX maps a calendar instant to a horizontal position.
func (m Mapping) TimeToX(t time.Time) float64 {
	return m.OriginX + float64(t.Sub(m.ContentStart))*m.Scale
}

// XToTime inverts TimeToX.
func (m Mapping) XToTime(x float64) time.Time {
	return m.ContentStart.Add(time.Duration((x - m.OriginX) / m.Scale))
}

// NewMapping derives the transform for the current event set. ok is false
// when there is no content to map; callers skip rendering in that case.
func NewMapping(events []*timeline.Event, st State, geom Geometry, today time.Time) (Mapping, bool) {
	start, end, ok := timeline.ContentSpan(events, today)
	if !ok {
		return Mapping{}, false
	}
	span := end.Sub(start)
	if span <= 0 || geom.AvailableWidth() <= 0 {
		return Mapping{}, false
	}
	return Mapping{
		ContentStart: start,
		ContentEnd:   end,
		Scale:        geom.AvailableWidth() * st.Zoom / float64(span),
		OriginX:      geom.LeftEdge() + st.PanX,
	}, true
}

// ContentWidth is the total pixel width of the content span at the current
// zoom. The visible span equals the content span, so this reduces to
// availableWidth x zoom.
func ContentWidth(st State, geom Geometry) float64 {
	return geom.AvailableWidth() * st.Zoom
}

const (
	baseRowHeight     = 4.0
	maxRowHeight      = 10.0
	rowWidenThreshold = 1.0
)

// RowHeight returns the grouped-view row height for a zoom factor. Rows
// widen as zoom drops below the threshold so labels regain vertical room
// when the horizontal axis is compressed.
func RowHeight(zoom float64) float64 {
	if zoom >= rowWidenThreshold {
		return baseRowHeight
	}
	h := baseRowHeight * rowWidenThreshold / zoom
	if h > maxRowHeight {
		return maxRowHeight
	}
	return h
}

// SetZoom clamps the new factor and re-solves PanX so the calendar instant
// at the horizontal center of the viewport stays at that center. In
// grouped modes the row at vertical center likewise keeps its position
// across the zoom-driven row-height change. With no events the clamp is
// applied and the pan left untouched.
func SetZoom(st State, newZoom float64, b Bounds, events []*timeline.Event, geom Geometry, today time.Time) State {
	oldZoom := st.Zoom
	st.Zoom = clampZoom(newZoom, b)

	m, ok := NewMapping(events, State{Zoom: oldZoom, PanX: st.PanX, PanY: st.PanY}, geom, today)
	if !ok {
		return st
	}

	centerX := float64(geom.Width) / 2
	anchor := m.XToTime(centerX)

	span := float64(m.ContentEnd.Sub(m.ContentStart))
	newScale := geom.AvailableWidth() * st.Zoom / span
	st.PanX = centerX - geom.LeftEdge() - float64(anchor.Sub(m.ContentStart))*newScale

	if geom.Mode != timeline.ModeUnified {
		oldRow := RowHeight(oldZoom)
		newRow := RowHeight(st.Zoom)
		if oldRow != newRow {
			centerY := float64(geom.Height) / 2
			rowAtCenter := (centerY - st.PanY) / oldRow
			st.PanY = centerY - rowAtCenter*newRow
		}
	}
	return st
}

// Pan applies deltas then clamps.
func Pan(st State, dx, dy float64, events []*timeline.Event, geom Geometry, rowCount int, today time.Time) State {
	st.PanX += dx
	st.PanY += dy
	return ClampPan(st, events, geom, rowCount, today)
}

// ClampPan constrains the pan offsets so content stays reachable: the
// content's left edge cannot pass the right screen edge and the right edge
// cannot pass the mode-dependent left margin. Grouped views get the same
// treatment vertically over the row stack. With no events this is a no-op,
// and the operation is a fixed point: clamping twice yields the same state.
func ClampPan(st State, events []*timeline.Event, geom Geometry, rowCount int, today time.Time) State {
	if _, _, ok := timeline.ContentSpan(events, today); !ok {
		return st
	}

	contentW := ContentWidth(st, geom)
	maxPanX := float64(geom.Width) - geom.LeftEdge()
	minPanX := -contentW
	if st.PanX > maxPanX {
		st.PanX = maxPanX
	}
	if st.PanX < minPanX {
		st.PanX = minPanX
	}

	if geom.Mode == timeline.ModeUnified {
		st.PanY = 0
		return st
	}

	rowH := RowHeight(st.Zoom)
	totalH := rowH * float64(rowCount)
	maxPanY := float64(geom.TopMargin)
	minPanY := float64(geom.Height-geom.BottomMargin) - totalH
	if minPanY > maxPanY {
		minPanY = maxPanY
	}
	if st.PanY > maxPanY {
		st.PanY = maxPanY
	}
	if st.PanY < minPanY {
		st.PanY = minPanY
	}
	return st
}

func clampZoom(z float64, b Bounds) float64 {
	if b.Min <= 0 {
		b = DefaultBounds
	}
	if z < b.Min {
		return b.Min
	}
	if z > b.Max {
		return b.Max
	}
	return z
}
