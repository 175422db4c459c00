// Package layout assigns every visible event a collision-free label
// position. The engine is a pure function of its inputs: identical
// (events, viewport, mode, filter, today) always yield identical
// placements. It never rejects an event; the worst case is extra levels
// and a taller layout.
package layout

import (
	"fmt"
	"sort"
	"time"

	"github.com/TzIsf62C/timeline-visualizer/internal/timeline"
	"github.com/TzIsf62C/timeline-visualizer/internal/viewport"
)

// Side places a label above or below its row baseline.
type Side int

const (
	SideAbove Side = iota
	SideBelow
)

// Placement is the engine's per-event output, rebuilt on every render and
// never persisted.
type Placement struct {
	Event *timeline.Event
	X     float64
	X2    float64 // equals X for point and ongoing events

	// Level is the 0-based lane index assigned by the greedy pass.
	// YOffset is the label's vertical distance from the row baseline,
	// in the direction given by Side.
	Level   int
	Side    Side
	YOffset float64

	// Row and RowKey identify the group row in the by-entity and
	// by-goal modes; Row is always 0 in the unified view. Secondary
	// marks weak group membership, rendered with reduced emphasis.
	Row       int
	RowKey    string
	Secondary bool
}

// Params carries the tunable spacing constants. The unified spacing is
// wider than the grouped one because unified labels include a goal
// subtitle.
type Params struct {
	UnifiedSpacing float64
	GroupedSpacing float64
	TickExclusion  float64 // half-width of the reserved zone around each axis tick
	LabelHeight    float64 // vertical extent of one label level
}

// DefaultParams are tuned for terminal cells.
func DefaultParams() Params {
	return Params{
		UnifiedSpacing: 16,
		GroupedSpacing: 8,
		TickExclusion:  5,
		LabelHeight:    1,
	}
}

// Tick is a periodic date-axis label with its reserved horizontal span.
type Tick struct {
	Time  time.Time
	X     float64
	Label string
}

// Layout computes placements for the given grouping mode. entityFilter is
// only consulted in the unified view; an empty string means no filter.
// Events whose deadline never parsed are silently skipped.
func Layout(events []*timeline.Event, st viewport.State, geom viewport.Geometry, mode timeline.Mode, entityFilter string, today time.Time, p Params) []Placement {
	m, ok := viewport.NewMapping(events, st, geom, today)
	if !ok {
		return nil
	}

	items := resolve(events, m)
	if len(items) == 0 {
		return nil
	}

	switch mode {
	case timeline.ModeByEntity:
		return layoutGrouped(items, timeline.Entities(events), entityRowMembers, p)
	case timeline.ModeByGoal:
		return layoutGrouped(items, timeline.Goals(events), goalRowMembers, p)
	default:
		return layoutUnified(items, entityFilter, Ticks(m, geom), p)
	}
}

type item struct {
	ev    *timeline.Event
	x, x2 float64
}

// resolve maps events to pixel spans and sorts them by start instant.
// The sort is stable so ties keep their input order; this tie-break is
// load-bearing for reproducible output.
func resolve(events []*timeline.Event, m viewport.Mapping) []item {
	items := make([]item, 0, len(events))
	for _, e := range events {
		if e.Temporal == nil {
			continue
		}
		x := m.TimeToX(e.Temporal.Start)
		x2 := x
		if e.Temporal.End != nil {
			x2 = m.TimeToX(*e.Temporal.End)
		}
		items = append(items, item{ev: e, x: x, x2: x2})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ev.Temporal.Start.Before(items[j].ev.Temporal.Start)
	})
	return items
}

func layoutUnified(items []item, entityFilter string, ticks []Tick, p Params) []Placement {
	reserved := reservedSpans(ticks, p.TickExclusion)

	if entityFilter != "" {
		// Primary membership renders above the baseline, everything
		// else below; each partition is leveled on its own.
		var primary, secondary []item
		for _, it := range items {
			if it.ev.HasPrimaryGroup(entityFilter) {
				primary = append(primary, it)
			} else {
				secondary = append(secondary, it)
			}
		}
		out := placePartition(primary, p.UnifiedSpacing, reserved, SideAbove, p, false)
		return append(out, placePartition(secondary, p.UnifiedSpacing, reserved, SideBelow, p, true)...)
	}

	// No filter: one shared leveling pass, sides alternating by level
	// parity with the offset growing one row per two levels.
	levels := assignLevels(items, p.UnifiedSpacing, reserved)
	out := make([]Placement, len(items))
	for i, it := range items {
		lv := levels[i]
		side := SideAbove
		if lv%2 == 1 {
			side = SideBelow
		}
		out[i] = Placement{
			Event:   it.ev,
			X:       it.x,
			X2:      it.x2,
			Level:   lv,
			Side:    side,
			YOffset: float64(lv/2+1) * p.LabelHeight,
		}
	}
	return out
}

func placePartition(items []item, spacing float64, reserved [][2]float64, side Side, p Params, secondary bool) []Placement {
	levels := assignLevels(items, spacing, reserved)
	out := make([]Placement, len(items))
	for i, it := range items {
		out[i] = Placement{
			Event:     it.ev,
			X:         it.x,
			X2:        it.x2,
			Level:     levels[i],
			Side:      side,
			YOffset:   float64(levels[i]+1) * p.LabelHeight,
			Secondary: secondary,
		}
	}
	return out
}

// entityRowMembers selects the events of one entity row: primary members
// level above the row baseline, secondary members below.
func entityRowMembers(items []item, key string) (above, below []item) {
	for _, it := range items {
		switch {
		case it.ev.HasPrimaryGroup(key):
			above = append(above, it)
		case it.ev.HasSecondaryGroup(key):
			below = append(below, it)
		}
	}
	return above, below
}

// goalRowMembers selects the events of one goal row. Goals are a single
// strong membership, so everything levels on the above side.
func goalRowMembers(items []item, key string) (above, below []item) {
	for _, it := range items {
		if it.ev.Goal == key {
			above = append(above, it)
		}
	}
	return above, nil
}

// layoutGrouped levels each row independently. Date labels live in a
// separate footer in the grouped views, so there is no tick exclusion
// here. The marker always sits on the row baseline; only the label floats
// by YOffset.
func layoutGrouped(items []item, keys []string, members func([]item, string) (above, below []item), p Params) []Placement {
	var out []Placement
	for row, key := range keys {
		above, below := members(items, key)
		for i, lv := range assignLevels(above, p.GroupedSpacing, nil) {
			out = append(out, Placement{
				Event:   above[i].ev,
				X:       above[i].x,
				X2:      above[i].x2,
				Level:   lv,
				Side:    SideAbove,
				YOffset: float64(lv+1) * p.LabelHeight,
				Row:     row,
				RowKey:  key,
			})
		}
		for i, lv := range assignLevels(below, p.GroupedSpacing, nil) {
			out = append(out, Placement{
				Event:     below[i].ev,
				X:         below[i].x,
				X2:        below[i].x2,
				Level:     lv,
				Side:      SideBelow,
				YOffset:   float64(lv+1) * p.LabelHeight,
				Row:       row,
				RowKey:    key,
				Secondary: true,
			})
		}
	}
	return out
}

// assignLevels is the greedy first-fit pass. Events arrive sorted by
// start, so per level only the most recently placed span matters; an
// event joins the first level whose last occupant ends at least spacing
// before the event starts and whose span clears every reserved tick zone.
// When nothing qualifies a fresh level is appended unconditionally.
func assignLevels(items []item, spacing float64, reserved [][2]float64) []int {
	levels := make([]int, len(items))
	var lastX2 []float64
	for i, it := range items {
		placed := false
		for li := range lastX2 {
			if lastX2[li]+spacing >= it.x {
				continue
			}
			if overlapsReserved(it.x, it.x2, reserved) {
				continue
			}
			lastX2[li] = it.x2
			levels[i] = li
			placed = true
			break
		}
		if !placed {
			lastX2 = append(lastX2, it.x2)
			levels[i] = len(lastX2) - 1
		}
	}
	return levels
}

func reservedSpans(ticks []Tick, exclusion float64) [][2]float64 {
	if exclusion <= 0 {
		return nil
	}
	spans := make([][2]float64, len(ticks))
	for i, t := range ticks {
		spans[i] = [2]float64{t.X - exclusion, t.X + exclusion}
	}
	return spans
}

func overlapsReserved(x, x2 float64, reserved [][2]float64) bool {
	for _, r := range reserved {
		if x <= r[1] && x2 >= r[0] {
			return true
		}
	}
	return false
}

const (
	pixelsPerQuarterTicks = 120.0 // year width at which quarter ticks switch on
	pixelsPerYearTicks    = 16.0  // year width below which ticks thin to every 5 years
	nsPerYear             = float64(365 * 24 * time.Hour)
)

// Ticks generates the periodic date-axis ticks for the current transform.
// The step widens as zoom drops: quarters, then years, then five-year
// marks. The rendering sink draws exactly these ticks, so the exclusion
// zones the engine honors and the labels on screen always agree.
func Ticks(m viewport.Mapping, geom viewport.Geometry) []Tick {
	yearWidth := m.Scale * nsPerYear
	if yearWidth <= 0 {
		return nil
	}

	var out []Tick
	switch {
	case yearWidth >= pixelsPerQuarterTicks:
		for y := m.ContentStart.Year(); y <= m.ContentEnd.Year(); y++ {
			for q := 0; q < 4; q++ {
				t := time.Date(y, time.Month(1+3*q), 1, 0, 0, 0, 0, time.UTC)
				if t.Before(m.ContentStart) || t.After(m.ContentEnd) {
					continue
				}
				out = append(out, Tick{Time: t, X: m.TimeToX(t), Label: fmt.Sprintf("Q%d %d", q+1, y)})
			}
		}
	default:
		step := 1
		if yearWidth < pixelsPerYearTicks {
			step = 5
		}
		first := m.ContentStart.Year()
		if rem := first % step; rem != 0 {
			first += step - rem
		}
		for y := first; y <= m.ContentEnd.Year(); y += step {
			t := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
			if t.Before(m.ContentStart) || t.After(m.ContentEnd) {
				continue
			}
			out = append(out, Tick{Time: t, X: m.TimeToX(t), Label: t.Format("2006")})
		}
	}
	return out
}
