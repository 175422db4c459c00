package timeline

import (
	"strings"
	"time"

	"github.com/TzIsf62C/timeline-visualizer/internal/dateparse"
)

// Mode selects how events are grouped into rows.
type Mode int

const (
	ModeUnified Mode = iota
	ModeByEntity
	ModeByGoal
)

func (m Mode) String() string {
	switch m {
	case ModeByEntity:
		return "by-entity"
	case ModeByGoal:
		return "by-goal"
	default:
		return "unified"
	}
}

// Event is a milestone on a timeline. Temporal is always derived from
// DeadlineText and refreshed whenever that text changes; it is never
// edited directly.
type Event struct {
	ID         int64
	TimelineID int64
	Title      string

	DeadlineText string
	Temporal     *dateparse.TemporalValue

	PrimaryGroups   []string
	SecondaryGroups []string
	Goal            string
	Notes           string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UnassignedGroup is the primary group given to events that name none.
// PrimaryGroups is non-empty by construction everywhere downstream.
const UnassignedGroup = "unassigned"

// NormalizeGroups trims entries, drops empties and deduplicates while
// preserving order. This runs once at the data-model boundary (load and
// import); downstream code never re-checks group shapes.
func NormalizeGroups(groups []string) []string {
	var out []string
	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}

// NormalizePrimary is NormalizeGroups plus the non-empty guarantee.
func NormalizePrimary(groups []string) []string {
	out := NormalizeGroups(groups)
	if len(out) == 0 {
		return []string{UnassignedGroup}
	}
	return out
}

// HasPrimaryGroup reports whether the event's primary groups include key.
func (e *Event) HasPrimaryGroup(key string) bool {
	for _, g := range e.PrimaryGroups {
		if g == key {
			return true
		}
	}
	return false
}

// HasSecondaryGroup reports whether the event's secondary groups include key.
func (e *Event) HasSecondaryGroup(key string) bool {
	for _, g := range e.SecondaryGroups {
		if g == key {
			return true
		}
	}
	return false
}

// Start returns the event's start instant, or the zero time when the
// deadline never parsed.
func (e *Event) Start() time.Time {
	if e.Temporal == nil {
		return time.Time{}
	}
	return e.Temporal.Start
}

// End returns the last instant the event occupies: the range end for
// ranges, the start for points and ongoing values.
func (e *Event) End() time.Time {
	if e.Temporal == nil {
		return time.Time{}
	}
	if e.Temporal.End != nil {
		return *e.Temporal.End
	}
	return e.Temporal.Start
}

// spanPaddingRatio widens the content span at both edges so the first and
// last events do not sit flush against the viewport.
const spanPaddingRatio = 0.10

// degenerateSpan is the span used when all content collapses to a single
// instant.
const degenerateSpan = 30 * 24 * time.Hour

// ContentSpan computes the padded calendar span covering every event plus
// today. Events without a temporal value are ignored. The second return is
// false when there is nothing to show, which callers treat as "leave the
// viewport alone".
func ContentSpan(events []*Event, today time.Time) (start, end time.Time, ok bool) {
	for _, e := range events {
		if e.Temporal == nil {
			continue
		}
		s, en := e.Start(), e.End()
		if !ok {
			start, end, ok = s, en, true
			continue
		}
		if s.Before(start) {
			start = s
		}
		if en.After(end) {
			end = en
		}
	}
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	// Today is always representable so the today-marker never falls off
	// the axis.
	if today.Before(start) {
		start = today
	}
	if today.After(end) {
		end = today
	}

	span := end.Sub(start)
	if span <= 0 {
		span = degenerateSpan
		end = start.Add(span)
	}
	pad := time.Duration(float64(span) * spanPaddingRatio)
	return start.Add(-pad), end.Add(pad), true
}

// Goals returns the distinct goal keys across events, in first-seen order.
// Events with no goal fall under the empty key, which callers label.
func Goals(events []*Event) []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range events {
		if seen[e.Goal] {
			continue
		}
		seen[e.Goal] = true
		out = append(out, e.Goal)
	}
	return out
}

// Entities returns the distinct primary group keys across events, in
// first-seen order.
func Entities(events []*Event) []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range events {
		for _, g := range e.PrimaryGroups {
			if seen[g] {
				continue
			}
			seen[g] = true
			out = append(out, g)
		}
	}
	return out
}
