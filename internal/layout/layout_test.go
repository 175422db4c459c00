package layout

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TzIsf62C/timeline-visualizer/internal/dateparse"
	"github.com/TzIsf62C/timeline-visualizer/internal/timeline"
	"github.com/TzIsf62C/timeline-visualizer/internal/viewport"
)

var testToday = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

func unifiedGeom() viewport.Geometry {
	return viewport.Geometry{
		Width:        200,
		Height:       40,
		Mode:         timeline.ModeUnified,
		Margin:       4,
		TopMargin:    1,
		BottomMargin: 2,
	}
}

func groupedGeom(mode timeline.Mode) viewport.Geometry {
	g := unifiedGeom()
	g.Mode = mode
	g.LabelColWidth = 18
	return g
}

func point(title string, t time.Time, primary ...string) *timeline.Event {
	return &timeline.Event{
		Title:         title,
		Temporal:      &dateparse.TemporalValue{Start: t},
		PrimaryGroups: timeline.NormalizePrimary(primary),
	}
}

func span(title string, start, end time.Time, primary ...string) *timeline.Event {
	return &timeline.Event{
		Title:         title,
		Temporal:      &dateparse.TemporalValue{Start: start, End: &end},
		PrimaryGroups: timeline.NormalizePrimary(primary),
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLayoutDeterministic(t *testing.T) {
	events := []*timeline.Event{
		point("a", day(2026, time.April, 1)),
		point("b", day(2026, time.April, 1)),
		span("c", day(2026, time.February, 1), day(2026, time.August, 28)),
		point("d", day(2026, time.November, 10)),
	}
	st := viewport.State{Zoom: 2, PanX: -30}

	first := Layout(events, st, unifiedGeom(), timeline.ModeUnified, "", testToday, DefaultParams())
	for i := 0; i < 10; i++ {
		again := Layout(events, st, unifiedGeom(), timeline.ModeUnified, "", testToday, DefaultParams())
		require.Equal(t, first, again, "identical inputs must produce identical placements")
	}
}

func TestLayoutNeverRejects(t *testing.T) {
	// 30 events on the same day force the engine into extra levels, never
	// into dropping anything.
	var events []*timeline.Event
	for i := 0; i < 30; i++ {
		events = append(events, point(fmt.Sprintf("e%d", i), day(2026, time.June, 1)))
	}

	got := Layout(events, viewport.NewState(), unifiedGeom(), timeline.ModeUnified, "", testToday, DefaultParams())
	assert.Len(t, got, 30)
}

func TestLayoutSkipsUnparsedEvents(t *testing.T) {
	events := []*timeline.Event{
		point("good", day(2026, time.June, 1)),
		{Title: "broken", PrimaryGroups: []string{timeline.UnassignedGroup}},
	}

	got := Layout(events, viewport.NewState(), unifiedGeom(), timeline.ModeUnified, "", testToday, DefaultParams())
	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].Event.Title)
}

func TestLayoutEmptyInput(t *testing.T) {
	assert.Nil(t, Layout(nil, viewport.NewState(), unifiedGeom(), timeline.ModeUnified, "", testToday, DefaultParams()))
}

func TestUnifiedNoHorizontalCollisions(t *testing.T) {
	var events []*timeline.Event
	for i := 0; i < 12; i++ {
		events = append(events, point(fmt.Sprintf("e%d", i), day(2026, time.Month(1+i%12), 1+i)))
	}
	p := DefaultParams()

	got := Layout(events, viewport.NewState(), unifiedGeom(), timeline.ModeUnified, "", testToday, p)
	require.Len(t, got, len(events))

	// Within one level and side, spans must clear each other by the
	// configured spacing.
	for i := range got {
		for j := i + 1; j < len(got); j++ {
			a, b := got[i], got[j]
			if a.Level != b.Level || a.Side != b.Side {
				continue
			}
			overlap := a.X <= b.X2+p.UnifiedSpacing && b.X <= a.X2+p.UnifiedSpacing
			assert.False(t, overlap, "%s and %s collide on level %d", a.Event.Title, b.Event.Title, a.Level)
		}
	}
}

func TestUnifiedSameDayAlternatesSides(t *testing.T) {
	events := []*timeline.Event{
		point("first", day(2026, time.June, 1)),
		point("second", day(2026, time.June, 1)),
		point("third", day(2026, time.June, 1)),
	}

	got := Layout(events, viewport.NewState(), unifiedGeom(), timeline.ModeUnified, "", testToday, DefaultParams())
	require.Len(t, got, 3)

	// Stable sort keeps insertion order for the tie, so levels are 0,1,2.
	assert.Equal(t, 0, got[0].Level)
	assert.Equal(t, 1, got[1].Level)
	assert.Equal(t, 2, got[2].Level)

	assert.Equal(t, SideAbove, got[0].Side)
	assert.Equal(t, SideBelow, got[1].Side)
	assert.Equal(t, SideAbove, got[2].Side)

	// The vertical offset grows one row per two levels.
	assert.Equal(t, 1.0, got[0].YOffset)
	assert.Equal(t, 1.0, got[1].YOffset)
	assert.Equal(t, 2.0, got[2].YOffset)
}

func TestUnifiedRangeEndpoint(t *testing.T) {
	events := []*timeline.Event{
		span("r", day(2026, time.April, 1), day(2026, time.June, 28)),
	}

	got := Layout(events, viewport.NewState(), unifiedGeom(), timeline.ModeUnified, "", testToday, DefaultParams())
	require.Len(t, got, 1)
	assert.Greater(t, got[0].X2, got[0].X)
}

func TestUnifiedEntityFilterPartition(t *testing.T) {
	events := []*timeline.Event{
		point("mine", day(2026, time.April, 1), "alice"),
		point("theirs", day(2026, time.June, 1), "bob"),
		point("also-mine", day(2026, time.August, 1), "alice"),
	}

	got := Layout(events, viewport.NewState(), unifiedGeom(), timeline.ModeUnified, "alice", testToday, DefaultParams())
	require.Len(t, got, 3)

	bySide := map[string]Side{}
	secondary := map[string]bool{}
	for _, pl := range got {
		bySide[pl.Event.Title] = pl.Side
		secondary[pl.Event.Title] = pl.Secondary
	}
	assert.Equal(t, SideAbove, bySide["mine"])
	assert.Equal(t, SideAbove, bySide["also-mine"])
	assert.Equal(t, SideBelow, bySide["theirs"])
	assert.False(t, secondary["mine"])
	assert.True(t, secondary["theirs"])
}

func TestByEntityRows(t *testing.T) {
	events := []*timeline.Event{
		point("a1", day(2026, time.April, 1), "alice"),
		point("b1", day(2026, time.May, 1), "bob"),
		{
			Title:           "a2",
			Temporal:        &dateparse.TemporalValue{Start: day(2026, time.June, 1)},
			PrimaryGroups:   []string{"bob"},
			SecondaryGroups: []string{"alice"},
		},
	}

	got := Layout(events, viewport.NewState(), groupedGeom(timeline.ModeByEntity), timeline.ModeByEntity, "", testToday, DefaultParams())

	rows := map[string][]Placement{}
	for _, pl := range got {
		rows[pl.RowKey] = append(rows[pl.RowKey], pl)
	}

	// alice's row holds her primary event above and her secondary
	// membership below; bob's row holds both of his primaries.
	require.Len(t, rows["alice"], 2)
	require.Len(t, rows["bob"], 2)

	for _, pl := range rows["alice"] {
		if pl.Event.Title == "a2" {
			assert.Equal(t, SideBelow, pl.Side)
			assert.True(t, pl.Secondary)
		} else {
			assert.Equal(t, SideAbove, pl.Side)
			assert.False(t, pl.Secondary)
		}
	}
}

func TestByEntityEventAppearsOncePerMembership(t *testing.T) {
	events := []*timeline.Event{
		point("shared", day(2026, time.April, 1), "alice", "bob"),
	}

	got := Layout(events, viewport.NewState(), groupedGeom(timeline.ModeByEntity), timeline.ModeByEntity, "", testToday, DefaultParams())
	require.Len(t, got, 2)
	keys := []string{got[0].RowKey, got[1].RowKey}
	assert.ElementsMatch(t, []string{"alice", "bob"}, keys)
}

func TestByGoalRows(t *testing.T) {
	mk := func(title, goal string, t time.Time) *timeline.Event {
		e := point(title, t)
		e.Goal = goal
		return e
	}
	events := []*timeline.Event{
		mk("a", "launch", day(2026, time.April, 1)),
		mk("b", "launch", day(2026, time.April, 1)),
		mk("c", "", day(2026, time.May, 1)),
	}

	got := Layout(events, viewport.NewState(), groupedGeom(timeline.ModeByGoal), timeline.ModeByGoal, "", testToday, DefaultParams())
	require.Len(t, got, 3)

	for _, pl := range got {
		assert.Equal(t, SideAbove, pl.Side, "goal rows level everything above the baseline")
	}

	// Same-day events in the same row climb levels instead of colliding.
	var launchLevels []int
	for _, pl := range got {
		if pl.RowKey == "launch" {
			launchLevels = append(launchLevels, pl.Level)
		}
	}
	assert.ElementsMatch(t, []int{0, 1}, launchLevels)
}

func TestTickExclusionPushesToFreshLevel(t *testing.T) {
	events := []*timeline.Event{
		point("a", day(2026, time.February, 1)),
		point("b", day(2026, time.July, 2)),
	}
	p := DefaultParams()
	// A huge exclusion zone makes every tick span unusable on existing
	// levels; each event still lands, on its own fresh level.
	p.TickExclusion = 10000

	got := Layout(events, viewport.NewState(), unifiedGeom(), timeline.ModeUnified, "", testToday, p)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0].Level, got[1].Level)
}

func TestTicksQuartersAtHighZoom(t *testing.T) {
	events := []*timeline.Event{
		point("a", day(2026, time.January, 15)),
		point("b", day(2026, time.November, 15)),
	}
	st := viewport.State{Zoom: 8}
	m, ok := viewport.NewMapping(events, st, unifiedGeom(), testToday)
	require.True(t, ok)

	ticks := Ticks(m, unifiedGeom())
	require.NotEmpty(t, ticks)
	assert.Equal(t, "Q1 2026", ticks[0].Label)
	for _, tk := range ticks {
		assert.False(t, tk.Time.Before(m.ContentStart))
		assert.False(t, tk.Time.After(m.ContentEnd))
	}
}

func TestTicksYearsAtNormalZoom(t *testing.T) {
	events := []*timeline.Event{
		point("a", day(2025, time.June, 1)),
		point("b", day(2031, time.June, 1)),
	}
	m, ok := viewport.NewMapping(events, viewport.NewState(), unifiedGeom(), testToday)
	require.True(t, ok)

	ticks := Ticks(m, unifiedGeom())
	require.NotEmpty(t, ticks)
	// Span padding pulls the content start into late 2024, so the first
	// whole-year boundary inside the span is 2025.
	assert.Equal(t, "2025", ticks[0].Label)
}

func TestTicksThinAtLowZoom(t *testing.T) {
	events := []*timeline.Event{
		point("a", day(2000, time.June, 1)),
		point("b", day(2090, time.June, 1)),
	}
	st := viewport.State{Zoom: 0.1}
	m, ok := viewport.NewMapping(events, st, unifiedGeom(), testToday)
	require.True(t, ok)

	ticks := Ticks(m, unifiedGeom())
	require.True(t, len(ticks) >= 2)
	for i := 1; i < len(ticks); i++ {
		assert.Equal(t, 5, ticks[i].Time.Year()-ticks[i-1].Time.Year())
	}
}
