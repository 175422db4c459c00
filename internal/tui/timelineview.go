package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TzIsf62C/timeline-visualizer/internal/config"
	"github.com/TzIsf62C/timeline-visualizer/internal/layout"
	"github.com/TzIsf62C/timeline-visualizer/internal/store"
	"github.com/TzIsf62C/timeline-visualizer/internal/timeline"
	"github.com/TzIsf62C/timeline-visualizer/internal/viewport"
)

const (
	panStepX = 4
	panStepY = 1
	maxLabel = 28
)

// timelineView is the orchestrator: it owns the viewport value, re-runs
// the layout engine once per zoom/pan/mode/filter change and renders the
// result onto a cell grid.
type timelineView struct {
	store  *store.Store
	cfg    *config.Config
	width  int
	height int

	timelineID   int64
	timelineName string

	events       []*timeline.Event
	vp           viewport.State
	mode         timeline.Mode
	entityFilter string

	placements []layout.Placement
	ticks      []layout.Tick
	mapping    viewport.Mapping
	haveMap    bool

	filterPicking bool
	filterCursor  int
}

func newTimelineView(s *store.Store, cfg *config.Config) timelineView {
	mode := timeline.ModeUnified
	switch s.DefaultMode() {
	case "by-entity":
		mode = timeline.ModeByEntity
	case "by-goal":
		mode = timeline.ModeByGoal
	}
	return timelineView{
		store: s,
		cfg:   cfg,
		vp:    viewport.NewState(),
		mode:  mode,
	}
}

func (t *timelineView) setSize(w, h int) {
	t.width = w
	t.height = h
	t.relayout()
}

func (t timelineView) loadEvents() tea.Cmd {
	id := t.timelineID
	return func() tea.Msg {
		events, _ := t.store.ListEvents(store.EventFilter{TimelineID: &id})
		return eventsDataMsg{events: events}
	}
}

func (t timelineView) geometry() viewport.Geometry {
	return viewport.Geometry{
		Width:         max(t.width-6, 20),
		Height:        max(t.height-6, 8),
		Mode:          t.mode,
		Margin:        t.cfg.Margin,
		LabelColWidth: t.cfg.LabelColWidth,
		TopMargin:     1,
		BottomMargin:  2,
	}
}

func (t timelineView) params() layout.Params {
	return layout.Params{
		UnifiedSpacing: t.cfg.UnifiedSpacing,
		GroupedSpacing: t.cfg.GroupedSpacing,
		TickExclusion:  t.cfg.TickExclusion,
		LabelHeight:    1,
	}
}

func (t timelineView) bounds() viewport.Bounds {
	return viewport.Bounds{Min: t.cfg.MinZoom, Max: t.cfg.MaxZoom}
}

func (t timelineView) rowCount() int {
	switch t.mode {
	case timeline.ModeByEntity:
		return len(timeline.Entities(t.events))
	case timeline.ModeByGoal:
		return len(timeline.Goals(t.events))
	default:
		return 0
	}
}

// relayout recomputes placements and ticks from the current inputs. It is
// the only place layout runs, so one user-driven change means one pass.
func (t *timelineView) relayout() {
	today := time.Now()
	geom := t.geometry()
	t.placements = layout.Layout(t.events, t.vp, geom, t.mode, t.entityFilter, today, t.params())
	t.mapping, t.haveMap = viewport.NewMapping(t.events, t.vp, geom, today)
	if t.haveMap {
		t.ticks = layout.Ticks(t.mapping, geom)
	} else {
		t.ticks = nil
	}
}

func (t timelineView) update(msg tea.Msg) (timelineView, tea.Cmd) {
	switch msg := msg.(type) {
	case eventsDataMsg:
		t.events = msg.events
		t.vp = viewport.ClampPan(t.vp, t.events, t.geometry(), t.rowCount(), time.Now())
		t.relayout()
		return t, nil

	case timelineOpenedMsg:
		t.timelineID = msg.id
		t.timelineName = msg.name
		t.vp = viewport.NewState()
		return t, t.loadEvents()

	case configReloadedMsg:
		t.relayout()
		return t, nil

	case tea.KeyMsg:
		if t.filterPicking {
			return t.updateFilterPicker(msg)
		}
		return t.updateKeys(msg)
	}
	return t, nil
}

func (t timelineView) updateKeys(msg tea.KeyMsg) (timelineView, tea.Cmd) {
	today := time.Now()
	geom := t.geometry()

	switch {
	case key.Matches(msg, keys.ZoomIn):
		t.vp = viewport.SetZoom(t.vp, t.vp.Zoom*t.cfg.ZoomStep, t.bounds(), t.events, geom, today)
		t.vp = viewport.ClampPan(t.vp, t.events, geom, t.rowCount(), today)
		t.relayout()

	case key.Matches(msg, keys.ZoomOut):
		t.vp = viewport.SetZoom(t.vp, t.vp.Zoom/t.cfg.ZoomStep, t.bounds(), t.events, geom, today)
		t.vp = viewport.ClampPan(t.vp, t.events, geom, t.rowCount(), today)
		t.relayout()

	case key.Matches(msg, keys.Left):
		t.vp = viewport.Pan(t.vp, panStepX, 0, t.events, geom, t.rowCount(), today)
		t.relayout()

	case key.Matches(msg, keys.Right):
		t.vp = viewport.Pan(t.vp, -panStepX, 0, t.events, geom, t.rowCount(), today)
		t.relayout()

	case key.Matches(msg, keys.Up):
		if t.mode != timeline.ModeUnified {
			t.vp = viewport.Pan(t.vp, 0, panStepY, t.events, geom, t.rowCount(), today)
			t.relayout()
		}

	case key.Matches(msg, keys.Down):
		if t.mode != timeline.ModeUnified {
			t.vp = viewport.Pan(t.vp, 0, -panStepY, t.events, geom, t.rowCount(), today)
			t.relayout()
		}

	case key.Matches(msg, keys.Mode):
		t.mode = (t.mode + 1) % 3
		t.vp = viewport.ClampPan(t.vp, t.events, t.geometry(), t.rowCount(), today)
		t.relayout()

	case key.Matches(msg, keys.Filter):
		if t.mode == timeline.ModeUnified && len(t.events) > 0 {
			t.filterPicking = true
			t.filterCursor = 0
		}
	}
	return t, nil
}

func (t timelineView) updateFilterPicker(msg tea.KeyMsg) (timelineView, tea.Cmd) {
	options := t.filterOptions()
	switch {
	case key.Matches(msg, keys.Up):
		if t.filterCursor > 0 {
			t.filterCursor--
		}
	case key.Matches(msg, keys.Down):
		if t.filterCursor < len(options)-1 {
			t.filterCursor++
		}
	case key.Matches(msg, keys.Enter):
		t.filterPicking = false
		if t.filterCursor == 0 {
			t.entityFilter = ""
		} else {
			t.entityFilter = options[t.filterCursor]
		}
		t.relayout()
	case key.Matches(msg, keys.Back):
		t.filterPicking = false
	}
	return t, nil
}

func (t timelineView) filterOptions() []string {
	return append([]string{"(no filter)"}, timeline.Entities(t.events)...)
}

func (t timelineView) view() string {
	w := t.width - 4
	if w < 24 || t.height < 10 {
		return "Terminal too small"
	}

	header := t.renderHeader()

	if t.filterPicking {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", t.renderFilterPicker()),
		)
	}

	var body string
	if !t.haveMap {
		body = mutedStyle.Render("No events yet. Press 2 and n to add one.")
	} else {
		body = t.renderCanvas()
	}

	hint := mutedStyle.Render("  +/-: zoom  ←/→: pan  m: mode  f: filter")
	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, body, hint),
	)
}

func (t timelineView) renderHeader() string {
	name := t.timelineName
	if name == "" {
		name = "(no timeline)"
	}
	parts := []string{
		titleStyle.Render(name),
		mutedStyle.Render(t.mode.String()),
		mutedStyle.Render(fmt.Sprintf("zoom %.0f%%", t.vp.Zoom*100)),
	}
	if t.entityFilter != "" {
		parts = append(parts, highlightStyle.Render("filter: "+t.entityFilter))
	}
	return strings.Join(parts, "  ")
}

func (t timelineView) renderFilterPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Entity Filter"))
	rows = append(rows, "")
	for i, opt := range t.filterOptions() {
		cursor := "  "
		style := normalItemStyle
		if i == t.filterCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+opt))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: apply  esc: cancel"))
	return strings.Join(rows, "\n")
}

func (t timelineView) renderCanvas() string {
	geom := t.geometry()
	g := newCellGrid(geom.Width, geom.Height)

	if t.mode == timeline.ModeUnified {
		t.drawUnified(g, geom)
	} else {
		t.drawGrouped(g, geom)
	}
	return g.render(t.cfg.Palette)
}

func (t timelineView) drawUnified(g *cellGrid, geom viewport.Geometry) {
	baseline := geom.Height / 2

	g.hline(0, geom.Width-1, baseline, '─', classAxis)

	// Tick marks on the axis, labels in the row directly below it. The
	// engine reserved these spans, so labels above never land on them.
	for _, tick := range t.ticks {
		x := int(tick.X)
		g.set(x, baseline, '┴', classAxis)
		g.text(x-len(tick.Label)/2, baseline+1, tick.Label, classTick)
	}

	todayX := int(t.mapping.TimeToX(time.Now()))
	g.set(todayX, baseline, '┃', classToday)

	entities := timeline.Entities(t.events)
	for _, p := range t.placements {
		cls := t.colorClass(p.Event, entities)
		t.drawMarker(g, p, baseline, cls)

		y := baseline - int(p.YOffset)
		if p.Side == layout.SideBelow {
			// Row baseline+1 belongs to tick labels.
			y = baseline + 1 + int(p.YOffset)
		}
		g.text(int(p.X), y, t.unifiedLabel(p), labelClass(p, cls))
	}
}

func (t timelineView) drawGrouped(g *cellGrid, geom viewport.Geometry) {
	var rowKeys []string
	if t.mode == timeline.ModeByEntity {
		rowKeys = timeline.Entities(t.events)
	} else {
		rowKeys = timeline.Goals(t.events)
	}
	entities := timeline.Entities(t.events)
	rowH := int(viewport.RowHeight(t.vp.Zoom))
	left := geom.LabelColWidth

	rowBase := func(row int) int {
		return geom.TopMargin + int(t.vp.PanY) + row*rowH + rowH/2
	}

	for row, rowKey := range rowKeys {
		y := rowBase(row)
		if y < 0 || y >= geom.Height-1 {
			continue
		}
		g.hline(left, geom.Width-1, y, '┈', classAxis)
		label := rowKey
		if label == "" {
			label = "(no goal)"
		}
		g.text(1, y, truncate(label, left-2), classRowLabel)
	}

	for _, p := range t.placements {
		y := rowBase(p.Row)
		if y < 0 || y >= geom.Height-1 {
			continue
		}
		cls := t.colorClass(p.Event, entities)
		if int(p.X) >= left {
			t.drawMarker(g, p, y, cls)
		}
		ly := y - int(p.YOffset)
		if p.Side == layout.SideBelow {
			ly = y + int(p.YOffset)
		}
		if int(p.X) >= left {
			g.text(int(p.X), ly, truncate(p.Event.Title, maxLabel), labelClass(p, cls))
		}
	}

	// Date labels live in a fixed footer in the grouped views.
	footer := geom.Height - 1
	for _, tick := range t.ticks {
		x := int(tick.X)
		if x >= left {
			g.text(x-len(tick.Label)/2, footer, tick.Label, classTick)
		}
	}
}

// drawMarker puts the event's time extent on its baseline: a dot for
// points, a bar for ranges, a dotted lead-out for ongoing events.
func (t timelineView) drawMarker(g *cellGrid, p layout.Placement, y int, cls styleClass) {
	x, x2 := int(p.X), int(p.X2)
	switch {
	case p.Event.Temporal.Ongoing:
		g.set(x, y, '●', cls)
		g.hline(x+1, x+4, y, '┄', cls)
	case x2 > x:
		g.hline(x, x2, y, '━', cls)
		g.set(x, y, '┝', cls)
		g.set(x2, y, '┥', cls)
	default:
		g.set(x, y, '●', cls)
	}
}

func (t timelineView) unifiedLabel(p layout.Placement) string {
	label := p.Event.Title
	if p.Event.Goal != "" {
		label += " · " + p.Event.Goal
	}
	return truncate(label, maxLabel)
}

func (t timelineView) colorClass(e *timeline.Event, ordered []string) styleClass {
	for i, k := range ordered {
		if e.HasPrimaryGroup(k) {
			return classPalette + styleClass(i%len(t.cfg.Palette))
		}
	}
	return classPalette
}

func labelClass(p layout.Placement, cls styleClass) styleClass {
	if p.Secondary {
		return classSecondary
	}
	return cls
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 1 {
		return s
	}
	return string(r[:n-1]) + "…"
}
