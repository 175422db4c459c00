package tui

import (
	"github.com/TzIsf62C/timeline-visualizer/internal/store"
	"github.com/TzIsf62C/timeline-visualizer/internal/timeline"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimeline viewState = iota
	viewEvents
	viewTimelines
	viewStats
	viewSettings
)

var viewNames = []string{"Timeline", "Events", "Timelines", "Stats", "Settings"}

// --- Messages ---

type eventsDataMsg struct {
	events []*timeline.Event
}

type timelinesDataMsg struct {
	timelines []store.Timeline
}

type eventSavedMsg struct {
	event *timeline.Event
}

type timelineOpenedMsg struct {
	id   int64
	name string
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type importDoneMsg struct {
	count int
	path  string
}

type configReloadedMsg struct{}

// --- Helpers ---

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}
