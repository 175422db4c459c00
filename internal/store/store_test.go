package store

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// newTestTimeline creates a timeline and returns its id.
func newTestTimeline(t *testing.T, s *Store, name string) int64 {
	t.Helper()
	tl, err := s.CreateTimeline(name)
	if err != nil {
		t.Fatalf("create timeline: %v", err)
	}
	return tl.ID
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/tidelines.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen — should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

// ============================================================
// Timelines
// ============================================================

func TestCreateAndGetTimeline(t *testing.T) {
	s := newTestStore(t)

	tl, err := s.CreateTimeline("Product Roadmap")
	if err != nil {
		t.Fatal(err)
	}
	if tl.Name != "Product Roadmap" {
		t.Fatalf("expected name 'Product Roadmap', got %q", tl.Name)
	}

	got, err := s.GetTimeline(tl.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != tl.Name {
		t.Fatalf("get mismatch: %q", got.Name)
	}
}

func TestTimelineNameUnique(t *testing.T) {
	s := newTestStore(t)
	newTestTimeline(t, s, "Roadmap")

	if _, err := s.CreateTimeline("Roadmap"); err == nil {
		t.Fatal("expected duplicate name to be rejected")
	}
}

func TestListTimelinesSortedByName(t *testing.T) {
	s := newTestStore(t)
	newTestTimeline(t, s, "Zeta")
	newTestTimeline(t, s, "Alpha")

	timelines, err := s.ListTimelines()
	if err != nil {
		t.Fatal(err)
	}
	if len(timelines) != 2 {
		t.Fatalf("expected 2 timelines, got %d", len(timelines))
	}
	if timelines[0].Name != "Alpha" || timelines[1].Name != "Zeta" {
		t.Fatalf("expected name order, got %q then %q", timelines[0].Name, timelines[1].Name)
	}
}

func TestRenameTimeline(t *testing.T) {
	s := newTestStore(t)
	id := newTestTimeline(t, s, "Old")

	if err := s.RenameTimeline(id, "New"); err != nil {
		t.Fatal(err)
	}
	tl, err := s.GetTimeline(id)
	if err != nil {
		t.Fatal(err)
	}
	if tl.Name != "New" {
		t.Fatalf("expected renamed timeline, got %q", tl.Name)
	}
}

func TestDuplicateTimelineDeepCopiesEvents(t *testing.T) {
	s := newTestStore(t)
	id := newTestTimeline(t, s, "Source")

	if _, err := s.CreateEvent(id, EventInput{Title: "Launch", DeadlineText: "June 2026"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateEvent(id, EventInput{Title: "Beta", DeadlineText: "April 2026"}); err != nil {
		t.Fatal(err)
	}

	dup, err := s.DuplicateTimeline(id, "Source copy")
	if err != nil {
		t.Fatal(err)
	}

	copied, err := s.ListEvents(EventFilter{TimelineID: &dup.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(copied) != 2 {
		t.Fatalf("expected 2 copied events, got %d", len(copied))
	}

	// Deleting the copy must not touch the source events.
	if err := s.DeleteTimeline(dup.ID); err != nil {
		t.Fatal(err)
	}
	original, err := s.ListEvents(EventFilter{TimelineID: &id})
	if err != nil {
		t.Fatal(err)
	}
	if len(original) != 2 {
		t.Fatalf("expected source events intact, got %d", len(original))
	}
}

func TestDeleteTimelineCascadesEvents(t *testing.T) {
	s := newTestStore(t)
	id := newTestTimeline(t, s, "Doomed")

	if _, err := s.CreateEvent(id, EventInput{Title: "Gone", DeadlineText: "2026-05-01"}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTimeline(id); err != nil {
		t.Fatal(err)
	}

	var count int
	s.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&count)
	if count != 0 {
		t.Fatalf("expected cascade delete, %d events remain", count)
	}
}

// ============================================================
// Events
// ============================================================

func TestCreateEventDerivesTemporal(t *testing.T) {
	s := newTestStore(t)
	id := newTestTimeline(t, s, "T")

	e, err := s.CreateEvent(id, EventInput{Title: "Launch", DeadlineText: "Q2 2026"})
	if err != nil {
		t.Fatal(err)
	}
	if e.Temporal == nil {
		t.Fatal("expected derived temporal value")
	}
	want := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	if !e.Temporal.Start.Equal(want) {
		t.Fatalf("expected start %v, got %v", want, e.Temporal.Start)
	}
}

func TestCreateEventRejectsUnparseableDeadline(t *testing.T) {
	s := newTestStore(t)
	id := newTestTimeline(t, s, "T")

	if _, err := s.CreateEvent(id, EventInput{Title: "Bad", DeadlineText: "whenever we feel like it"}); err == nil {
		t.Fatal("expected unparseable deadline to reject the write")
	}

	events, err := s.ListEvents(EventFilter{TimelineID: &id})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no rows after rejected write, got %d", len(events))
	}
}

func TestCreateEventDefaultsPrimaryGroup(t *testing.T) {
	s := newTestStore(t)
	id := newTestTimeline(t, s, "T")

	e, err := s.CreateEvent(id, EventInput{Title: "Orphan", DeadlineText: "May 2026"})
	if err != nil {
		t.Fatal(err)
	}
	if len(e.PrimaryGroups) != 1 || e.PrimaryGroups[0] != "unassigned" {
		t.Fatalf("expected unassigned primary group, got %v", e.PrimaryGroups)
	}
}

func TestUpdateEventRederivesCache(t *testing.T) {
	s := newTestStore(t)
	id := newTestTimeline(t, s, "T")

	e, err := s.CreateEvent(id, EventInput{Title: "Shift", DeadlineText: "April 2026"})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := s.UpdateEvent(e.ID, EventInput{Title: "Shift", DeadlineText: "October 2026"})
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	if !updated.Temporal.Start.Equal(want) {
		t.Fatalf("expected re-derived start %v, got %v", want, updated.Temporal.Start)
	}
}

func TestUpdateEventRejectsUnparseableDeadline(t *testing.T) {
	s := newTestStore(t)
	id := newTestTimeline(t, s, "T")

	e, err := s.CreateEvent(id, EventInput{Title: "Keep", DeadlineText: "April 2026"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.UpdateEvent(e.ID, EventInput{Title: "Keep", DeadlineText: "gibberish"}); err == nil {
		t.Fatal("expected rejected update")
	}

	// The stored row keeps its prior deadline.
	got, err := s.GetEvent(e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.DeadlineText != "April 2026" {
		t.Fatalf("expected original deadline preserved, got %q", got.DeadlineText)
	}
}

func TestEventRangeAndOngoingRoundTrip(t *testing.T) {
	s := newTestStore(t)
	id := newTestTimeline(t, s, "T")

	r, err := s.CreateEvent(id, EventInput{Title: "Phase", DeadlineText: "April-June 2026"})
	if err != nil {
		t.Fatal(err)
	}
	if r.Temporal.End == nil {
		t.Fatal("expected range end")
	}

	o, err := s.CreateEvent(id, EventInput{Title: "Forever", DeadlineText: "ongoing"})
	if err != nil {
		t.Fatal(err)
	}
	if !o.Temporal.Ongoing {
		t.Fatal("expected ongoing flag to survive the round trip")
	}
}

func TestListEventsOrderedByStart(t *testing.T) {
	s := newTestStore(t)
	id := newTestTimeline(t, s, "T")

	s.CreateEvent(id, EventInput{Title: "later", DeadlineText: "December 2026"})
	s.CreateEvent(id, EventInput{Title: "earlier", DeadlineText: "February 2026"})

	events, err := s.ListEvents(EventFilter{TimelineID: &id})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Title != "earlier" || events[1].Title != "later" {
		t.Fatalf("expected start-date order, got %q then %q", events[0].Title, events[1].Title)
	}
}

func TestListEventsEntityFilter(t *testing.T) {
	s := newTestStore(t)
	id := newTestTimeline(t, s, "T")

	s.CreateEvent(id, EventInput{Title: "hers", DeadlineText: "May 2026", PrimaryGroups: []string{"alice"}})
	s.CreateEvent(id, EventInput{Title: "his", DeadlineText: "June 2026", PrimaryGroups: []string{"bob"}})
	s.CreateEvent(id, EventInput{
		Title: "shared", DeadlineText: "July 2026",
		PrimaryGroups: []string{"bob"}, SecondaryGroups: []string{"alice"},
	})

	alice := "alice"
	events, err := s.ListEvents(EventFilter{TimelineID: &id, Entity: &alice})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 alice events, got %d", len(events))
	}
	for _, e := range events {
		if e.Title == "his" {
			t.Fatal("entity filter leaked an unrelated event")
		}
	}
}

func TestListEventsGoalFilterAndLimit(t *testing.T) {
	s := newTestStore(t)
	id := newTestTimeline(t, s, "T")

	launch := "launch"
	s.CreateEvent(id, EventInput{Title: "a", DeadlineText: "May 2026", Goal: launch})
	s.CreateEvent(id, EventInput{Title: "b", DeadlineText: "June 2026", Goal: launch})
	s.CreateEvent(id, EventInput{Title: "c", DeadlineText: "July 2026"})

	events, err := s.ListEvents(EventFilter{TimelineID: &id, Goal: &launch})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 launch events, got %d", len(events))
	}

	events, err = s.ListEvents(EventFilter{TimelineID: &id, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("expected limit 1, got %d", len(events))
	}
}

func TestDeleteEvent(t *testing.T) {
	s := newTestStore(t)
	id := newTestTimeline(t, s, "T")

	e, err := s.CreateEvent(id, EventInput{Title: "gone", DeadlineText: "May 2026"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteEvent(e.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetEvent(e.ID); err == nil {
		t.Fatal("expected get after delete to fail")
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	if mode := s.DefaultMode(); mode != "unified" {
		t.Fatalf("expected default mode 'unified', got %q", mode)
	}
	if id := s.LastTimeline(); id != 0 {
		t.Fatalf("expected no last timeline, got %d", id)
	}
}

func TestSetDefaultMode(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetDefaultMode("by-goal"); err != nil {
		t.Fatal(err)
	}
	if mode := s.DefaultMode(); mode != "by-goal" {
		t.Fatalf("expected 'by-goal', got %q", mode)
	}
}

func TestLastTimelineRoundTrip(t *testing.T) {
	s := newTestStore(t)
	id := newTestTimeline(t, s, "T")

	if err := s.SetLastTimeline(id); err != nil {
		t.Fatal(err)
	}
	if got := s.LastTimeline(); got != id {
		t.Fatalf("expected last timeline %d, got %d", id, got)
	}
}
