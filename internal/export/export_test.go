package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TzIsf62C/timeline-visualizer/internal/store"
	"github.com/TzIsf62C/timeline-visualizer/internal/timeline"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedTimeline(t *testing.T, s *store.Store) (int64, []*timeline.Event) {
	t.Helper()
	tl, err := s.CreateTimeline("Roadmap")
	if err != nil {
		t.Fatal(err)
	}
	inputs := []store.EventInput{
		{Title: "Kickoff", DeadlineText: "February 2026", PrimaryGroups: []string{"alice"}, Goal: "launch"},
		{Title: "Build phase", DeadlineText: "April-June 2026", PrimaryGroups: []string{"bob"}, SecondaryGroups: []string{"alice"}},
		{Title: "Support", DeadlineText: "ongoing", Notes: "post-launch"},
	}
	for _, in := range inputs {
		if _, err := s.CreateEvent(tl.ID, in); err != nil {
			t.Fatal(err)
		}
	}
	events, err := s.ListEvents(store.EventFilter{TimelineID: &tl.ID})
	if err != nil {
		t.Fatal(err)
	}
	return tl.ID, events
}

// ============================================================
// JSON export / import
// ============================================================

func TestJSONRoundTrip(t *testing.T) {
	s := newTestStore(t)
	_, events := seedTimeline(t, s)

	path := filepath.Join(t.TempDir(), "out.json")
	if err := ToJSON(events, "Roadmap", path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	dest, err := s.CreateTimeline("Imported")
	if err != nil {
		t.Fatal(err)
	}
	count, err := ImportJSON(s, dest.ID, data)
	if err != nil {
		t.Fatal(err)
	}
	if count != len(events) {
		t.Fatalf("expected %d imported events, got %d", len(events), count)
	}

	imported, err := s.ListEvents(store.EventFilter{TimelineID: &dest.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(imported) != len(events) {
		t.Fatalf("expected %d events, got %d", len(events), len(imported))
	}
	for _, e := range imported {
		if e.Temporal == nil {
			t.Fatalf("imported event %q has no temporal value", e.Title)
		}
		if e.Title == "Support" && !e.Temporal.Ongoing {
			t.Fatal("ongoing flag lost in round trip")
		}
		if e.Title == "Build phase" && e.Temporal.End == nil {
			t.Fatal("range end lost in round trip")
		}
	}
}

func TestParseImportRejectsMissingTitle(t *testing.T) {
	payload := `{"events": [{"title": "  ", "deadline_text": "May 2026"}]}`

	_, err := ParseImport([]byte(payload))
	if err == nil {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(err.Error(), "missing title") {
		t.Fatalf("expected title error, got %v", err)
	}
}

func TestParseImportRejectsMissingDeadline(t *testing.T) {
	payload := `{"events": [{"title": "Launch"}]}`

	_, err := ParseImport([]byte(payload))
	if err == nil {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(err.Error(), "missing deadline_text") {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestParseImportRejectsUnparseableDeadline(t *testing.T) {
	payload := `{"events": [
		{"title": "Good", "deadline_text": "May 2026"},
		{"title": "Bad", "deadline_text": "sometime maybe never"}
	]}`

	_, err := ParseImport([]byte(payload))
	if err == nil {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(err.Error(), "Bad") {
		t.Fatalf("expected error to name the bad record, got %v", err)
	}
}

func TestImportJSONAllOrNothing(t *testing.T) {
	s := newTestStore(t)
	tl, err := s.CreateTimeline("T")
	if err != nil {
		t.Fatal(err)
	}

	payload := `{"events": [
		{"title": "Good", "deadline_text": "May 2026"},
		{"title": "Bad", "deadline_text": "???"}
	]}`
	if _, err := ImportJSON(s, tl.ID, []byte(payload)); err == nil {
		t.Fatal("expected rejection")
	}

	events, err := s.ListEvents(store.EventFilter{TimelineID: &tl.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Fatalf("expected nothing written after rejected import, got %d events", len(events))
	}
}

func TestParseImportBadJSON(t *testing.T) {
	if _, err := ParseImport([]byte(`{not json`)); err == nil {
		t.Fatal("expected decode error")
	}
}

// ============================================================
// CSV export
// ============================================================

func TestToCSV(t *testing.T) {
	s := newTestStore(t)
	_, events := seedTimeline(t, s)

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := ToCSV(events, path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(events)+1 {
		t.Fatalf("expected header plus %d rows, got %d", len(events), len(rows))
	}
	if rows[0][0] != "ID" || rows[0][1] != "Title" {
		t.Fatalf("unexpected header: %v", rows[0])
	}

	// The ongoing event carries its flag into the Ongoing column.
	for _, row := range rows[1:] {
		if row[1] == "Support" && row[5] != "yes" {
			t.Fatalf("expected ongoing 'yes', got %q", row[5])
		}
	}
}

// ============================================================
// ICS import
// ============================================================

const testICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:ev1@test
DTSTAMP:20260101T000000Z
DTSTART:20260601T000000Z
SUMMARY:Launch review
DESCRIPTION:bring slides
END:VEVENT
BEGIN:VEVENT
UID:ev2@test
DTSTAMP:20260101T000000Z
DTSTART:20261015T000000Z
SUMMARY:Retro
END:VEVENT
END:VCALENDAR
`

func TestParseICS(t *testing.T) {
	inputs, err := ParseICS([]byte(strings.ReplaceAll(testICS, "\n", "\r\n")))
	if err != nil {
		t.Fatal(err)
	}
	if len(inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %d", len(inputs))
	}
	if inputs[0].Title != "Launch review" {
		t.Fatalf("unexpected title %q", inputs[0].Title)
	}
	if inputs[0].DeadlineText != "2026-06-01" {
		t.Fatalf("expected ISO deadline text, got %q", inputs[0].DeadlineText)
	}
	if inputs[0].Notes != "bring slides" {
		t.Fatalf("expected description carried into notes, got %q", inputs[0].Notes)
	}
}

func TestImportICS(t *testing.T) {
	s := newTestStore(t)
	tl, err := s.CreateTimeline("Calendar")
	if err != nil {
		t.Fatal(err)
	}

	count, err := ImportICS(s, tl.ID, []byte(strings.ReplaceAll(testICS, "\n", "\r\n")))
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("expected 2 imported events, got %d", count)
	}

	events, err := s.ListEvents(store.EventFilter{TimelineID: &tl.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[0].Temporal == nil {
		t.Fatalf("expected 2 events with temporal values, got %d", len(events))
	}
}

func TestParseICSRejectsMissingSummary(t *testing.T) {
	ics := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:ev1@test
DTSTAMP:20260101T000000Z
DTSTART:20260601T000000Z
END:VEVENT
END:VCALENDAR
`
	_, err := ParseICS([]byte(strings.ReplaceAll(ics, "\n", "\r\n")))
	if err == nil {
		t.Fatal("expected rejection for missing summary")
	}
}
