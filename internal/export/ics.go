package export

import (
	"bytes"
	"fmt"
	"strings"

	ical "github.com/arran4/golang-ical"

	"github.com/TzIsf62C/timeline-visualizer/internal/store"
)

// ParseICS maps the VEVENTs of an ICS payload onto event inputs. DTSTART
// becomes the deadline text in ISO form, so the event's temporal value is
// still derived from its deadline text exactly like a hand-typed one.
// VEVENTs without a summary or a usable DTSTART reject the import.
func ParseICS(data []byte) ([]store.EventInput, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse ics: %w", err)
	}

	var inputs []store.EventInput
	for i, ve := range cal.Events() {
		var title string
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			title = strings.TrimSpace(p.Value)
		}
		if title == "" {
			return nil, fmt.Errorf("ics vevent %d: missing summary", i+1)
		}

		start, err := ve.GetStartAt()
		if err != nil {
			return nil, fmt.Errorf("ics vevent %d (%q): no usable DTSTART: %w", i+1, title, err)
		}

		var notes string
		if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
			notes = p.Value
		}

		inputs = append(inputs, store.EventInput{
			Title:        title,
			DeadlineText: start.Format(dateLayout),
			Notes:        notes,
		})
	}
	return inputs, nil
}

// ImportICS inserts every VEVENT of an ICS payload into the given
// timeline, with the same all-or-nothing validation as ImportJSON.
func ImportICS(s *store.Store, timelineID int64, data []byte) (int, error) {
	inputs, err := ParseICS(data)
	if err != nil {
		return 0, err
	}
	for _, in := range inputs {
		if _, err := s.CreateEvent(timelineID, in); err != nil {
			return 0, err
		}
	}
	return len(inputs), nil
}
