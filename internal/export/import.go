package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/TzIsf62C/timeline-visualizer/internal/dateparse"
	"github.com/TzIsf62C/timeline-visualizer/internal/store"
)

// ParseImport reads a JSON export payload back into event inputs. The
// whole import is rejected on the first structurally invalid record:
// title and deadline_text are required, and the deadline must parse.
// Nothing is written anywhere; the caller decides what to do with the
// validated inputs.
func ParseImport(data []byte) ([]store.EventInput, error) {
	var payload jsonExport
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode import: %w", err)
	}

	inputs := make([]store.EventInput, 0, len(payload.Events))
	for i, je := range payload.Events {
		title := strings.TrimSpace(je.Title)
		if title == "" {
			return nil, fmt.Errorf("import record %d: missing title", i+1)
		}
		deadline := strings.TrimSpace(je.DeadlineText)
		if deadline == "" {
			return nil, fmt.Errorf("import record %d (%q): missing deadline_text", i+1, title)
		}
		if dateparse.Parse(deadline) == nil {
			return nil, fmt.Errorf("import record %d (%q): deadline %q did not parse", i+1, title, deadline)
		}
		inputs = append(inputs, store.EventInput{
			Title:           title,
			DeadlineText:    deadline,
			PrimaryGroups:   je.PrimaryGroups,
			SecondaryGroups: je.SecondaryGroups,
			Goal:            je.Goal,
			Notes:           je.Notes,
		})
	}
	return inputs, nil
}

// ImportJSON validates a JSON payload and inserts every event into the
// given timeline. All-or-nothing: a bad record rejects the whole file
// before anything is written.
func ImportJSON(s *store.Store, timelineID int64, data []byte) (int, error) {
	inputs, err := ParseImport(data)
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
