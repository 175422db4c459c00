package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/TzIsf62C/timeline-visualizer/internal/dateparse"
	"github.com/TzIsf62C/timeline-visualizer/internal/timeline"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Timeline   string      `json:"timeline"`
	Count      int         `json:"count"`
	Events     []jsonEvent `json:"events"`
}

type jsonEvent struct {
	ID              int64    `json:"id,omitempty"`
	Title           string   `json:"title"`
	DeadlineText    string   `json:"deadline_text"`
	StartDate       string   `json:"start_date,omitempty"`
	EndDate         string   `json:"end_date,omitempty"`
	IsOngoing       bool     `json:"is_ongoing,omitempty"`
	Formatted       string   `json:"formatted,omitempty"`
	PrimaryGroups   []string `json:"primary_groups,omitempty"`
	SecondaryGroups []string `json:"secondary_groups,omitempty"`
	Goal            string   `json:"goal,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

const dateLayout = "2006-01-02"

func ToJSON(events []*timeline.Event, timelineName, path string) error {
	out := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Timeline:   timelineName,
		Count:      len(events),
	}

	for _, e := range events {
		je := jsonEvent{
			ID:              e.ID,
			Title:           e.Title,
			DeadlineText:    e.DeadlineText,
			Formatted:       dateparse.FormatRange(e.Temporal),
			PrimaryGroups:   e.PrimaryGroups,
			SecondaryGroups: e.SecondaryGroups,
			Goal:            e.Goal,
			Notes:           e.Notes,
		}
		if e.Temporal != nil {
			je.StartDate = e.Temporal.Start.Format(dateLayout)
			if e.Temporal.End != nil {
				je.EndDate = e.Temporal.End.Format(dateLayout)
			}
			je.IsOngoing = e.Temporal.Ongoing
		}
		out.Events = append(out.Events, je)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
