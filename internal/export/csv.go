package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/TzIsf62C/timeline-visualizer/internal/dateparse"
	"github.com/TzIsf62C/timeline-visualizer/internal/timeline"
)

func ToCSV(events []*timeline.Event, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Title", "Deadline", "Start", "End", "Ongoing", "Resolved", "Primary Groups", "Secondary Groups", "Goal", "Notes"}); err != nil {
		return err
	}

	for _, e := range events {
		start, end, ongoing := "", "", "no"
		if e.Temporal != nil {
			start = e.Temporal.Start.Format(dateLayout)
			if e.Temporal.End != nil {
				end = e.Temporal.End.Format(dateLayout)
			}
			if e.Temporal.Ongoing {
				ongoing = "yes"
			}
		}

		row := []string{
			fmt.Sprintf("%d", e.ID),
			e.Title,
			e.DeadlineText,
			start,
			end,
			ongoing,
			dateparse.FormatRange(e.Temporal),
			strings.Join(e.PrimaryGroups, ";"),
			strings.Join(e.SecondaryGroups, ";"),
			e.Goal,
			e.Notes,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
