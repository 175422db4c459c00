package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/TzIsf62C/timeline-visualizer/internal/dateparse"
	"github.com/TzIsf62C/timeline-visualizer/internal/timeline"
)

const dateLayout = "2006-01-02"

// CreateEvent parses the deadline text and inserts the event with its
// derived temporal cache. An unparseable deadline rejects the write; no
// event row ever exists without a valid temporal value.
func (s *Store) CreateEvent(timelineID int64, in EventInput) (*timeline.Event, error) {
	tv := dateparse.Parse(in.DeadlineText)
	if tv == nil {
		return nil, fmt.Errorf("create event %q: deadline %q did not parse", in.Title, in.DeadlineText)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`
		INSERT INTO events (timeline_id, title, deadline_text, start_date, end_date,
		                    is_ongoing, computed_date, primary_groups, secondary_groups,
		                    goal, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		timelineID, in.Title, in.DeadlineText,
		tv.Start.Format(dateLayout), endDateArg(tv), boolToInt(tv.Ongoing),
		tv.Start.Format(dateLayout),
		joinGroups(timeline.NormalizePrimary(in.PrimaryGroups)),
		joinGroups(timeline.NormalizeGroups(in.SecondaryGroups)),
		strings.TrimSpace(in.Goal), in.Notes, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetEvent(id)
}

// UpdateEvent rewrites the user-editable fields. The temporal cache is
// re-derived from the submitted deadline text unconditionally, so a stale
// cache can never outlive an edit to its source text.
func (s *Store) UpdateEvent(id int64, in EventInput) (*timeline.Event, error) {
	tv := dateparse.Parse(in.DeadlineText)
	if tv == nil {
		return nil, fmt.Errorf("update event %d: deadline %q did not parse", id, in.DeadlineText)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`
		UPDATE events SET title = ?, deadline_text = ?, start_date = ?, end_date = ?,
		       is_ongoing = ?, computed_date = ?, primary_groups = ?, secondary_groups = ?,
		       goal = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		in.Title, in.DeadlineText,
		tv.Start.Format(dateLayout), endDateArg(tv), boolToInt(tv.Ongoing),
		tv.Start.Format(dateLayout),
		joinGroups(timeline.NormalizePrimary(in.PrimaryGroups)),
		joinGroups(timeline.NormalizeGroups(in.SecondaryGroups)),
		strings.TrimSpace(in.Goal), in.Notes, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update event %d: %w", id, err)
	}
	return s.GetEvent(id)
}

func (s *Store) GetEvent(id int64) (*timeline.Event, error) {
	row := s.db.QueryRow(eventSelect+` WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("get event %d: %w", id, err)
	}
	return e, nil
}

// ListEvents returns events ordered by start date ascending, with ties
// broken by id so output is stable.
func (s *Store) ListEvents(f EventFilter) ([]*timeline.Event, error) {
	query := eventSelect + ` WHERE 1=1`
	var args []any

	if f.TimelineID != nil {
		query += ` AND timeline_id = ?`
		args = append(args, *f.TimelineID)
	}
	if f.Goal != nil {
		query += ` AND goal = ?`
		args = append(args, *f.Goal)
	}
	query += ` ORDER BY start_date, id`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*timeline.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		// Entity filtering happens here rather than in SQL because
		// groups are a delimited column.
		if f.Entity != nil && !e.HasPrimaryGroup(*f.Entity) && !e.HasSecondaryGroup(*f.Entity) {
			continue
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) DeleteEvent(id int64) error {
	_, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	return err
}

const eventSelect = `SELECT id, timeline_id, title, deadline_text, start_date, end_date,
       is_ongoing, primary_groups, secondary_groups, goal, notes, created_at, updated_at
FROM events`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*timeline.Event, error) {
	e := &timeline.Event{}
	var startDate, createdAt, updatedAt, primary, secondary string
	var endDate sql.NullString
	var ongoing int

	err := row.Scan(&e.ID, &e.TimelineID, &e.Title, &e.DeadlineText,
		&startDate, &endDate, &ongoing, &primary, &secondary,
		&e.Goal, &e.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	tv := &dateparse.TemporalValue{Ongoing: ongoing == 1}
	tv.Start, _ = time.Parse(dateLayout, startDate)
	if endDate.Valid {
		t, _ := time.Parse(dateLayout, endDate.String)
		tv.End = &t
	}
	e.Temporal = tv

	// Normalization is done once here, at the data-model boundary.
	e.PrimaryGroups = timeline.NormalizePrimary(splitGroups(primary))
	e.SecondaryGroups = timeline.NormalizeGroups(splitGroups(secondary))

	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return e, nil
}

func endDateArg(tv *dateparse.TemporalValue) any {
	if tv.End == nil {
		return nil
	}
	return tv.End.Format(dateLayout)
}

func joinGroups(groups []string) string {
	return strings.Join(groups, ",")
}

func splitGroups(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
