package store

import (
	"fmt"
	"time"
)

func (s *Store) CreateTimeline(name string) (*Timeline, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO timelines (name, created_at, updated_at) VALUES (?, ?, ?)`,
		name, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert timeline: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetTimeline(id)
}

func (s *Store) GetTimeline(id int64) (*Timeline, error) {
	tl := &Timeline{}
	var createdAt, updatedAt string
	err := s.db.QueryRow(
		`SELECT id, name, created_at, updated_at FROM timelines WHERE id = ?`, id,
	).Scan(&tl.ID, &tl.Name, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("get timeline %d: %w", id, err)
	}
	tl.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	tl.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return tl, nil
}

func (s *Store) ListTimelines() ([]Timeline, error) {
	rows, err := s.db.Query(`SELECT id, name, created_at, updated_at FROM timelines ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list timelines: %w", err)
	}
	defer rows.Close()

	var timelines []Timeline
	for rows.Next() {
		var tl Timeline
		var createdAt, updatedAt string
		if err := rows.Scan(&tl.ID, &tl.Name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		tl.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		tl.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		timelines = append(timelines, tl)
	}
	return timelines, rows.Err()
}

func (s *Store) RenameTimeline(id int64, name string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE timelines SET name = ?, updated_at = ? WHERE id = ?`, name, now, id,
	)
	return err
}

// DuplicateTimeline deep-copies a timeline and all its events under a new
// name and returns the copy.
func (s *Store) DuplicateTimeline(id int64, newName string) (*Timeline, error) {
	src, err := s.GetTimeline(id)
	if err != nil {
		return nil, err
	}

	dup, err := s.CreateTimeline(newName)
	if err != nil {
		return nil, fmt.Errorf("duplicate timeline %q: %w", src.Name, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO events (timeline_id, title, deadline_text, start_date, end_date,
		                    is_ongoing, computed_date, primary_groups, secondary_groups,
		                    goal, notes)
		SELECT ?, title, deadline_text, start_date, end_date,
		       is_ongoing, computed_date, primary_groups, secondary_groups,
		       goal, notes
		FROM events WHERE timeline_id = ?`,
		dup.ID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("copy events of timeline %d: %w", id, err)
	}
	return dup, nil
}

// DeleteTimeline removes a timeline; the events cascade with it.
func (s *Store) DeleteTimeline(id int64) error {
	_, err := s.db.Exec(`DELETE FROM timelines WHERE id = ?`, id)
	return err
}
