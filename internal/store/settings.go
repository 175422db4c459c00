package store

import (
	"fmt"
	"strconv"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

type Setting struct {
	Key   string
	Value string
}

// DefaultMode returns the saved default view mode name, "unified" when unset.
func (s *Store) DefaultMode() string {
	v, err := s.GetSetting("default_mode")
	if err != nil || v == "" {
		return "unified"
	}
	return v
}

func (s *Store) SetDefaultMode(mode string) error {
	return s.SetSetting("default_mode", mode)
}

// LastTimeline returns the id of the most recently opened timeline, 0 when
// none is recorded.
func (s *Store) LastTimeline() int64 {
	v, err := s.GetSetting("last_timeline")
	if err != nil {
		return 0
	}
	id, _ := strconv.ParseInt(v, 10, 64)
	return id
}

func (s *Store) SetLastTimeline(id int64) error {
	return s.SetSetting("last_timeline", strconv.FormatInt(id, 10))
}
