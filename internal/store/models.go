package store

import "time"

// Timeline is a named collection of events. A timeline owns its events
// exclusively; deleting it cascades to them.
type Timeline struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventInput carries the user-editable fields of an event. The temporal
// cache columns are always derived from DeadlineText inside the store and
// never accepted from callers.
type EventInput struct {
	Title           string
	DeadlineText    string
	PrimaryGroups   []string
	SecondaryGroups []string
	Goal            string
	Notes           string
}

// EventFilter is used to filter events in queries.
type EventFilter struct {
	TimelineID *int64
	Goal       *string
	Entity     *string
	Limit      int
}
