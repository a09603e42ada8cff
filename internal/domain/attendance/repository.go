package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access for clock events and day summaries.
type AttendanceRepository interface {
	// CreateEvent appends an event. Events are never updated or deleted.
	CreateEvent(ctx context.Context, event Event) (Event, error)

	// GetLastEvent returns the latest event in [from, to), or nil if there is none.
	GetLastEvent(ctx context.Context, staffID string, from, to time.Time) (*Event, error)

	CreateDay(ctx context.Context, day Day) (Day, error)
	GetDayByID(ctx context.Context, id string) (Day, error)

	// GetDay returns the row for staff on date, or nil if none exists.
	GetDay(ctx context.Context, staffID string, date time.Time) (*Day, error)

	UpdateDay(ctx context.Context, day Day) error

	// ListDays returns rows with from <= date < to, newest first.
	ListDays(ctx context.Context, staffID string, from, to time.Time) ([]Day, error)
}
