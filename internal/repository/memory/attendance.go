package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/clock"
)

type attendanceRepository struct {
	*Store
}

// Attendance returns the store's attendance.AttendanceRepository.
func (s *Store) Attendance() attendance.AttendanceRepository {
	return attendanceRepository{s}
}

// CreateEvent implements attendance.AttendanceRepository.
func (s attendanceRepository) CreateEvent(ctx context.Context, event attendance.Event) (attendance.Event, error) {
	defer s.lockWrite(ctx)()

	if err := s.fault("CreateEvent"); err != nil {
		return attendance.Event{}, err
	}
	if event.ID == "" {
		event.ID = newID()
	}
	event.CreatedAt = time.Now()
	s.data.events = append(s.data.events, event)
	return event, nil
}

// GetLastEvent implements attendance.AttendanceRepository.
func (s attendanceRepository) GetLastEvent(ctx context.Context, staffID string, from, to time.Time) (*attendance.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var last *attendance.Event
	for _, e := range s.data.events {
		if e.StaffID != staffID || e.Timestamp.Before(from) || !e.Timestamp.Before(to) {
			continue
		}
		// Events are appended in order, so ties keep the later insert.
		if last == nil || !e.Timestamp.Before(last.Timestamp) {
			e := e
			last = &e
		}
	}
	return last, nil
}

// CreateDay implements attendance.AttendanceRepository.
func (s attendanceRepository) CreateDay(ctx context.Context, day attendance.Day) (attendance.Day, error) {
	defer s.lockWrite(ctx)()

	if err := s.fault("CreateDay"); err != nil {
		return attendance.Day{}, err
	}
	if s.findDay(day.StaffID, day.Date) != nil {
		return attendance.Day{}, attendance.ErrDayExists
	}
	if day.ID == "" {
		day.ID = newID()
	}
	now := time.Now()
	day.CreatedAt, day.UpdatedAt = now, now
	s.data.days[day.ID] = day
	return day, nil
}

// GetDayByID implements attendance.AttendanceRepository.
func (s attendanceRepository) GetDayByID(ctx context.Context, id string) (attendance.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day, ok := s.data.days[id]
	if !ok {
		return attendance.Day{}, attendance.ErrAttendanceNotFound
	}
	return day, nil
}

// GetDay implements attendance.AttendanceRepository.
func (s attendanceRepository) GetDay(ctx context.Context, staffID string, date time.Time) (*attendance.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.findDay(staffID, date), nil
}

func (s attendanceRepository) findDay(staffID string, date time.Time) *attendance.Day {
	key := date.Format(clock.DateLayout)
	for _, d := range s.data.days {
		if d.StaffID == staffID && d.Date.In(date.Location()).Format(clock.DateLayout) == key {
			return &d
		}
	}
	return nil
}

// UpdateDay implements attendance.AttendanceRepository.
func (s attendanceRepository) UpdateDay(ctx context.Context, day attendance.Day) error {
	defer s.lockWrite(ctx)()

	if err := s.fault("UpdateDay"); err != nil {
		return err
	}
	existing, ok := s.data.days[day.ID]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	day.CreatedAt = existing.CreatedAt
	day.UpdatedAt = time.Now()
	s.data.days[day.ID] = day
	return nil
}

// ListDays implements attendance.AttendanceRepository.
func (s attendanceRepository) ListDays(ctx context.Context, staffID string, from, to time.Time) ([]attendance.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []attendance.Day
	for _, d := range s.data.days {
		if d.StaffID == staffID && !d.Date.Before(from) && d.Date.Before(to) {
			result = append(result, d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}
