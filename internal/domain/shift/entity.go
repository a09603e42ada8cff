package shift

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Shift struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	StartTime           string         `json:"start_time"` // HH:MM
	EndTime             string         `json:"end_time"`   // HH:MM
	WorkDays            []time.Weekday `json:"work_days"`  // 0=Sunday, ..., 6=Saturday
	GracePeriodMinutes  int            `json:"grace_period_minutes"`
	LateAfterMinutes    int            `json:"late_after_minutes"`
	HalfDayAfterMinutes int            `json:"half_day_after_minutes"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// Assignment binds a staff member to a shift for a date range.
// A nil EndDate means open-ended.
type Assignment struct {
	ID        string
	StaffID   string
	ShiftID   string
	StartDate time.Time
	EndDate   *time.Time
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Covers reports whether the assignment is in force on at's calendar date.
func (a Assignment) Covers(at time.Time) bool {
	if !a.IsActive {
		return false
	}
	day := dateOnly(at)
	if day.Before(dateOnly(a.StartDate.In(at.Location()))) {
		return false
	}
	if a.EndDate != nil && day.After(dateOnly(a.EndDate.In(at.Location()))) {
		return false
	}
	return true
}

func (s Shift) WorksOn(d time.Weekday) bool {
	for _, wd := range s.WorkDays {
		if wd == d {
			return true
		}
	}
	return false
}

// Overnight reports whether the shift ends on the calendar day after it starts.
func (s Shift) Overnight() bool {
	start, errStart := parseClock(s.StartTime)
	end, errEnd := parseClock(s.EndTime)
	return errStart == nil && errEnd == nil && end <= start
}

// Bounds anchors the shift's time-of-day fields to day's calendar date.
// The end is moved to the next day for overnight shifts.
func (s Shift) Bounds(day time.Time) (time.Time, time.Time, error) {
	startOffset, err := parseClock(s.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("shift %s start time: %w", s.ID, err)
	}
	endOffset, err := parseClock(s.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("shift %s end time: %w", s.ID, err)
	}

	endDay := day
	if endOffset <= startOffset {
		endDay = day.AddDate(0, 0, 1)
	}
	return wallClock(day, startOffset), wallClock(endDay, endOffset), nil
}

// wallClock returns the instant at the given time of day on day's calendar
// date, in day's zone. It stays on the wall clock across DST changes.
func wallClock(day time.Time, offset time.Duration) time.Time {
	y, m, d := day.Date()
	h := int(offset / time.Hour)
	minute := int(offset % time.Hour / time.Minute)
	sec := int(offset % time.Minute / time.Second)
	return time.Date(y, m, d, h, minute, sec, 0, day.Location())
}

// WorkingDays lists the calendar days in [from, to] whose weekday is in workDays.
func WorkingDays(from, to time.Time, workDays []time.Weekday) []time.Time {
	set := make(map[time.Weekday]bool, len(workDays))
	for _, wd := range workDays {
		set[wd] = true
	}

	var days []time.Time
	for d := dateOnly(from); !d.After(dateOnly(to)); d = d.AddDate(0, 0, 1) {
		if set[d.Weekday()] {
			days = append(days, d)
		}
	}
	return days
}

// CountWorkingDaysInMonth counts the days of month whose weekday is in workDays.
func CountWorkingDaysInMonth(month time.Time, workDays []time.Weekday) int {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	last := first.AddDate(0, 1, -1)
	return len(WorkingDays(first, last, workDays))
}

// parseClock accepts HH:MM and HH:MM:SS and returns the offset from midnight.
func parseClock(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	sec := 0
	if len(parts) == 3 {
		sec, err = strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid second in %q", s)
		}
	}

	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
