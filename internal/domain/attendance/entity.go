package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent   Status = "present"
	StatusLate      Status = "late"
	StatusHalfDay   Status = "half_day"
	StatusEarlyExit Status = "early_exit"
	StatusAbsent    Status = "absent"
	StatusOnLeave   Status = "on_leave"
	StatusHoliday   Status = "holiday"
	StatusWeekend   Status = "weekend"
)

var StatusValues = []string{
	string(StatusPresent),
	string(StatusLate),
	string(StatusHalfDay),
	string(StatusEarlyExit),
	string(StatusAbsent),
	string(StatusOnLeave),
	string(StatusHoliday),
	string(StatusWeekend),
}

func (s Status) Valid() bool {
	for _, v := range StatusValues {
		if string(s) == v {
			return true
		}
	}
	return false
}

// Attended reports whether the status counts as a day worked.
func (s Status) Attended() bool {
	switch s {
	case StatusPresent, StatusLate, StatusHalfDay, StatusEarlyExit:
		return true
	}
	return false
}

type EventType string

const (
	EventCheckIn  EventType = "check_in"
	EventCheckOut EventType = "check_out"
)

// Event is an immutable clock action. Events are only ever appended.
type Event struct {
	ID        string
	StaffID   string
	ShiftID   *string
	Type      EventType
	Timestamp time.Time
	Source    string
	IPAddress *string
	UserAgent *string
	IsManual  bool
	CreatedAt time.Time
}

// Day is the derived attendance summary for one staff member on one date.
type Day struct {
	ID               string
	StaffID          string
	Date             time.Time
	ShiftID          *string
	CheckInAt        *time.Time
	CheckOutAt       *time.Time
	Status           Status
	LateMinutes      int
	EarlyExitMinutes int
	OTMinutes        int
	TotalMinutes     int
	IsManual         bool
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AppendNote adds note on its own line, keeping earlier notes.
func (d *Day) AppendNote(note string) {
	if note == "" {
		return
	}
	if d.Notes == nil || *d.Notes == "" {
		d.Notes = &note
		return
	}
	joined := *d.Notes + "\n" + note
	d.Notes = &joined
}

type MonthlyStats struct {
	StaffID          string `json:"staff_id"`
	Month            string `json:"month"`
	PresentDays      int    `json:"present_days"`
	LateDays         int    `json:"late_days"`
	HalfDays         int    `json:"half_days"`
	EarlyExitDays    int    `json:"early_exit_days"`
	AbsentDays       int    `json:"absent_days"`
	TotalOTMinutes   int    `json:"total_ot_minutes"`
	TotalWorkMinutes int    `json:"total_work_minutes"`
}

// Accumulate folds one day into the stats.
func (m *MonthlyStats) Accumulate(d Day) {
	if d.Status.Attended() {
		m.PresentDays++
	}
	switch d.Status {
	case StatusLate:
		m.LateDays++
	case StatusHalfDay:
		m.HalfDays++
	case StatusEarlyExit:
		m.EarlyExitDays++
	case StatusAbsent:
		m.AbsentDays++
	}
	m.TotalOTMinutes += d.OTMinutes
	m.TotalWorkMinutes += d.TotalMinutes
}
