package policy

import "time"

// Policy holds the tunable constants of the attendance, leave and payroll rules.
type Policy struct {
	// CheckInTolerance is how late a check-in may be and still snap to shift start.
	CheckInTolerance time.Duration
	// EarlyCheckInBuffer is how long before shift start check-in opens.
	EarlyCheckInBuffer time.Duration
	// DefaultMonthlyWorkDays is used by payroll when a staff has no shift.
	DefaultMonthlyWorkDays int
	// DefaultWorkWeek is used by leave expansion when a staff has no shift.
	DefaultWorkWeek []time.Weekday

	AnnualEntitlement int
	SickEntitlement   int
}

func Default() Policy {
	return Policy{
		CheckInTolerance:       5 * time.Minute,
		EarlyCheckInBuffer:     15 * time.Minute,
		DefaultMonthlyWorkDays: 22,
		DefaultWorkWeek: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
		},
		AnnualEntitlement: 12,
		SickEntitlement:   18,
	}
}
