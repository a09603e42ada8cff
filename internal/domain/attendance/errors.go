package attendance

import "github.com/cmlabs-hris/hris-workforce/internal/pkg/apperror"

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn = apperror.StateConflict("you have already checked in")
	ErrNoActiveShift    = apperror.PolicyViolation("no active shift assignment")
	ErrNotWorkDay       = apperror.PolicyViolation("today is not a work day")
	ErrShiftOffDay      = apperror.PolicyViolation("today is a shift off day")
	ErrShiftNotStarted  = apperror.PolicyViolation("shift has not started")
	ErrShiftOver        = apperror.PolicyViolation("shift is over")

	// Check-out errors
	ErrNotCheckedIn          = apperror.StateConflict("must check in before checking out")
	ErrCheckOutBeforeCheckIn = apperror.PolicyViolation("check-out time is before the recorded check-in time")

	// Override errors
	ErrNotAbsent     = apperror.StateConflict("only absent attendance can be graced")
	ErrInvalidStatus = apperror.Validation("invalid attendance status")

	ErrAttendanceNotFound = apperror.NotFound("attendance record not found")
	ErrDayExists          = apperror.StateConflict("attendance for this date already exists")
)
