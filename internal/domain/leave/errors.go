package leave

import "github.com/cmlabs-hris/hris-workforce/internal/pkg/apperror"

var (
	ErrApplicationNotFound = apperror.NotFound("leave application not found")

	ErrApplicationNotPending = apperror.StateConflict("leave application is not pending")
	ErrApplicationNotGranted = apperror.StateConflict("only approved leave can be revoked")
	ErrApplicationExpired    = apperror.StateConflict("leave application has expired")

	ErrNoWorkingDays       = apperror.PolicyViolation("no working days in the requested range")
	ErrInsufficientBalance = apperror.PolicyViolation("insufficient leave balance")
	ErrDateNotRequested    = apperror.PolicyViolation("date is not part of the leave request")
	ErrNotApplicant        = apperror.PolicyViolation("only the applicant can perform this action")
	ErrNotSickLeave        = apperror.PolicyViolation("medical documents can only be attached to sick leave")

	ErrOverlappingDates = apperror.Validation("a date cannot be both approved and paid")

	ErrBalanceCorrupted = apperror.StateConflict("leave balance does not cover the credit")
)
