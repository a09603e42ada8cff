package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/policy"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/shift"
)

// Window is a shift anchored to one calendar date together with its thresholds.
type Window struct {
	ShiftStart          time.Time
	ShiftEnd            time.Time
	GracePeriodMinutes  int
	LateAfterMinutes    int
	HalfDayAfterMinutes int
}

func NewWindow(sh shift.Shift, day time.Time) (Window, error) {
	start, end, err := sh.Bounds(day)
	if err != nil {
		return Window{}, err
	}
	return Window{
		ShiftStart:          start,
		ShiftEnd:            end,
		GracePeriodMinutes:  sh.GracePeriodMinutes,
		LateAfterMinutes:    sh.LateAfterMinutes,
		HalfDayAfterMinutes: sh.HalfDayAfterMinutes,
	}, nil
}

// Rules carries the clock tolerances taken from policy.
type Rules struct {
	Tolerance   time.Duration
	EarlyBuffer time.Duration
}

func RulesFromPolicy(p policy.Policy) Rules {
	return Rules{Tolerance: p.CheckInTolerance, EarlyBuffer: p.EarlyCheckInBuffer}
}

type CheckInOutcome struct {
	// OfficialAt is the recorded check-in instant, snapped to shift start
	// when the arrival is within tolerance.
	OfficialAt  time.Time
	Status      Status
	LateMinutes int
}

// CheckInTransition classifies a check-in at now against w.
// Half-day takes precedence over late, which takes precedence over grace.
func CheckInTransition(w Window, rules Rules, now time.Time) (CheckInOutcome, error) {
	if now.Before(w.ShiftStart.Add(-rules.EarlyBuffer)) {
		return CheckInOutcome{}, ErrShiftNotStarted
	}
	if now.After(w.ShiftEnd) {
		return CheckInOutcome{}, ErrShiftOver
	}

	diff := wholeMinutes(now.Sub(w.ShiftStart))
	if diff <= wholeMinutes(rules.Tolerance) {
		return CheckInOutcome{OfficialAt: w.ShiftStart, Status: StatusPresent}, nil
	}

	out := CheckInOutcome{OfficialAt: now}
	// A threshold of 0 means the shift does not use it.
	switch {
	case w.HalfDayAfterMinutes > 0 && diff > w.HalfDayAfterMinutes:
		out.Status = StatusHalfDay
		out.LateMinutes = diff
	case w.LateAfterMinutes > 0 && diff > w.LateAfterMinutes:
		out.Status = StatusLate
		out.LateMinutes = diff
	case diff <= w.GracePeriodMinutes:
		out.Status = StatusPresent
	default:
		out.Status = StatusLate
		out.LateMinutes = diff
	}
	return out, nil
}

type CheckOutOutcome struct {
	Status           Status
	EarlyExitMinutes int
	OTMinutes        int
	TotalMinutes     int
}

// CheckOutTransition derives the day's status and minute counters for a
// check-out at now, given the status and check-in recorded so far.
func CheckOutTransition(prior Status, checkInAt time.Time, w Window, now time.Time) (CheckOutOutcome, error) {
	if now.Before(checkInAt) {
		return CheckOutOutcome{}, ErrCheckOutBeforeCheckIn
	}

	out := CheckOutOutcome{
		Status:       prior,
		TotalMinutes: wholeMinutes(now.Sub(checkInAt)),
	}

	if now.After(w.ShiftEnd) {
		out.OTMinutes = wholeMinutes(now.Sub(w.ShiftEnd))
		return out, nil
	}

	out.EarlyExitMinutes = wholeMinutes(w.ShiftEnd.Sub(now))
	// HalfDayAfterMinutes of 0 disables the half-day rule.
	switch {
	case w.HalfDayAfterMinutes > 0 && out.EarlyExitMinutes >= w.HalfDayAfterMinutes:
		out.Status = StatusHalfDay
	case out.EarlyExitMinutes > 0 && (prior == StatusPresent || prior == StatusLate):
		out.Status = StatusEarlyExit
	}
	return out, nil
}

// OverrideTransition validates an administrative status change.
func OverrideTransition(prior, target Status) (Status, error) {
	if target == "" {
		return prior, fmt.Errorf("%w: status is required", ErrInvalidStatus)
	}
	if !target.Valid() {
		return prior, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}
	return target, nil
}

// GraceTransition turns an absence into presence. Any other prior status is rejected.
func GraceTransition(prior Status) (Status, error) {
	if prior != StatusAbsent {
		return prior, ErrNotAbsent
	}
	return StatusPresent, nil
}

func wholeMinutes(d time.Duration) int {
	return int(d / time.Minute)
}
