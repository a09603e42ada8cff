package payroll

import (
	"github.com/cmlabs-hris/hris-workforce/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

// ComputePayable derives the per-day rate and payable salary for a month.
// Only unexcused absence reduces pay, and payable never drops below zero.
func ComputePayable(salary decimal.Decimal, workDays, absentDays int) (perDay, payable decimal.Decimal) {
	if workDays < 1 {
		workDays = 1
	}
	if absentDays < 0 {
		absentDays = 0
	}

	days := decimal.NewFromInt(int64(workDays))
	perDay = salary.Div(days).Round(2)

	// Multiply before dividing so rounding the rate doesn't skew the total.
	deduction := salary.Mul(decimal.NewFromInt(int64(absentDays))).Div(days)
	payable = decimal.Max(decimal.Zero, salary.Sub(deduction)).Round(2)
	return perDay, payable
}

// Summarize counts one staff member's attendance marks. Absences on dates in
// excused (granted leave) count as leave instead.
func Summarize(marks []AttendanceMark, excused map[string]bool) AttendanceSummary {
	var s AttendanceSummary
	for _, m := range marks {
		if m.Status.Attended() {
			s.PresentDays++
		}
		switch m.Status {
		case attendance.StatusLate:
			s.LateDays++
		case attendance.StatusAbsent:
			if excused[m.Date] {
				s.OnLeaveDays++
			} else {
				s.AbsentDays++
			}
		case attendance.StatusOnLeave:
			s.OnLeaveDays++
		case attendance.StatusHoliday:
			s.HolidayDays++
		}
	}
	return s
}
