package payroll

import (
	"context"
	"time"
)

type PayrollRepository interface {
	// ========== SETTLEMENTS ==========

	// UpsertSettlement inserts the entry for (StaffID, Period) or updates it in
	// place. created reports whether a new row was inserted.
	UpsertSettlement(ctx context.Context, s Settlement) (result Settlement, created bool, err error)
	GetSettlement(ctx context.Context, staffID string, period string) (Settlement, error)
	ListSettlements(ctx context.Context, period string, staffIDs []string) ([]Settlement, error)

	// ========== ATTENDANCE ==========

	// ListAttendanceMarks returns day statuses with from <= date < to.
	ListAttendanceMarks(ctx context.Context, staffIDs []string, from, to time.Time) ([]AttendanceMark, error)
}
