package attendance

import (
	"context"
)

// AttendanceService defines the clock operations and attendance queries
type AttendanceService interface {
	// CheckIn records a check-in for the staff at the current instant
	CheckIn(ctx context.Context, req CheckInRequest) (DayResponse, error)

	// CheckOut closes today's (or last night's) open attendance
	CheckOut(ctx context.Context, req CheckOutRequest) (DayResponse, error)

	// UpdateStatus overrides a day's status (manager)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (DayResponse, error)

	// Grace flips an absent day to present (manager)
	Grace(ctx context.Context, req GraceRequest) (DayResponse, error)

	GetToday(ctx context.Context, staffID string) (*DayResponse, error)
	GetHistory(ctx context.Context, req HistoryRequest) ([]DayResponse, error)
	GetMonthlyStats(ctx context.Context, req MonthlyStatsRequest) (MonthlyStats, error)
}
