package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/policy"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/shift"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/staff"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/database"
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	staff.StaffRepository
	shift.ShiftRepository
	clock clock.Clock
	rules attendance.Rules
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	staffRepo staff.StaffRepository,
	shiftRepo shift.ShiftRepository,
	clk clock.Clock,
	pol policy.Policy,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		StaffRepository:      staffRepo,
		ShiftRepository:      shiftRepo,
		clock:                clk,
		rules:                attendance.RulesFromPolicy(pol),
	}
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format(time.RFC3339)
	return &format
}

// localDate re-anchors a stored calendar date to the deployment zone.
func (a *AttendanceServiceImpl) localDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, a.clock.Location())
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.DayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayResponse{}, err
	}

	now := a.clock.Now()
	today := clock.StartOfDay(now)

	if _, err := a.StaffRepository.GetByID(ctx, req.StaffID); err != nil {
		return attendance.DayResponse{}, err
	}

	lastEvent, err := a.AttendanceRepository.GetLastEvent(ctx, req.StaffID, today, today.AddDate(0, 0, 1))
	if err != nil {
		return attendance.DayResponse{}, fmt.Errorf("failed to get last attendance event: %w", err)
	}
	if lastEvent != nil && lastEvent.Type == attendance.EventCheckIn {
		return attendance.DayResponse{}, attendance.ErrAlreadyCheckedIn
	}

	activeShift, err := shift.ActiveShift(ctx, a.ShiftRepository, req.StaffID, now)
	if err != nil {
		return attendance.DayResponse{}, err
	}
	if activeShift == nil {
		return attendance.DayResponse{}, attendance.ErrNoActiveShift
	}

	if !activeShift.WorksOn(now.Weekday()) {
		return attendance.DayResponse{}, attendance.ErrNotWorkDay
	}

	isOff, err := a.ShiftRepository.IsOffDate(ctx, activeShift.ID, today)
	if err != nil {
		return attendance.DayResponse{}, fmt.Errorf("failed to check shift off date: %w", err)
	}
	if isOff {
		return attendance.DayResponse{}, attendance.ErrShiftOffDay
	}

	window, err := attendance.NewWindow(*activeShift, today)
	if err != nil {
		return attendance.DayResponse{}, fmt.Errorf("failed to resolve shift window: %w", err)
	}

	outcome, err := attendance.CheckInTransition(window, a.rules, now)
	if err != nil {
		return attendance.DayResponse{}, err
	}

	var result attendance.Day
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		shiftID := activeShift.ID
		if _, err := a.AttendanceRepository.CreateEvent(txCtx, attendance.Event{
			StaffID:   req.StaffID,
			ShiftID:   &shiftID,
			Type:      attendance.EventCheckIn,
			Timestamp: now,
			Source:    req.Source,
			IPAddress: req.IPAddress,
			UserAgent: req.UserAgent,
		}); err != nil {
			return fmt.Errorf("failed to record check-in event: %w", err)
		}

		existing, err := a.AttendanceRepository.GetDay(txCtx, req.StaffID, today)
		if err != nil {
			return fmt.Errorf("failed to get attendance day: %w", err)
		}

		if existing == nil {
			official := outcome.OfficialAt
			created, err := a.AttendanceRepository.CreateDay(txCtx, attendance.Day{
				StaffID:     req.StaffID,
				Date:        today,
				ShiftID:     &shiftID,
				CheckInAt:   &official,
				Status:      outcome.Status,
				LateMinutes: outcome.LateMinutes,
			})
			if err != nil {
				return fmt.Errorf("failed to create attendance day: %w", err)
			}
			result = created
			return nil
		}

		// An established check-in time is never overwritten.
		if existing.CheckInAt == nil {
			official := outcome.OfficialAt
			existing.CheckInAt = &official
			existing.ShiftID = &shiftID
			existing.Status = outcome.Status
			existing.LateMinutes = outcome.LateMinutes
			if err := a.AttendanceRepository.UpdateDay(txCtx, *existing); err != nil {
				return fmt.Errorf("failed to update attendance day: %w", err)
			}
		}
		result = *existing
		return nil
	})
	if err != nil {
		return attendance.DayResponse{}, err
	}

	slog.Info("staff checked in",
		"staff_id", req.StaffID,
		"status", result.Status,
		"late_minutes", result.LateMinutes,
	)

	return mapDayToResponse(result), nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.DayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayResponse{}, err
	}

	now := a.clock.Now()
	today := clock.StartOfDay(now)
	yesterday := today.AddDate(0, 0, -1)

	if _, err := a.StaffRepository.GetByID(ctx, req.StaffID); err != nil {
		return attendance.DayResponse{}, err
	}

	lastEvent, err := a.AttendanceRepository.GetLastEvent(ctx, req.StaffID, today, today.AddDate(0, 0, 1))
	if err != nil {
		return attendance.DayResponse{}, fmt.Errorf("failed to get last attendance event: %w", err)
	}
	if lastEvent == nil {
		// Overnight shifts check in on the previous calendar day.
		lastEvent, err = a.AttendanceRepository.GetLastEvent(ctx, req.StaffID, yesterday, today)
		if err != nil {
			return attendance.DayResponse{}, fmt.Errorf("failed to get last attendance event: %w", err)
		}
	}
	if lastEvent == nil || lastEvent.Type != attendance.EventCheckIn {
		return attendance.DayResponse{}, attendance.ErrNotCheckedIn
	}

	day, err := a.AttendanceRepository.GetDay(ctx, req.StaffID, today)
	if err != nil {
		return attendance.DayResponse{}, fmt.Errorf("failed to get attendance day: %w", err)
	}
	if day == nil {
		prev, err := a.AttendanceRepository.GetDay(ctx, req.StaffID, yesterday)
		if err != nil {
			return attendance.DayResponse{}, fmt.Errorf("failed to get attendance day: %w", err)
		}
		if prev != nil && prev.CheckOutAt == nil {
			day = prev
		}
	}
	if day == nil {
		return attendance.DayResponse{}, attendance.ErrAttendanceNotFound
	}
	if day.CheckInAt == nil {
		return attendance.DayResponse{}, attendance.ErrNotCheckedIn
	}

	activeShift, err := a.resolveCheckOutShift(ctx, req.StaffID, *day, now)
	if err != nil {
		return attendance.DayResponse{}, err
	}

	window, err := attendance.NewWindow(*activeShift, a.localDate(day.Date))
	if err != nil {
		return attendance.DayResponse{}, fmt.Errorf("failed to resolve shift window: %w", err)
	}

	outcome, err := attendance.CheckOutTransition(day.Status, *day.CheckInAt, window, now)
	if err != nil {
		return attendance.DayResponse{}, err
	}

	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		shiftID := activeShift.ID
		if _, err := a.AttendanceRepository.CreateEvent(txCtx, attendance.Event{
			StaffID:   req.StaffID,
			ShiftID:   &shiftID,
			Type:      attendance.EventCheckOut,
			Timestamp: now,
			Source:    req.Source,
			IPAddress: req.IPAddress,
			UserAgent: req.UserAgent,
		}); err != nil {
			return fmt.Errorf("failed to record check-out event: %w", err)
		}

		checkOutAt := now
		day.CheckOutAt = &checkOutAt
		day.Status = outcome.Status
		day.EarlyExitMinutes = outcome.EarlyExitMinutes
		day.OTMinutes = outcome.OTMinutes
		day.TotalMinutes = outcome.TotalMinutes

		if err := a.AttendanceRepository.UpdateDay(txCtx, *day); err != nil {
			return fmt.Errorf("failed to update attendance day: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.DayResponse{}, err
	}

	slog.Info("staff checked out",
		"staff_id", req.StaffID,
		"status", day.Status,
		"ot_minutes", day.OTMinutes,
		"early_exit_minutes", day.EarlyExitMinutes,
	)

	return mapDayToResponse(*day), nil
}

// resolveCheckOutShift prefers the assignment active now and falls back to
// the shift recorded on the day.
func (a *AttendanceServiceImpl) resolveCheckOutShift(ctx context.Context, staffID string, day attendance.Day, now time.Time) (*shift.Shift, error) {
	activeShift, err := shift.ActiveShift(ctx, a.ShiftRepository, staffID, now)
	if err != nil {
		return nil, err
	}
	if activeShift != nil {
		return activeShift, nil
	}
	if day.ShiftID == nil {
		return nil, attendance.ErrNoActiveShift
	}

	recorded, err := a.ShiftRepository.GetByID(ctx, *day.ShiftID)
	if err != nil {
		return nil, err
	}
	return &recorded, nil
}

// UpdateStatus implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) UpdateStatus(ctx context.Context, req attendance.UpdateStatusRequest) (attendance.DayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayResponse{}, err
	}

	day, err := a.AttendanceRepository.GetDayByID(ctx, req.AttendanceID)
	if err != nil {
		return attendance.DayResponse{}, err
	}

	prior := day.Status
	next, err := attendance.OverrideTransition(prior, attendance.Status(req.Status))
	if err != nil {
		return attendance.DayResponse{}, err
	}

	day.Status = next
	day.IsManual = true
	day.AppendNote(req.Note)

	if err := a.AttendanceRepository.UpdateDay(ctx, day); err != nil {
		return attendance.DayResponse{}, fmt.Errorf("failed to update attendance day: %w", err)
	}

	slog.Info("attendance status overridden",
		"attendance_id", day.ID,
		"staff_id", day.StaffID,
		"from", prior,
		"to", next,
		"actor_id", req.ActorID,
	)

	return mapDayToResponse(day), nil
}

// Grace implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Grace(ctx context.Context, req attendance.GraceRequest) (attendance.DayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayResponse{}, err
	}

	date, err := clock.ParseDate(req.Date, a.clock.Location())
	if err != nil {
		return attendance.DayResponse{}, fmt.Errorf("failed to parse date: %w", err)
	}

	day, err := a.AttendanceRepository.GetDay(ctx, req.StaffID, date)
	if err != nil {
		return attendance.DayResponse{}, fmt.Errorf("failed to get attendance day: %w", err)
	}
	if day == nil {
		return attendance.DayResponse{}, attendance.ErrAttendanceNotFound
	}

	next, err := attendance.GraceTransition(day.Status)
	if err != nil {
		return attendance.DayResponse{}, err
	}

	day.Status = next
	day.IsManual = true
	day.AppendNote(req.Note)

	if err := a.AttendanceRepository.UpdateDay(ctx, *day); err != nil {
		return attendance.DayResponse{}, fmt.Errorf("failed to update attendance day: %w", err)
	}

	slog.Info("absence graced", "staff_id", req.StaffID, "date", req.Date, "actor_id", req.ActorID)

	return mapDayToResponse(*day), nil
}

// GetToday implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetToday(ctx context.Context, staffID string) (*attendance.DayResponse, error) {
	today := clock.StartOfDay(a.clock.Now())

	day, err := a.AttendanceRepository.GetDay(ctx, staffID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance day: %w", err)
	}
	if day == nil {
		return nil, nil
	}

	resp := mapDayToResponse(*day)
	return &resp, nil
}

// GetHistory implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetHistory(ctx context.Context, req attendance.HistoryRequest) ([]attendance.DayResponse, error) {
	req.ApplyDefaults()

	tomorrow := clock.StartOfDay(a.clock.Now()).AddDate(0, 0, 1)
	from := tomorrow.AddDate(0, 0, -req.Days)

	days, err := a.AttendanceRepository.ListDays(ctx, req.StaffID, from, tomorrow)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance days: %w", err)
	}

	responses := make([]attendance.DayResponse, 0, len(days))
	for _, d := range days {
		responses = append(responses, mapDayToResponse(d))
	}
	return responses, nil
}

// GetMonthlyStats implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMonthlyStats(ctx context.Context, req attendance.MonthlyStatsRequest) (attendance.MonthlyStats, error) {
	if err := req.Validate(); err != nil {
		return attendance.MonthlyStats{}, err
	}

	month, err := clock.ParseMonth(req.Month, a.clock.Location())
	if err != nil {
		return attendance.MonthlyStats{}, fmt.Errorf("failed to parse month: %w", err)
	}
	from, to := clock.MonthRange(month)

	days, err := a.AttendanceRepository.ListDays(ctx, req.StaffID, from, to)
	if err != nil {
		return attendance.MonthlyStats{}, fmt.Errorf("failed to list attendance days: %w", err)
	}

	stats := attendance.MonthlyStats{StaffID: req.StaffID, Month: req.Month}
	for _, d := range days {
		stats.Accumulate(d)
	}
	return stats, nil
}

func mapDayToResponse(d attendance.Day) attendance.DayResponse {
	return attendance.DayResponse{
		ID:               d.ID,
		StaffID:          d.StaffID,
		Date:             d.Date.Format(clock.DateLayout),
		ShiftID:          d.ShiftID,
		CheckInAt:        timePtrToString(d.CheckInAt),
		CheckOutAt:       timePtrToString(d.CheckOutAt),
		Status:           string(d.Status),
		LateMinutes:      d.LateMinutes,
		EarlyExitMinutes: d.EarlyExitMinutes,
		OTMinutes:        d.OTMinutes,
		TotalMinutes:     d.TotalMinutes,
		IsManual:         d.IsManual,
		Notes:            d.Notes,
	}
}
