package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/shift"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/database"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/validator"
)

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) shift.ShiftRepository {
	return &shiftRepository{db: db}
}

// GetByID implements shift.ShiftRepository.
func (r *shiftRepository) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	if !validator.IsValidUUID(id) {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, start_time, end_time, work_days,
			   grace_period_minutes, late_after_minutes, half_day_after_minutes,
			   created_at, updated_at
		FROM shifts
		WHERE id = $1
	`

	var s shift.Shift
	var workDays []int16
	err := q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.StartTime, &s.EndTime, &workDays,
		&s.GracePeriodMinutes, &s.LateAfterMinutes, &s.HalfDayAfterMinutes,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		return shift.Shift{}, fmt.Errorf("failed to get shift: %w", err)
	}

	s.WorkDays = make([]time.Weekday, 0, len(workDays))
	for _, d := range workDays {
		s.WorkDays = append(s.WorkDays, time.Weekday(d))
	}
	return s, nil
}

// GetActiveAssignment implements shift.ShiftRepository.
func (r *shiftRepository) GetActiveAssignment(ctx context.Context, staffID string, at time.Time) (*shift.Assignment, error) {
	if !validator.IsValidUUID(staffID) {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, staff_id, shift_id, start_date, end_date, is_active, created_at, updated_at
		FROM shift_assignments
		WHERE staff_id = $1
		  AND is_active = TRUE
		  AND start_date <= $2::date
		  AND (end_date IS NULL OR end_date >= $2::date)
		ORDER BY start_date DESC
		LIMIT 1
	`

	var a shift.Assignment
	err := q.QueryRow(ctx, query, staffID, at.Format(clock.DateLayout)).Scan(
		&a.ID, &a.StaffID, &a.ShiftID, &a.StartDate, &a.EndDate, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active shift assignment: %w", err)
	}

	return &a, nil
}

// IsOffDate implements shift.ShiftRepository.
func (r *shiftRepository) IsOffDate(ctx context.Context, shiftID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shift_off_dates WHERE shift_id = $1 AND date = $2::date)`,
		shiftID, date.Format(clock.DateLayout),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check shift off date: %w", err)
	}
	return exists, nil
}

// CreateShift inserts a shift. Used by seeding and integration tests.
func CreateShift(ctx context.Context, db *database.DB, s shift.Shift) (shift.Shift, error) {
	q := GetQuerier(ctx, db)

	workDays := make([]int16, 0, len(s.WorkDays))
	for _, d := range s.WorkDays {
		workDays = append(workDays, int16(d))
	}

	err := q.QueryRow(ctx, `
		INSERT INTO shifts (name, start_time, end_time, work_days,
			grace_period_minutes, late_after_minutes, half_day_after_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, s.Name, s.StartTime, s.EndTime, workDays,
		s.GracePeriodMinutes, s.LateAfterMinutes, s.HalfDayAfterMinutes,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return shift.Shift{}, fmt.Errorf("failed to create shift: %w", err)
	}
	return s, nil
}

// AssignShift inserts an active, open-ended assignment.
func AssignShift(ctx context.Context, db *database.DB, staffID, shiftID string, startDate time.Time) (shift.Assignment, error) {
	q := GetQuerier(ctx, db)

	a := shift.Assignment{StaffID: staffID, ShiftID: shiftID, IsActive: true}
	err := q.QueryRow(ctx, `
		INSERT INTO shift_assignments (staff_id, shift_id, start_date)
		VALUES ($1, $2, $3::date)
		RETURNING id, start_date, created_at, updated_at
	`, staffID, shiftID, startDate.Format(clock.DateLayout)).Scan(&a.ID, &a.StartDate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return shift.Assignment{}, fmt.Errorf("failed to assign shift: %w", err)
	}
	return a, nil
}
