package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/database"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const dayColumns = `
	id, staff_id, date, shift_id, check_in_at, check_out_at, status,
	late_minutes, early_exit_minutes, ot_minutes, total_minutes,
	is_manual, notes, created_at, updated_at
`

func scanDay(row pgx.Row) (attendance.Day, error) {
	var d attendance.Day
	err := row.Scan(
		&d.ID, &d.StaffID, &d.Date, &d.ShiftID, &d.CheckInAt, &d.CheckOutAt, &d.Status,
		&d.LateMinutes, &d.EarlyExitMinutes, &d.OTMinutes, &d.TotalMinutes,
		&d.IsManual, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

// CreateEvent implements attendance.AttendanceRepository.
func (a *attendanceRepository) CreateEvent(ctx context.Context, event attendance.Event) (attendance.Event, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_events (
			staff_id, shift_id, type, timestamp, source, ip_address, user_agent, is_manual
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		event.StaffID, event.ShiftID, event.Type, event.Timestamp,
		event.Source, event.IPAddress, event.UserAgent, event.IsManual,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return attendance.Event{}, fmt.Errorf("failed to create attendance event: %w", err)
	}

	return event, nil
}

// GetLastEvent implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetLastEvent(ctx context.Context, staffID string, from, to time.Time) (*attendance.Event, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, staff_id, shift_id, type, timestamp, source, ip_address, user_agent, is_manual, created_at
		FROM attendance_events
		WHERE staff_id = $1
		  AND timestamp >= $2
		  AND timestamp < $3
		ORDER BY timestamp DESC, created_at DESC
		LIMIT 1
	`

	var e attendance.Event
	err := q.QueryRow(ctx, query, staffID, from, to).Scan(
		&e.ID, &e.StaffID, &e.ShiftID, &e.Type, &e.Timestamp,
		&e.Source, &e.IPAddress, &e.UserAgent, &e.IsManual, &e.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last attendance event: %w", err)
	}

	return &e, nil
}

// CreateDay implements attendance.AttendanceRepository.
func (a *attendanceRepository) CreateDay(ctx context.Context, day attendance.Day) (attendance.Day, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_days (
			staff_id, date, shift_id, check_in_at, check_out_at, status,
			late_minutes, early_exit_minutes, ot_minutes, total_minutes, is_manual, notes
		) VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		day.StaffID, day.Date.Format(clock.DateLayout), day.ShiftID, day.CheckInAt, day.CheckOutAt, day.Status,
		day.LateMinutes, day.EarlyExitMinutes, day.OTMinutes, day.TotalMinutes, day.IsManual, day.Notes,
	).Scan(&day.ID, &day.CreatedAt, &day.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Day{}, attendance.ErrDayExists
		}
		return attendance.Day{}, fmt.Errorf("failed to create attendance day: %w", err)
	}

	return day, nil
}

// GetDayByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetDayByID(ctx context.Context, id string) (attendance.Day, error) {
	if !validator.IsValidUUID(id) {
		return attendance.Day{}, attendance.ErrAttendanceNotFound
	}
	q := GetQuerier(ctx, a.db)

	day, err := scanDay(q.QueryRow(ctx, `SELECT `+dayColumns+` FROM attendance_days WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return attendance.Day{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Day{}, fmt.Errorf("failed to get attendance day: %w", err)
	}

	return day, nil
}

// GetDay implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetDay(ctx context.Context, staffID string, date time.Time) (*attendance.Day, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + dayColumns + ` FROM attendance_days WHERE staff_id = $1 AND date = $2::date`

	day, err := scanDay(q.QueryRow(ctx, query, staffID, date.Format(clock.DateLayout)))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance day: %w", err)
	}

	return &day, nil
}

// UpdateDay implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateDay(ctx context.Context, day attendance.Day) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_days SET
			shift_id = $2,
			check_in_at = $3,
			check_out_at = $4,
			status = $5,
			late_minutes = $6,
			early_exit_minutes = $7,
			ot_minutes = $8,
			total_minutes = $9,
			is_manual = $10,
			notes = $11,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		day.ID, day.ShiftID, day.CheckInAt, day.CheckOutAt, day.Status,
		day.LateMinutes, day.EarlyExitMinutes, day.OTMinutes, day.TotalMinutes,
		day.IsManual, day.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance day: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// ListDays implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListDays(ctx context.Context, staffID string, from, to time.Time) ([]attendance.Day, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + dayColumns + `
		FROM attendance_days
		WHERE staff_id = $1
		  AND date >= $2::date
		  AND date < $3::date
		ORDER BY date DESC
	`

	rows, err := q.Query(ctx, query, staffID, from.Format(clock.DateLayout), to.Format(clock.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance days: %w", err)
	}
	defer rows.Close()

	var days []attendance.Day
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance day: %w", err)
		}
		days = append(days, day)
	}

	return days, rows.Err()
}
