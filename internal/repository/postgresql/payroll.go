package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/database"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const settlementColumns = `
	id, staff_id, period, amount, bonus, deduction, payment_method, note,
	created_by, is_paid, paid_at, created_at, updated_at
`

func scanSettlement(row pgx.Row, extra ...any) (payroll.Settlement, error) {
	var s payroll.Settlement
	dest := []any{
		&s.ID, &s.StaffID, &s.Period, &s.Amount, &s.Bonus, &s.Deduction, &s.PaymentMethod, &s.Note,
		&s.CreatedBy, &s.IsPaid, &s.PaidAt, &s.CreatedAt, &s.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return s, err
}

// ========== SETTLEMENTS ==========

// UpsertSettlement implements payroll.PayrollRepository.
func (r *payrollRepository) UpsertSettlement(ctx context.Context, s payroll.Settlement) (payroll.Settlement, bool, error) {
	q := GetQuerier(ctx, r.db)

	// xmax is zero only for a freshly inserted tuple. A re-processed payment
	// keeps its first paid_at.
	query := `
		INSERT INTO payroll_settlements (
			staff_id, period, amount, bonus, deduction, payment_method, note,
			created_by, is_paid, paid_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CASE WHEN $9 THEN NOW() END)
		ON CONFLICT (staff_id, period) DO UPDATE SET
			amount = EXCLUDED.amount,
			bonus = EXCLUDED.bonus,
			deduction = EXCLUDED.deduction,
			payment_method = EXCLUDED.payment_method,
			note = EXCLUDED.note,
			is_paid = EXCLUDED.is_paid,
			paid_at = CASE WHEN EXCLUDED.is_paid
				THEN COALESCE(payroll_settlements.paid_at, EXCLUDED.paid_at) END,
			updated_at = NOW()
		RETURNING ` + settlementColumns + `, (xmax = 0)
	`

	var created bool
	result, err := scanSettlement(q.QueryRow(ctx, query,
		s.StaffID, s.Period, s.Amount, s.Bonus, s.Deduction, s.PaymentMethod, s.Note,
		s.CreatedBy, s.IsPaid,
	), &created)
	if err != nil {
		return payroll.Settlement{}, false, fmt.Errorf("failed to upsert payroll settlement: %w", err)
	}

	return result, created, nil
}

// GetSettlement implements payroll.PayrollRepository.
func (r *payrollRepository) GetSettlement(ctx context.Context, staffID, period string) (payroll.Settlement, error) {
	if !validator.IsValidUUID(staffID) {
		return payroll.Settlement{}, payroll.ErrSettlementNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + settlementColumns + ` FROM payroll_settlements WHERE staff_id = $1 AND period = $2`

	s, err := scanSettlement(q.QueryRow(ctx, query, staffID, period))
	if err != nil {
		if isNoRows(err) {
			return payroll.Settlement{}, payroll.ErrSettlementNotFound
		}
		return payroll.Settlement{}, fmt.Errorf("failed to get payroll settlement: %w", err)
	}

	return s, nil
}

// ListSettlements implements payroll.PayrollRepository.
func (r *payrollRepository) ListSettlements(ctx context.Context, period string, staffIDs []string) ([]payroll.Settlement, error) {
	if len(staffIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + settlementColumns + `
		FROM payroll_settlements
		WHERE period = $1 AND staff_id = ANY($2::uuid[])
	`

	rows, err := q.Query(ctx, query, period, staffIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll settlements: %w", err)
	}
	defer rows.Close()

	var result []payroll.Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll settlement: %w", err)
		}
		result = append(result, s)
	}

	return result, rows.Err()
}

// ========== ATTENDANCE ==========

// ListAttendanceMarks implements payroll.PayrollRepository.
func (r *payrollRepository) ListAttendanceMarks(ctx context.Context, staffIDs []string, from, to time.Time) ([]payroll.AttendanceMark, error) {
	if len(staffIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT staff_id, date::text, status
		FROM attendance_days
		WHERE staff_id = ANY($1::uuid[])
		  AND date >= $2::date
		  AND date < $3::date
	`

	rows, err := q.Query(ctx, query, staffIDs, from.Format(clock.DateLayout), to.Format(clock.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance marks: %w", err)
	}
	defer rows.Close()

	var marks []payroll.AttendanceMark
	for rows.Next() {
		var m payroll.AttendanceMark
		if err := rows.Scan(&m.StaffID, &m.Date, &m.Status); err != nil {
			return nil, fmt.Errorf("failed to scan attendance mark: %w", err)
		}
		marks = append(marks, m)
	}

	return marks, rows.Err()
}
