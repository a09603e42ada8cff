package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/database"
)

type leaveBalanceRepository struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepository{db: db}
}

// GetOrCreate implements leave.BalanceRepository.
func (r *leaveBalanceRepository) GetOrCreate(ctx context.Context, seed leave.Balance) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	insert := `
		INSERT INTO leave_balances (
			staff_id, year,
			annual_total, annual_used, annual_remaining,
			sick_total, sick_used, sick_remaining
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (staff_id, year) DO NOTHING
	`
	if _, err := q.Exec(ctx, insert,
		seed.StaffID, seed.Year,
		seed.AnnualTotal, seed.AnnualUsed, seed.AnnualRemaining,
		seed.SickTotal, seed.SickUsed, seed.SickRemaining,
	); err != nil {
		return leave.Balance{}, fmt.Errorf("failed to seed leave balance: %w", err)
	}

	query := `
		SELECT id, staff_id, year,
			   annual_total, annual_used, annual_remaining,
			   sick_total, sick_used, sick_remaining,
			   created_at, updated_at
		FROM leave_balances
		WHERE staff_id = $1 AND year = $2
	`
	// Lock the row when the caller is about to debit or credit it.
	if inTransaction(ctx) {
		query += ` FOR UPDATE`
	}

	var b leave.Balance
	err := q.QueryRow(ctx, query, seed.StaffID, seed.Year).Scan(
		&b.ID, &b.StaffID, &b.Year,
		&b.AnnualTotal, &b.AnnualUsed, &b.AnnualRemaining,
		&b.SickTotal, &b.SickUsed, &b.SickRemaining,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}

	return b, nil
}

// Update implements leave.BalanceRepository.
func (r *leaveBalanceRepository) Update(ctx context.Context, b leave.Balance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances SET
			annual_used = $3,
			annual_remaining = $4,
			sick_used = $5,
			sick_remaining = $6,
			updated_at = NOW()
		WHERE staff_id = $1 AND year = $2
	`

	tag, err := q.Exec(ctx, query,
		b.StaffID, b.Year,
		b.AnnualUsed, b.AnnualRemaining,
		b.SickUsed, b.SickRemaining,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("leave balance for staff %s year %d not found", b.StaffID, b.Year)
	}

	return nil
}
