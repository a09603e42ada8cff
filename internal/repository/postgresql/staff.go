package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/staff"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/database"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type staffRepository struct {
	db *database.DB
}

func NewStaffRepository(db *database.DB) staff.StaffRepository {
	return &staffRepository{db: db}
}

const staffColumns = `id, name, branch_id, salary, is_active, created_at, updated_at`

// GetByID implements staff.StaffRepository.
func (r *staffRepository) GetByID(ctx context.Context, id string) (staff.Staff, error) {
	if !validator.IsValidUUID(id) {
		return staff.Staff{}, staff.ErrStaffNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1`

	var s staff.Staff
	err := q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.BranchID, &s.Salary, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return staff.Staff{}, staff.ErrStaffNotFound
		}
		return staff.Staff{}, fmt.Errorf("failed to get staff: %w", err)
	}

	return s, nil
}

// ListActive implements staff.StaffRepository.
func (r *staffRepository) ListActive(ctx context.Context, branchID *string) ([]staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + staffColumns + `
		FROM staff
		WHERE is_active = TRUE
		  AND ($1::text IS NULL OR branch_id = $1)
		ORDER BY name, id
	`

	rows, err := q.Query(ctx, query, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active staff: %w", err)
	}
	defer rows.Close()

	var result []staff.Staff
	for rows.Next() {
		var s staff.Staff
		if err := rows.Scan(
			&s.ID, &s.Name, &s.BranchID, &s.Salary, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		result = append(result, s)
	}

	return result, rows.Err()
}

// UpdateSalary implements staff.StaffRepository.
func (r *staffRepository) UpdateSalary(ctx context.Context, id string, salary decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE staff SET salary = $2, updated_at = NOW() WHERE id = $1`, id, salary)
	if err != nil {
		return fmt.Errorf("failed to update staff salary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return staff.ErrStaffNotFound
	}
	return nil
}

// CreateStaff inserts a staff member. Used by seeding and integration tests.
func CreateStaff(ctx context.Context, db *database.DB, s staff.Staff) (staff.Staff, error) {
	q := GetQuerier(ctx, db)

	err := q.QueryRow(ctx, `
		INSERT INTO staff (name, branch_id, salary, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, s.Name, s.BranchID, s.Salary, s.IsActive).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return staff.Staff{}, fmt.Errorf("failed to create staff: %w", err)
	}
	return s, nil
}
