package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/database"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

type leaveApplicationRepository struct {
	db *database.DB
}

func NewLeaveApplicationRepository(db *database.DB) leave.ApplicationRepository {
	return &leaveApplicationRepository{db: db}
}

const applicationColumns = `
	id, staff_id, leave_type, start_date::text, end_date::text, requested_dates,
	reason, applied_by, status, expires_at,
	approved_dates, paid_leave_dates, rejected_dates,
	approver_id, approved_at, approval_comment, rejected_by, rejected_at,
	revoked_by, revoked_at, revoke_reason, cancelled_at,
	medical_documents, created_at, updated_at
`

func scanApplication(row pgx.Row) (leave.Application, error) {
	var a leave.Application
	var docs []byte
	err := row.Scan(
		&a.ID, &a.StaffID, &a.LeaveType, &a.StartDate, &a.EndDate, &a.RequestedDates,
		&a.Reason, &a.AppliedBy, &a.Status, &a.ExpiresAt,
		&a.ApprovedDates, &a.PaidLeaveDates, &a.RejectedDates,
		&a.ApproverID, &a.ApprovedAt, &a.ApprovalComment, &a.RejectedBy, &a.RejectedAt,
		&a.RevokedBy, &a.RevokedAt, &a.RevokeReason, &a.CancelledAt,
		&docs, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return leave.Application{}, err
	}
	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &a.MedicalDocuments); err != nil {
			return leave.Application{}, fmt.Errorf("failed to decode medical documents: %w", err)
		}
	}
	return a, nil
}

func encodeDocuments(docs []leave.MedicalDocument) ([]byte, error) {
	if docs == nil {
		docs = []leave.MedicalDocument{}
	}
	return json.Marshal(docs)
}

func nonNil(dates []string) []string {
	if dates == nil {
		return []string{}
	}
	return dates
}

// Create implements leave.ApplicationRepository.
func (r *leaveApplicationRepository) Create(ctx context.Context, app leave.Application) (leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	docs, err := encodeDocuments(app.MedicalDocuments)
	if err != nil {
		return leave.Application{}, fmt.Errorf("failed to encode medical documents: %w", err)
	}

	query := `
		INSERT INTO leave_applications (
			staff_id, leave_type, start_date, end_date, requested_dates,
			reason, applied_by, status, expires_at, medical_documents
		) VALUES ($1, $2, $3::date, $4::date, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		app.StaffID, app.LeaveType, app.StartDate, app.EndDate, nonNil(app.RequestedDates),
		app.Reason, app.AppliedBy, app.Status, app.ExpiresAt, docs,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return leave.Application{}, fmt.Errorf("failed to create leave application: %w", err)
	}

	return app, nil
}

// GetByID implements leave.ApplicationRepository.
func (r *leaveApplicationRepository) GetByID(ctx context.Context, id string) (leave.Application, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate implements leave.ApplicationRepository.
func (r *leaveApplicationRepository) GetByIDForUpdate(ctx context.Context, id string) (leave.Application, error) {
	return r.get(ctx, id, inTransaction(ctx))
}

func (r *leaveApplicationRepository) get(ctx context.Context, id string, lock bool) (leave.Application, error) {
	if !validator.IsValidUUID(id) {
		return leave.Application{}, leave.ErrApplicationNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + applicationColumns + ` FROM leave_applications WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	app, err := scanApplication(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return leave.Application{}, leave.ErrApplicationNotFound
		}
		return leave.Application{}, fmt.Errorf("failed to get leave application: %w", err)
	}

	return app, nil
}

// Update implements leave.ApplicationRepository.
func (r *leaveApplicationRepository) Update(ctx context.Context, app leave.Application) error {
	q := GetQuerier(ctx, r.db)

	docs, err := encodeDocuments(app.MedicalDocuments)
	if err != nil {
		return fmt.Errorf("failed to encode medical documents: %w", err)
	}

	query := `
		UPDATE leave_applications SET
			status = $2,
			approved_dates = $3,
			paid_leave_dates = $4,
			rejected_dates = $5,
			approver_id = $6,
			approved_at = $7,
			approval_comment = $8,
			rejected_by = $9,
			rejected_at = $10,
			revoked_by = $11,
			revoked_at = $12,
			revoke_reason = $13,
			cancelled_at = $14,
			medical_documents = $15,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		app.ID, app.Status,
		nonNil(app.ApprovedDates), nonNil(app.PaidLeaveDates), nonNil(app.RejectedDates),
		app.ApproverID, app.ApprovedAt, app.ApprovalComment, app.RejectedBy, app.RejectedAt,
		app.RevokedBy, app.RevokedAt, app.RevokeReason, app.CancelledAt,
		docs,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrApplicationNotFound
	}

	return nil
}

// List implements leave.ApplicationRepository.
func (r *leaveApplicationRepository) List(ctx context.Context, filter leave.ListFilter) ([]leave.Application, int64, error) {
	q := GetQuerier(ctx, r.db)

	if filter.StaffID != nil && !validator.IsValidUUID(*filter.StaffID) {
		return []leave.Application{}, 0, nil
	}

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.StaffID != nil {
		whereClause += fmt.Sprintf(" AND staff_id = $%d", argIndex)
		args = append(args, *filter.StaffID)
		argIndex++
	}
	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.LeaveType != nil {
		whereClause += fmt.Sprintf(" AND leave_type = $%d", argIndex)
		args = append(args, *filter.LeaveType)
		argIndex++
	}
	// Date filters select applications overlapping the range.
	if filter.StartDate != nil {
		whereClause += fmt.Sprintf(" AND end_date >= $%d::date", argIndex)
		args = append(args, *filter.StartDate)
		argIndex++
	}
	if filter.EndDate != nil {
		whereClause += fmt.Sprintf(" AND start_date <= $%d::date", argIndex)
		args = append(args, *filter.EndDate)
		argIndex++
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM leave_applications ` + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave applications: %w", err)
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_applications
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, applicationColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave applications: %w", err)
	}
	defer rows.Close()

	apps := []leave.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

// ListGranted implements leave.ApplicationRepository.
func (r *leaveApplicationRepository) ListGranted(ctx context.Context, staffIDs []string, from, to string) ([]leave.Application, error) {
	if len(staffIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + applicationColumns + `
		FROM leave_applications
		WHERE staff_id = ANY($1::uuid[])
		  AND status IN ($2, $3)
		  AND end_date >= $4::date
		  AND start_date <= $5::date
		ORDER BY start_date
	`

	rows, err := q.Query(ctx, query, staffIDs,
		leave.StatusApproved, leave.StatusPartiallyApproved, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list granted leave applications: %w", err)
	}
	defer rows.Close()

	var apps []leave.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// ExpirePending implements leave.ApplicationRepository.
func (r *leaveApplicationRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE leave_applications
		SET status = $1, updated_at = $2
		WHERE status = $3 AND expires_at < $2
	`, leave.StatusExpired, now, leave.StatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to expire pending leave applications: %w", err)
	}

	return tag.RowsAffected(), nil
}
