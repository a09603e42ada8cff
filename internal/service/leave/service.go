package leave

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/policy"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/shift"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/staff"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/database"
	"github.com/cmlabs-hris/hris-workforce/internal/service/file"
)

type LeaveServiceImpl struct {
	tx database.Transactor
	leave.BalanceRepository
	leave.ApplicationRepository
	staff.StaffRepository
	shift.ShiftRepository
	fileService file.FileService
	clock       clock.Clock
	policy      policy.Policy
}

func NewLeaveService(
	tx database.Transactor,
	balanceRepo leave.BalanceRepository,
	applicationRepo leave.ApplicationRepository,
	staffRepo staff.StaffRepository,
	shiftRepo shift.ShiftRepository,
	fileService file.FileService,
	clk clock.Clock,
	pol policy.Policy,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:                    tx,
		BalanceRepository:     balanceRepo,
		ApplicationRepository: applicationRepo,
		StaffRepository:       staffRepo,
		ShiftRepository:       shiftRepo,
		fileService:           fileService,
		clock:                 clk,
		policy:                pol,
	}
}

// Apply implements leave.LeaveService.
func (l *LeaveServiceImpl) Apply(ctx context.Context, req leave.ApplyRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	now := l.clock.Now()
	loc := l.clock.Location()

	if _, err := l.StaffRepository.GetByID(ctx, req.StaffID); err != nil {
		return leave.ApplicationResponse{}, err
	}

	startDate, err := clock.ParseDate(req.StartDate, loc)
	if err != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("failed to parse start date: %w", err)
	}
	endDate, err := clock.ParseDate(req.EndDate, loc)
	if err != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("failed to parse end date: %w", err)
	}

	workDays := l.policy.DefaultWorkWeek
	activeShift, err := shift.ActiveShift(ctx, l.ShiftRepository, req.StaffID, now)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	if activeShift != nil {
		workDays = activeShift.WorkDays
	}

	// Checked before the balance is ever looked up.
	requestedDates := leave.ExpandRequestedDates(startDate, endDate, workDays)
	if len(requestedDates) == 0 {
		return leave.ApplicationResponse{}, leave.ErrNoWorkingDays
	}

	leaveType := leave.LeaveType(req.LeaveType)
	balance, err := l.BalanceRepository.GetOrCreate(ctx, leave.NewBalance(req.StaffID, startDate.Year(), l.policy))
	if err != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("failed to get leave balance: %w", err)
	}
	if remaining := balance.Remaining(leaveType); len(requestedDates) > remaining {
		return leave.ApplicationResponse{}, fmt.Errorf("%w: requested %d days, remaining %d",
			leave.ErrInsufficientBalance, len(requestedDates), remaining)
	}

	appliedBy := req.AppliedBy
	if appliedBy == "" {
		appliedBy = req.StaffID
	}

	app, err := l.ApplicationRepository.Create(ctx, leave.Application{
		StaffID:        req.StaffID,
		LeaveType:      leaveType,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		RequestedDates: requestedDates,
		Reason:         req.Reason,
		AppliedBy:      appliedBy,
		Status:         leave.StatusPending,
		ExpiresAt:      clock.EndOfDay(now),
	})
	if err != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("failed to create leave application: %w", err)
	}

	slog.Info("leave application submitted",
		"application_id", app.ID,
		"staff_id", app.StaffID,
		"leave_type", app.LeaveType,
		"days", len(requestedDates),
	)

	return mapApplicationToResponse(app), nil
}

// Approve implements leave.LeaveService.
func (l *LeaveServiceImpl) Approve(ctx context.Context, req leave.ApproveRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	now := l.clock.Now()
	var result leave.Application
	expired := false

	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		app, err := l.ApplicationRepository.GetByIDForUpdate(txCtx, req.ID)
		if err != nil {
			return err
		}
		if app.Status != leave.StatusPending {
			return fmt.Errorf("%w: status is %s", leave.ErrApplicationNotPending, app.Status)
		}

		// The expiry is persisted even though the approval fails.
		if app.Expired(now) {
			app.Status = leave.StatusExpired
			if err := l.ApplicationRepository.Update(txCtx, app); err != nil {
				return fmt.Errorf("failed to expire leave application: %w", err)
			}
			expired = true
			result = app
			return nil
		}

		resolution, err := leave.ResolveApproval(app.RequestedDates, req.ApprovedDates, req.PaidLeaveDates)
		if err != nil {
			return err
		}

		balance, err := l.balanceFor(txCtx, app)
		if err != nil {
			return err
		}
		if err := balance.Debit(app.LeaveType, len(resolution.Approved)); err != nil {
			return err
		}
		if err := l.BalanceRepository.Update(txCtx, balance); err != nil {
			return fmt.Errorf("failed to update leave balance: %w", err)
		}

		app.ApprovedDates = resolution.Approved
		app.PaidLeaveDates = resolution.Paid
		app.RejectedDates = resolution.Rejected
		app.Status = resolution.Status
		app.ApproverID = &req.ApproverID
		app.ApprovedAt = &now
		app.ApprovalComment = req.Comment

		if err := l.ApplicationRepository.Update(txCtx, app); err != nil {
			return fmt.Errorf("failed to update leave application: %w", err)
		}
		result = app
		return nil
	})
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	if expired {
		return leave.ApplicationResponse{}, leave.ErrApplicationExpired
	}

	slog.Info("leave application approved",
		"application_id", result.ID,
		"status", result.Status,
		"approved_days", len(result.ApprovedDates),
		"paid_days", len(result.PaidLeaveDates),
		"rejected_days", len(result.RejectedDates),
	)

	return mapApplicationToResponse(result), nil
}

// Reject implements leave.LeaveService.
func (l *LeaveServiceImpl) Reject(ctx context.Context, req leave.RejectRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	now := l.clock.Now()
	var result leave.Application

	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		app, err := l.ApplicationRepository.GetByIDForUpdate(txCtx, req.ID)
		if err != nil {
			return err
		}
		if app.Status != leave.StatusPending {
			return fmt.Errorf("%w: status is %s", leave.ErrApplicationNotPending, app.Status)
		}

		app.Status = leave.StatusRejected
		app.ApprovedDates = []string{}
		app.PaidLeaveDates = []string{}
		app.RejectedDates = append([]string{}, app.RequestedDates...)
		app.RejectedBy = &req.ApproverID
		app.RejectedAt = &now
		app.ApprovalComment = req.Comment

		if err := l.ApplicationRepository.Update(txCtx, app); err != nil {
			return fmt.Errorf("failed to update leave application: %w", err)
		}
		result = app
		return nil
	})
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	slog.Info("leave application rejected", "application_id", result.ID, "rejected_by", req.ApproverID)

	return mapApplicationToResponse(result), nil
}

// Revoke implements leave.LeaveService.
func (l *LeaveServiceImpl) Revoke(ctx context.Context, req leave.RevokeRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	now := l.clock.Now()
	var result leave.Application

	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		app, err := l.ApplicationRepository.GetByIDForUpdate(txCtx, req.ID)
		if err != nil {
			return err
		}
		if !app.Status.Granted() {
			return fmt.Errorf("%w: status is %s", leave.ErrApplicationNotGranted, app.Status)
		}

		balance, err := l.balanceFor(txCtx, app)
		if err != nil {
			return err
		}
		if err := balance.Credit(app.LeaveType, len(app.ApprovedDates)); err != nil {
			return err
		}
		if err := l.BalanceRepository.Update(txCtx, balance); err != nil {
			return fmt.Errorf("failed to update leave balance: %w", err)
		}

		app.Status = leave.StatusRevoked
		app.RevokedBy = &req.RevokerID
		app.RevokedAt = &now
		app.RevokeReason = &req.Reason

		if err := l.ApplicationRepository.Update(txCtx, app); err != nil {
			return fmt.Errorf("failed to update leave application: %w", err)
		}
		result = app
		return nil
	})
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	slog.Info("leave application revoked",
		"application_id", result.ID,
		"revoked_by", req.RevokerID,
		"credited_days", len(result.ApprovedDates),
	)

	return mapApplicationToResponse(result), nil
}

// Cancel implements leave.LeaveService.
func (l *LeaveServiceImpl) Cancel(ctx context.Context, req leave.CancelRequest) (leave.ApplicationResponse, error) {
	now := l.clock.Now()
	var result leave.Application

	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		app, err := l.ApplicationRepository.GetByIDForUpdate(txCtx, req.ID)
		if err != nil {
			return err
		}
		if app.StaffID != req.StaffID {
			return leave.ErrNotApplicant
		}
		if app.Status != leave.StatusPending {
			return fmt.Errorf("%w: status is %s", leave.ErrApplicationNotPending, app.Status)
		}

		app.Status = leave.StatusCancelled
		app.CancelledAt = &now

		if err := l.ApplicationRepository.Update(txCtx, app); err != nil {
			return fmt.Errorf("failed to update leave application: %w", err)
		}
		result = app
		return nil
	})
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	return mapApplicationToResponse(result), nil
}

// UploadMedicalDocument implements leave.LeaveService.
func (l *LeaveServiceImpl) UploadMedicalDocument(ctx context.Context, req leave.UploadDocumentRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	app, err := l.ApplicationRepository.GetByID(ctx, req.ID)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	if app.StaffID != req.StaffID {
		return leave.ApplicationResponse{}, leave.ErrNotApplicant
	}
	if app.LeaveType != leave.LeaveTypeSick {
		return leave.ApplicationResponse{}, leave.ErrNotSickLeave
	}
	if app.Status != leave.StatusPending {
		return leave.ApplicationResponse{}, fmt.Errorf("%w: status is %s", leave.ErrApplicationNotPending, app.Status)
	}

	stored, err := l.fileService.UploadMedicalDocument(ctx, req.StaffID, req.File, req.FileHeader.Filename)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	app.MedicalDocuments = append(app.MedicalDocuments, leave.MedicalDocument{
		ID:          stored.ID,
		FileName:    req.FileHeader.Filename,
		Path:        stored.Path,
		ContentType: stored.ContentType,
		Size:        req.FileHeader.Size,
		UploadedAt:  l.clock.Now(),
	})

	if err := l.ApplicationRepository.Update(ctx, app); err != nil {
		// Don't leave an orphaned file behind.
		if delErr := l.fileService.DeleteFile(ctx, stored.Path); delErr != nil {
			slog.Error("failed to delete orphaned medical document", "path", stored.Path, "error", delErr)
		}
		return leave.ApplicationResponse{}, fmt.Errorf("failed to update leave application: %w", err)
	}

	return mapApplicationToResponse(app), nil
}

// ExpireStale implements leave.LeaveService.
func (l *LeaveServiceImpl) ExpireStale(ctx context.Context) (int64, error) {
	count, err := l.ApplicationRepository.ExpirePending(ctx, l.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire pending leave applications: %w", err)
	}
	if count > 0 {
		slog.Info("expired stale leave applications", "count", count)
	}
	return count, nil
}

// GetByID implements leave.LeaveService.
func (l *LeaveServiceImpl) GetByID(ctx context.Context, id string) (leave.ApplicationResponse, error) {
	app, err := l.ApplicationRepository.GetByID(ctx, id)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	return mapApplicationToResponse(app), nil
}

// List implements leave.LeaveService.
func (l *LeaveServiceImpl) List(ctx context.Context, filter leave.ListFilter) (leave.ListApplicationResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListApplicationResponse{}, err
	}

	apps, totalCount, err := l.ApplicationRepository.List(ctx, filter)
	if err != nil {
		return leave.ListApplicationResponse{}, fmt.Errorf("failed to list leave applications: %w", err)
	}

	responses := make([]leave.ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		responses = append(responses, mapApplicationToResponse(app))
	}

	// Calculate pagination metadata
	totalPages := int(math.Ceil(float64(totalCount) / float64(filter.Limit)))

	// Calculate "showing" text
	start := (filter.Page-1)*filter.Limit + 1
	end := start + len(responses) - 1
	if end > int(totalCount) {
		end = int(totalCount)
	}

	showing := fmt.Sprintf("%d-%d of %d results", start, end, totalCount)
	if totalCount == 0 || len(responses) == 0 {
		showing = fmt.Sprintf("0 of %d results", totalCount)
	}

	return leave.ListApplicationResponse{
		TotalCount:   totalCount,
		Page:         filter.Page,
		Limit:        filter.Limit,
		TotalPages:   totalPages,
		Showing:      showing,
		Applications: responses,
	}, nil
}

// ListMine implements leave.LeaveService - the staff filter is forced to the caller
func (l *LeaveServiceImpl) ListMine(ctx context.Context, staffID string, filter leave.ListFilter) (leave.ListApplicationResponse, error) {
	filter.StaffID = &staffID
	return l.List(ctx, filter)
}

// GetBalance implements leave.LeaveService.
func (l *LeaveServiceImpl) GetBalance(ctx context.Context, staffID string, year int) (leave.BalanceResponse, error) {
	if year == 0 {
		year = l.clock.Now().Year()
	}

	if _, err := l.StaffRepository.GetByID(ctx, staffID); err != nil {
		return leave.BalanceResponse{}, err
	}

	balance, err := l.BalanceRepository.GetOrCreate(ctx, leave.NewBalance(staffID, year, l.policy))
	if err != nil {
		return leave.BalanceResponse{}, fmt.Errorf("failed to get leave balance: %w", err)
	}

	return leave.BalanceResponse{
		StaffID: balance.StaffID,
		Year:    balance.Year,
		Annual: leave.BalanceEntry{
			Total:     balance.AnnualTotal,
			Used:      balance.AnnualUsed,
			Remaining: balance.AnnualRemaining,
		},
		Sick: leave.BalanceEntry{
			Total:     balance.SickTotal,
			Used:      balance.SickUsed,
			Remaining: balance.SickRemaining,
		},
	}, nil
}

// balanceFor loads the balance of the year the application starts in.
func (l *LeaveServiceImpl) balanceFor(ctx context.Context, app leave.Application) (leave.Balance, error) {
	startDate, err := clock.ParseDate(app.StartDate, l.clock.Location())
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to parse start date: %w", err)
	}

	balance, err := l.BalanceRepository.GetOrCreate(ctx, leave.NewBalance(app.StaffID, startDate.Year(), l.policy))
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}
	return balance, nil
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format(time.RFC3339)
	return &format
}

func mapApplicationToResponse(app leave.Application) leave.ApplicationResponse {
	docs := app.MedicalDocuments
	if docs == nil {
		docs = []leave.MedicalDocument{}
	}
	orEmpty := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return s
	}

	return leave.ApplicationResponse{
		ID:               app.ID,
		StaffID:          app.StaffID,
		LeaveType:        string(app.LeaveType),
		StartDate:        app.StartDate,
		EndDate:          app.EndDate,
		RequestedDates:   orEmpty(app.RequestedDates),
		Reason:           app.Reason,
		AppliedBy:        app.AppliedBy,
		Status:           string(app.Status),
		ExpiresAt:        app.ExpiresAt.Format(time.RFC3339Nano),
		ApprovedDates:    orEmpty(app.ApprovedDates),
		PaidLeaveDates:   orEmpty(app.PaidLeaveDates),
		RejectedDates:    orEmpty(app.RejectedDates),
		ApproverID:       app.ApproverID,
		ApprovedAt:       timePtrToString(app.ApprovedAt),
		ApprovalComment:  app.ApprovalComment,
		RejectedBy:       app.RejectedBy,
		RejectedAt:       timePtrToString(app.RejectedAt),
		RevokedBy:        app.RevokedBy,
		RevokedAt:        timePtrToString(app.RevokedAt),
		RevokeReason:     app.RevokeReason,
		CancelledAt:      timePtrToString(app.CancelledAt),
		MedicalDocuments: docs,
		CreatedAt:        app.CreatedAt.Format(time.RFC3339),
	}
}
