package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/policy"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/shift"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/staff"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	tx database.Transactor
	payroll.PayrollRepository
	staff.StaffRepository
	shift.ShiftRepository
	leave.ApplicationRepository
	attendanceService attendance.AttendanceService
	clock             clock.Clock
	policy            policy.Policy
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	staffRepo staff.StaffRepository,
	shiftRepo shift.ShiftRepository,
	applicationRepo leave.ApplicationRepository,
	attendanceService attendance.AttendanceService,
	clk clock.Clock,
	pol policy.Policy,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		tx:                    tx,
		PayrollRepository:     payrollRepo,
		StaffRepository:       staffRepo,
		ShiftRepository:       shiftRepo,
		ApplicationRepository: applicationRepo,
		attendanceService:     attendanceService,
		clock:                 clk,
		policy:                pol,
	}
}

// GetPreview implements payroll.PayrollService.
func (p *PayrollServiceImpl) GetPreview(ctx context.Context, filter payroll.PreviewFilter) (payroll.PreviewResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.PreviewResponse{}, err
	}

	month, err := clock.ParseMonth(filter.Month, p.clock.Location())
	if err != nil {
		return payroll.PreviewResponse{}, fmt.Errorf("failed to parse month: %w", err)
	}
	from, to := clock.MonthRange(month)

	staffList, err := p.StaffRepository.ListActive(ctx, filter.BranchID)
	if err != nil {
		return payroll.PreviewResponse{}, fmt.Errorf("failed to list active staff: %w", err)
	}

	resp := payroll.PreviewResponse{
		Month:        filter.Month,
		Rows:         make([]payroll.PreviewRow, 0, len(staffList)),
		TotalSalary:  decimal.Zero,
		TotalPayable: decimal.Zero,
	}
	if len(staffList) == 0 {
		return resp, nil
	}

	staffIDs := make([]string, 0, len(staffList))
	for _, s := range staffList {
		staffIDs = append(staffIDs, s.ID)
	}

	marks, err := p.PayrollRepository.ListAttendanceMarks(ctx, staffIDs, from, to)
	if err != nil {
		return payroll.PreviewResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}
	marksByStaff := make(map[string][]payroll.AttendanceMark, len(staffIDs))
	for _, m := range marks {
		marksByStaff[m.StaffID] = append(marksByStaff[m.StaffID], m)
	}

	excused, err := p.excusedDates(ctx, staffIDs, from, to)
	if err != nil {
		return payroll.PreviewResponse{}, err
	}

	settlements, err := p.PayrollRepository.ListSettlements(ctx, filter.Month, staffIDs)
	if err != nil {
		return payroll.PreviewResponse{}, fmt.Errorf("failed to list settlements: %w", err)
	}
	settled := make(map[string]payroll.Settlement, len(settlements))
	for _, s := range settlements {
		settled[s.StaffID] = s
	}

	now := p.clock.Now()
	for _, s := range staffList {
		workDays, err := p.workDaysInMonth(ctx, s.ID, month, now)
		if err != nil {
			return payroll.PreviewResponse{}, err
		}

		summary := payroll.Summarize(marksByStaff[s.ID], excused[s.ID])
		perDay, payable := payroll.ComputePayable(s.Salary, workDays, summary.AbsentDays)

		row := payroll.PreviewRow{
			StaffID:      s.ID,
			StaffName:    s.Name,
			BranchID:     s.BranchID,
			Salary:       s.Salary,
			WorkDays:     workDays,
			PresentDays:  summary.PresentDays,
			AbsentDays:   summary.AbsentDays,
			LateDays:     summary.LateDays,
			OnLeaveDays:  summary.OnLeaveDays,
			HolidayDays:  summary.HolidayDays,
			PerDaySalary: perDay,
			Payable:      payable,
			Status:       payroll.PreviewStatusPending,
		}
		if settlement, ok := settled[s.ID]; ok {
			id := settlement.ID
			row.Status = payroll.PreviewStatusPaid
			row.SettlementID = &id
			resp.PaidCount++
		} else {
			resp.PendingCount++
		}

		resp.TotalSalary = resp.TotalSalary.Add(s.Salary)
		resp.TotalPayable = resp.TotalPayable.Add(payable)
		resp.Rows = append(resp.Rows, row)
	}

	return resp, nil
}

// workDaysInMonth counts the month's days on the staff's current shift, or
// falls back to the policy default when no shift is assigned.
func (p *PayrollServiceImpl) workDaysInMonth(ctx context.Context, staffID string, month, now time.Time) (int, error) {
	activeShift, err := shift.ActiveShift(ctx, p.ShiftRepository, staffID, now)
	if err != nil {
		return 0, err
	}
	if activeShift == nil {
		return p.policy.DefaultMonthlyWorkDays, nil
	}
	return shift.CountWorkingDaysInMonth(month, activeShift.WorkDays), nil
}

// excusedDates maps staff ID to the set of granted leave dates inside [from, to).
func (p *PayrollServiceImpl) excusedDates(ctx context.Context, staffIDs []string, from, to time.Time) (map[string]map[string]bool, error) {
	first := from.Format(clock.DateLayout)
	last := to.AddDate(0, 0, -1).Format(clock.DateLayout)

	apps, err := p.ApplicationRepository.ListGranted(ctx, staffIDs, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to list granted leave: %w", err)
	}

	result := make(map[string]map[string]bool)
	for _, app := range apps {
		for _, date := range app.GrantedDates() {
			if date < first || date > last {
				continue
			}
			if result[app.StaffID] == nil {
				result[app.StaffID] = make(map[string]bool)
			}
			result[app.StaffID][date] = true
		}
	}
	return result, nil
}

// ProcessPayroll implements payroll.PayrollService.
func (p *PayrollServiceImpl) ProcessPayroll(ctx context.Context, req payroll.ProcessRequest) (payroll.ProcessResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.ProcessResponse{}, err
	}

	var (
		result        payroll.Settlement
		created       bool
		salaryUpdated bool
	)

	err := p.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		member, err := p.StaffRepository.GetByID(txCtx, req.StaffID)
		if err != nil {
			return err
		}

		result, created, err = p.PayrollRepository.UpsertSettlement(txCtx, payroll.Settlement{
			StaffID:       req.StaffID,
			Period:        req.Month,
			Amount:        req.Amount,
			Bonus:         req.Bonus,
			Deduction:     req.Deduction,
			PaymentMethod: payroll.PaymentMethod(req.PaymentMethod),
			Note:          req.Note,
			CreatedBy:     req.ActorID,
			IsPaid:        true,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert settlement: %w", err)
		}

		base := req.BaseSalary()
		if !base.Equal(member.Salary) {
			if err := p.StaffRepository.UpdateSalary(txCtx, req.StaffID, base); err != nil {
				return fmt.Errorf("failed to update staff salary: %w", err)
			}
			salaryUpdated = true
		}
		return nil
	})
	if err != nil {
		return payroll.ProcessResponse{}, err
	}

	slog.Info("payroll processed",
		"staff_id", req.StaffID,
		"period", req.Month,
		"settlement_id", result.ID,
		"created", created,
		"salary_updated", salaryUpdated,
	)

	return payroll.ProcessResponse{
		Settlement:    mapSettlementToResponse(result),
		Created:       created,
		SalaryUpdated: salaryUpdated,
	}, nil
}

// BulkProcess implements payroll.PayrollService.
func (p *PayrollServiceImpl) BulkProcess(ctx context.Context, req payroll.BulkRequest) (payroll.BulkReport, error) {
	if err := req.Validate(); err != nil {
		return payroll.BulkReport{}, err
	}

	report := payroll.BulkReport{
		Successes: []payroll.BulkSuccess{},
		Failures:  []payroll.BulkFailure{},
	}

	for _, payment := range req.Payments {
		res, err := p.ProcessPayroll(ctx, req.Item(payment))
		if err != nil {
			report.Failures = append(report.Failures, payroll.BulkFailure{
				StaffID: payment.StaffID,
				Message: bulkFailureMessage(payment.StaffID, err),
			})
			continue
		}
		report.Successes = append(report.Successes, payroll.BulkSuccess{
			StaffID:      payment.StaffID,
			SettlementID: res.Settlement.ID,
			Created:      res.Created,
		})
	}

	slog.Info("bulk payroll processed",
		"period", req.Month,
		"successes", len(report.Successes),
		"failures", len(report.Failures),
	)

	return report, nil
}

func bulkFailureMessage(staffID string, err error) string {
	if apperror.KindOf(err) == apperror.KindInternal {
		slog.Error("bulk payroll item failed", "staff_id", staffID, "error", err)
		return "internal error"
	}
	return err.Error()
}

// Grace implements payroll.PayrollService.
func (p *PayrollServiceImpl) Grace(ctx context.Context, req attendance.GraceRequest) (attendance.DayResponse, error) {
	return p.attendanceService.Grace(ctx, req)
}

func mapSettlementToResponse(s payroll.Settlement) payroll.SettlementResponse {
	return payroll.SettlementResponse{
		ID:            s.ID,
		StaffID:       s.StaffID,
		Period:        s.Period,
		Amount:        s.Amount,
		Bonus:         s.Bonus,
		Deduction:     s.Deduction,
		PaymentMethod: string(s.PaymentMethod),
		Note:          s.Note,
		CreatedBy:     s.CreatedBy,
		IsPaid:        s.IsPaid,
		CreatedAt:     s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     s.UpdatedAt.Format(time.RFC3339),
	}
}
