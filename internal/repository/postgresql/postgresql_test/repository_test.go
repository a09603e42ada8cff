package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/policy"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/shift"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/staff"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/database"
	"github.com/cmlabs-hris/hris-workforce/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStaff(t *testing.T, ctx context.Context, db *database.DB, name string, branch *string) staff.Staff {
	t.Helper()
	s, err := postgresql.CreateStaff(ctx, db, staff.Staff{
		Name:     name,
		BranchID: branch,
		Salary:   decimal.NewFromInt(22000),
		IsActive: true,
	})
	require.NoError(t, err)
	return s
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

// ===== STAFF & SHIFT =====

func TestStaffRepository_ListActiveAndSalary(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewStaffRepository(db)

	south := "south"
	ayu := createTestStaff(t, ctx, db, "Ayu", nil)
	createTestStaff(t, ctx, db, "Budi", &south)

	all, err := repo.ListActive(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := repo.ListActive(ctx, &south)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Budi", filtered[0].Name)

	require.NoError(t, repo.UpdateSalary(ctx, ayu.ID, decimal.NewFromInt(25000)))
	got, err := repo.GetByID(ctx, ayu.ID)
	require.NoError(t, err)
	assert.True(t, got.Salary.Equal(decimal.NewFromInt(25000)))

	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, staff.ErrStaffNotFound)
}

func TestShiftRepository_ActiveAssignmentAndOffDates(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewShiftRepository(db)

	s := createTestStaff(t, ctx, db, "Ayu", nil)
	sh, err := postgresql.CreateShift(ctx, db, shift.Shift{
		Name:      "Office",
		StartTime: "09:00",
		EndTime:   "18:00",
		WorkDays:  []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	})
	require.NoError(t, err)

	_, err = postgresql.AssignShift(ctx, db, s.ID, sh.ID, date(t, "2025-03-01"))
	require.NoError(t, err)

	before, err := repo.GetActiveAssignment(ctx, s.ID, date(t, "2025-02-28"))
	require.NoError(t, err)
	assert.Nil(t, before)

	active, err := repo.GetActiveAssignment(ctx, s.ID, date(t, "2025-03-03"))
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, sh.ID, active.ShiftID)

	got, err := repo.GetByID(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, sh.WorkDays, got.WorkDays)

	_, err = db.Exec(ctx, `INSERT INTO shift_off_dates (shift_id, date) VALUES ($1, '2025-03-31')`, sh.ID)
	require.NoError(t, err)

	off, err := repo.IsOffDate(ctx, sh.ID, date(t, "2025-03-31"))
	require.NoError(t, err)
	assert.True(t, off)

	off, err = repo.IsOffDate(ctx, sh.ID, date(t, "2025-03-28"))
	require.NoError(t, err)
	assert.False(t, off)
}

// ===== ATTENDANCE =====

func TestAttendanceRepository_DayLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(db)

	s := createTestStaff(t, ctx, db, "Ayu", nil)
	checkIn := time.Date(2025, 3, 3, 2, 0, 0, 0, time.UTC)

	ev, err := repo.CreateEvent(ctx, attendance.Event{
		StaffID:   s.ID,
		Type:      attendance.EventCheckIn,
		Timestamp: checkIn,
		Source:    "web",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)

	last, err := repo.GetLastEvent(ctx, s.ID, checkIn.Add(-time.Hour), checkIn.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, attendance.EventCheckIn, last.Type)

	day, err := repo.CreateDay(ctx, attendance.Day{
		StaffID:   s.ID,
		Date:      date(t, "2025-03-03"),
		CheckInAt: &checkIn,
		Status:    attendance.StatusPresent,
	})
	require.NoError(t, err)

	_, err = repo.CreateDay(ctx, attendance.Day{StaffID: s.ID, Date: date(t, "2025-03-03"), Status: attendance.StatusPresent})
	assert.ErrorIs(t, err, attendance.ErrDayExists)

	checkOut := checkIn.Add(9 * time.Hour)
	day.CheckOutAt = &checkOut
	day.TotalMinutes = 540
	require.NoError(t, repo.UpdateDay(ctx, day))

	got, err := repo.GetDay(ctx, s.ID, date(t, "2025-03-03"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 540, got.TotalMinutes)

	days, err := repo.ListDays(ctx, s.ID, date(t, "2025-03-01"), date(t, "2025-04-01"))
	require.NoError(t, err)
	assert.Len(t, days, 1)
}

// ===== LEAVE =====

func TestLeaveBalanceRepository_GetOrCreateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveBalanceRepository(db)
	tx := postgresql.NewTransactor(db)

	s := createTestStaff(t, ctx, db, "Ayu", nil)
	seed := leave.NewBalance(s.ID, 2025, policy.Default())

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := repo.GetOrCreate(ctx, seed)
		if err != nil {
			return err
		}
		if err := b.Debit(leave.LeaveTypeAnnual, 3); err != nil {
			return err
		}
		return repo.Update(ctx, b)
	})
	require.NoError(t, err)

	b, err := repo.GetOrCreate(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 3, b.AnnualUsed)
	assert.Equal(t, 9, b.AnnualRemaining)
	assert.True(t, b.Conserved())
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveBalanceRepository(db)
	tx := postgresql.NewTransactor(db)

	s := createTestStaff(t, ctx, db, "Ayu", nil)
	seed := leave.NewBalance(s.ID, 2025, policy.Default())
	_, err := repo.GetOrCreate(ctx, seed)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := repo.GetOrCreate(ctx, seed)
		if err != nil {
			return err
		}
		if err := b.Debit(leave.LeaveTypeSick, 2); err != nil {
			return err
		}
		if err := repo.Update(ctx, b); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	b, err := repo.GetOrCreate(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 0, b.SickUsed)
}

func TestLeaveApplicationRepository_Lifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveApplicationRepository(db)

	s := createTestStaff(t, ctx, db, "Ayu", nil)
	now := time.Now().UTC().Truncate(time.Microsecond)

	app, err := repo.Create(ctx, leave.Application{
		StaffID:        s.ID,
		LeaveType:      leave.LeaveTypeSick,
		StartDate:      "2025-03-03",
		EndDate:        "2025-03-05",
		RequestedDates: []string{"2025-03-03", "2025-03-04", "2025-03-05"},
		Reason:         "flu",
		AppliedBy:      s.ID,
		Status:         leave.StatusPending,
		ExpiresAt:      now.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-03", got.StartDate)
	assert.Equal(t, app.RequestedDates, got.RequestedDates)
	assert.Empty(t, got.MedicalDocuments)

	approver := "manager-1"
	got.Status = leave.StatusPartiallyApproved
	got.ApprovedDates = []string{"2025-03-03", "2025-03-04"}
	got.PaidLeaveDates = []string{"2025-03-03", "2025-03-04"}
	got.RejectedDates = []string{"2025-03-05"}
	got.ApproverID = &approver
	got.ApprovedAt = &now
	got.MedicalDocuments = []leave.MedicalDocument{{
		ID: "doc-1", FileName: "note.pdf", Path: "medical/x/doc-1.pdf",
		ContentType: "application/pdf", Size: 42, UploadedAt: now,
	}}
	require.NoError(t, repo.Update(ctx, got))

	reloaded, err := repo.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPartiallyApproved, reloaded.Status)
	assert.Equal(t, []string{"2025-03-05"}, reloaded.RejectedDates)
	require.Len(t, reloaded.MedicalDocuments, 1)
	assert.Equal(t, "note.pdf", reloaded.MedicalDocuments[0].FileName)

	granted, err := repo.ListGranted(ctx, []string{s.ID}, "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	assert.Len(t, granted, 1)

	granted, err = repo.ListGranted(ctx, []string{s.ID}, "2025-04-01", "2025-04-30")
	require.NoError(t, err)
	assert.Empty(t, granted)

	sick := string(leave.LeaveTypeSick)
	list, total, err := repo.List(ctx, leave.ListFilter{StaffID: &s.ID, LeaveType: &sick, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, leave.ErrApplicationNotFound)
}

func TestLeaveApplicationRepository_ExpirePending(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveApplicationRepository(db)

	s := createTestStaff(t, ctx, db, "Ayu", nil)
	now := time.Now().UTC()

	for _, expires := range []time.Time{now.Add(-time.Hour), now.Add(time.Hour)} {
		_, err := repo.Create(ctx, leave.Application{
			StaffID:        s.ID,
			LeaveType:      leave.LeaveTypeAnnual,
			StartDate:      "2025-03-10",
			EndDate:        "2025-03-10",
			RequestedDates: []string{"2025-03-10"},
			Reason:         "family",
			AppliedBy:      s.ID,
			Status:         leave.StatusPending,
			ExpiresAt:      expires,
		})
		require.NoError(t, err)
	}

	n, err := repo.ExpirePending(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	expired := string(leave.StatusExpired)
	_, total, err := repo.List(ctx, leave.ListFilter{Status: &expired, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

// ===== PAYROLL =====

func TestPayrollRepository_UpsertSettlement(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(db)

	s := createTestStaff(t, ctx, db, "Ayu", nil)
	entry := payroll.Settlement{
		StaffID:       s.ID,
		Period:        "2025-03",
		Amount:        decimal.NewFromInt(22000),
		Bonus:         decimal.Zero,
		Deduction:     decimal.Zero,
		PaymentMethod: payroll.PaymentMethodCash,
		CreatedBy:     "manager-1",
		IsPaid:        true,
	}

	first, created, err := repo.UpsertSettlement(ctx, entry)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotNil(t, first.PaidAt)

	entry.Amount = decimal.NewFromInt(23000)
	entry.PaymentMethod = payroll.PaymentMethodBankTransfer
	entry.CreatedBy = "manager-2"
	second, created, err := repo.UpsertSettlement(ctx, entry)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "manager-1", second.CreatedBy)
	assert.True(t, second.Amount.Equal(decimal.NewFromInt(23000)))
	require.NotNil(t, second.PaidAt)
	assert.True(t, first.PaidAt.Equal(*second.PaidAt), "re-processing must keep the first paid_at")

	list, err := repo.ListSettlements(ctx, "2025-03", []string{s.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.GetSettlement(ctx, s.ID, "2025-04")
	assert.ErrorIs(t, err, payroll.ErrSettlementNotFound)
}

func TestPayrollRepository_ListAttendanceMarks(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(db)
	days := postgresql.NewAttendanceRepository(db)

	s := createTestStaff(t, ctx, db, "Ayu", nil)
	for _, d := range []struct {
		date   string
		status attendance.Status
	}{
		{"2025-02-28", attendance.StatusPresent},
		{"2025-03-03", attendance.StatusLate},
		{"2025-03-04", attendance.StatusAbsent},
	} {
		_, err := days.CreateDay(ctx, attendance.Day{StaffID: s.ID, Date: date(t, d.date), Status: d.status})
		require.NoError(t, err)
	}

	marks, err := repo.ListAttendanceMarks(ctx, []string{s.ID}, date(t, "2025-03-01"), date(t, "2025-04-01"))
	require.NoError(t, err)
	require.Len(t, marks, 2)
	for _, m := range marks {
		assert.Contains(t, []string{"2025-03-03", "2025-03-04"}, m.Date)
	}
}
