package leave

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/policy"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/shift"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/staff"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-workforce/internal/repository/memory"
	"github.com/cmlabs-hris/hris-workforce/internal/service/file"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wib = time.FixedZone("WIB", 7*60*60)

type fixture struct {
	store   *memory.Store
	clock   *clock.Fixed
	service leave.LeaveService
	staffID string
}

func newFixture(t *testing.T, pol policy.Policy) *fixture {
	t.Helper()

	store := memory.NewStore()
	// Monday
	clk := clock.NewFixed(time.Date(2025, time.March, 3, 10, 0, 0, 0, wib))

	member := store.AddStaff(staff.Staff{Name: "Ayu", Salary: decimal.NewFromInt(30000), IsActive: true})
	sh := store.AddShift(shift.Shift{
		Name:      "Office",
		StartTime: "09:00",
		EndTime:   "18:00",
		WorkDays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
	})
	store.AssignShift(member.ID, sh.ID, time.Date(2025, time.January, 1, 0, 0, 0, 0, wib))

	local, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	svc := NewLeaveService(
		store,
		store.Balances(),
		store.Applications(),
		store.Staff(),
		store.Shifts(),
		file.NewFileService(local),
		clk,
		pol,
	)
	return &fixture{store: store, clock: clk, service: svc, staffID: member.ID}
}

func (f *fixture) apply(t *testing.T, leaveType, start, end string) leave.ApplicationResponse {
	t.Helper()
	app, err := f.service.Apply(context.Background(), leave.ApplyRequest{
		StaffID:   f.staffID,
		LeaveType: leaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    "family matters",
	})
	require.NoError(t, err)
	return app
}

func (f *fixture) balance(t *testing.T) leave.BalanceResponse {
	t.Helper()
	b, err := f.service.GetBalance(context.Background(), f.staffID, 2025)
	require.NoError(t, err)
	assert.Equal(t, b.Annual.Total, b.Annual.Used+b.Annual.Remaining)
	assert.Equal(t, b.Sick.Total, b.Sick.Used+b.Sick.Remaining)
	return b
}

func TestApply_ExpandsWorkingDays(t *testing.T) {
	f := newFixture(t, policy.Default())

	app := f.apply(t, "annual", "2025-03-07", "2025-03-11")

	assert.Equal(t, "pending", app.Status)
	assert.Equal(t, []string{"2025-03-07", "2025-03-10", "2025-03-11"}, app.RequestedDates)
	assert.Equal(t, f.staffID, app.AppliedBy)
	assert.Equal(t, time.Date(2025, time.March, 3, 23, 59, 59, int(999*time.Millisecond), wib).Format(time.RFC3339Nano), app.ExpiresAt)
}

func TestApply_NoWorkingDaysCheckedBeforeBalance(t *testing.T) {
	pol := policy.Default()
	pol.AnnualEntitlement = 0
	f := newFixture(t, pol)

	lookupErr := errors.New("balance lookup")
	f.store.InjectFault("GetOrCreateBalance", lookupErr)

	_, err := f.service.Apply(context.Background(), leave.ApplyRequest{
		StaffID:   f.staffID,
		LeaveType: "annual",
		StartDate: "2025-03-08",
		EndDate:   "2025-03-09",
		Reason:    "weekend trip",
	})
	assert.ErrorIs(t, err, leave.ErrNoWorkingDays)

	// The fault is still armed, so Apply never reached the balance.
	_, err = f.store.Balances().GetOrCreate(context.Background(), leave.NewBalance(f.staffID, 2025, pol))
	assert.ErrorIs(t, err, lookupErr)

	_, err = f.service.Apply(context.Background(), leave.ApplyRequest{
		StaffID:   f.staffID,
		LeaveType: "annual",
		StartDate: "2025-03-10",
		EndDate:   "2025-03-10",
		Reason:    "errand",
	})
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
	assert.Equal(t, apperror.KindPolicyViolation, apperror.KindOf(err))
}

func TestApply_Validation(t *testing.T) {
	f := newFixture(t, policy.Default())

	_, err := f.service.Apply(context.Background(), leave.ApplyRequest{
		StaffID:   f.staffID,
		LeaveType: "vacation",
		StartDate: "2025-03-12",
		EndDate:   "2025-03-10",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "leave_type")
	assert.Contains(t, err.Error(), "end_date")
	assert.Contains(t, err.Error(), "reason")
}

func TestApply_SpanIsBounded(t *testing.T) {
	f := newFixture(t, policy.Default())

	_, err := f.service.Apply(context.Background(), leave.ApplyRequest{
		StaffID:   f.staffID,
		LeaveType: "annual",
		StartDate: "0001-01-01",
		EndDate:   "9999-12-31",
		Reason:    "sabbatical",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "end_date")

	// A full leap year is still accepted by validation.
	req := leave.ApplyRequest{
		StaffID:   f.staffID,
		LeaveType: "annual",
		StartDate: "2024-01-01",
		EndDate:   "2024-12-31",
		Reason:    "sabbatical",
	}
	assert.NoError(t, req.Validate())

	req.EndDate = "2025-01-01"
	assert.Error(t, req.Validate())
}

func TestApprove_FullDebitsBalance(t *testing.T) {
	f := newFixture(t, policy.Default())
	app := f.apply(t, "annual", "2025-03-10", "2025-03-14")

	approved, err := f.service.Approve(context.Background(), leave.ApproveRequest{ID: app.ID, ApproverID: "mgr"})
	require.NoError(t, err)

	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, app.RequestedDates, approved.ApprovedDates)
	assert.Empty(t, approved.PaidLeaveDates)
	assert.Empty(t, approved.RejectedDates)
	require.NotNil(t, approved.ApproverID)
	assert.Equal(t, "mgr", *approved.ApproverID)

	b := f.balance(t)
	assert.Equal(t, 5, b.Annual.Used)
	assert.Equal(t, 7, b.Annual.Remaining)
	assert.Equal(t, 0, b.Sick.Used)
}

func TestApprove_PartialPartitionsDates(t *testing.T) {
	f := newFixture(t, policy.Default())
	app := f.apply(t, "annual", "2025-03-10", "2025-03-14")

	approvedDates := []string{"2025-03-11", "2025-03-10"}
	paidDates := []string{"2025-03-12"}
	res, err := f.service.Approve(context.Background(), leave.ApproveRequest{
		ID:             app.ID,
		ApprovedDates:  &approvedDates,
		PaidLeaveDates: &paidDates,
		ApproverID:     "mgr",
	})
	require.NoError(t, err)

	assert.Equal(t, "partially_approved", res.Status)
	assert.Equal(t, []string{"2025-03-10", "2025-03-11"}, res.ApprovedDates)
	assert.Equal(t, []string{"2025-03-12"}, res.PaidLeaveDates)
	assert.Equal(t, []string{"2025-03-13", "2025-03-14"}, res.RejectedDates)

	b := f.balance(t)
	assert.Equal(t, 2, b.Annual.Used)
}

func TestApprove_InvalidSelectionLeavesStateUntouched(t *testing.T) {
	f := newFixture(t, policy.Default())
	app := f.apply(t, "annual", "2025-03-10", "2025-03-12")
	ctx := context.Background()

	outside := []string{"2025-03-20"}
	_, err := f.service.Approve(ctx, leave.ApproveRequest{ID: app.ID, ApprovedDates: &outside, ApproverID: "mgr"})
	assert.ErrorIs(t, err, leave.ErrDateNotRequested)

	approvedDates := []string{"2025-03-10"}
	paidDates := []string{"2025-03-10"}
	_, err = f.service.Approve(ctx, leave.ApproveRequest{ID: app.ID, ApprovedDates: &approvedDates, PaidLeaveDates: &paidDates, ApproverID: "mgr"})
	assert.ErrorIs(t, err, leave.ErrOverlappingDates)

	got, err := f.service.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, 0, f.balance(t).Annual.Used)
}

func TestApprove_BalanceFailureRollsBack(t *testing.T) {
	f := newFixture(t, policy.Default())
	app := f.apply(t, "annual", "2025-03-10", "2025-03-12")
	ctx := context.Background()

	f.store.InjectFault("UpdateApplication", assert.AnError)
	_, err := f.service.Approve(ctx, leave.ApproveRequest{ID: app.ID, ApproverID: "mgr"})
	assert.ErrorIs(t, err, assert.AnError)

	assert.Equal(t, 0, f.balance(t).Annual.Used)
	got, err := f.service.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
}

func TestApprove_ExpiredIsPersisted(t *testing.T) {
	f := newFixture(t, policy.Default())
	app := f.apply(t, "annual", "2025-03-10", "2025-03-12")
	ctx := context.Background()

	f.clock.Advance(24 * time.Hour)

	_, err := f.service.Approve(ctx, leave.ApproveRequest{ID: app.ID, ApproverID: "mgr"})
	assert.ErrorIs(t, err, leave.ErrApplicationExpired)
	assert.Equal(t, apperror.KindStateConflict, apperror.KindOf(err))

	got, err := f.service.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "expired", got.Status)
	assert.Equal(t, 0, f.balance(t).Annual.Used)

	_, err = f.service.Approve(ctx, leave.ApproveRequest{ID: app.ID, ApproverID: "mgr"})
	assert.ErrorIs(t, err, leave.ErrApplicationNotPending)
}

func TestRevoke_IsInverseOfApprove(t *testing.T) {
	f := newFixture(t, policy.Default())
	ctx := context.Background()
	before := f.balance(t)

	app := f.apply(t, "sick", "2025-03-10", "2025-03-14")
	approvedDates := []string{"2025-03-10", "2025-03-11", "2025-03-12"}
	_, err := f.service.Approve(ctx, leave.ApproveRequest{ID: app.ID, ApprovedDates: &approvedDates, ApproverID: "mgr"})
	require.NoError(t, err)
	assert.Equal(t, 3, f.balance(t).Sick.Used)

	revoked, err := f.service.Revoke(ctx, leave.RevokeRequest{ID: app.ID, Reason: "returned early", RevokerID: "mgr"})
	require.NoError(t, err)
	assert.Equal(t, "revoked", revoked.Status)
	require.NotNil(t, revoked.RevokeReason)
	assert.Equal(t, "returned early", *revoked.RevokeReason)

	assert.Equal(t, before, f.balance(t))

	_, err = f.service.Revoke(ctx, leave.RevokeRequest{ID: app.ID, Reason: "again", RevokerID: "mgr"})
	assert.ErrorIs(t, err, leave.ErrApplicationNotGranted)
}

func TestReject(t *testing.T) {
	f := newFixture(t, policy.Default())
	ctx := context.Background()
	app := f.apply(t, "annual", "2025-03-10", "2025-03-11")

	comment := "peak season"
	res, err := f.service.Reject(ctx, leave.RejectRequest{ID: app.ID, Comment: &comment, ApproverID: "mgr"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", res.Status)
	assert.Equal(t, app.RequestedDates, res.RejectedDates)
	assert.Empty(t, res.ApprovedDates)

	_, err = f.service.Reject(ctx, leave.RejectRequest{ID: app.ID, ApproverID: "mgr"})
	assert.ErrorIs(t, err, leave.ErrApplicationNotPending)
	assert.Equal(t, 0, f.balance(t).Annual.Used)
}

func TestCancel(t *testing.T) {
	f := newFixture(t, policy.Default())
	ctx := context.Background()
	app := f.apply(t, "annual", "2025-03-10", "2025-03-11")

	_, err := f.service.Cancel(ctx, leave.CancelRequest{ID: app.ID, StaffID: "someone-else"})
	assert.ErrorIs(t, err, leave.ErrNotApplicant)

	res, err := f.service.Cancel(ctx, leave.CancelRequest{ID: app.ID, StaffID: f.staffID})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", res.Status)
	assert.NotNil(t, res.CancelledAt)

	_, err = f.service.Cancel(ctx, leave.CancelRequest{ID: app.ID, StaffID: f.staffID})
	assert.ErrorIs(t, err, leave.ErrApplicationNotPending)
}

func multipartFile(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	header := form.File["file"][0]
	f, err := header.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f, header
}

func TestUploadMedicalDocument(t *testing.T) {
	f := newFixture(t, policy.Default())
	ctx := context.Background()

	sick := f.apply(t, "sick", "2025-03-10", "2025-03-10")
	annual := f.apply(t, "annual", "2025-03-11", "2025-03-11")

	file, header := multipartFile(t, "note.pdf", []byte("%PDF-1.4"))
	res, err := f.service.UploadMedicalDocument(ctx, leave.UploadDocumentRequest{
		ID: sick.ID, StaffID: f.staffID, File: file, FileHeader: header,
	})
	require.NoError(t, err)
	require.Len(t, res.MedicalDocuments, 1)
	assert.Equal(t, "note.pdf", res.MedicalDocuments[0].FileName)
	assert.Equal(t, "application/pdf", res.MedicalDocuments[0].ContentType)

	file, header = multipartFile(t, "note.pdf", []byte("%PDF-1.4"))
	_, err = f.service.UploadMedicalDocument(ctx, leave.UploadDocumentRequest{
		ID: annual.ID, StaffID: f.staffID, File: file, FileHeader: header,
	})
	assert.ErrorIs(t, err, leave.ErrNotSickLeave)

	file, header = multipartFile(t, "note.exe", []byte("MZ"))
	_, err = f.service.UploadMedicalDocument(ctx, leave.UploadDocumentRequest{
		ID: sick.ID, StaffID: f.staffID, File: file, FileHeader: header,
	})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestExpireStale(t *testing.T) {
	f := newFixture(t, policy.Default())
	ctx := context.Background()

	f.apply(t, "annual", "2025-03-10", "2025-03-10")
	f.apply(t, "annual", "2025-03-11", "2025-03-11")

	count, err := f.service.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	f.clock.Advance(24 * time.Hour)
	count, err = f.service.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = f.service.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestList_Pagination(t *testing.T) {
	f := newFixture(t, policy.Default())
	ctx := context.Background()

	f.apply(t, "annual", "2025-03-10", "2025-03-10")
	f.apply(t, "annual", "2025-03-11", "2025-03-11")
	f.apply(t, "sick", "2025-03-12", "2025-03-12")

	page, err := f.service.ListMine(ctx, f.staffID, leave.ListFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Applications, 2)
	assert.Equal(t, "1-2 of 3 results", page.Showing)

	page, err = f.service.ListMine(ctx, f.staffID, leave.ListFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Applications, 1)
	assert.Equal(t, "3-3 of 3 results", page.Showing)

	sick := "sick"
	page, err = f.service.List(ctx, leave.ListFilter{LeaveType: &sick})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)
	assert.Equal(t, 20, page.Limit)

	page, err = f.service.ListMine(ctx, "nobody", leave.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, "0 of 0 results", page.Showing)
}

func TestGetBalance_DefaultsToCurrentYear(t *testing.T) {
	f := newFixture(t, policy.Default())

	b, err := f.service.GetBalance(context.Background(), f.staffID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2025, b.Year)
	assert.Equal(t, 12, b.Annual.Remaining)
	assert.Equal(t, 18, b.Sick.Remaining)

	_, err = f.service.GetBalance(context.Background(), "missing", 0)
	assert.ErrorIs(t, err, staff.ErrStaffNotFound)
}
