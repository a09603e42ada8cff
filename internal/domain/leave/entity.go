package leave

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/policy"
)

type LeaveType string

const (
	LeaveTypeAnnual LeaveType = "annual"
	LeaveTypeSick   LeaveType = "sick"
)

var LeaveTypeValues = []string{
	string(LeaveTypeAnnual),
	string(LeaveTypeSick),
}

type Status string

const (
	StatusPending           Status = "pending"
	StatusApproved          Status = "approved"
	StatusPartiallyApproved Status = "partially_approved"
	StatusRejected          Status = "rejected"
	StatusExpired           Status = "expired"
	StatusCancelled         Status = "cancelled"
	StatusRevoked           Status = "revoked"
)

var StatusValues = []string{
	string(StatusPending),
	string(StatusApproved),
	string(StatusPartiallyApproved),
	string(StatusRejected),
	string(StatusExpired),
	string(StatusCancelled),
	string(StatusRevoked),
}

// Granted reports whether the application currently holds approved days.
func (s Status) Granted() bool {
	return s == StatusApproved || s == StatusPartiallyApproved
}

// Balance holds one staff member's entitlement counters for a year.
// For each leave type Used + Remaining == Total.
type Balance struct {
	ID              string
	StaffID         string
	Year            int
	AnnualTotal     int
	AnnualUsed      int
	AnnualRemaining int
	SickTotal       int
	SickUsed        int
	SickRemaining   int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewBalance(staffID string, year int, p policy.Policy) Balance {
	return Balance{
		StaffID:         staffID,
		Year:            year,
		AnnualTotal:     p.AnnualEntitlement,
		AnnualRemaining: p.AnnualEntitlement,
		SickTotal:       p.SickEntitlement,
		SickRemaining:   p.SickEntitlement,
	}
}

func (b Balance) Remaining(t LeaveType) int {
	if t == LeaveTypeSick {
		return b.SickRemaining
	}
	return b.AnnualRemaining
}

// Debit moves days from remaining to used.
func (b *Balance) Debit(t LeaveType, days int) error {
	if days > b.Remaining(t) {
		return fmt.Errorf("%w: requested %d days, remaining %d", ErrInsufficientBalance, days, b.Remaining(t))
	}
	switch t {
	case LeaveTypeSick:
		b.SickUsed += days
		b.SickRemaining -= days
	default:
		b.AnnualUsed += days
		b.AnnualRemaining -= days
	}
	return nil
}

// Credit is the exact inverse of Debit.
func (b *Balance) Credit(t LeaveType, days int) error {
	used := b.AnnualUsed
	if t == LeaveTypeSick {
		used = b.SickUsed
	}
	if days > used {
		return fmt.Errorf("%w: crediting %d days, used %d", ErrBalanceCorrupted, days, used)
	}
	switch t {
	case LeaveTypeSick:
		b.SickUsed -= days
		b.SickRemaining += days
	default:
		b.AnnualUsed -= days
		b.AnnualRemaining += days
	}
	return nil
}

func (b Balance) Conserved() bool {
	return b.AnnualUsed+b.AnnualRemaining == b.AnnualTotal &&
		b.SickUsed+b.SickRemaining == b.SickTotal
}

type MedicalDocument struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	Path        string    `json:"path"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Application dates are local calendar dates formatted YYYY-MM-DD.
type Application struct {
	ID             string
	StaffID        string
	LeaveType      LeaveType
	StartDate      string
	EndDate        string
	RequestedDates []string
	Reason         string
	AppliedBy      string
	Status         Status
	ExpiresAt      time.Time

	ApprovedDates  []string
	PaidLeaveDates []string
	RejectedDates  []string

	ApproverID      *string
	ApprovedAt      *time.Time
	ApprovalComment *string
	RejectedBy      *string
	RejectedAt      *time.Time

	RevokedBy    *string
	RevokedAt    *time.Time
	RevokeReason *string

	CancelledAt *time.Time

	MedicalDocuments []MedicalDocument

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a Application) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}
