package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodMobileWallet PaymentMethod = "mobile_wallet"
)

var PaymentMethodValues = []string{
	string(PaymentMethodCash),
	string(PaymentMethodBankTransfer),
	string(PaymentMethodCheque),
	string(PaymentMethodMobileWallet),
}

// Settlement is the ledger entry for one staff member's salary payment in a
// billing period. (StaffID, Period) is unique.
type Settlement struct {
	ID            string
	StaffID       string
	Period        string // YYYY-MM
	Amount        decimal.Decimal
	Bonus         decimal.Decimal
	Deduction     decimal.Decimal
	PaymentMethod PaymentMethod
	Note          *string
	CreatedBy     string
	IsPaid        bool
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BaseSalary is the salary implied by a settlement before bonus and deduction.
func (s Settlement) BaseSalary() decimal.Decimal {
	return s.Amount.Sub(s.Bonus).Add(s.Deduction)
}

type PreviewStatus string

const (
	PreviewStatusPaid    PreviewStatus = "paid"
	PreviewStatusPending PreviewStatus = "pending"
)

// AttendanceMark is one attendance day reduced to what payroll needs.
type AttendanceMark struct {
	StaffID string
	Date    string // YYYY-MM-DD
	Status  attendance.Status
}

type AttendanceSummary struct {
	PresentDays int
	AbsentDays  int
	LateDays    int
	OnLeaveDays int
	HolidayDays int
}
