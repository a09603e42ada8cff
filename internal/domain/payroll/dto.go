package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/hris-workforce/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// PREVIEW
// ========================================

type PreviewFilter struct {
	Month    string  `json:"month" validate:"required,month"`
	BranchID *string `json:"branch_id,omitempty"`
}

func (f *PreviewFilter) Validate() error {
	if errs := validator.Struct(f); len(errs) > 0 {
		return errs
	}
	return nil
}

type PreviewRow struct {
	StaffID      string          `json:"staff_id"`
	StaffName    string          `json:"staff_name"`
	BranchID     *string         `json:"branch_id,omitempty"`
	Salary       decimal.Decimal `json:"salary"`
	WorkDays     int             `json:"work_days"`
	PresentDays  int             `json:"present_days"`
	AbsentDays   int             `json:"absent_days"`
	LateDays     int             `json:"late_days"`
	OnLeaveDays  int             `json:"on_leave_days"`
	HolidayDays  int             `json:"holiday_days"`
	PerDaySalary decimal.Decimal `json:"per_day_salary"`
	Payable      decimal.Decimal `json:"payable_salary"`
	Status       PreviewStatus   `json:"status"`
	SettlementID *string         `json:"settlement_id,omitempty"`
}

type PreviewResponse struct {
	Month        string          `json:"month"`
	Rows         []PreviewRow    `json:"rows"`
	TotalSalary  decimal.Decimal `json:"total_salary"`
	TotalPayable decimal.Decimal `json:"total_payable"`
	PaidCount    int             `json:"paid_count"`
	PendingCount int             `json:"pending_count"`
}

// ========================================
// PROCESSING
// ========================================

type ProcessRequest struct {
	StaffID       string          `json:"staff_id" validate:"required"`
	Month         string          `json:"month" validate:"required,month"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash bank_transfer cheque mobile_wallet"`
	Bonus         decimal.Decimal `json:"bonus"`
	Deduction     decimal.Decimal `json:"deduction"`
	Note          *string         `json:"note,omitempty" validate:"omitempty,max=1000"`
	ActorID       string          `json:"-"`
}

func (r *ProcessRequest) Validate() error {
	errs := validator.Struct(r)
	errs = append(errs, validateMoney(r.Amount, r.Bonus, r.Deduction)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// BaseSalary is amount − bonus + deduction.
func (r ProcessRequest) BaseSalary() decimal.Decimal {
	return r.Amount.Sub(r.Bonus).Add(r.Deduction)
}

type ProcessResponse struct {
	Settlement    SettlementResponse `json:"settlement"`
	Created       bool               `json:"created"`
	SalaryUpdated bool               `json:"salary_updated"`
}

type SettlementResponse struct {
	ID            string          `json:"id"`
	StaffID       string          `json:"staff_id"`
	Period        string          `json:"period"`
	Amount        decimal.Decimal `json:"amount"`
	Bonus         decimal.Decimal `json:"bonus"`
	Deduction     decimal.Decimal `json:"deduction"`
	PaymentMethod string          `json:"payment_method"`
	Note          *string         `json:"note,omitempty"`
	CreatedBy     string          `json:"created_by"`
	IsPaid        bool            `json:"is_paid"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

// ========================================
// BULK
// ========================================

type BulkPayment struct {
	StaffID   string          `json:"staff_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Bonus     decimal.Decimal `json:"bonus"`
	Deduction decimal.Decimal `json:"deduction"`
	Note      *string         `json:"note,omitempty" validate:"omitempty,max=1000"`
}

type BulkRequest struct {
	Month         string        `json:"month" validate:"required,month"`
	PaymentMethod string        `json:"payment_method" validate:"required,oneof=cash bank_transfer cheque mobile_wallet"`
	Payments      []BulkPayment `json:"payments" validate:"dive"`
	ActorID       string        `json:"-"`
}

// Validate checks the envelope only. Each payment is validated again when it
// is processed so one bad item does not block the others.
func (r *BulkRequest) Validate() error {
	errs := validator.Struct(r)

	if len(r.Payments) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "payments",
			Message: ErrEmptyBulkPayment.Error(),
		})
	}

	seen := make(map[string]bool, len(r.Payments))
	for i, p := range r.Payments {
		if p.StaffID == "" {
			continue
		}
		if seen[p.StaffID] {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("payments[%d].staff_id", i),
				Message: ErrDuplicateBulkStaff.Error(),
			})
		}
		seen[p.StaffID] = true
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Item builds the single-staff request for one bulk payment.
func (r BulkRequest) Item(p BulkPayment) ProcessRequest {
	return ProcessRequest{
		StaffID:       p.StaffID,
		Month:         r.Month,
		Amount:        p.Amount,
		PaymentMethod: r.PaymentMethod,
		Bonus:         p.Bonus,
		Deduction:     p.Deduction,
		Note:          p.Note,
		ActorID:       r.ActorID,
	}
}

type BulkSuccess struct {
	StaffID      string `json:"staff_id"`
	SettlementID string `json:"settlement_id"`
	Created      bool   `json:"created"`
}

type BulkFailure struct {
	StaffID string `json:"staff_id"`
	Message string `json:"message"`
}

type BulkReport struct {
	Successes []BulkSuccess `json:"successes"`
	Failures  []BulkFailure `json:"failures"`
}

func validateMoney(amount, bonus, deduction decimal.Decimal) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if amount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "amount must not be negative"})
	}
	if bonus.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "bonus", Message: "bonus must not be negative"})
	}
	if deduction.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "deduction", Message: "deduction must not be negative"})
	}
	if len(errs) == 0 && amount.Sub(bonus).Add(deduction).IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: ErrNegativeBaseSalary.Error()})
	}
	return errs
}
