package payroll

import "github.com/cmlabs-hris/hris-workforce/internal/pkg/apperror"

var (
	ErrSettlementNotFound = apperror.NotFound("payroll settlement not found")
	ErrNegativeBaseSalary = apperror.Validation("amount minus bonus plus deduction must not be negative")
	ErrEmptyBulkPayment   = apperror.Validation("payments must contain at least one item")
	ErrDuplicateBulkStaff = apperror.Validation("each staff can appear only once in a bulk payment")
)
