package staff

import (
	"context"

	"github.com/shopspring/decimal"
)

type StaffRepository interface {
	GetByID(ctx context.Context, id string) (Staff, error)
	// ListActive returns active staff ordered by name, optionally for one branch.
	ListActive(ctx context.Context, branchID *string) ([]Staff, error)
	UpdateSalary(ctx context.Context, id string, salary decimal.Decimal) error
}
