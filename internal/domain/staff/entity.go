package staff

import (
	"time"

	"github.com/shopspring/decimal"
)

type Staff struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	BranchID  *string         `json:"branch_id,omitempty"`
	Salary    decimal.Decimal `json:"salary"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
