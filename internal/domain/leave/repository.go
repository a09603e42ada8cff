package leave

import (
	"context"
	"time"
)

type BalanceRepository interface {
	// GetOrCreate returns the balance for seed's staff and year, inserting
	// seed when none exists. Inside a transaction the row is locked.
	GetOrCreate(ctx context.Context, seed Balance) (Balance, error)
	Update(ctx context.Context, balance Balance) error
}

type ApplicationRepository interface {
	Create(ctx context.Context, app Application) (Application, error)
	GetByID(ctx context.Context, id string) (Application, error)
	// GetByIDForUpdate locks the row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id string) (Application, error)
	Update(ctx context.Context, app Application) error
	List(ctx context.Context, filter ListFilter) ([]Application, int64, error)

	// ListGranted returns approved and partially approved applications for
	// the staff whose date range overlaps [from, to].
	ListGranted(ctx context.Context, staffIDs []string, from, to string) ([]Application, error)

	// ExpirePending marks every pending application with expires_at before
	// now as expired and returns how many changed.
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}
