package leave

import "context"

type LeaveService interface {
	// Application lifecycle
	Apply(ctx context.Context, req ApplyRequest) (ApplicationResponse, error)
	Approve(ctx context.Context, req ApproveRequest) (ApplicationResponse, error)
	Reject(ctx context.Context, req RejectRequest) (ApplicationResponse, error)
	Revoke(ctx context.Context, req RevokeRequest) (ApplicationResponse, error)
	Cancel(ctx context.Context, req CancelRequest) (ApplicationResponse, error)
	UploadMedicalDocument(ctx context.Context, req UploadDocumentRequest) (ApplicationResponse, error)

	// ExpireStale expires overdue pending applications. Safe to call repeatedly.
	ExpireStale(ctx context.Context) (int64, error)

	// Queries
	GetByID(ctx context.Context, id string) (ApplicationResponse, error)
	List(ctx context.Context, filter ListFilter) (ListApplicationResponse, error)
	ListMine(ctx context.Context, staffID string, filter ListFilter) (ListApplicationResponse, error)
	GetBalance(ctx context.Context, staffID string, year int) (BalanceResponse, error)
}
