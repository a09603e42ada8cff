package payroll

import (
	"context"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/attendance"
)

type PayrollService interface {
	GetPreview(ctx context.Context, filter PreviewFilter) (PreviewResponse, error)

	// ExportPreview renders the preview as an XLSX workbook
	ExportPreview(ctx context.Context, filter PreviewFilter) ([]byte, error)

	// ProcessPayroll upserts the settlement for (staff, month) and syncs the
	// staff salary in one transaction
	ProcessPayroll(ctx context.Context, req ProcessRequest) (ProcessResponse, error)

	// BulkProcess runs ProcessPayroll per payment. Failures are reported, not returned.
	BulkProcess(ctx context.Context, req BulkRequest) (BulkReport, error)

	Grace(ctx context.Context, req attendance.GraceRequest) (attendance.DayResponse, error)
}
