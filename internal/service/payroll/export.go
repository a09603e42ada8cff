package payroll

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/payroll"
	"github.com/xuri/excelize/v2"
)

var previewHeader = []interface{}{
	"Staff ID", "Name", "Salary", "Work Days", "Present", "Absent", "Late",
	"On Leave", "Holiday", "Per Day", "Payable", "Status",
}

// ExportPreview implements payroll.PayrollService.
func (p *PayrollServiceImpl) ExportPreview(ctx context.Context, filter payroll.PreviewFilter) ([]byte, error) {
	preview, err := p.GetPreview(ctx, filter)
	if err != nil {
		return nil, err
	}
	return renderPreview(preview)
}

func renderPreview(preview payroll.PreviewResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close workbook", "error", err)
		}
	}()

	sheet := "Payroll " + preview.Month
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &previewHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range preview.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve cell: %w", err)
		}
		values := []interface{}{
			row.StaffID,
			row.StaffName,
			row.Salary.InexactFloat64(),
			row.WorkDays,
			row.PresentDays,
			row.AbsentDays,
			row.LateDays,
			row.OnLeaveDays,
			row.HolidayDays,
			row.PerDaySalary.InexactFloat64(),
			row.Payable.InexactFloat64(),
			string(row.Status),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
