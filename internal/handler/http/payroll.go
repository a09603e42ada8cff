package http

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-workforce/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PayrollHandler interface {
	GetPreview(w http.ResponseWriter, r *http.Request)
	ExportPreview(w http.ResponseWriter, r *http.Request)
	Process(w http.ResponseWriter, r *http.Request)
	BulkProcess(w http.ResponseWriter, r *http.Request)
	Grace(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
	}
}

func previewFilter(r *http.Request) payroll.PreviewFilter {
	return payroll.PreviewFilter{
		Month:    r.URL.Query().Get("month"),
		BranchID: queryString(r, "branch_id"),
	}
}

// GetPreview implements PayrollHandler.
func (h *payrollHandlerImpl) GetPreview(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetPreview(r.Context(), previewFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportPreview implements PayrollHandler.
func (h *payrollHandlerImpl) ExportPreview(w http.ResponseWriter, r *http.Request) {
	filter := previewFilter(r)

	data, err := h.payrollService.ExportPreview(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, fmt.Sprintf("payroll-%s.xlsx", filter.Month), xlsxContentType, data)
}

// Process implements PayrollHandler.
func (h *payrollHandlerImpl) Process(w http.ResponseWriter, r *http.Request) {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	var req payroll.ProcessRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ActorID = p.UserID

	result, err := h.payrollService.ProcessPayroll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.Created {
		response.Created(w, "Payroll processed", result)
		return
	}
	response.SuccessWithMessage(w, "Payroll updated", result)
}

// BulkProcess implements PayrollHandler.
func (h *payrollHandlerImpl) BulkProcess(w http.ResponseWriter, r *http.Request) {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	var req payroll.BulkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ActorID = p.UserID

	result, err := h.payrollService.BulkProcess(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w,
		fmt.Sprintf("%d processed, %d failed", len(result.Successes), len(result.Failures)),
		result,
	)
}

// Grace implements PayrollHandler.
func (h *payrollHandlerImpl) Grace(w http.ResponseWriter, r *http.Request) {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	var req attendance.GraceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ActorID = p.UserID

	result, err := h.payrollService.Grace(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Absence graced", result)
}
