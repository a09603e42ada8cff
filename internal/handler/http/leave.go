package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// 5MB file plus form overhead
const maxUploadMemory = 6 << 20

type LeaveHandler interface {
	Apply(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Revoke(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	UploadDocument(w http.ResponseWriter, r *http.Request)
	GetMyBalance(w http.ResponseWriter, r *http.Request)
	GetBalance(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &leaveHandlerImpl{
		leaveService: leaveService,
	}
}

// Apply implements LeaveHandler. Managers may apply on behalf of another
// staff member by setting staff_id.
func (h *leaveHandlerImpl) Apply(w http.ResponseWriter, r *http.Request) {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	var req leave.ApplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.StaffID == "" || !p.IsManager() {
		req.StaffID = p.StaffID
	}
	req.AppliedBy = p.UserID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.leaveService.Apply(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave application submitted", result)
}

func parseListFilter(r *http.Request) (leave.ListFilter, error) {
	filter := leave.ListFilter{
		StaffID:   queryString(r, "staff_id"),
		Status:    queryString(r, "status"),
		LeaveType: queryString(r, "leave_type"),
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
	}

	var err error
	if filter.Page, err = queryInt(r, "page", 1); err != nil {
		return filter, err
	}
	if filter.Limit, err = queryInt(r, "limit", 20); err != nil {
		return filter, err
	}
	return filter, nil
}

// ListMine implements LeaveHandler.
func (h *leaveHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		response.BadRequest(w, "page and limit must be numbers", nil)
		return
	}

	result, err := h.leaveService.ListMine(r.Context(), p.StaffID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements LeaveHandler.
func (h *leaveHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		response.BadRequest(w, "page and limit must be numbers", nil)
		return
	}

	result, err := h.leaveService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements LeaveHandler. Staff can only read their own applications.
func (h *leaveHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	result, err := h.leaveService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if result.StaffID != p.StaffID && !p.Can(user.PermissionLeaveViewAll) {
		response.Forbidden(w, user.ErrInsufficientPermissions.Error())
		return
	}

	response.Success(w, result)
}

// Approve implements LeaveHandler.
func (h *leaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	var req leave.ApproveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.ApproverID = p.UserID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.leaveService.Approve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave application approved", result)
}

// Reject implements LeaveHandler.
func (h *leaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	var req leave.RejectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.ApproverID = p.UserID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.leaveService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave application rejected", result)
}

// Revoke implements LeaveHandler.
func (h *leaveHandlerImpl) Revoke(w http.ResponseWriter, r *http.Request) {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	var req leave.RevokeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.RevokerID = p.UserID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.leaveService.Revoke(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave application revoked", result)
}

// Cancel implements LeaveHandler.
func (h *leaveHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	result, err := h.leaveService.Cancel(r.Context(), leave.CancelRequest{
		ID:      chi.URLParam(r, "id"),
		StaffID: p.StaffID,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave application cancelled", result)
}

// UploadDocument implements LeaveHandler.
func (h *leaveHandlerImpl) UploadDocument(w http.ResponseWriter, r *http.Request) {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		slog.Debug("failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	req := leave.UploadDocumentRequest{
		ID:      chi.URLParam(r, "id"),
		StaffID: p.StaffID,
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil && err != http.ErrMissingFile {
		slog.Debug("failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	if file != nil {
		defer file.Close()
		req.File = file
		req.FileHeader = fileHeader
	}

	result, err := h.leaveService.UploadMedicalDocument(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Medical document uploaded", result)
}

// GetMyBalance implements LeaveHandler.
func (h *leaveHandlerImpl) GetMyBalance(w http.ResponseWriter, r *http.Request) {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return
	}
	h.writeBalance(w, r, p.StaffID)
}

// GetBalance implements LeaveHandler.
func (h *leaveHandlerImpl) GetBalance(w http.ResponseWriter, r *http.Request) {
	h.writeBalance(w, r, chi.URLParam(r, "staffID"))
}

func (h *leaveHandlerImpl) writeBalance(w http.ResponseWriter, r *http.Request, staffID string) {
	year, err := queryInt(r, "year", 0)
	if err != nil {
		response.BadRequest(w, "year must be a number", nil)
		return
	}

	result, err := h.leaveService.GetBalance(r.Context(), staffID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
