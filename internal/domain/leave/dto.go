package leave

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/pkg/validator"
)

// ========================================
// APPLICATION DTOs
// ========================================

// MaxApplicationSpanDays bounds one application, end date inclusive.
const MaxApplicationSpanDays = 366

type ApplyRequest struct {
	StaffID   string `json:"staff_id" validate:"required"`
	LeaveType string `json:"leave_type" validate:"required,oneof=annual sick"`
	StartDate string `json:"start_date" validate:"required,date"`
	EndDate   string `json:"end_date" validate:"required,date"`
	Reason    string `json:"reason" validate:"required,max=1000"`
	AppliedBy string `json:"-"`
}

func (r *ApplyRequest) Validate() error {
	errs := validator.Struct(r)

	start, startOK := validator.IsValidDate(r.StartDate)
	end, endOK := validator.IsValidDate(r.EndDate)
	if startOK && endOK {
		switch {
		case end.Before(start):
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			})
		case end.Sub(start) >= MaxApplicationSpanDays*24*time.Hour:
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: fmt.Sprintf("leave may span at most %d days", MaxApplicationSpanDays),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ApproveRequest struct {
	ID             string    `json:"-"`
	ApprovedDates  *[]string `json:"approved_dates,omitempty" validate:"omitempty,dive,date"`
	PaidLeaveDates *[]string `json:"paid_leave_dates,omitempty" validate:"omitempty,dive,date"`
	Comment        *string   `json:"comment,omitempty" validate:"omitempty,max=1000"`
	ApproverID     string    `json:"-"`
}

func (r *ApproveRequest) Validate() error {
	errs := validator.Struct(r)

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RejectRequest struct {
	ID         string  `json:"-"`
	Comment    *string `json:"comment,omitempty"`
	ApproverID string  `json:"-"`
}

func (r *RejectRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.Comment != nil && len(*r.Comment) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "comment",
			Message: "comment must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RevokeRequest struct {
	ID        string `json:"-"`
	Reason    string `json:"reason"`
	RevokerID string `json:"-"`
}

func (r *RevokeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CancelRequest struct {
	ID      string
	StaffID string
}

type UploadDocumentRequest struct {
	ID         string
	StaffID    string
	File       multipart.File
	FileHeader *multipart.FileHeader
}

const maxMedicalDocumentSize = 5 << 20 // 5MB

var medicalDocumentExts = []string{".pdf", ".jpg", ".jpeg", ".png"}

func (r *UploadDocumentRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.FileHeader == nil || r.File == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "file is required",
		})
	} else {
		ext := strings.ToLower(filepath.Ext(r.FileHeader.Filename))
		if !validator.IsInSlice(ext, medicalDocumentExts) {
			errs = append(errs, validator.ValidationError{
				Field:   "file",
				Message: "invalid file type: only pdf, jpg, jpeg, png allowed",
			})
		} else if r.FileHeader.Size > maxMedicalDocumentSize {
			errs = append(errs, validator.ValidationError{
				Field:   "file",
				Message: "file size must not exceed 5MB",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// QUERY DTOs
// ========================================

type ListFilter struct {
	StaffID   *string `json:"staff_id,omitempty"`
	Status    *string `json:"status,omitempty"`
	LeaveType *string `json:"leave_type,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
}

func (f *ListFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !validator.IsInSlice(*f.Status, StatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(StatusValues, ", "),
		})
	}

	if f.LeaveType != nil && !validator.IsInSlice(*f.LeaveType, LeaveTypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type must be one of: " + strings.Join(LeaveTypeValues, ", "),
		})
	}

	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	// Set defaults
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// RESPONSES
// ========================================

type ApplicationResponse struct {
	ID               string            `json:"id"`
	StaffID          string            `json:"staff_id"`
	LeaveType        string            `json:"leave_type"`
	StartDate        string            `json:"start_date"`
	EndDate          string            `json:"end_date"`
	RequestedDates   []string          `json:"requested_dates"`
	Reason           string            `json:"reason"`
	AppliedBy        string            `json:"applied_by"`
	Status           string            `json:"status"`
	ExpiresAt        string            `json:"expires_at"`
	ApprovedDates    []string          `json:"approved_dates"`
	PaidLeaveDates   []string          `json:"paid_leave_dates"`
	RejectedDates    []string          `json:"rejected_dates"`
	ApproverID       *string           `json:"approver_id,omitempty"`
	ApprovedAt       *string           `json:"approved_at,omitempty"`
	ApprovalComment  *string           `json:"approval_comment,omitempty"`
	RejectedBy       *string           `json:"rejected_by,omitempty"`
	RejectedAt       *string           `json:"rejected_at,omitempty"`
	RevokedBy        *string           `json:"revoked_by,omitempty"`
	RevokedAt        *string           `json:"revoked_at,omitempty"`
	RevokeReason     *string           `json:"revoke_reason,omitempty"`
	CancelledAt      *string           `json:"cancelled_at,omitempty"`
	MedicalDocuments []MedicalDocument `json:"medical_documents"`
	CreatedAt        string            `json:"created_at"`
}

type ListApplicationResponse struct {
	TotalCount   int64                 `json:"total_count"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
	TotalPages   int                   `json:"total_pages"`
	Showing      string                `json:"showing"`
	Applications []ApplicationResponse `json:"applications"`
}

type BalanceResponse struct {
	StaffID string       `json:"staff_id"`
	Year    int          `json:"year"`
	Annual  BalanceEntry `json:"annual"`
	Sick    BalanceEntry `json:"sick"`
}

type BalanceEntry struct {
	Total     int `json:"total"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}
