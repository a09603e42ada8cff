package attendance

import (
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/validator"
)

// ========================================
// CLOCK DTOs
// ========================================

type CheckInRequest struct {
	StaffID   string  `json:"staff_id" validate:"required"`
	Source    string  `json:"source" validate:"omitempty,oneof=web mobile kiosk"`
	IPAddress *string `json:"-"`
	UserAgent *string `json:"-"`
}

func (r *CheckInRequest) Validate() error {
	if r.Source == "" {
		r.Source = "web"
	}
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckOutRequest struct {
	StaffID   string  `json:"staff_id" validate:"required"`
	Source    string  `json:"source" validate:"omitempty,oneof=web mobile kiosk"`
	IPAddress *string `json:"-"`
	UserAgent *string `json:"-"`
}

func (r *CheckOutRequest) Validate() error {
	if r.Source == "" {
		r.Source = "web"
	}
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// OVERRIDE DTOs
// ========================================

type UpdateStatusRequest struct {
	AttendanceID string `json:"-"`
	Status       string `json:"status"`
	Note         string `json:"note"`
	ActorID      string `json:"-"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id is required",
		})
	}

	if validator.IsEmpty(r.Status) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status is required",
		})
	} else if !validator.IsInSlice(r.Status, StatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status is not a valid attendance status",
		})
	}

	if len(r.Note) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "note",
			Message: "note must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type GraceRequest struct {
	StaffID string `json:"staff_id" validate:"required"`
	Date    string `json:"date" validate:"required,date"`
	Note    string `json:"note" validate:"max=1000"`
	ActorID string `json:"-"`
}

func (r *GraceRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// QUERY DTOs
// ========================================

type HistoryRequest struct {
	StaffID string
	Days    int
}

// ApplyDefaults clamps the window to 1..90 days, 7 when unset.
func (r *HistoryRequest) ApplyDefaults() {
	if r.Days <= 0 {
		r.Days = 7
	}
	if r.Days > 90 {
		r.Days = 90
	}
}

type MonthlyStatsRequest struct {
	StaffID string `json:"staff_id" validate:"required"`
	Month   string `json:"month" validate:"required,month"`
}

func (r *MonthlyStatsRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// RESPONSES
// ========================================

type DayResponse struct {
	ID               string  `json:"id"`
	StaffID          string  `json:"staff_id"`
	Date             string  `json:"date"`
	ShiftID          *string `json:"shift_id,omitempty"`
	CheckInAt        *string `json:"check_in_at,omitempty"`
	CheckOutAt       *string `json:"check_out_at,omitempty"`
	Status           string  `json:"status"`
	LateMinutes      int     `json:"late_minutes"`
	EarlyExitMinutes int     `json:"early_exit_minutes"`
	OTMinutes        int     `json:"ot_minutes"`
	TotalMinutes     int     `json:"total_minutes"`
	IsManual         bool    `json:"is_manual"`
	Notes            *string `json:"notes,omitempty"`
}
