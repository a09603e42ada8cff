package shift

import "github.com/cmlabs-hris/hris-workforce/internal/pkg/apperror"

var (
	ErrShiftNotFound = apperror.NotFound("shift not found")
)
