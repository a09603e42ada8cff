package staff

import "github.com/cmlabs-hris/hris-workforce/internal/pkg/apperror"

var (
	ErrStaffNotFound = apperror.NotFound("staff not found")
)
