package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-workforce/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses by kind. Internal errors
// are logged and replaced with a generic message.
func HandleError(w http.ResponseWriter, err error) {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			ValidationError(w, validationErrs.ToMap())
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
	case apperror.KindNotFound:
		NotFound(w, err.Error())
	case apperror.KindStateConflict:
		Conflict(w, err.Error())
	case apperror.KindPolicyViolation:
		BadRequest(w, err.Error(), nil)
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
