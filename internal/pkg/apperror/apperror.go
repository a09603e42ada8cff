package apperror

import (
	"errors"

	"github.com/cmlabs-hris/hris-workforce/internal/pkg/validator"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindStateConflict   Kind = "state_conflict"
	KindPolicyViolation Kind = "policy_violation"
	KindInternal        Kind = "internal"
)

// Error is a classified domain failure. Domain packages declare their
// sentinels with the constructors below and wrap them for context.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func StateConflict(msg string) *Error {
	return &Error{Kind: KindStateConflict, Message: msg}
}

func PolicyViolation(msg string) *Error {
	return &Error{Kind: KindPolicyViolation, Message: msg}
}

// KindOf reports the kind of the first classified error in err's chain.
// Unclassified errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return KindValidation
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	return KindInternal
}
