package user

import "errors"

var (
	ErrInvalidToken            = errors.New("invalid or missing access token")
	ErrStaffProfileRequired    = errors.New("token is not linked to a staff profile")
	ErrManagerAccessRequired   = errors.New("manager access required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
