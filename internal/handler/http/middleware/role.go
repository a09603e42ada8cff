package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce/internal/handler/http/response"
)

// RequireManager requires manager or owner role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			response.Unauthorized(w, user.ErrInvalidToken.Error())
			return
		}
		if !p.IsManager() {
			response.Forbidden(w, user.ErrManagerAccessRequired.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission checks if the caller's role has a specific permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				response.Unauthorized(w, user.ErrInvalidToken.Error())
				return
			}
			if !p.Can(permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", permission, p.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
