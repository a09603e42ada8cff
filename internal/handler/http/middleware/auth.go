package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type principalKey struct{}

// AuthRequired rejects requests without a verified access token and stores
// the caller in the request context. It must run after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.Unauthorized(w, user.ErrInvalidToken.Error())
			return
		}

		principal, err := jwt.PrincipalFromClaims(claims)
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFrom returns the caller stored by AuthRequired.
func PrincipalFrom(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	return p, ok
}

// WithPrincipal stores p as the caller. Used by tests that bypass tokens.
func WithPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// RequireStaff rejects tokens that are not linked to a staff profile.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			response.Unauthorized(w, user.ErrInvalidToken.Error())
			return
		}
		if p.StaffID == "" {
			response.Forbidden(w, user.ErrStaffProfileRequired.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
