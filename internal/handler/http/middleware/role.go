package middleware

import (
	"net/http"
	"slices"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// RequireRole allows the request through when the token's role claim is one of roles.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, ErrInvalidToken.Error())
				return
			}

			role, ok := claims["role"].(string)
			if !ok || !slices.Contains(roles, user.Role(role)) {
				response.HandleError(w, user.ErrAdminPrivilegeRequired)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly requires the admin role
func AdminOnly(next http.Handler) http.Handler {
	return RequireRole(user.RoleAdmin)(next)
}
