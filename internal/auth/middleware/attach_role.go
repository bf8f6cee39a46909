// internal/auth/middleware/attach_role.go
package auth

import (
	"context"
	"net/http"

	"github.com/mind-engage/history-contest/internal/exam"
	"github.com/mind-engage/history-contest/internal/rbac"
)

// RoleResolver returns the authoritative role of a subject.
type RoleResolver interface {
	Role(ctx context.Context, sub string) (string, error)
}

// AttachRole replaces the role claimed by the token with the one the directory
// knows. allowClaimFallback=true in dev/offline; false in prod.
func AttachRole(res RoleResolver, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := SubjectFromContext(ctx)
			claimRole := rbac.RoleFromContext(ctx) // set by JWTMiddleware

			role, err := res.Role(ctx, sub)
			switch {
			case err == nil && role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
				return

			case exam.KindOf(err) == exam.KindNotFound:
				// subject was removed after the token was issued
				http.Error(w, "forbidden", http.StatusForbidden)
				return

			default:
				// store unreachable: in dev, trust the claim; in prod, deny
				if allowClaimFallback && claimRole != "" {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
