package rbac

import "net/http"

var policy = NewChecker(nil)

// guard lets a request through when allow holds for it, otherwise answers 403.
func guard(allow func(r *http.Request, role string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allow(r, RoleFromContext(r.Context())) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require enforces a single permission.
func Require(perm string) func(http.Handler) http.Handler {
	return guard(func(_ *http.Request, role string) bool { return policy.Has(role, perm) })
}

// RequireAny enforces that the role has at least one of perms.
func RequireAny(perms ...string) func(http.Handler) http.Handler {
	return guard(func(_ *http.Request, role string) bool { return policy.Any(role, perms...) })
}

// RequireOwnerOr admits the owner of the addressed resource, or any role holding perm.
func RequireOwnerOr(perm string, isOwner func(r *http.Request) bool) func(http.Handler) http.Handler {
	return guard(func(r *http.Request, role string) bool { return isOwner(r) || policy.Has(role, perm) })
}
