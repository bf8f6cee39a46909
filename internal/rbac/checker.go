package rbac

import (
	"context"
	"strings"
)

// Checker resolves permissions against a role policy. A grant of "*" allows
// everything and a grant ending in "*" allows every permission with that prefix.
type Checker struct {
	grants map[string][]string
}

// NewChecker uses RolePermissions when policy is nil.
func NewChecker(policy map[string][]string) *Checker {
	if policy == nil {
		policy = RolePermissions
	}
	return &Checker{grants: policy}
}

func (c *Checker) Has(role, perm string) bool {
	for _, g := range c.grants[role] {
		if g == perm || g == "*" {
			return true
		}
		if prefix, ok := strings.CutSuffix(g, "*"); ok && strings.HasPrefix(perm, prefix) {
			return true
		}
	}
	return false
}

// Any reports whether role holds at least one of perms.
func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

type roleKey struct{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// RoleFromContext returns "" for requests without an attached role.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey{}).(string)
	return role
}
