package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecker_DefaultPolicy(t *testing.T) {
	c := NewChecker(nil)
	assert.True(t, c.Has(RoleStudent, "result:submit"))
	assert.False(t, c.Has(RoleStudent, "result:view-all"))
	assert.True(t, c.Has(RoleAdministrator, "result:view-all"))
	assert.False(t, c.Has("guest", "state:view"))

	assert.True(t, c.Any(RoleStudent, "result:view-all", "result:view-own"))
	assert.False(t, c.Any(RoleStudent, "result:view-all", "export:view"))
}

func TestChecker_WildcardSuffix(t *testing.T) {
	c := NewChecker(map[string][]string{"auditor": {"result:*"}})
	assert.True(t, c.Has("auditor", "result:view-all"))
	assert.False(t, c.Has("auditor", "state:change"))
}

func TestRequire(t *testing.T) {
	h := Require("result:view-all")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for role, want := range map[string]int{
		"":                http.StatusForbidden,
		RoleStudent:       http.StatusForbidden,
		RoleAdministrator: http.StatusNoContent,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithRole(context.Background(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "role %q", role)
	}
}

func TestRequireOwnerOr(t *testing.T) {
	owner := func(r *http.Request) bool { return r.URL.Query().Get("id") == "s1" }
	h := RequireOwnerOr("result:view-all", owner)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(role, id string) int {
		req := httptest.NewRequest(http.MethodGet, "/?id="+id, nil)
		req = req.WithContext(WithRole(context.Background(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusNoContent, serve(RoleStudent, "s1"))
	assert.Equal(t, http.StatusForbidden, serve(RoleStudent, "s2"))
	assert.Equal(t, http.StatusNoContent, serve(RoleAdministrator, "s2"))
}
