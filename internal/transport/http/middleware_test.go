package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campushaiti/campushaiti/internal/authz"
	"github.com/campushaiti/campushaiti/internal/school"
	"github.com/campushaiti/campushaiti/internal/session"
)

func authedRequest(principal *session.Principal, sch *school.School) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/admissions", nil)
	ctx := req.Context()
	if principal != nil {
		ctx = withPrincipal(ctx, principal)
	}
	if sch != nil {
		ctx = withSchool(ctx, sch)
	}
	return req.WithContext(ctx)
}

func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	RequireAuth(next).ServeHTTP(rec, authedRequest(nil, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	RequireAuth(next).ServeHTTP(rec, authedRequest(&session.Principal{UserID: "u1", Role: authz.RoleApplicant}, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guard := RequirePermission(authz.PermChangeApplicationStatus)

	cases := []struct {
		role authz.Role
		want int
	}{
		{authz.RoleApplicant, http.StatusForbidden},
		{authz.RoleSchoolAdmin, http.StatusOK},
		{authz.RolePlatformViewer, http.StatusForbidden},
		{authz.RolePlatformAdmin, http.StatusOK},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		guard(next).ServeHTTP(rec, authedRequest(&session.Principal{UserID: "u1", Role: tc.role}, nil))
		assert.Equal(t, tc.want, rec.Code, "role %s", tc.role)
	}

	rec := httptest.NewRecorder()
	guard(next).ServeHTTP(rec, authedRequest(nil, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireOwnSchool(t *testing.T) {
	h := &Handler{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	sch := &school.School{ID: "s1", Slug: "quisqueya"}

	rec := httptest.NewRecorder()
	h.requireOwnSchool(next).ServeHTTP(rec, authedRequest(
		&session.Principal{UserID: "u1", Role: authz.RoleSchoolAdmin, SchoolID: "s1"}, sch))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Admin of another school cannot act here even with the permission.
	rec = httptest.NewRecorder()
	h.requireOwnSchool(next).ServeHTTP(rec, authedRequest(
		&session.Principal{UserID: "u2", Role: authz.RoleSchoolAdmin, SchoolID: "s2"}, sch))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Platform admins are not bound to a school.
	rec = httptest.NewRecorder()
	h.requireOwnSchool(next).ServeHTTP(rec, authedRequest(
		&session.Principal{UserID: "u3", Role: authz.RolePlatformAdmin}, sch))
	assert.Equal(t, http.StatusOK, rec.Code)
}
