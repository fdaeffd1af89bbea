package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushaiti/campushaiti/internal/school"
)

type fakeSchools struct {
	bySlug map[string]*school.School
}

func (f *fakeSchools) GetBySlug(_ context.Context, slug string) (*school.School, error) {
	s, ok := f.bySlug[slug]
	if !ok {
		return nil, school.ErrSchoolNotFound
	}
	return s, nil
}

type captured struct {
	path   string
	header string
	school *school.School
	hit    bool
}

func routeThrough(t *testing.T, host, path string, headers map[string]string) (*captured, *httptest.ResponseRecorder) {
	t.Helper()
	router := NewTenantRouter(&fakeSchools{bySlug: map[string]*school.School{
		"quisqueya": {ID: "s1", Slug: "quisqueya", Name: "Université Quisqueya"},
		"inaghei":   {ID: "s2", Slug: "inaghei", Name: "INAGHEI"},
	}})

	var got captured
	handler := router.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.hit = true
		got.path = r.URL.Path
		got.header = r.Header.Get(SchoolHeader)
		got.school, _ = GetSchool(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "http://"+host+path, nil)
	req.Host = host
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return &got, rec
}

func TestTenantRouter_SchoolSubdomain(t *testing.T) {
	got, _ := routeThrough(t, "quisqueya.campushaiti.org", "/programs/new", nil)

	require.True(t, got.hit)
	assert.Equal(t, "/en/schools/programs/new", got.path)
	assert.Equal(t, "quisqueya", got.header)
	require.NotNil(t, got.school)
	assert.Equal(t, "s1", got.school.ID)
}

func TestTenantRouter_AdminSubdomain(t *testing.T) {
	got, _ := routeThrough(t, "admin.campushaiti.org", "/users", nil)

	require.True(t, got.hit)
	assert.Equal(t, "/en/admin/users", got.path)
	assert.Empty(t, got.header, "admin plane carries no tenant header")
	assert.Nil(t, got.school)
}

func TestTenantRouter_ApexUntouched(t *testing.T) {
	got, _ := routeThrough(t, "campushaiti.org", "/api/schools", nil)

	require.True(t, got.hit)
	assert.Equal(t, "/api/schools", got.path)
	assert.Empty(t, got.header)
}

func TestTenantRouter_TenantAPIKeepsPath(t *testing.T) {
	got, _ := routeThrough(t, "inaghei.campushaiti.org", "/api/programs", nil)

	require.True(t, got.hit)
	assert.Equal(t, "/api/programs", got.path, "API paths are not rewritten")
	assert.Equal(t, "inaghei", got.header)
	require.NotNil(t, got.school)
}

func TestTenantRouter_UnknownSchool404(t *testing.T) {
	got, rec := routeThrough(t, "ghost.campushaiti.org", "/programs", nil)

	assert.False(t, got.hit)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTenantRouter_ReservedSubdomainsAreNotTenants(t *testing.T) {
	for _, host := range []string{"www.campushaiti.org", "api.campushaiti.org", "staging.campushaiti.org"} {
		got, rec := routeThrough(t, host, "/about", nil)
		require.True(t, got.hit, host)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/about", got.path)
		assert.Empty(t, got.header)
	}
}

func TestTenantRouter_SpoofedHeaderStripped(t *testing.T) {
	got, _ := routeThrough(t, "campushaiti.org", "/api/schools", map[string]string{
		SchoolHeader: "quisqueya",
	})
	assert.Empty(t, got.header, "client-supplied tenant header must be dropped")

	got, _ = routeThrough(t, "inaghei.campushaiti.org", "/api/programs", map[string]string{
		SchoolHeader: "quisqueya",
	})
	assert.Equal(t, "inaghei", got.header, "header always reflects the Host")
}

func TestTenantRouter_AuthPathsNotRewritten(t *testing.T) {
	got, _ := routeThrough(t, "quisqueya.campushaiti.org", "/auth/login", nil)

	require.True(t, got.hit)
	assert.Equal(t, "/auth/login", got.path)
	assert.Equal(t, "quisqueya", got.header, "tenant context still travels on auth paths")
}

func TestTenantRouter_LocalhostPassthrough(t *testing.T) {
	got, _ := routeThrough(t, "localhost:3000", "/programs", nil)

	require.True(t, got.hit)
	assert.Equal(t, "/programs", got.path)
	assert.Empty(t, got.header)
}

func TestTenantRouter_PreviewDeployment(t *testing.T) {
	got, _ := routeThrough(t, "quisqueya.campushaiti-git-main.vercel.app", "/programs", nil)

	require.True(t, got.hit)
	assert.Equal(t, "/en/schools/programs", got.path)
	assert.Equal(t, "quisqueya", got.header)
}

func TestTenantRouter_StaticAssetsSkipped(t *testing.T) {
	for _, path := range []string{"/_next/static/chunk.js", "/favicon.ico", "/images/logo.png", "/health"} {
		got, _ := routeThrough(t, "quisqueya.campushaiti.org", path, nil)
		require.True(t, got.hit, path)
		assert.Equal(t, path, got.path, path)
		assert.Empty(t, got.header, path)
	}
}

func TestTenantRouter_RewriteIdempotent(t *testing.T) {
	got, _ := routeThrough(t, "quisqueya.campushaiti.org", "/en/schools/programs", nil)

	require.True(t, got.hit)
	assert.Equal(t, "/en/schools/programs", got.path)
}

type failingSchools struct{}

func (failingSchools) GetBySlug(context.Context, string) (*school.School, error) {
	return nil, errors.New("connection refused")
}

func TestTenantRouter_LookupFailureDegrades(t *testing.T) {
	router := NewTenantRouter(failingSchools{})

	var got captured
	handler := router.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.hit = true
		got.path = r.URL.Path
		got.header = r.Header.Get(SchoolHeader)
		got.school, _ = GetSchool(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "http://quisqueya.campushaiti.org/programs/new", nil)
	req.Host = "quisqueya.campushaiti.org"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.True(t, got.hit, "a store outage must not stop routing")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/en/schools/programs/new", got.path)
	assert.Equal(t, "quisqueya", got.header)
	assert.Nil(t, got.school, "no School context without a record")
}
