// Copyright 2026 The Campus Haiti Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/campushaiti/campushaiti/internal/observability/logger"
	"github.com/campushaiti/campushaiti/internal/school"
	"github.com/campushaiti/campushaiti/internal/tenancy"
)

// SchoolHeader carries the resolved tenant slug to everything downstream
// of the router. The middleware overwrites it unconditionally so a client
// can never inject a tenant it does not own.
const SchoolHeader = "X-School-Slug"

// SchoolLookup is the slice of school.Repository the router needs. In
// production it is the ristretto-backed cache.
type SchoolLookup interface {
	GetBySlug(ctx context.Context, slug string) (*school.School, error)
}

// TenantRouter turns the Host header into tenant context. It decides,
// per request, which of the three planes the request belongs to: the
// admin plane (admin subdomain), a school's plane (tenant subdomain), or
// the platform apex.
type TenantRouter struct {
	schools SchoolLookup
}

// NewTenantRouter creates the tenant routing middleware.
func NewTenantRouter(schools SchoolLookup) *TenantRouter {
	return &TenantRouter{schools: schools}
}

// Middleware resolves the tenant and rewrites page paths into their
// internal namespace:
//
//	quisqueya.campushaiti.org  /programs  ->  /en/schools/programs  (+ header)
//	admin.campushaiti.org      /users     ->  /en/admin/users
//	campushaiti.org            /about     ->  /about
//
// API paths keep their shape on every plane; tenant context travels in
// the header only. Auth paths are shared across planes and are never
// rewritten.
func (t *TenantRouter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Asset and health traffic has no tenant semantics.
		if skipTenantRouting(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		// The raw first label: sees reserved names, so the admin plane
		// can be told apart from an absent subdomain.
		candidate := tenancy.Candidate(r.Host)

		// Strip whatever the client sent. The header is ours.
		r.Header.Del(SchoolHeader)

		if candidate == tenancy.AdminSubdomain {
			if !isAPIPath(r.URL.Path) && !tenancy.IsAuthPath(r.URL.Path) {
				r.URL.Path = tenancy.TranslateAdmin(r.URL.Path)
			}
			next.ServeHTTP(w, r)
			return
		}

		slug := tenancy.Resolve(r.Host)
		if slug == "" {
			// Apex, www, previews without a tenant label: the platform
			// site. Nothing to rewrite.
			next.ServeHTTP(w, r)
			return
		}

		sch, err := t.schools.GetBySlug(r.Context(), slug)
		if err != nil && !errors.Is(err, school.ErrSchoolNotFound) {
			// A failing store must not take routing down with it. Keep
			// the slug header and the rewrite and move on without the
			// School context; handlers that need the record answer for
			// themselves.
			slog.ErrorContext(r.Context(), "tenant lookup failed",
				logger.Slug(slug),
				logger.Error(err),
			)
			r.Header.Set(SchoolHeader, slug)
			if !isAPIPath(r.URL.Path) && !tenancy.IsAuthPath(r.URL.Path) {
				r.URL.Path = tenancy.Translate(r.URL.Path)
			}
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			respondError(w, http.StatusNotFound, "unknown school")
			return
		}

		r.Header.Set(SchoolHeader, sch.Slug)
		ctx := withSchool(r.Context(), sch)

		if !isAPIPath(r.URL.Path) && !tenancy.IsAuthPath(r.URL.Path) {
			r.URL.Path = tenancy.Translate(r.URL.Path)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSchool rejects requests that did not arrive through a tenant
// subdomain. Tenant-scoped handlers mount behind it.
func RequireSchool(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSchool(r.Context()); !ok {
			respondError(w, http.StatusNotFound, "not available on this domain")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

// skipTenantRouting filters paths with no tenant meaning: build assets,
// health probes, and anything with a file extension.
func skipTenantRouting(path string) bool {
	if path == "/health" || path == "/favicon.ico" || path == "/robots.txt" {
		return true
	}
	for _, prefix := range []string{"/_next/", "/static/", "/assets/"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if i := strings.LastIndexByte(path, '/'); i >= 0 && strings.Contains(path[i:], ".") {
		return true
	}
	return false
}
