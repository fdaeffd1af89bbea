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

	"github.com/campushaiti/campushaiti/internal/school"
	"github.com/campushaiti/campushaiti/internal/session"
)

type contextKey string

const (
	principalKey contextKey = "principal"
	schoolKey    contextKey = "school"
	localeKey    contextKey = "locale"
)

// GetPrincipal retrieves the authenticated principal from context. The
// second return is false on anonymous requests.
func GetPrincipal(ctx context.Context) (*session.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*session.Principal)
	return p, ok
}

// GetSchool retrieves the tenant school resolved from the subdomain.
func GetSchool(ctx context.Context) (*school.School, bool) {
	s, ok := ctx.Value(schoolKey).(*school.School)
	return s, ok
}

// GetLocale retrieves the request locale. Defaults to the platform locale
// when no middleware has set one.
func GetLocale(ctx context.Context) string {
	if l, ok := ctx.Value(localeKey).(string); ok {
		return l
	}
	return "en"
}

func withPrincipal(ctx context.Context, p *session.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func withSchool(ctx context.Context, s *school.School) context.Context {
	return context.WithValue(ctx, schoolKey, s)
}

func withLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey, locale)
}
