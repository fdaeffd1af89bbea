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
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/campushaiti/campushaiti/internal/tenancy"
)

var localeMatcher = language.NewMatcher([]language.Tag{
	language.English,         // en, the default
	language.French,          // fr
	language.MustParse("ht"), // Haitian Creole
})

// LocaleMiddleware stores the request locale in context. A locale path
// segment wins; otherwise Accept-Language is negotiated against the
// supported set.
func LocaleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := pathLocale(r.URL.Path)
		if locale == "" {
			tag, _ := language.MatchStrings(localeMatcher, r.Header.Get("Accept-Language"))
			base, _ := tag.Base()
			locale = base.String()
		}
		next.ServeHTTP(w, r.WithContext(withLocale(r.Context(), locale)))
	})
}

func pathLocale(path string) string {
	seg, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	for _, l := range tenancy.SupportedLocales {
		if seg == l {
			return l
		}
	}
	return ""
}
