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

// Package tenancy maps incoming hostnames to school tenants and
// tenant-relative paths to their canonical internal form. Every function in
// this package is pure: no I/O, no shared state, no errors.
package tenancy

import "regexp"

// slugPattern is the only slug shape a school may register. Registration
// enforces it, so resolution trusts it and does not re-validate.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a well-formed tenant slug.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// reserved subdomains can never be assigned to a school. Removing an entry
// is a breaking change for any school that later registers the freed name.
var reserved = map[string]struct{}{
	"www":         {},
	"admin":       {},
	"api":         {},
	"app":         {},
	"staging":     {},
	"dev":         {},
	"test":        {},
	"campushaiti": {},
}

// AdminSubdomain is the reserved name that routes to the platform admin
// surface. It is special-cased in the routing middleware, never here.
const AdminSubdomain = "admin"

// Reserved reports whether name is in the reserved namespace set.
func Reserved(name string) bool {
	_, ok := reserved[name]
	return ok
}
