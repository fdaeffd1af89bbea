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

// Package authz holds the static role/permission model. Access is derived
// from a user's role through a fixed table; there are no per-user grants.
// Changing what a user may do means changing their role, not the table.
package authz

// Role is the coarse identity category attached to a session principal.
type Role string

const (
	// RoleApplicant is the least-privileged role and the default for any
	// unrecognized or missing role claim.
	RoleApplicant Role = "applicant"

	// RoleSchoolAdmin manages one school's programs and applications.
	RoleSchoolAdmin Role = "school_admin"

	// RolePlatformViewer is a read-only platform administrator.
	RolePlatformViewer Role = "platform_admin_viewer"

	// RolePlatformAdmin is the full platform administrator. Its permission
	// set is the union of every defined permission.
	RolePlatformAdmin Role = "platform_admin_full"
)

// Valid reports whether r is a member of the role enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleApplicant, RoleSchoolAdmin, RolePlatformViewer, RolePlatformAdmin:
		return true
	}
	return false
}

// RoleFromClaim narrows an externally supplied role claim to a Role,
// defaulting to RoleApplicant on any unrecognized value. This is the single
// place an untrusted role string becomes a typed Role.
func RoleFromClaim(claim string) Role {
	r := Role(claim)
	if !r.Valid() {
		return RoleApplicant
	}
	return r
}
