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

package authz

// Permission is a single fine-grained capability.
type Permission string

// Applicant-facing, own-resource permissions.
const (
	PermViewOwnApplications  Permission = "applications:view_own"
	PermEditOwnApplication   Permission = "applications:edit_own"
	PermDeleteOwnApplication Permission = "applications:delete_own"
	PermSubmitApplication    Permission = "applications:submit"
	PermViewOwnDocuments     Permission = "documents:view_own"
	PermUploadOwnDocuments   Permission = "documents:upload_own"
	PermDeleteOwnDocuments   Permission = "documents:delete_own"
)

// School administration permissions.
const (
	PermViewSchoolApplications    Permission = "applications:view_school"
	PermChangeApplicationStatus   Permission = "applications:change_status"
	PermManagePrograms            Permission = "programs:manage"
	PermManageSchoolProfile       Permission = "school:manage_profile"
	PermInviteSchoolAdmins        Permission = "school:invite_admins"
	PermViewSchoolApplicationFees Permission = "fees:view_school"
)

// Platform administration permissions.
const (
	PermViewAllApplications  Permission = "applications:view_all"
	PermViewSchools          Permission = "schools:view_all"
	PermApproveRegistrations Permission = "registrations:approve"
	PermManageUsers          Permission = "users:manage"
	PermManageInvitations    Permission = "invitations:manage"
	PermManageSettings       Permission = "settings:manage"
	PermViewAuditLog         Permission = "audit:view"
)

// AllPermissions enumerates every defined permission. RolePlatformAdmin is
// granted exactly this set, so a new permission added here is automatically
// held by full platform admins.
var AllPermissions = []Permission{
	PermViewOwnApplications,
	PermEditOwnApplication,
	PermDeleteOwnApplication,
	PermSubmitApplication,
	PermViewOwnDocuments,
	PermUploadOwnDocuments,
	PermDeleteOwnDocuments,
	PermViewSchoolApplications,
	PermChangeApplicationStatus,
	PermManagePrograms,
	PermManageSchoolProfile,
	PermInviteSchoolAdmins,
	PermViewSchoolApplicationFees,
	PermViewAllApplications,
	PermViewSchools,
	PermApproveRegistrations,
	PermManageUsers,
	PermManageInvitations,
	PermManageSettings,
	PermViewAuditLog,
}

// rolePermissions is the static table. Total over the role enumeration:
// every role has an explicit entry, even if empty.
var rolePermissions = map[Role][]Permission{
	RoleApplicant: {
		PermViewOwnApplications,
		PermEditOwnApplication,
		PermDeleteOwnApplication,
		PermSubmitApplication,
		PermViewOwnDocuments,
		PermUploadOwnDocuments,
		PermDeleteOwnDocuments,
	},
	RoleSchoolAdmin: {
		PermViewSchoolApplications,
		PermChangeApplicationStatus,
		PermManagePrograms,
		PermManageSchoolProfile,
		PermInviteSchoolAdmins,
		PermViewSchoolApplicationFees,
	},
	RolePlatformViewer: {
		PermViewAllApplications,
		PermViewSchools,
		PermViewAuditLog,
	},
	RolePlatformAdmin: AllPermissions,
}

// ownResource is the subset of permissions that additionally require the
// caller to own the resource. Ownership is mandatory for these and cannot
// be bypassed by role.
var ownResource = map[Permission]struct{}{
	PermViewOwnApplications:  {},
	PermEditOwnApplication:   {},
	PermDeleteOwnApplication: {},
	PermViewOwnDocuments:     {},
	PermUploadOwnDocuments:   {},
	PermDeleteOwnDocuments:   {},
}
