package authz_test

import (
	"testing"

	"github.com/campushaiti/campushaiti/internal/authz"
	"github.com/stretchr/testify/assert"
)

func TestPlatformAdminHoldsEveryPermission(t *testing.T) {
	for _, p := range authz.AllPermissions {
		assert.True(t, authz.HasPermission(authz.RolePlatformAdmin, p), string(p))
	}
}

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name string
		role authz.Role
		perm authz.Permission
		want bool
	}{
		{"applicant cannot view all applications", authz.RoleApplicant, authz.PermViewAllApplications, false},
		{"applicant views own applications", authz.RoleApplicant, authz.PermViewOwnApplications, true},
		{"applicant cannot manage programs", authz.RoleApplicant, authz.PermManagePrograms, false},
		{"school admin manages programs", authz.RoleSchoolAdmin, authz.PermManagePrograms, true},
		{"school admin changes status", authz.RoleSchoolAdmin, authz.PermChangeApplicationStatus, true},
		{"school admin cannot manage users", authz.RoleSchoolAdmin, authz.PermManageUsers, false},
		{"viewer sees all applications", authz.RolePlatformViewer, authz.PermViewAllApplications, true},
		{"viewer cannot approve registrations", authz.RolePlatformViewer, authz.PermApproveRegistrations, false},
		{"viewer cannot manage settings", authz.RolePlatformViewer, authz.PermManageSettings, false},
		{"unknown role holds nothing", authz.Role("superuser"), authz.PermViewOwnApplications, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, authz.HasPermission(tt.role, tt.perm))
		})
	}
}

func TestHasAnyAndAllPermissions(t *testing.T) {
	assert.True(t, authz.HasAnyPermission(authz.RoleSchoolAdmin,
		authz.PermManageUsers, authz.PermManagePrograms))
	assert.False(t, authz.HasAnyPermission(authz.RoleApplicant,
		authz.PermManageUsers, authz.PermManagePrograms))

	assert.True(t, authz.HasAllPermissions(authz.RoleSchoolAdmin,
		authz.PermManagePrograms, authz.PermChangeApplicationStatus))
	assert.False(t, authz.HasAllPermissions(authz.RoleSchoolAdmin,
		authz.PermManagePrograms, authz.PermManageUsers))
	assert.True(t, authz.HasAllPermissions(authz.RolePlatformAdmin, authz.AllPermissions...))
}

func TestCanAccessResource_Ownership(t *testing.T) {
	const owner = "user-1"
	const other = "user-2"

	// Own-resource permissions require identity equality.
	assert.True(t, authz.CanAccessResource(authz.RoleApplicant, owner, owner, authz.PermViewOwnApplications))
	assert.False(t, authz.CanAccessResource(authz.RoleApplicant, owner, other, authz.PermViewOwnApplications))

	// Holding every permission does not bypass the ownership check.
	assert.False(t, authz.CanAccessResource(authz.RolePlatformAdmin, owner, other, authz.PermViewOwnApplications))
	assert.True(t, authz.CanAccessResource(authz.RolePlatformAdmin, owner, owner, authz.PermViewOwnApplications))

	// Empty owner never matches.
	assert.False(t, authz.CanAccessResource(authz.RoleApplicant, "", "", authz.PermViewOwnApplications))

	// Non-own permissions only need the role.
	assert.True(t, authz.CanAccessResource(authz.RoleSchoolAdmin, owner, other, authz.PermChangeApplicationStatus))
	assert.False(t, authz.CanAccessResource(authz.RoleApplicant, owner, other, authz.PermChangeApplicationStatus))
}

func TestRoleFromClaim(t *testing.T) {
	assert.Equal(t, authz.RoleSchoolAdmin, authz.RoleFromClaim("school_admin"))
	assert.Equal(t, authz.RolePlatformAdmin, authz.RoleFromClaim("platform_admin_full"))
	assert.Equal(t, authz.RolePlatformViewer, authz.RoleFromClaim("platform_admin_viewer"))

	// Anything unrecognized narrows to the least-privileged role.
	assert.Equal(t, authz.RoleApplicant, authz.RoleFromClaim(""))
	assert.Equal(t, authz.RoleApplicant, authz.RoleFromClaim("root"))
	assert.Equal(t, authz.RoleApplicant, authz.RoleFromClaim("APPLICANT"))
}
