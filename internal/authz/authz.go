package authz

// HasPermission reports whether role holds permission. Authorization
// outcomes are booleans, never errors; callers translate false into an
// HTTP 403 (or 401 for anonymous principals).
func HasPermission(role Role, permission Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether role holds at least one of permissions.
func HasAnyPermission(role Role, permissions ...Permission) bool {
	for _, p := range permissions {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether role holds every one of permissions.
func HasAllPermissions(role Role, permissions ...Permission) bool {
	for _, p := range permissions {
		if !HasPermission(role, p) {
			return false
		}
	}
	return true
}

// CanAccessResource reports whether a principal with role may exercise
// permission against a resource owned by resourceOwnerID. For own-resource
// permissions the identity check is mandatory: holding the permission never
// grants access to someone else's resource.
func CanAccessResource(role Role, resourceOwnerID, currentUserID string, permission Permission) bool {
	if !HasPermission(role, permission) {
		return false
	}
	if _, own := ownResource[permission]; own {
		return resourceOwnerID != "" && resourceOwnerID == currentUserID
	}
	return true
}
