package core

import (
	"github.com/google/uuid"

	"github.com/caasmo/identityoutbox/domain/user"
)

// CanSuspend reports whether actor is allowed to suspend target. Only
// admins may suspend, and never another admin.
func CanSuspend(actor user.Role, target user.User) bool {
	if actor != user.RoleAdmin {
		return false
	}
	return target.Role() != user.RoleAdmin
}

// CanListUsers reports whether actor may list every user account.
func CanListUsers(actor user.Role) bool {
	return actor == user.RoleAdmin
}

// CanChangeOwnProfile reports whether actor may read or mutate the profile
// identified by target, for the non-admin, own-profile-only endpoints;
// admin access to any profile goes through CanListUsers instead.
func CanChangeOwnProfile(actor, target uuid.UUID) bool {
	return actor == target
}
