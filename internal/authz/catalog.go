// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package authz

import (
	"fmt"

	"github.com/inkgate/inkgate/internal/models"
)

// rolePermissions is the static role catalog: the ordered verb set each
// role carries. Defined once at process start and never mutated, so it is
// safe for unsynchronized concurrent reads.
var rolePermissions = map[models.Role][]models.Verb{
	models.RoleAdmin: {
		models.VerbCreate, models.VerbRead, models.VerbUpdate,
		models.VerbDelete, models.VerbPublish, models.VerbModerate,
	},
	models.RoleEditor: {
		models.VerbCreate, models.VerbRead, models.VerbUpdate,
		models.VerbDelete, models.VerbPublish,
	},
	models.RoleAuthor: {
		models.VerbCreate, models.VerbRead, models.VerbUpdate,
	},
	models.RoleReader: {
		models.VerbRead,
	},
	models.RoleModerator: {
		models.VerbRead, models.VerbModerate,
	},
}

// PermissionsOf returns the permission verbs the given role carries, in
// canonical order. Returns ErrUnknownRole for unrecognized roles; callers
// performing registration should treat that as a configuration failure.
func PermissionsOf(role models.Role) ([]models.Verb, error) {
	verbs, ok := rolePermissions[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, string(role))
	}
	out := make([]models.Verb, len(verbs))
	copy(out, verbs)
	return out, nil
}

// RoleExists reports whether the role is in the catalog.
func RoleExists(role models.Role) bool {
	_, ok := rolePermissions[role]
	return ok
}

// RoleHasVerb reports whether the role carries the verb. Unknown roles
// carry nothing.
func RoleHasVerb(role models.Role, verb models.Verb) bool {
	for _, v := range rolePermissions[role] {
		if v == verb {
			return true
		}
	}
	return false
}

// AllRoles returns every role in the catalog. Order is unspecified.
func AllRoles() []models.Role {
	roles := make([]models.Role, 0, len(rolePermissions))
	for role := range rolePermissions {
		roles = append(roles, role)
	}
	return roles
}
