// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

/*
roles.go - Role and Permission Verb Definitions

This file defines the role names and permission verbs shared across the
system. The verb sets each role carries live in internal/authz (the role
catalog); this package only names the vocabulary so that models does not
depend on policy logic.

Role summary:
  - admin: full access to all operations
  - editor: manages content but not system settings
  - author: creates and edits own content
  - reader: reads published content
  - moderator: reads and moderates comments and content
*/

package models

// Role identifies a named bundle of permission verbs assigned to an actor.
type Role string

// Role constants define the standard roles in the system.
const (
	RoleAdmin     Role = "ADMIN"
	RoleEditor    Role = "EDITOR"
	RoleAuthor    Role = "AUTHOR"
	RoleReader    Role = "READER"
	RoleModerator Role = "MODERATOR"
)

// ValidRoles contains all valid role names for validation.
var ValidRoles = []Role{RoleAdmin, RoleEditor, RoleAuthor, RoleReader, RoleModerator}

// IsValidRole checks if a role name is recognized.
func IsValidRole(role Role) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Verb is an atomic permission a role may carry.
type Verb string

// Permission verbs. The order here is the canonical ordering used when
// a role's verb set is listed.
const (
	VerbRead     Verb = "read"
	VerbCreate   Verb = "create"
	VerbUpdate   Verb = "update"
	VerbDelete   Verb = "delete"
	VerbPublish  Verb = "publish"
	VerbModerate Verb = "moderate"
)

// Operation is the kind of guarded operation requested against an entity type.
type Operation string

// Guarded operation kinds. Every operation except read is mutating.
const (
	OpRead     Operation = "read"
	OpCreate   Operation = "create"
	OpUpdate   Operation = "update"
	OpDelete   Operation = "delete"
	OpPublish  Operation = "publish"
	OpModerate Operation = "moderate"
)

// ValidOperations contains all recognized operation kinds.
var ValidOperations = []Operation{OpRead, OpCreate, OpUpdate, OpDelete, OpPublish, OpModerate}

// IsValidOperation checks if an operation kind is recognized.
func IsValidOperation(op Operation) bool {
	for _, o := range ValidOperations {
		if o == op {
			return true
		}
	}
	return false
}

// IsMutation reports whether the operation writes. Unrecognized operation
// kinds count as mutations so that a typo in a caller fails closed.
func (op Operation) IsMutation() bool {
	return op != OpRead
}
