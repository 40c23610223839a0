// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package authz

import (
	"github.com/inkgate/inkgate/internal/models"
)

// FieldAccessLevel is a permission attached to one named field of an
// entity type, independent of the type's overall role gate.
type FieldAccessLevel string

// Field access levels, from most to least open.
const (
	// FieldPublic fields are visible to everyone. The default for fields
	// without an explicit level.
	FieldPublic FieldAccessLevel = "public"

	// FieldAuthenticated fields require a logged-in actor.
	FieldAuthenticated FieldAccessLevel = "authenticated"

	// FieldOwnerOrAdmin fields are restricted to the entity's owner and admins.
	FieldOwnerOrAdmin FieldAccessLevel = "owner_or_admin"

	// FieldAdminOnly fields are restricted to admins.
	FieldAdminOnly FieldAccessLevel = "admin_only"

	// FieldReadOnly fields deny every write, including by admins. A hard
	// floor, not a bypassable permission.
	FieldReadOnly FieldAccessLevel = "read_only"
)

// validFieldLevels is the closed set of recognized levels. Anything else
// denies at evaluation time and is rejected at registration time.
var validFieldLevels = map[FieldAccessLevel]struct{}{
	FieldPublic:        {},
	FieldAuthenticated: {},
	FieldOwnerOrAdmin:  {},
	FieldAdminOnly:     {},
	FieldReadOnly:      {},
}

// IsValid reports whether the level is one of the recognized levels.
func (l FieldAccessLevel) IsValid() bool {
	_, ok := validFieldLevels[l]
	return ok
}

// auditableOperations is the subset of operations that may appear in
// SecurityConfig.AuditOperations.
var auditableOperations = map[models.Operation]struct{}{
	models.OpCreate: {},
	models.OpUpdate: {},
	models.OpDelete: {},
}

// SecurityConfig is the per-entity-type security record. Created once per
// type at startup, owned exclusively by the Registry, and never mutated
// at runtime.
type SecurityConfig struct {
	// RequiredRoles are the roles permitted to perform any mutating
	// operation on the type. Empty means no role gate.
	RequiredRoles []models.Role

	// AuditOperations is the subset of {create, update, delete} that must
	// be recorded in the audit trail.
	AuditOperations []models.Operation

	// FieldPermissions maps field names to their access level. Fields
	// not listed default to FieldPublic.
	FieldPermissions map[string]FieldAccessLevel

	// SensitiveFields are candidates for at-rest protection. Informational
	// here; the audit trail flags mutations that touch them.
	SensitiveFields []string
}

// ShouldAudit reports whether the operation is in the config's audit set.
func (c SecurityConfig) ShouldAudit(op models.Operation) bool {
	for _, audited := range c.AuditOperations {
		if audited == op {
			return true
		}
	}
	return false
}

// FieldLevel returns the access level for a field, defaulting to FieldPublic.
func (c SecurityConfig) FieldLevel(field string) FieldAccessLevel {
	if level, ok := c.FieldPermissions[field]; ok {
		return level
	}
	return FieldPublic
}

// IsSensitive reports whether the field is marked sensitive.
func (c SecurityConfig) IsSensitive(field string) bool {
	for _, f := range c.SensitiveFields {
		if f == field {
			return true
		}
	}
	return false
}

// Registry is the process-wide mapping from entity-type name to
// SecurityConfig. Populate it during startup, then treat it as read-only;
// it performs no internal locking because its lifecycle guarantees no
// writes happen after the first Lookup.
type Registry struct {
	configs map[string]SecurityConfig
}

// NewRegistry creates an empty registry. The constructed instance is meant
// to be passed by reference into the guard; nothing in this package keeps
// package-level registry state.
func NewRegistry() *Registry {
	return &Registry{configs: make(map[string]SecurityConfig)}
}

// Register adds the security configuration for an entity type. It fails
// with a *ConfigError when the type is already registered, a required role
// is not in the catalog, a field names an unrecognized access level, or an
// audit operation is not auditable.
func (r *Registry) Register(entityType string, cfg SecurityConfig) error {
	if entityType == "" {
		return &ConfigError{Reason: "entity type name is empty"}
	}
	if _, dup := r.configs[entityType]; dup {
		return &ConfigError{EntityType: entityType, Reason: "entity type already registered"}
	}
	for _, role := range cfg.RequiredRoles {
		if !RoleExists(role) {
			return &ConfigError{
				EntityType: entityType,
				Reason:     "required role " + string(role) + " is not in the catalog",
				Err:        ErrUnknownRole,
			}
		}
	}
	for field, level := range cfg.FieldPermissions {
		if !level.IsValid() {
			return &ConfigError{
				EntityType: entityType,
				Reason:     "field " + field + " names unknown access level " + string(level),
			}
		}
	}
	for _, op := range cfg.AuditOperations {
		if _, ok := auditableOperations[op]; !ok {
			return &ConfigError{
				EntityType: entityType,
				Reason:     "operation " + string(op) + " cannot be audited",
			}
		}
	}

	r.configs[entityType] = cfg
	return nil
}

// Lookup returns the SecurityConfig for an entity type, or a
// *UnregisteredTypeError when the type was never registered.
func (r *Registry) Lookup(entityType string) (SecurityConfig, error) {
	cfg, ok := r.configs[entityType]
	if !ok {
		return SecurityConfig{}, &UnregisteredTypeError{EntityType: entityType}
	}
	return cfg, nil
}

// Types returns the registered entity-type names. Order is unspecified.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.configs))
	for name := range r.configs {
		types = append(types, name)
	}
	return types
}
