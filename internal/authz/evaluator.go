// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package authz

import (
	"time"

	"github.com/inkgate/inkgate/internal/models"
)

// AccessDecision is the outcome of a role-level check. Ephemeral: produced
// and consumed within a single evaluation, never stored.
type AccessDecision struct {
	Allowed bool
	// Reason is deliberately generic; it never names the specific role or
	// rule that triggered a denial.
	Reason string
}

// FieldOp distinguishes read from write at the field level.
type FieldOp string

// Field-level operation kinds.
const (
	FieldRead  FieldOp = "read"
	FieldWrite FieldOp = "write"
)

// Evaluator is the pure access-decision logic. It carries the registry for
// field-level lookups but holds no mutable state; a single Evaluator is
// safe for unsynchronized concurrent use across requests.
type Evaluator struct {
	registry *Registry
}

// NewEvaluator creates an evaluator over the given registry.
func NewEvaluator(registry *Registry) *Evaluator {
	return &Evaluator{registry: registry}
}

// CheckRoleAccess decides whether the actor passes the role gate:
//
//  1. An empty requiredRoles set allows everyone.
//  2. Admins pass unconditionally.
//  3. Anonymous actors are denied.
//  4. Otherwise the actor needs at least one required role.
func (e *Evaluator) CheckRoleAccess(actor *models.Actor, requiredRoles []models.Role) AccessDecision {
	start := time.Now()
	decision := checkRoleAccess(actor, requiredRoles)
	recordRoleDecision(actor, decision.Allowed, time.Since(start))
	return decision
}

func checkRoleAccess(actor *models.Actor, requiredRoles []models.Role) AccessDecision {
	if len(requiredRoles) == 0 {
		return AccessDecision{Allowed: true}
	}
	if actor.IsAdmin {
		return AccessDecision{Allowed: true}
	}
	if !actor.IsAuthenticated {
		return AccessDecision{Reason: "authentication required"}
	}
	if actor.HasAnyRole(requiredRoles) {
		return AccessDecision{Allowed: true}
	}
	return AccessDecision{Reason: "insufficient permissions"}
}

// CheckFieldAccess decides whether the actor may perform op on one field
// of the entity. The level defaults to FieldPublic for unlisted fields and
// unknown levels deny. Role-level access is a separate, earlier gate;
// field checks only ever narrow it.
func (e *Evaluator) CheckFieldAccess(actor *models.Actor, entity models.Entity, field string, op FieldOp) bool {
	cfg, err := e.registry.Lookup(entity.EntityType())
	if err != nil {
		// Unregistered types have no field policy; deny everything.
		return false
	}
	return fieldAllowed(actor, entity, cfg.FieldLevel(field), op)
}

// fieldAllowed applies a single field access level.
func fieldAllowed(actor *models.Actor, entity models.Entity, level FieldAccessLevel, op FieldOp) bool {
	switch level {
	case FieldPublic:
		return true
	case FieldAuthenticated:
		return actor.IsAuthenticated
	case FieldOwnerOrAdmin:
		return actor.Owns(entity.OwnerID()) || actor.IsAdmin
	case FieldAdminOnly:
		return actor.IsAdmin
	case FieldReadOnly:
		// Hard floor: every write is denied, admins included.
		return op == FieldRead
	default:
		// Fail closed on levels the catalog does not recognize.
		return false
	}
}

// FilterFields returns the read view of an entity for the actor: field
// values whose level permits reading. Denied fields are omitted entirely,
// not nulled, so callers can tell "denied" from "empty". The returned map
// is freshly allocated.
func (e *Evaluator) FilterFields(actor *models.Actor, entity models.Entity) map[string]any {
	cfg, err := e.registry.Lookup(entity.EntityType())
	if err != nil {
		return map[string]any{}
	}

	fields := entity.Fields()
	visible := make(map[string]any, len(fields))
	omitted := 0
	for name, value := range fields {
		if fieldAllowed(actor, entity, cfg.FieldLevel(name), FieldRead) {
			visible[name] = value
		} else {
			omitted++
		}
	}
	if omitted > 0 {
		recordFieldsOmitted(entity.EntityType(), omitted)
	}
	return visible
}

// WritableFields reports which of the named fields the actor may write on
// the entity, and which are denied. Used by mutation paths that want to
// reject a write touching a field the actor cannot set.
func (e *Evaluator) WritableFields(actor *models.Actor, entity models.Entity, fields []string) (allowed, denied []string) {
	cfg, err := e.registry.Lookup(entity.EntityType())
	if err != nil {
		return nil, append(denied, fields...)
	}
	for _, name := range fields {
		if fieldAllowed(actor, entity, cfg.FieldLevel(name), FieldWrite) {
			allowed = append(allowed, name)
		} else {
			denied = append(denied, name)
		}
	}
	return allowed, denied
}
