// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package authz

import (
	"errors"
	"fmt"
)

// Sentinel errors for authorization failures. Callers match with errors.Is;
// the messages stay generic so a denial never reveals which rule fired.
var (
	// ErrAuthenticationRequired is returned when an anonymous actor
	// attempts a role-gated operation.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrInsufficientRole is returned when an authenticated actor lacks
	// every required role.
	ErrInsufficientRole = errors.New("insufficient permissions")

	// ErrUnknownRole is returned by the catalog for unrecognized roles.
	// It surfaces only during registration, never during evaluation.
	ErrUnknownRole = errors.New("unknown role")
)

// ConfigError reports an invalid policy registration: a duplicate entity
// type, an unknown role, an unknown field access level, or an operation
// that cannot be audited. Registration happens at startup, so a
// ConfigError is fatal and never reaches request handling.
type ConfigError struct {
	EntityType string
	Reason     string
	Err        error
}

// Error implements error.
func (e *ConfigError) Error() string {
	if e.EntityType == "" {
		return "authz: invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("authz: invalid configuration for %q: %s", e.EntityType, e.Reason)
}

// Unwrap supports errors.Is/As over the wrapped cause.
func (e *ConfigError) Unwrap() error { return e.Err }

// UnregisteredTypeError reports a lookup for an entity type that was never
// registered. This is a programming error in the embedding application and
// is surfaced loudly rather than treated as a denial.
type UnregisteredTypeError struct {
	EntityType string
}

// Error implements error.
func (e *UnregisteredTypeError) Error() string {
	return fmt.Sprintf("authz: entity type %q is not registered", e.EntityType)
}
