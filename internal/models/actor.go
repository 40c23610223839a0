// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package models

// Actor is the principal making a request: the already-authenticated user
// (or the anonymous caller) as established by the API transport. Inkgate
// never verifies credentials; it consumes the identity the transport built
// and discards it when the request ends.
type Actor struct {
	// ID is the actor's unique identifier. Empty for anonymous callers.
	ID string `json:"id"`

	// Roles are the roles granted to the actor.
	Roles []Role `json:"roles,omitempty"`

	// IsAdmin marks staff/superuser actors. Admins bypass role gates
	// unconditionally (but not the ReadOnly field floor).
	IsAdmin bool `json:"is_admin"`

	// IsAuthenticated distinguishes a logged-in actor from an anonymous one.
	IsAuthenticated bool `json:"is_authenticated"`
}

// Anonymous returns the actor representing an unauthenticated caller.
func Anonymous() *Actor {
	return &Actor{}
}

// HasRole reports whether the actor carries the given role.
func (a *Actor) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the actor carries at least one of the given roles.
func (a *Actor) HasAnyRole(roles []Role) bool {
	for _, r := range roles {
		if a.HasRole(r) {
			return true
		}
	}
	return false
}

// Owns reports whether the actor is the owner referenced by ownerID.
// Anonymous actors own nothing.
func (a *Actor) Owns(ownerID string) bool {
	return a.ID != "" && a.ID == ownerID
}
