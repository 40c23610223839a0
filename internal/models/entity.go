// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package models

// Entity is the read-only capability the storage collaborator exposes to
// the policy layer. Inkgate filters and audits entities but never creates,
// mutates, or destroys them; security policy is registered separately in
// the policy registry, never mixed into the entity definition itself.
type Entity interface {
	// EntityType returns the registered type name (e.g. "post").
	EntityType() string

	// EntityID returns the entity's unique identifier.
	EntityID() string

	// OwnerID returns the owning actor's ID, or empty when the type has
	// no owner relation.
	OwnerID() string

	// Fields returns the entity's field values by name. Callers must not
	// mutate the returned map.
	Fields() map[string]any
}

// Record is a map-backed Entity for collaborators that hold entities as
// plain field maps (and for tests). The guard itself only ever sees the
// Entity interface.
type Record struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Owner  string         `json:"owner,omitempty"`
	Values map[string]any `json:"values"`
}

// EntityType implements Entity.
func (r *Record) EntityType() string { return r.Type }

// EntityID implements Entity.
func (r *Record) EntityID() string { return r.ID }

// OwnerID implements Entity.
func (r *Record) OwnerID() string { return r.Owner }

// Fields implements Entity.
func (r *Record) Fields() map[string]any { return r.Values }

// Clone returns a copy with its own Values map, so callers can hand out
// records without sharing mutable state. Values themselves are copied
// shallowly.
func (r *Record) Clone() *Record {
	values := make(map[string]any, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return &Record{Type: r.Type, ID: r.ID, Owner: r.Owner, Values: values}
}
