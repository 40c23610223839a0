// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

// Package audit records who did what to which entity. Events are written
// asynchronously so the request path never blocks on the trail, and each
// event carries the hash of its predecessor so tampering with stored
// history is detectable.
package audit

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/inkgate/inkgate/internal/models"
)

// Outcome indicates how the audited operation ended.
type Outcome string

const (
	// OutcomeSuccess means the operation executed and committed.
	OutcomeSuccess Outcome = "success"

	// OutcomeFailure means the operation was attempted but the executor
	// returned an error.
	OutcomeFailure Outcome = "failure"

	// OutcomeDenied means the role gate or sanitizer rejected the
	// operation before it ran.
	OutcomeDenied Outcome = "denied"
)

// Actor is the audit-trail projection of the request actor. Role names
// are recorded as plain strings so a trail outlives catalog changes.
type Actor struct {
	// ID is the actor's unique identifier, empty for anonymous.
	ID string `json:"id"`

	// Roles held by the actor at the time of the operation.
	Roles []string `json:"roles,omitempty"`

	// IsAdmin records whether the admin bypass applied.
	IsAdmin bool `json:"is_admin,omitempty"`
}

// Event is one entry in the audit trail.
type Event struct {
	// ID is a unique identifier for this event.
	ID string `json:"id"`

	// Timestamp is taken when the operation completed, not when it
	// started, so the trail orders by effect.
	Timestamp time.Time `json:"timestamp"`

	// Operation that was performed or attempted.
	Operation models.Operation `json:"operation"`

	// EntityType names the policy the operation ran under.
	EntityType string `json:"entity_type"`

	// EntityID identifies the affected entity, empty for creates that
	// never produced one.
	EntityID string `json:"entity_id,omitempty"`

	// Outcome of the operation.
	Outcome Outcome `json:"outcome"`

	// Actor who performed the operation.
	Actor Actor `json:"actor"`

	// ErrorMessage for failures and denials. Always a generic message;
	// raw input never appears here.
	ErrorMessage string `json:"error_message,omitempty"`

	// Fields lists the names of mutated fields. Names only; values stay
	// out of the trail.
	Fields []string `json:"fields,omitempty"`

	// SensitiveTouched flags that the mutation included at least one
	// field the policy marks sensitive.
	SensitiveTouched bool `json:"sensitive_touched,omitempty"`

	// Metadata carries event-specific details.
	Metadata json.RawMessage `json:"metadata,omitempty"`

	// RequestID from the originating HTTP request.
	RequestID string `json:"request_id,omitempty"`

	// PrevHash is the hash of the preceding event in the chain, empty
	// for the first event.
	PrevHash string `json:"prev_hash"`

	// Hash covers this event's identifying fields plus PrevHash.
	Hash string `json:"hash"`
}

// Store defines the interface for audit event persistence.
type Store interface {
	Sink

	// Get retrieves an event by ID.
	Get(ctx context.Context, id string) (*Event, error)

	// Query retrieves events matching the filter.
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)

	// Count returns the number of events matching the filter.
	Count(ctx context.Context, filter QueryFilter) (int64, error)

	// Delete removes events older than the retention cutoff and
	// returns how many were removed.
	Delete(ctx context.Context, olderThan time.Time) (int64, error)
}

// Sink receives a copy of every written event. Stores are sinks; so are
// forward-only destinations like message brokers and webhooks.
type Sink interface {
	Save(ctx context.Context, event *Event) error
}

// QueryFilter defines filtering options for audit queries.
type QueryFilter struct {
	// Operations filters by operation.
	Operations []models.Operation `json:"operations,omitempty"`

	// Outcomes filters by outcome.
	Outcomes []Outcome `json:"outcomes,omitempty"`

	// EntityType filters by entity type.
	EntityType string `json:"entity_type,omitempty"`

	// EntityID filters by entity ID.
	EntityID string `json:"entity_id,omitempty"`

	// ActorID filters by actor ID.
	ActorID string `json:"actor_id,omitempty"`

	// RequestID filters by originating request.
	RequestID string `json:"request_id,omitempty"`

	// SensitiveOnly restricts results to events that touched a
	// sensitive field.
	SensitiveOnly bool `json:"sensitive_only,omitempty"`

	// StartTime is the beginning of the time range.
	StartTime *time.Time `json:"start_time,omitempty"`

	// EndTime is the end of the time range.
	EndTime *time.Time `json:"end_time,omitempty"`

	// Limit is the maximum number of results.
	Limit int `json:"limit,omitempty"`

	// Offset for pagination.
	Offset int `json:"offset,omitempty"`

	// OrderDesc sorts newest first.
	OrderDesc bool `json:"order_desc,omitempty"`
}

// DefaultQueryFilter returns a sensible default filter.
func DefaultQueryFilter() QueryFilter {
	return QueryFilter{
		Limit:     100,
		OrderDesc: true,
	}
}
