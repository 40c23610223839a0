// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

// Package guard runs every entity operation through a fixed pipeline:
// policy lookup, role gate, input sanitation, execution, audit, and
// field filtering. Handlers call the guard; nothing else in the process
// invokes an executor directly.
package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/inkgate/inkgate/internal/audit"
	"github.com/inkgate/inkgate/internal/authz"
	"github.com/inkgate/inkgate/internal/logging"
	"github.com/inkgate/inkgate/internal/models"
	"github.com/inkgate/inkgate/internal/validation"
)

// Request describes one entity operation to guard.
type Request struct {
	// Actor performing the operation. Nil is treated as anonymous.
	Actor *models.Actor

	// EntityType names the registered policy to run under.
	EntityType string

	// Operation to perform.
	Operation models.Operation

	// EntityID identifies the target entity. Empty for creates and
	// collection reads.
	EntityID string

	// Payload carries the operation's input fields. Nil for reads
	// and deletes.
	Payload map[string]any

	// RequiredFields names payload fields that must be present and
	// non-empty before the executor runs.
	RequiredFields []string
}

// Result is the outcome of a guarded operation.
type Result struct {
	// EntityID of the affected entity, set by the executor.
	EntityID string `json:"entity_id"`

	// Fields is the actor's filtered read view of the resulting entity.
	// Denied fields are absent, not null.
	Fields map[string]any `json:"fields"`
}

// Executor performs the domain side of an operation once the guard has
// cleared it. The payload it receives is already cleansed and stripped
// of fields the actor may not write.
type Executor func(ctx context.Context, req *Request) (models.Entity, error)

// Fetcher loads an existing entity so the guard can apply owner-aware
// field checks before a mutation runs. Optional; without it the guard
// falls back to ownerless field decisions.
type Fetcher interface {
	Fetch(ctx context.Context, entityType, entityID string) (models.Entity, error)
}

// Guard wires the access evaluator, sanitizer, and audit trail around
// registered executors.
type Guard struct {
	registry  *authz.Registry
	evaluator *authz.Evaluator
	sanitizer *validation.Sanitizer
	trail     *audit.Logger
	fetcher   Fetcher

	executors map[string]map[models.Operation]Executor
}

// Option configures a Guard.
type Option func(*Guard)

// WithFetcher gives the guard access to stored entities for owner-aware
// write checks.
func WithFetcher(f Fetcher) Option {
	return func(g *Guard) { g.fetcher = f }
}

// WithSanitizer replaces the default sanitizer.
func WithSanitizer(s *validation.Sanitizer) Option {
	return func(g *Guard) { g.sanitizer = s }
}

// New creates a Guard. The audit trail may be nil, in which case
// operations run unaudited; the registry and evaluator are required.
func New(registry *authz.Registry, evaluator *authz.Evaluator, trail *audit.Logger, opts ...Option) *Guard {
	g := &Guard{
		registry:  registry,
		evaluator: evaluator,
		sanitizer: validation.NewSanitizer(),
		trail:     trail,
		executors: make(map[string]map[models.Operation]Executor),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RegisterExecutor binds an executor to an entity type and operation.
// The entity type must already be registered with the policy registry.
func (g *Guard) RegisterExecutor(entityType string, op models.Operation, exec Executor) error {
	if _, err := g.registry.Lookup(entityType); err != nil {
		return err
	}
	if !models.IsValidOperation(op) {
		return fmt.Errorf("unknown operation %q", op)
	}
	ops, ok := g.executors[entityType]
	if !ok {
		ops = make(map[models.Operation]Executor)
		g.executors[entityType] = ops
	}
	if _, dup := ops[op]; dup {
		return fmt.Errorf("executor already registered for %s/%s", entityType, op)
	}
	ops[op] = exec
	return nil
}

// Execute runs one operation through the pipeline. The returned error is
// one of the package's typed errors; callers map it to transport status.
//
// Audit happens after the executor returns, timestamped at completion.
// A canceled context still produces an audit event for the attempt.
func (g *Guard) Execute(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	if req.Actor == nil {
		req.Actor = models.Anonymous()
	}

	cfg, err := g.registry.Lookup(req.EntityType)
	if err != nil {
		recordOperation(req.Operation, "unregistered", time.Since(start))
		return nil, err
	}

	exec, ok := g.executors[req.EntityType][req.Operation]
	if !ok {
		recordOperation(req.Operation, "unsupported", time.Since(start))
		return nil, &UnsupportedOperationError{EntityType: req.EntityType, Operation: req.Operation}
	}

	// Reads have no role gate; field filtering below is their control.
	if req.Operation.IsMutation() {
		decision := g.evaluator.CheckRoleAccess(req.Actor, cfg.RequiredRoles)
		if !decision.Allowed {
			err := denialError(req.Actor)
			g.auditOutcome(ctx, req, cfg, audit.OutcomeDenied, err.Error(), nil)
			recordOperation(req.Operation, "denied", time.Since(start))
			return nil, err
		}
	}

	if req.Payload != nil {
		if err := g.sanitizer.RequireFields(req.Payload, req.RequiredFields...); err != nil {
			g.auditOutcome(ctx, req, cfg, audit.OutcomeDenied, err.Error(), nil)
			recordOperation(req.Operation, "rejected", time.Since(start))
			return nil, err
		}
		if err := g.sanitizer.Scan(req.Payload); err != nil {
			g.auditOutcome(ctx, req, cfg, audit.OutcomeDenied, err.Error(), nil)
			recordOperation(req.Operation, "rejected", time.Since(start))
			return nil, err
		}
		req.Payload = g.sanitizer.Cleanse(req.Payload)
		g.stripUnwritable(ctx, req)
	}

	entity, execErr := exec(ctx, req)

	var mutated []string
	if req.Operation.IsMutation() {
		mutated = payloadFields(req.Payload)
	}
	if execErr != nil {
		g.auditOutcome(ctx, req, cfg, audit.OutcomeFailure, "operation failed", mutated)
		recordOperation(req.Operation, "failed", time.Since(start))
		return nil, &ExecutionError{EntityType: req.EntityType, Operation: req.Operation, Err: execErr}
	}

	result := &Result{}
	if entity != nil {
		result.EntityID = entity.EntityID()
		result.Fields = g.evaluator.FilterFields(req.Actor, entity)
		if req.EntityID == "" {
			req.EntityID = entity.EntityID()
		}
	}

	g.auditOutcome(ctx, req, cfg, audit.OutcomeSuccess, "", mutated)
	recordOperation(req.Operation, "success", time.Since(start))
	return result, nil
}

// denialError picks the typed error for a role-gate denial.
func denialError(actor *models.Actor) error {
	if !actor.IsAuthenticated {
		return authz.ErrAuthenticationRequired
	}
	return authz.ErrInsufficientRole
}

// stripUnwritable drops payload fields the actor may not write. The
// ReadOnly floor lands here: those fields never reach an executor,
// whoever asks.
func (g *Guard) stripUnwritable(ctx context.Context, req *Request) {
	target := g.writeTarget(ctx, req)
	allowed, denied := g.evaluator.WritableFields(req.Actor, target, payloadFields(req.Payload))
	if len(denied) == 0 {
		return
	}

	kept := make(map[string]any, len(allowed))
	for _, field := range allowed {
		kept[field] = req.Payload[field]
	}
	req.Payload = kept

	logging.Ctx(ctx).Debug().
		Str("entity_type", req.EntityType).
		Strs("fields", denied).
		Msg("Stripped unwritable fields from payload")
}

// writeTarget resolves the entity an owner-aware write check runs
// against. Creates are owned by their creator; updates consult the
// fetcher when one is configured.
func (g *Guard) writeTarget(ctx context.Context, req *Request) models.Entity {
	if req.Operation == models.OpCreate || req.EntityID == "" {
		return &models.Record{Type: req.EntityType, Owner: req.Actor.ID}
	}
	if g.fetcher != nil {
		if entity, err := g.fetcher.Fetch(ctx, req.EntityType, req.EntityID); err == nil && entity != nil {
			return entity
		}
	}
	// Unknown owner: owner_or_admin resolves to admin-only.
	return &models.Record{Type: req.EntityType, ID: req.EntityID}
}

// auditOutcome records the operation when the policy audits it.
func (g *Guard) auditOutcome(ctx context.Context, req *Request, cfg authz.SecurityConfig, outcome audit.Outcome, errMessage string, fields []string) {
	if g.trail == nil || !cfg.ShouldAudit(req.Operation) {
		return
	}

	sensitive := false
	for _, field := range fields {
		if cfg.IsSensitive(field) {
			sensitive = true
			break
		}
	}

	g.trail.RecordOperation(ctx, req.Actor, req.Operation, req.EntityType, req.EntityID, outcome, errMessage, fields, sensitive)
}

func payloadFields(payload map[string]any) []string {
	if len(payload) == 0 {
		return nil
	}
	fields := make([]string, 0, len(payload))
	for field := range payload {
		fields = append(fields, field)
	}
	return fields
}
