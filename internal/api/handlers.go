// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/inkgate/inkgate/internal/authz"
	"github.com/inkgate/inkgate/internal/guard"
	"github.com/inkgate/inkgate/internal/logging"
	"github.com/inkgate/inkgate/internal/models"
	"github.com/inkgate/inkgate/internal/validation"
)

// maxRequestBodySize caps operation request bodies at 1 MiB. Content
// payloads are field maps, not file uploads.
const maxRequestBodySize = 1 << 20

// Handler contains dependencies for the API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, guarded operation endpoint, health,
//     policy and role introspection (this file)
//   - handlers_audit.go: audit trail query endpoints
type Handler struct {
	guard     *guard.Guard
	registry  *authz.Registry
	startTime time.Time
}

// NewHandler creates a new API handler.
func NewHandler(g *guard.Guard, registry *authz.Registry) *Handler {
	return &Handler{
		guard:     g,
		registry:  registry,
		startTime: time.Now(),
	}
}

// operationPath validates the URL segments of the operation endpoint
// before they reach the guard.
type operationPath struct {
	EntityType string `validate:"required,entity_type"`
	Operation  string `validate:"required,oneof=create read update delete publish moderate"`
}

// OperationRequest is the body of POST /api/v1/entities/{type}/{operation}.
type OperationRequest struct {
	// EntityID identifies an existing entity. Empty on create.
	EntityID string `json:"entity_id" validate:"omitempty,max=128"`

	// Payload carries the fields being written. Ignored on read.
	Payload map[string]any `json:"payload"`

	// RequiredFields lists payload fields that must be present.
	RequiredFields []string `json:"required_fields" validate:"omitempty,dive,required,max=64"`
}

// ExecuteOperation handles POST /api/v1/entities/{entityType}/{operation}.
// It runs the full guard pipeline: role gate, input sanitization, field
// write checks, executor, audit, and field-filtered response.
func (h *Handler) ExecuteOperation(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	operation := chi.URLParam(r, "operation")
	rw := NewResponseWriter(w, r).WithOperation(entityType, operation)

	path := operationPath{EntityType: entityType, Operation: operation}
	if verr := validation.ValidateStruct(path); verr != nil {
		rw.WriteAPIError(http.StatusBadRequest, verr.ToAPIError())
		return
	}

	var body OperationRequest
	if err := decodeBody(r, &body); err != nil {
		rw.BadRequest("request body must be valid JSON")
		return
	}
	if verr := validation.ValidateStruct(&body); verr != nil {
		rw.WriteAPIError(http.StatusBadRequest, verr.ToAPIError())
		return
	}

	req := &guard.Request{
		Actor:          authz.ActorFromContext(r.Context()),
		EntityType:     entityType,
		Operation:      models.Operation(operation),
		EntityID:       body.EntityID,
		Payload:        body.Payload,
		RequiredFields: body.RequiredFields,
	}

	result, err := h.guard.Execute(r.Context(), req)
	if err != nil {
		writeGuardError(rw, r, err)
		return
	}

	rw.Success(result)
}

// decodeBody decodes the request body, tolerating an empty body for
// payload-less operations such as read.
func decodeBody(r *http.Request, dst *OperationRequest) error {
	limited := http.MaxBytesReader(nil, r.Body, maxRequestBodySize)
	defer func() { _ = r.Body.Close() }()

	if err := json.NewDecoder(limited).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// writeGuardError maps guard pipeline errors to HTTP responses. Denial
// and failure messages stay generic; internals never reach the client.
func writeGuardError(rw *ResponseWriter, r *http.Request, err error) {
	var (
		unregistered  *authz.UnregisteredTypeError
		unsupported   *guard.UnsupportedOperationError
		sanitization  *validation.SanitizationError
		missingFields *validation.MissingFieldsError
		execution     *guard.ExecutionError
	)

	switch {
	case errors.Is(err, authz.ErrAuthenticationRequired):
		rw.Unauthorized("authentication required")
	case errors.Is(err, authz.ErrInsufficientRole):
		rw.Forbidden("insufficient permissions")
	case errors.As(err, &unregistered):
		rw.NotFound("unknown entity type")
	case errors.As(err, &unsupported):
		rw.NotFound("operation not supported for entity type")
	case errors.As(err, &sanitization):
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed,
			"payload contains disallowed content",
			map[string]any{"field": sanitization.Field})
	case errors.As(err, &missingFields):
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed,
			"required fields are missing",
			map[string]any{"fields": missingFields.Fields})
	case errors.As(err, &execution):
		logging.Ctx(r.Context()).Error().Err(err).Msg("Operation execution failed")
		rw.Error(http.StatusInternalServerError, ErrCodeExecutionFailed, "operation failed")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Unexpected guard error")
		rw.InternalError("internal error")
	}
}

// HealthStatus is the response for the health endpoint.
type HealthStatus struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	PolicyCount   int    `json:"policy_count"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, HealthStatus{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		PolicyCount:   len(h.registry.Types()),
	})
}

// RoleInfo describes one role from the catalog.
type RoleInfo struct {
	Name  string   `json:"name"`
	Verbs []string `json:"verbs"`
}

// ListRoles handles GET /api/v1/roles. The role catalog is static and
// not sensitive; it mirrors what any client can discover by probing.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles := authz.AllRoles()
	infos := make([]RoleInfo, 0, len(roles))
	for _, role := range roles {
		verbs, err := authz.PermissionsOf(role)
		if err != nil {
			continue
		}
		names := make([]string, len(verbs))
		for i, v := range verbs {
			names[i] = string(v)
		}
		infos = append(infos, RoleInfo{Name: string(role), Verbs: names})
	}

	WriteSuccess(w, r, infos)
}

// PolicyInfo describes one registered entity policy.
type PolicyInfo struct {
	EntityType       string            `json:"entity_type"`
	RequiredRoles    []string          `json:"required_roles"`
	AuditOperations  []string          `json:"audit_operations"`
	FieldPermissions map[string]string `json:"field_permissions"`
	SensitiveFields  []string          `json:"sensitive_fields"`
}

// ListPolicies handles GET /api/v1/policies. Admin only; policies reveal
// which fields are privileged.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	types := h.registry.Types()
	infos := make([]PolicyInfo, 0, len(types))
	for _, entityType := range types {
		cfg, err := h.registry.Lookup(entityType)
		if err != nil {
			continue
		}
		infos = append(infos, policyInfo(entityType, cfg))
	}

	WriteSuccess(w, r, infos)
}

func policyInfo(entityType string, cfg authz.SecurityConfig) PolicyInfo {
	roles := make([]string, len(cfg.RequiredRoles))
	for i, role := range cfg.RequiredRoles {
		roles[i] = string(role)
	}
	ops := make([]string, len(cfg.AuditOperations))
	for i, op := range cfg.AuditOperations {
		ops[i] = string(op)
	}
	fields := make(map[string]string, len(cfg.FieldPermissions))
	for field, level := range cfg.FieldPermissions {
		fields[field] = string(level)
	}

	return PolicyInfo{
		EntityType:       entityType,
		RequiredRoles:    roles,
		AuditOperations:  ops,
		FieldPermissions: fields,
		SensitiveFields:  cfg.SensitiveFields,
	}
}
