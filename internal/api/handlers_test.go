// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/inkgate/inkgate/internal/audit"
	"github.com/inkgate/inkgate/internal/authz"
	"github.com/inkgate/inkgate/internal/guard"
	"github.com/inkgate/inkgate/internal/models"
)

// =============================================================================
// Test Fixture
// =============================================================================

type apiFixture struct {
	server *httptest.Server
	trail  *audit.MemoryStore
}

// newAPIFixture builds the full stack: registry, guard with an echo
// executor, audit logger over a memory store, and the chi route tree.
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	registry := authz.NewRegistry()
	err := registry.Register("post", authz.SecurityConfig{
		RequiredRoles:   []models.Role{models.RoleAuthor, models.RoleEditor, models.RoleAdmin},
		AuditOperations: []models.Operation{models.OpCreate, models.OpUpdate, models.OpDelete},
		FieldPermissions: map[string]authz.FieldAccessLevel{
			"is_featured": authz.FieldAdminOnly,
			"view_count":  authz.FieldReadOnly,
		},
	})
	if err != nil {
		t.Fatalf("failed to register policy: %v", err)
	}

	evaluator := authz.NewEvaluator(registry)
	store := audit.NewMemoryStore(1000)
	trail := audit.NewLogger(store, &audit.Config{
		Enabled:       true,
		RecordDenials: true,
		BufferSize:    100,
	})
	t.Cleanup(func() { _ = trail.Close() })

	g := guard.New(registry, evaluator, trail)
	echo := func(_ context.Context, req *guard.Request) (models.Entity, error) {
		return &models.Record{
			Type:   req.EntityType,
			ID:     "post-1",
			Owner:  req.Actor.ID,
			Values: req.Payload,
		}, nil
	}
	for _, op := range []models.Operation{models.OpCreate, models.OpRead, models.OpUpdate} {
		if err := g.RegisterExecutor("post", op, echo); err != nil {
			t.Fatalf("failed to register executor: %v", err)
		}
	}

	handler := NewHandler(g, registry)
	auditHandlers := NewAuditHandlers(store)
	mwConfig := DefaultChiMiddlewareConfig()
	mwConfig.RateLimitDisabled = true
	router := NewRouter(handler, auditHandlers, NewChiMiddleware(mwConfig), authz.NewMiddleware(evaluator))

	server := httptest.NewServer(router.Setup())
	t.Cleanup(server.Close)

	return &apiFixture{server: server, trail: store}
}

// do sends a request with the given identity headers and decodes the
// response envelope.
func (f *apiFixture) do(t *testing.T, method, path string, body any, headers map[string]string) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var envelope map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, envelope
}

func authorHeaders() map[string]string {
	return map[string]string{
		HeaderActor: "user-author",
		HeaderRoles: "AUTHOR",
	}
}

func adminHeaders() map[string]string {
	return map[string]string{
		HeaderActor: "user-admin",
		HeaderAdmin: "true",
	}
}

// waitForEvents polls the store until it holds at least n events.
func (f *apiFixture) waitForEvents(t *testing.T, n int) []audit.Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if f.trail.Len() >= n {
			return f.trail.Events()
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d audit events, have %d", n, f.trail.Len())
	return nil
}

// =============================================================================
// ExecuteOperation Tests
// =============================================================================

func TestExecuteOperation_CreateAsAuthor(t *testing.T) {
	f := newAPIFixture(t)

	status, envelope := f.do(t, http.MethodPost, "/api/v1/entities/post/create", OperationRequest{
		Payload: map[string]any{"title": "Hello"},
	}, authorHeaders())

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if envelope["status"] != "success" {
		t.Errorf("envelope status = %v, want success", envelope["status"])
	}

	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("data missing from envelope: %v", envelope)
	}
	fields, ok := data["fields"].(map[string]any)
	if !ok {
		t.Fatalf("fields missing from result: %v", data)
	}
	if fields["title"] != "Hello" {
		t.Errorf("title = %v, want Hello", fields["title"])
	}
}

func TestExecuteOperation_AnonymousDenied(t *testing.T) {
	f := newAPIFixture(t)

	status, envelope := f.do(t, http.MethodPost, "/api/v1/entities/post/create", OperationRequest{
		Payload: map[string]any{"title": "Hello"},
	}, nil)

	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	apiErr, ok := envelope["error"].(map[string]any)
	if !ok {
		t.Fatalf("error missing from envelope: %v", envelope)
	}
	if apiErr["code"] != ErrCodeAuthRequired {
		t.Errorf("error code = %v, want %s", apiErr["code"], ErrCodeAuthRequired)
	}
}

func TestExecuteOperation_InsufficientRole(t *testing.T) {
	f := newAPIFixture(t)

	status, envelope := f.do(t, http.MethodPost, "/api/v1/entities/post/create", OperationRequest{
		Payload: map[string]any{"title": "Hello"},
	}, map[string]string{HeaderActor: "user-reader", HeaderRoles: "READER"})

	if status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
	apiErr := envelope["error"].(map[string]any)
	if apiErr["code"] != ErrCodeInsufficientRole {
		t.Errorf("error code = %v, want %s", apiErr["code"], ErrCodeInsufficientRole)
	}
}

func TestExecuteOperation_UnknownEntityType(t *testing.T) {
	f := newAPIFixture(t)

	status, _ := f.do(t, http.MethodPost, "/api/v1/entities/ghost/create", OperationRequest{
		Payload: map[string]any{"title": "boo"},
	}, authorHeaders())

	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
}

func TestExecuteOperation_InvalidOperation(t *testing.T) {
	f := newAPIFixture(t)

	status, envelope := f.do(t, http.MethodPost, "/api/v1/entities/post/explode", nil, authorHeaders())

	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	apiErr := envelope["error"].(map[string]any)
	if apiErr["code"] != "VALIDATION_ERROR" {
		t.Errorf("error code = %v, want VALIDATION_ERROR", apiErr["code"])
	}
}

func TestExecuteOperation_DangerousPayloadRejected(t *testing.T) {
	f := newAPIFixture(t)

	status, envelope := f.do(t, http.MethodPost, "/api/v1/entities/post/create", OperationRequest{
		Payload: map[string]any{"body": "<script>alert(1)</script>"},
	}, authorHeaders())

	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}

	// The denied payload must never be echoed back.
	apiErr := envelope["error"].(map[string]any)
	if msg, _ := apiErr["message"].(string); msg == "" || bytes.Contains([]byte(msg), []byte("<script")) {
		t.Errorf("error message leaks payload or is empty: %q", msg)
	}
	details, ok := apiErr["details"].(map[string]any)
	if !ok || details["field"] != "body" {
		t.Errorf("details = %v, want offending field name", apiErr["details"])
	}
}

func TestExecuteOperation_MissingRequiredFields(t *testing.T) {
	f := newAPIFixture(t)

	status, envelope := f.do(t, http.MethodPost, "/api/v1/entities/post/create", OperationRequest{
		Payload:        map[string]any{"title": "  "},
		RequiredFields: []string{"title", "body"},
	}, authorHeaders())

	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	apiErr := envelope["error"].(map[string]any)
	details, ok := apiErr["details"].(map[string]any)
	if !ok {
		t.Fatalf("details missing: %v", apiErr)
	}
	fields, ok := details["fields"].([]any)
	if !ok || len(fields) != 2 {
		t.Errorf("missing fields = %v, want both title and body", details["fields"])
	}
}

func TestExecuteOperation_ReadWithoutBody(t *testing.T) {
	f := newAPIFixture(t)

	status, _ := f.do(t, http.MethodPost, "/api/v1/entities/post/read", nil, authorHeaders())

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
}

func TestExecuteOperation_MalformedJSON(t *testing.T) {
	f := newAPIFixture(t)

	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/api/v1/entities/post/create",
		bytes.NewBufferString("{not json"))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	for k, v := range authorHeaders() {
		req.Header.Set(k, v)
	}

	resp, err := f.server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestExecuteOperation_AuditsMutation(t *testing.T) {
	f := newAPIFixture(t)

	status, _ := f.do(t, http.MethodPost, "/api/v1/entities/post/create", OperationRequest{
		Payload: map[string]any{"title": "Audited"},
	}, authorHeaders())
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	events := f.waitForEvents(t, 1)
	event := events[0]
	if event.Operation != models.OpCreate {
		t.Errorf("event operation = %q, want create", event.Operation)
	}
	if event.Outcome != audit.OutcomeSuccess {
		t.Errorf("event outcome = %q, want success", event.Outcome)
	}
	if event.Actor.ID != "user-author" {
		t.Errorf("event actor = %q, want user-author", event.Actor.ID)
	}
	if event.RequestID == "" {
		t.Error("event request ID is empty, want propagated X-Request-ID")
	}
}

// =============================================================================
// Health, Roles, Policies Tests
// =============================================================================

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)

	status, envelope := f.do(t, http.MethodGet, "/api/v1/health", nil, nil)

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	data := envelope["data"].(map[string]any)
	if data["status"] != "ok" {
		t.Errorf("health status = %v, want ok", data["status"])
	}
	if data["policy_count"] != float64(1) {
		t.Errorf("policy_count = %v, want 1", data["policy_count"])
	}
}

func TestListRoles_Public(t *testing.T) {
	f := newAPIFixture(t)

	status, envelope := f.do(t, http.MethodGet, "/api/v1/roles", nil, nil)

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	roles, ok := envelope["data"].([]any)
	if !ok || len(roles) == 0 {
		t.Fatalf("roles data = %v, want non-empty list", envelope["data"])
	}
}

func TestListPolicies_RequiresAdmin(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
	}{
		{name: "anonymous", headers: nil, wantStatus: http.StatusUnauthorized},
		{name: "author", headers: authorHeaders(), wantStatus: http.StatusForbidden},
		{name: "admin", headers: adminHeaders(), wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, f.server.URL+"/api/v1/policies/", nil)
			if err != nil {
				t.Fatalf("failed to build request: %v", err)
			}
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			resp, err := f.server.Client().Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}
