// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/inkgate/inkgate/internal/authz"
	"github.com/inkgate/inkgate/internal/logging"
	"github.com/inkgate/inkgate/internal/models"
)

// =============================================================================
// Actor Extraction Tests
// =============================================================================

func TestActorFromRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		headers   map[string]string
		wantID    string
		wantRoles []models.Role
		wantAdmin bool
		wantAnon  bool
	}{
		{
			name:     "no headers yields anonymous",
			headers:  nil,
			wantAnon: true,
		},
		{
			name:     "blank actor header yields anonymous",
			headers:  map[string]string{HeaderActor: "   "},
			wantAnon: true,
		},
		{
			name:      "actor with roles",
			headers:   map[string]string{HeaderActor: "user-1", HeaderRoles: "AUTHOR, EDITOR"},
			wantID:    "user-1",
			wantRoles: []models.Role{models.RoleAuthor, models.RoleEditor},
		},
		{
			name:      "admin flag case insensitive",
			headers:   map[string]string{HeaderActor: "root", HeaderAdmin: "TRUE"},
			wantID:    "root",
			wantAdmin: true,
		},
		{
			name:    "admin flag must be true",
			headers: map[string]string{HeaderActor: "user-2", HeaderAdmin: "1"},
			wantID:  "user-2",
		},
		{
			name:      "empty role segments skipped",
			headers:   map[string]string{HeaderActor: "user-3", HeaderRoles: ",READER,,"},
			wantID:    "user-3",
			wantRoles: []models.Role{models.RoleReader},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			actor := actorFromRequest(r)

			if tt.wantAnon {
				if actor.IsAuthenticated {
					t.Error("actor.IsAuthenticated = true, want anonymous")
				}
				return
			}
			if !actor.IsAuthenticated {
				t.Fatal("actor.IsAuthenticated = false, want true")
			}
			if actor.ID != tt.wantID {
				t.Errorf("actor.ID = %q, want %q", actor.ID, tt.wantID)
			}
			if actor.IsAdmin != tt.wantAdmin {
				t.Errorf("actor.IsAdmin = %v, want %v", actor.IsAdmin, tt.wantAdmin)
			}
			if len(actor.Roles) != len(tt.wantRoles) {
				t.Fatalf("actor.Roles = %v, want %v", actor.Roles, tt.wantRoles)
			}
			for i, role := range tt.wantRoles {
				if actor.Roles[i] != role {
					t.Errorf("actor.Roles[%d] = %q, want %q", i, actor.Roles[i], role)
				}
			}
		})
	}
}

func TestActorFromHeaders_PopulatesContext(t *testing.T) {
	t.Parallel()

	var got *models.Actor
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = authz.ActorFromContext(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(HeaderActor, "user-ctx")
	r.Header.Set(HeaderRoles, "READER")

	ActorFromHeaders()(next).ServeHTTP(httptest.NewRecorder(), r)

	if got == nil {
		t.Fatal("handler was not called")
	}
	if got.ID != "user-ctx" {
		t.Errorf("actor.ID = %q, want user-ctx", got.ID)
	}
}

// =============================================================================
// Request ID Tests
// =============================================================================

func TestRequestIDWithLogging_GeneratesID(t *testing.T) {
	t.Parallel()

	var ctxID string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctxID = logging.RequestIDFromContext(r.Context())
	})

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	RequestIDWithLogging()(next).ServeHTTP(rec, r)

	if ctxID == "" {
		t.Error("request ID missing from context")
	}
	if rec.Header().Get("X-Request-ID") != ctxID {
		t.Errorf("response header %q, want %q", rec.Header().Get("X-Request-ID"), ctxID)
	}
}

func TestRequestIDWithLogging_PreservesClientID(t *testing.T) {
	t.Parallel()

	var ctxID string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctxID = logging.RequestIDFromContext(r.Context())
	})

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "client-supplied")

	RequestIDWithLogging()(next).ServeHTTP(rec, r)

	if ctxID != "client-supplied" {
		t.Errorf("context request ID = %q, want client-supplied", ctxID)
	}
}

// =============================================================================
// Middleware Config Tests
// =============================================================================

func TestDefaultChiMiddlewareConfig(t *testing.T) {
	t.Parallel()

	config := DefaultChiMiddlewareConfig()

	if len(config.CORSAllowedOrigins) != 0 {
		t.Errorf("CORSAllowedOrigins = %v, want empty (explicit configuration required)", config.CORSAllowedOrigins)
	}
	if config.RateLimitRequests != 100 {
		t.Errorf("RateLimitRequests = %d, want 100", config.RateLimitRequests)
	}
}

func TestRateLimit_DisabledIsNoOp(t *testing.T) {
	t.Parallel()

	config := DefaultChiMiddlewareConfig()
	config.RateLimitDisabled = true
	m := NewChiMiddleware(config)

	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

	for i := 0; i < 500; i++ {
		m.RateLimit()(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	if !called {
		t.Error("handler never called through disabled rate limiter")
	}
}
