// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/inkgate/inkgate/internal/models"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithActor(actor *models.Actor) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/admin/audit", nil)
	if actor != nil {
		req = req.WithContext(WithActor(req.Context(), actor))
	}
	return req
}

func TestMiddleware_RequireRoles(t *testing.T) {
	mw := NewMiddleware(NewEvaluator(NewRegistry()))
	handler := mw.RequireRoles(models.RoleEditor, models.RoleAdmin)(okHandler())

	tests := []struct {
		name       string
		actor      *models.Actor
		wantStatus int
	}{
		{
			name:       "no actor in context treated as anonymous",
			actor:      nil,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "anonymous actor",
			actor:      models.Anonymous(),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "editor allowed",
			actor:      &models.Actor{ID: "u1", Roles: []models.Role{models.RoleEditor}, IsAuthenticated: true},
			wantStatus: http.StatusOK,
		},
		{
			name:       "admin without roles allowed",
			actor:      &models.Actor{ID: "a1", IsAdmin: true, IsAuthenticated: true},
			wantStatus: http.StatusOK,
		},
		{
			name:       "reader denied",
			actor:      &models.Actor{ID: "u2", Roles: []models.Role{models.RoleReader}, IsAuthenticated: true},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, requestWithActor(tt.actor))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestMiddleware_RequireRoles_DenialBodyStaysGeneric(t *testing.T) {
	mw := NewMiddleware(NewEvaluator(NewRegistry()))
	handler := mw.RequireRoles(models.RoleEditor)(okHandler())

	rec := httptest.NewRecorder()
	actor := &models.Actor{ID: "u1", Roles: []models.Role{models.RoleReader}, IsAuthenticated: true}
	handler.ServeHTTP(rec, requestWithActor(actor))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	body := rec.Body.String()
	for _, leaked := range []string{"EDITOR", "READER"} {
		if containsSubstring(body, leaked) {
			t.Errorf("denial body %q leaks role name %q", body, leaked)
		}
	}
}

func TestMiddleware_RequireAdmin(t *testing.T) {
	mw := NewMiddleware(NewEvaluator(NewRegistry()))
	handler := mw.RequireAdmin(okHandler())

	tests := []struct {
		name       string
		actor      *models.Actor
		wantStatus int
	}{
		{"anonymous", models.Anonymous(), http.StatusUnauthorized},
		{"authenticated non-admin", &models.Actor{ID: "u1", Roles: []models.Role{models.RoleEditor}, IsAuthenticated: true}, http.StatusForbidden},
		{"admin", &models.Actor{ID: "a1", IsAdmin: true, IsAuthenticated: true}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, requestWithActor(tt.actor))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestActorFromContext_DefaultsAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	actor := ActorFromContext(req.Context())
	if actor == nil {
		t.Fatal("ActorFromContext() = nil, want anonymous actor")
	}
	if actor.IsAuthenticated || actor.IsAdmin {
		t.Errorf("ActorFromContext() default = %+v, want unauthenticated non-admin", actor)
	}
}
