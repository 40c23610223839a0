// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package authz

import (
	"net/http"

	"github.com/inkgate/inkgate/internal/logging"
	"github.com/inkgate/inkgate/internal/models"
)

// Middleware provides role-gate middleware for HTTP routes that sit
// outside the operation guard (admin surfaces, audit query endpoints).
type Middleware struct {
	evaluator *Evaluator
}

// NewMiddleware creates role-gate middleware over the evaluator.
func NewMiddleware(evaluator *Evaluator) *Middleware {
	return &Middleware{evaluator: evaluator}
}

// RequireRoles enforces that the request actor passes the role gate for
// the given roles. Anonymous actors get 401, authenticated actors without
// a matching role get 403. Denial bodies stay generic.
func (m *Middleware) RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			decision := m.evaluator.CheckRoleAccess(actor, roles)
			if decision.Allowed {
				next.ServeHTTP(w, r)
				return
			}
			if !actor.IsAuthenticated {
				http.Error(w, "Unauthorized: authentication required", http.StatusUnauthorized)
				return
			}
			logging.Ctx(r.Context()).Warn().
				Str("actor_id", actor.ID).
				Str("path", r.URL.Path).
				Msg("Role gate denied request")
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
		})
	}
}

// RequireAdmin enforces that the request actor is an admin.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFromContext(r.Context())
		if !actor.IsAuthenticated {
			http.Error(w, "Unauthorized: authentication required", http.StatusUnauthorized)
			return
		}
		if !actor.IsAdmin {
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
