// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

// Package api provides HTTP routing using the Chi router.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inkgate/inkgate/internal/authz"
)

// Router wires handlers and middleware into the HTTP route tree.
type Router struct {
	handler       *Handler
	auditHandlers *AuditHandlers
	chiMiddleware *ChiMiddleware
	authzMw       *authz.Middleware
}

// NewRouter creates a new router.
func NewRouter(handler *Handler, auditHandlers *AuditHandlers, chiMw *ChiMiddleware, authzMw *authz.Middleware) *Router {
	return &Router{
		handler:       handler,
		auditHandlers: auditHandlers,
		chiMiddleware: chiMw,
		authzMw:       authzMw,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	// Applied to ALL routes in order
	r.Use(RequestIDWithLogging())      // X-Request-ID plus logging context
	r.Use(chimiddleware.RealIP)        // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)     // Recover from panics
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(ActorFromHeaders())          // Resolve identity headers into the context

	// ========================
	// Health and Metrics
	// ========================
	// Permissive rate limiting; monitoring polls these frequently.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", router.handler.Health)
	})
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Guarded Operations
	// ========================
	// The single entry point for content operations. Authorization is
	// the guard's job, not the router's; anonymous requests reach the
	// guard and are denied there so denials land in the audit trail.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		r.Post("/entities/{entityType}/{operation}", router.handler.ExecuteOperation)
		r.Get("/roles", router.handler.ListRoles)
	})

	// ========================
	// Admin Surfaces
	// ========================
	// Policy introspection and the audit trail require an admin actor.
	r.Route("/api/v1/audit", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(router.authzMw.RequireAdmin)

		r.Get("/events", router.auditHandlers.ListEvents)
		r.Get("/events/{id}", router.auditHandlers.GetEvent)
		r.Get("/stats", router.auditHandlers.Stats)
		r.Get("/verify", router.auditHandlers.VerifyChain)
	})
	r.Route("/api/v1/policies", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(router.authzMw.RequireAdmin)

		r.Get("/", router.handler.ListPolicies)
	})

	return r
}
