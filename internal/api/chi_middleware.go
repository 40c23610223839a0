// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

// Package api provides Chi middleware factories for production-hardened
// middleware from the Chi ecosystem.
package api

import (
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/inkgate/inkgate/internal/authz"
	"github.com/inkgate/inkgate/internal/logging"
	"github.com/inkgate/inkgate/internal/models"
)

// Identity headers set by the fronting proxy. The gateway trusts them;
// terminating client authentication is the proxy's job.
const (
	HeaderActor = "X-Inkgate-Actor"
	HeaderRoles = "X-Inkgate-Roles"
	HeaderAdmin = "X-Inkgate-Admin"
)

// ChiMiddlewareConfig holds configuration for Chi middleware factories.
type ChiMiddlewareConfig struct {
	// CORS configuration
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	CORSMaxAge         int // seconds

	// Rate limiting configuration
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// DefaultChiMiddlewareConfig returns a secure default configuration.
// CORS origins default to empty, requiring explicit configuration.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{},
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", HeaderActor, HeaderRoles, HeaderAdmin},
		CORSMaxAge:         86400,

		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RateLimitDisabled: false,
	}
}

// ChiMiddleware provides Chi-compatible middleware factories.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates a new Chi middleware factory with the given
// configuration.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: config.CORSAllowedOrigins,
		AllowedMethods: config.CORSAllowedMethods,
		AllowedHeaders: config.CORSAllowedHeaders,
		MaxAge:         config.CORSMaxAge,
	})

	return &ChiMiddleware{
		config: config,
		cors:   corsHandler,
	}
}

// CORS returns a Chi-compatible CORS middleware using go-chi/cors.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns an IP-keyed rate limiting middleware using
// go-chi/httprate.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		m.config.RateLimitRequests,
		m.config.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)
}

// RateLimitHealth returns a permissive rate limiter for health
// endpoints. Allows frequent monitoring while preventing abuse.
func (m *ChiMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.LimitByIP(1000, time.Minute)
}

// RequestIDWithLogging returns a middleware that adds a request ID to
// the context and integrates with the logging package for tracing.
// It wraps chi's RequestID middleware so both see the same ID.
func RequestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		chiRequestID := chimiddleware.RequestID(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = logging.NewRequestID()
				r.Header.Set("X-Request-ID", requestID)
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx := logging.ContextWithRequestID(r.Context(), requestID)
			chiRequestID.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromHeaders returns a middleware that resolves the identity
// headers into an Actor on the request context. A missing actor header
// yields the anonymous actor; handlers and the guard decide what
// anonymous is allowed to do.
func ActorFromHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := actorFromRequest(r)
			ctx := authz.WithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// actorFromRequest builds an Actor from the identity headers.
func actorFromRequest(r *http.Request) *models.Actor {
	id := strings.TrimSpace(r.Header.Get(HeaderActor))
	if id == "" {
		return models.Anonymous()
	}

	var roles []models.Role
	if raw := r.Header.Get(HeaderRoles); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				roles = append(roles, models.Role(part))
			}
		}
	}

	return &models.Actor{
		ID:              id,
		Roles:           roles,
		IsAdmin:         strings.EqualFold(r.Header.Get(HeaderAdmin), "true"),
		IsAuthenticated: true,
	}
}
