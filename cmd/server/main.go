// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

// Package main is the entry point for the Inkgate server.
//
// Inkgate is an authorization and audit policy gateway for content APIs.
// It sits between an identity-terminating proxy and a content backend,
// deciding per operation and per field whether an actor may read or
// write, sanitizing untrusted input, and recording a tamper-evident
// audit trail.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional YAML file, INKGATE_* env vars (Koanf v2)
//  2. Policy registry: per-entity-type security policies from config
//  3. Audit subsystem: memory or DuckDB store, optional webhook and
//     publisher sinks, async trail logger
//  4. Operation guard: role gate, sanitizer, field write checks, executors
//  5. HTTP server: Chi router with identity-header actor extraction
//  6. Supervisor tree: audit cleanup and HTTP server under suture
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): INKGATE_* environment variables, a YAML config file
// (INKGATE_CONFIG or the default search paths), and built-in defaults.
// The default policy document covers the six blog entity types.
//
// # Identity
//
// Inkgate does not verify credentials. The fronting proxy authenticates
// clients and forwards identity via X-Inkgate-Actor, X-Inkgate-Roles,
// and X-Inkgate-Admin headers. Requests without these headers run as
// anonymous and are denied on any role-gated operation.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting connections, waits for in-flight requests up to the
// configured shutdown timeout, drains the audit buffer, and closes the
// store.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inkgate/inkgate/internal/api"
	"github.com/inkgate/inkgate/internal/audit"
	"github.com/inkgate/inkgate/internal/authz"
	"github.com/inkgate/inkgate/internal/config"
	"github.com/inkgate/inkgate/internal/guard"
	"github.com/inkgate/inkgate/internal/logging"
	"github.com/inkgate/inkgate/internal/supervisor"
	"github.com/inkgate/inkgate/internal/supervisor/services"
	"github.com/inkgate/inkgate/internal/validation"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Int("policies", len(cfg.Policies)).
		Str("audit_store", cfg.Audit.Store).
		Bool("audit_enabled", cfg.Audit.Enabled).
		Msg("Starting Inkgate")

	// Build the policy registry from the configured policy document.
	registry, err := cfg.BuildRegistry()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build policy registry")
	}
	evaluator := authz.NewEvaluator(registry)

	sanitizer := validation.NewSanitizerWithPatterns(cfg.Security.ExtraDenyPatterns...)
	if len(cfg.Security.ExtraDenyPatterns) > 0 {
		logging.Info().
			Int("count", len(cfg.Security.ExtraDenyPatterns)).
			Msg("Extra sanitizer deny patterns loaded")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Audit subsystem: store, sinks, async trail logger.
	auditComps, err := initAudit(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize audit subsystem")
	}
	defer auditComps.close()

	// Operation guard over the bundled entity store. An embedding
	// application would register its own executors here instead.
	entityStore := newMemoryEntityStore()
	operationGuard := guard.New(registry, evaluator, auditComps.trail,
		guard.WithFetcher(entityStore),
		guard.WithSanitizer(sanitizer),
	)
	if err := registerExecutors(operationGuard, entityStore, registry.Types()); err != nil {
		logging.Fatal().Err(err).Msg("Failed to register executors")
	}
	logging.Info().
		Strs("entity_types", registry.Types()).
		Msg("Operation guard initialized")

	// HTTP layer
	mwConfig := api.DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwConfig.RateLimitRequests = cfg.Server.RateLimitReqs
	mwConfig.RateLimitWindow = cfg.Server.RateLimitWindow
	mwConfig.RateLimitDisabled = cfg.Server.RateLimitReqs <= 0

	handler := api.NewHandler(operationGuard, registry)
	auditHandlers := api.NewAuditHandlers(auditComps.store)
	router := api.NewRouter(handler, auditHandlers,
		api.NewChiMiddleware(mwConfig), authz.NewMiddleware(evaluator))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Supervisor tree: audit retention cleanup and the HTTP server.
	// The slog adapter bridges zerolog to sutureslog.
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if cfg.Audit.Enabled {
		tree.AddAuditService(audit.NewCleanupService(
			auditComps.store,
			cfg.Audit.CleanupInterval,
			cfg.Audit.RetentionDays,
		))
		logging.Info().
			Dur("interval", cfg.Audit.CleanupInterval).
			Int("retention_days", cfg.Audit.RetentionDays).
			Msg("Audit retention cleanup scheduled")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
