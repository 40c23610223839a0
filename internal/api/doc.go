// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

/*
Package api provides the HTTP REST API layer for Inkgate.

The API fronts the authorization guard: every content operation enters as
a guarded request, passes through role checks, input sanitization, and
field-level filtering, and leaves an audit event behind.

Key Components:

  - Router: Chi route configuration and middleware stack
  - Handler: Guarded operation endpoint and policy introspection
  - AuditHandlers: Audit trail query endpoints (admin only)
  - Response formatting: Standardized JSON responses with metadata
  - Actor extraction: Identity headers resolved into the request context

API Categories:

 1. Operation Endpoint (/api/v1/entities/{type}/{operation}):
    The single guarded entry point. The request body carries the entity
    ID and payload; the response carries the actor's filtered view.

 2. Policy Endpoints (/api/v1/policies):
    Read-only introspection of registered entity policies and roles.

 3. Audit Endpoints (/api/v1/audit/):
    Event listing, lookup, stats, and hash-chain verification. All
    require an admin actor.

 4. Infrastructure:
    /api/v1/health for liveness, /metrics for Prometheus.

Identity arrives via trusted headers set by the fronting proxy:
X-Inkgate-Actor (subject ID), X-Inkgate-Roles (comma-separated), and
X-Inkgate-Admin. Requests without an actor header run as anonymous.

Thread Safety:

All handlers are safe for concurrent use. Shared state (registry, audit
store) is protected by its own synchronization.
*/
package api
