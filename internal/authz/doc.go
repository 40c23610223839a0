// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

/*
Package authz implements role- and field-level access control for guarded
entity types.

The package has three pieces, leaves first:

  - Catalog: the static table of roles and the permission verbs each one
    carries. Fixed at process start; lookups never fail for roles that
    passed registration.
  - Registry: the process-wide mapping from entity-type name to its
    SecurityConfig. Built exactly once during startup from static
    configuration and read-only afterwards. A deployment that needs hot
    reload builds a fresh Registry and atomically swaps the reference;
    in-place mutation is not supported.
  - Evaluator: pure decision logic. Given an actor, a SecurityConfig and
    an operation it produces role-level decisions and field-level
    filters. It holds no mutable state and is safe for unsynchronized
    concurrent use.

Decision order is fixed: the role gate runs first as a coarse filter,
field-level checks run afterwards and only narrow, never widen, what the
role gate allowed. Unknown field access levels deny (fail closed), and
the ReadOnly level is a hard floor that denies writes to every actor,
admins included.
*/
package authz
