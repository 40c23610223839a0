// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

// Package supervisor builds the suture supervision tree for Inkgate.
//
// The tree has two child supervisors under the root: an audit layer for
// background retention work and an api layer for the HTTP server.
// Failures restart only the crashed service; repeated failures back off
// per the configured thresholds. Supervisor events are logged through
// sutureslog via the logging package's slog adapter.
package supervisor
