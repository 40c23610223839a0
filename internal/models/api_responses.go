// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package models

import "time"

// APIResponse is the standardized response wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": see Data
//   - "error": see Error
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "INSUFFICIENT_ROLE", "message": "Insufficient permissions"},
//	  "metadata": {"timestamp": "2026-08-30T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp  time.Time `json:"timestamp"`
	ElapsedMS  int64     `json:"elapsed_ms,omitempty"`
	EntityType string    `json:"entity_type,omitempty"`
	Operation  string    `json:"operation,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
}

// APIError carries structured error details so the transport can map core
// errors onto its own status convention.
//
// Common error codes:
//   - AUTHENTICATION_REQUIRED: anonymous actor on a role-gated operation
//   - INSUFFICIENT_ROLE: authenticated actor lacking a required role
//   - VALIDATION_ERROR: dangerous pattern or missing required field
//   - UNREGISTERED_TYPE: entity type was never registered
//   - EXECUTION_ERROR: the underlying operation failed
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
