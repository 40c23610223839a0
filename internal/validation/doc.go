// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

// Package validation provides input hygiene for operation payloads.
//
// Two layers live here:
//
//   - Sanitizer: denylist scanning for injection patterns, required-field
//     presence checks, and a cleanse step that neutralizes markup in
//     string values. This is defense in depth on top of parameterized
//     storage, not a substitute for it.
//   - Struct validation using go-playground/validator v10, a thread-safe
//     singleton with error translation into the API's VALIDATION_ERROR
//     shape.
//
// The sanitizer never echoes rejected input back to the caller. Errors
// name the offending field and the matched denylist pattern, both of
// which are known in advance, so hostile payloads cannot ride a
// validation message into logs or responses.
package validation
