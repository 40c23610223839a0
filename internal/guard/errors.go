// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package guard

import (
	"fmt"

	"github.com/inkgate/inkgate/internal/models"
)

// UnsupportedOperationError reports an operation with no registered
// executor for the entity type.
type UnsupportedOperationError struct {
	EntityType string
	Operation  models.Operation
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("operation %s is not supported for %s", e.Operation, e.EntityType)
}

// ExecutionError wraps an executor failure. The wrapped error stays out
// of API responses; callers surface a generic message and log the rest.
type ExecutionError struct {
	EntityType string
	Operation  models.Operation
	Err        error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Operation, e.EntityType, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
