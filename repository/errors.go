package repository

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is. The concrete error types below wrap
// these so callers can branch on category without losing diagnostic detail.
var (
	// ErrIsolationViolation marks an attempted cross-tenant, cross-organization
	// or cross-department access without the required flag or permission. It is
	// always surfaced, never downgraded to an empty result, so that security
	// relevant events stay visible to audit logging.
	ErrIsolationViolation = errors.New("repository: tenant isolation violation")

	// ErrMissingTenantContext marks an operation invoked without a tenant
	// context. It is itself an isolation violation.
	ErrMissingTenantContext = fmt.Errorf("missing tenant context: %w", ErrIsolationViolation)

	// ErrConcurrencyConflict marks an optimistic version mismatch on save.
	ErrConcurrencyConflict = errors.New("repository: concurrency conflict")
)

// IsolationError carries the context of a denied access. The payload names
// the operation and entity type only; it never includes cross-tenant data.
type IsolationError struct {
	Operation string
	Entity    string
	Reason    string

	sentinel error
}

// NewIsolationError builds an IsolationError matching ErrIsolationViolation.
func NewIsolationError(operation, entity, reason string) *IsolationError {
	return &IsolationError{Operation: operation, Entity: entity, Reason: reason, sentinel: ErrIsolationViolation}
}

// NewMissingContextError builds an IsolationError matching both
// ErrMissingTenantContext and ErrIsolationViolation.
func NewMissingContextError(operation, entity string) *IsolationError {
	return &IsolationError{Operation: operation, Entity: entity, Reason: "no tenant context supplied", sentinel: ErrMissingTenantContext}
}

// Error implements the error interface.
func (e *IsolationError) Error() string {
	return fmt.Sprintf("isolation violation in %s[%s]: %s", e.Operation, e.Entity, e.Reason)
}

// Unwrap exposes the sentinel so errors.Is works across the category.
func (e *IsolationError) Unwrap() error { return e.sentinel }

// OperationError wraps an underlying storage failure. It carries the
// operation name, entity type and, when known, the identifier involved, to
// aid diagnosis without leaking cross-tenant data in the payload.
type OperationError struct {
	Operation string
	Entity    string
	ID        string
	Err       error
}

// NewOperationError wraps a storage failure with operation metadata.
func NewOperationError(operation, entity, id string, err error) *OperationError {
	return &OperationError{Operation: operation, Entity: entity, ID: id, Err: err}
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s[%s] failed for id %s: %v", e.Operation, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("%s[%s] failed: %v", e.Operation, e.Entity, e.Err)
}

// Unwrap exposes the original cause.
func (e *OperationError) Unwrap() error { return e.Err }

// ConflictError reports an optimistic version mismatch on save. The caller
// should re-fetch and retry; retries are never attempted inside this layer.
type ConflictError struct {
	Entity   string
	ID       string
	Expected int64
	Actual   int64
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s %s: expected %d, got %d", e.Entity, e.ID, e.Expected, e.Actual)
}

// Unwrap exposes the conflict sentinel so errors.Is works.
func (e *ConflictError) Unwrap() error { return ErrConcurrencyConflict }
