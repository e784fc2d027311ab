// Package apperrors defines the error taxonomy shared by the approval engine
// and its HTTP surface. Services return these wrapped with %w; handlers map
// them to status codes with the Is* predicates.
package apperrors

import (
	"errors"
	"fmt"
)

// NotFoundError means a step, request or record id did not resolve.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NewNotFound builds a NotFoundError for the given entity and id.
func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// AlreadyProcessedError means a step was not PENDING anymore, including the
// loser of a concurrent race. Replays are rejected, never silently ignored.
type AlreadyProcessedError struct {
	Entity string
	Status string
}

func (e *AlreadyProcessedError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("%s already processed", e.Entity)
	}
	return fmt.Sprintf("%s is already %s", e.Entity, e.Status)
}

// NewAlreadyProcessed builds an AlreadyProcessedError.
func NewAlreadyProcessed(entity, status string) error {
	return &AlreadyProcessedError{Entity: entity, Status: status}
}

// PermissionError means the caller is neither the designated approver nor an
// admin for the step's target area.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	if e.Reason == "" {
		return "permission denied"
	}
	return "permission denied: " + e.Reason
}

// NewPermission builds a PermissionError.
func NewPermission(reason string) error {
	return &PermissionError{Reason: reason}
}

// ValidationError means the input violates a business rule (short rejection
// comment, malformed flow edit, bad request payload).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NewValidation builds a ValidationError.
func NewValidation(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsAlreadyProcessed reports whether err wraps an AlreadyProcessedError.
func IsAlreadyProcessed(err error) bool {
	var target *AlreadyProcessedError
	return errors.As(err, &target)
}

// IsPermission reports whether err wraps a PermissionError.
func IsPermission(err error) bool {
	var target *PermissionError
	return errors.As(err, &target)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
