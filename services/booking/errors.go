package booking

import "fmt"

// ValidationError marks malformed or missing input the caller can correct.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
	}
	return "validation: " + e.Message
}

func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// NotFoundError marks an absent referenced entity.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// Conflict reasons.
const (
	ConflictCapacity    = "capacity"
	ConflictLock        = "lock"
	ConflictEntitlement = "entitlement"
	ConflictDuplicate   = "duplicate"
	ConflictPayment     = "payment"
	ConflictUnavailable = "unavailable"
)

// ConflictError marks a state conflict: exhausted capacity, an expired or
// foreign lock, a duplicate booking group, or a refused paid deletion. The
// caller picks a different slot rather than fixing input.
type ConflictError struct {
	Reason  string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict (%s): %s", e.Reason, e.Message)
}

func NewConflictError(reason, msg string) error {
	return &ConflictError{Reason: reason, Message: msg}
}

// ForbiddenError marks a cross-tenant reference.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Message
}

func NewForbiddenError(msg string) error {
	return &ForbiddenError{Message: msg}
}
