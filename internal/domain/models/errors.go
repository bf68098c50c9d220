package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a referenced cow, member, customer or entry is absent.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks input rejected before anything is written.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateID is returned when an insert collides with an existing external ID.
	ErrDuplicateID = errors.New("duplicate identifier")

	// ErrOwnershipMismatch is returned when a milk-in names a cow owned by someone else.
	ErrOwnershipMismatch = errors.New("cow does not belong to owner")

	// ErrCowArchived is returned when milk is submitted for an archived cow.
	ErrCowArchived = errors.New("cow is archived")

	// ErrNotEligible is returned when health rules block milk collection.
	ErrNotEligible = errors.New("cow not eligible for milk collection")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError names the missing record.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IneligibleError carries the eligibility decision that blocked a milk-in.
type IneligibleError struct {
	CowID        string
	CowName      string
	HealthStatus HealthStatus
	Result       EligibilityResult
}

func (e *IneligibleError) Error() string {
	return e.Result.Reason
}

func (e *IneligibleError) Unwrap() error {
	return ErrNotEligible
}

// BlockedUntil returns the end of the withdrawal window, if any.
func (e *IneligibleError) BlockedUntil() *time.Time {
	return e.Result.BlockedUntil
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrOwnershipMismatch) ||
		errors.Is(err, ErrCowArchived) ||
		errors.Is(err, ErrNotEligible)
}
