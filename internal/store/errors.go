// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

// =============================================================================
// ERRORS
// =============================================================================

// StoreError represents a store-related error.
// It implements the error interface and can be compared using errors.Is.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

var (
	// ErrHoleNotFound is returned when a hole ID does not exist.
	ErrHoleNotFound = &StoreError{Message: "hole not found"}

	// ErrMessageNotFound is returned when a message ID does not exist
	// in the given hole.
	ErrMessageNotFound = &StoreError{Message: "message not found"}

	// ErrAlreadyClassified is returned when a classification is
	// attached to a message that already carries one.
	ErrAlreadyClassified = &StoreError{Message: "message already classified"}

	// ErrAlreadyProvisioned is returned when Provision targets a hole
	// that already has a password.
	ErrAlreadyProvisioned = &StoreError{Message: "hole already provisioned"}

	// ErrNotProvisioned is returned for operations that require a
	// password-protected hole.
	ErrNotProvisioned = &StoreError{Message: "hole not provisioned"}
)
