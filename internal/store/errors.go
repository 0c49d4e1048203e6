package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrBoardNotFound, ErrTaskNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when an operation loses to a concurrent writer
	// or would violate a uniqueness invariant, such as starting a second open
	// time entry on a task.
	ErrConflict = errors.New("conflicting concurrent operation")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrStorageUnavailable is returned when the backing store cannot be
	// reached or a store call exceeds its deadline. Callers may retry with
	// backoff; the store never retries internally.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Entity-specific "not found" errors

	// ErrIdentityNotFound indicates that the requested identity does not exist in the store.
	ErrIdentityNotFound = fmt.Errorf("%w: identity", ErrNotFound)

	// ErrBoardNotFound indicates that the requested board does not exist in the store.
	ErrBoardNotFound = fmt.Errorf("%w: board", ErrNotFound)

	// ErrTaskNotFound indicates that the requested task does not exist in the store.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrTimeEntryNotFound indicates that the requested time entry does not exist in the store.
	ErrTimeEntryNotFound = fmt.Errorf("%w: time entry", ErrNotFound)

	// ErrRegistrationKeyNotFound indicates that a registration key is unknown
	// or already consumed.
	ErrRegistrationKeyNotFound = fmt.Errorf("%w: registration key", ErrNotFound)

	// Entity-specific "conflict" errors

	// ErrOpenEntryExists indicates that the task already has a running time entry.
	ErrOpenEntryExists = fmt.Errorf("%w: open time entry exists for task", ErrConflict)

	// ErrEntryOverlap indicates that a closed time entry would overlap another
	// closed entry of the same owner.
	ErrEntryOverlap = fmt.Errorf("%w: time entry overlaps an existing entry", ErrConflict)

	// ErrLoginExists indicates that an identity with the given login already exists.
	ErrLoginExists = fmt.Errorf("%w: login taken", ErrConflict)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflictError checks if the error is any kind of "conflict" error.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsRetryable reports whether the caller may reasonably retry the operation.
// Only storage availability problems qualify; invariant violations never do.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "board", "task")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
