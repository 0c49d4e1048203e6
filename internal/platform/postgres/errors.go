package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"

	"github.com/dayplan-app/dayplan-api/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// foreignKeyViolationCode is the PostgreSQL error code for foreign key violations
	foreignKeyViolationCode = "23503"

	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// exclusionViolationCode is the PostgreSQL error code for exclusion
	// constraint violations, raised by the time entry overlap constraint
	exclusionViolationCode = "23P01"

	// serializationFailureCode is the PostgreSQL error code for serialization
	// failures between concurrent transactions
	serializationFailureCode = "40001"

	// deadlockDetectedCode is the PostgreSQL error code for detected deadlocks
	deadlockDetectedCode = "40P01"
)

// Constraint names the schema declares for invariants the application
// surfaces as specific errors.
const (
	constraintOneOpenEntry  = "time_entries_one_open_per_task"
	constraintEntryOverlap  = "time_entries_owner_no_overlap"
	constraintIdentityLogin = "identities_login_key"
)

// MapError maps a database error to the store error taxonomy.
// It wraps the original error to preserve context for debugging.
// All store methods route their errors through this function so callers
// see one consistent vocabulary.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	// Timeouts and unreachable backends are retryable availability problems.
	if errors.Is(err, context.DeadlineExceeded) || isConnectionError(err) {
		return fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return mapUniqueViolation(pgErr, err)
		case exclusionViolationCode:
			return fmt.Errorf("%w: %v", store.ErrEntryOverlap, err)
		case serializationFailureCode, deadlockDetectedCode:
			return fmt.Errorf("%w: concurrent transaction lost (%s): %v", store.ErrConflict, pgErr.Code, err)
		case foreignKeyViolationCode:
			return fmt.Errorf(
				"%w: foreign key violation (%s): %v",
				store.ErrInvalidEntity,
				pgErr.ConstraintName,
				err,
			)
		case checkViolationCode:
			return fmt.Errorf(
				"%w: check constraint violation (%s): %v",
				store.ErrInvalidEntity,
				pgErr.ConstraintName,
				err,
			)
		}
	}

	return err
}

// mapUniqueViolation narrows a unique violation to the specific invariant
// the violated constraint guards.
func mapUniqueViolation(pgErr *pgconn.PgError, err error) error {
	switch pgErr.ConstraintName {
	case constraintOneOpenEntry:
		return fmt.Errorf("%w: %v", store.ErrOpenEntryExists, err)
	case constraintIdentityLogin:
		return fmt.Errorf("%w: %v", store.ErrLoginExists, err)
	}
	return fmt.Errorf("%w: duplicate value for constraint %s: %v", store.ErrConflict, pgErr.ConstraintName, err)
}

// isConnectionError reports whether the error came from the network layer
// rather than from query semantics.
func isConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// IsExclusionViolation checks if the given error is a PostgreSQL exclusion
// constraint violation.
func IsExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == exclusionViolationCode
}

// IsSerializationFailure checks if the given error is a serialization failure
// or deadlock that the caller may retry in a fresh transaction.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == serializationFailureCode || pgErr.Code == deadlockDetectedCode
}

// CheckRowsAffected examines the number of rows affected by a database operation.
// If no rows were affected, it returns a store.ErrNotFound wrap naming the entity.
// Useful for UPDATE and DELETE statements where zero affected rows means the
// target record doesn't exist.
func CheckRowsAffected(result sql.Result, entityName string) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if entityName == "" {
			return store.ErrNotFound
		}
		return fmt.Errorf("%w: %s not found", store.ErrNotFound, entityName)
	}

	return nil
}
