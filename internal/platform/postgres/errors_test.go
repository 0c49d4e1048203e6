package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/dayplan-app/dayplan-api/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func pgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		ConstraintName: constraint,
		Message:        "constraint violated",
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "nil passes through",
			err:  nil,
			want: nil,
		},
		{
			name: "no rows maps to not found",
			err:  sql.ErrNoRows,
			want: store.ErrNotFound,
		},
		{
			name: "deadline maps to storage unavailable",
			err:  fmt.Errorf("query: %w", context.DeadlineExceeded),
			want: store.ErrStorageUnavailable,
		},
		{
			name: "open entry unique violation",
			err:  pgError(uniqueViolationCode, constraintOneOpenEntry),
			want: store.ErrOpenEntryExists,
		},
		{
			name: "login unique violation",
			err:  pgError(uniqueViolationCode, constraintIdentityLogin),
			want: store.ErrLoginExists,
		},
		{
			name: "other unique violation maps to conflict",
			err:  pgError(uniqueViolationCode, "some_other_key"),
			want: store.ErrConflict,
		},
		{
			name: "exclusion violation maps to entry overlap",
			err:  pgError(exclusionViolationCode, constraintEntryOverlap),
			want: store.ErrEntryOverlap,
		},
		{
			name: "serialization failure maps to conflict",
			err:  pgError(serializationFailureCode, ""),
			want: store.ErrConflict,
		},
		{
			name: "deadlock maps to conflict",
			err:  pgError(deadlockDetectedCode, ""),
			want: store.ErrConflict,
		},
		{
			name: "foreign key violation maps to invalid entity",
			err:  pgError(foreignKeyViolationCode, "tasks_board_id_fkey"),
			want: store.ErrInvalidEntity,
		},
		{
			name: "check violation maps to invalid entity",
			err:  pgError(checkViolationCode, "tasks_priority_check"),
			want: store.ErrInvalidEntity,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MapError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMapErrorPreservesUnknownErrors(t *testing.T) {
	t.Parallel()

	original := errors.New("something else entirely")
	assert.Equal(t, original, MapError(original))
}

func TestMapErrorRetryability(t *testing.T) {
	t.Parallel()

	// Availability problems are retryable, constraint violations are not.
	assert.True(t, store.IsRetryable(MapError(context.DeadlineExceeded)))
	assert.False(t, store.IsRetryable(MapError(pgError(uniqueViolationCode, constraintOneOpenEntry))))
	assert.False(t, store.IsRetryable(MapError(pgError(exclusionViolationCode, constraintEntryOverlap))))
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(pgError(uniqueViolationCode, "x")))
	assert.False(t, IsUniqueViolation(errors.New("nope")))

	assert.True(t, IsExclusionViolation(pgError(exclusionViolationCode, "x")))
	assert.False(t, IsExclusionViolation(pgError(uniqueViolationCode, "x")))

	assert.True(t, IsSerializationFailure(pgError(serializationFailureCode, "")))
	assert.True(t, IsSerializationFailure(pgError(deadlockDetectedCode, "")))
	assert.False(t, IsSerializationFailure(pgError(uniqueViolationCode, "")))
}
