package store

import (
	"context"
	"time"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/google/uuid"
)

// TimeEntryStore defines the interface for time entry persistence.
type TimeEntryStore interface {
	// Create saves a new time entry. The schema's partial unique index
	// guarantees at most one open entry per task; a violation surfaces as
	// ErrOpenEntryExists. A closed entry overlapping another closed entry
	// for the same owner surfaces as ErrEntryOverlap.
	Create(ctx context.Context, entry *domain.TimeEntry, ownerID uuid.UUID) error

	// GetByID retrieves a time entry by its unique ID.
	// Returns ErrTimeEntryNotFound if the entry does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TimeEntry, error)

	// GetOpenByTask retrieves the single open entry for a task, if any.
	// Returns ErrTimeEntryNotFound when the task has no open entry.
	GetOpenByTask(ctx context.Context, taskID uuid.UUID) (*domain.TimeEntry, error)

	// Close sets the end timestamp on an open entry. The overlap exclusion
	// constraint is checked at close time; a violation surfaces as
	// ErrEntryOverlap.
	Close(ctx context.Context, id uuid.UUID, endedAt time.Time) error

	// ListByTask retrieves all entries recorded against a task, ordered by
	// start time.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TimeEntry, error)

	// ListByBoard retrieves all entries recorded against any task on the
	// given board, ordered by start time. Used by schedule composition.
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.TimeEntry, error)

	// WithTx returns a copy of the store bound to an existing transaction.
	WithTx(tx DBTX) TimeEntryStore
}
