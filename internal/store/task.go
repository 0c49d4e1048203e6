package store

import (
	"context"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/google/uuid"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrBoardNotFound if the referenced board does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListByBoard retrieves all tasks on the given board, ordered by
	// creation time.
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error)

	// UpdateStatus persists a task's status after a domain transition.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error

	// Update persists mutable task fields (title, estimate, priority).
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task and, through cascade rules, its time entries.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a copy of the store bound to an existing transaction.
	WithTx(tx DBTX) TaskStore
}
