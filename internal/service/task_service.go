package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/platform/logger"
	"github.com/dayplan-app/dayplan-api/internal/store"
	"github.com/google/uuid"
)

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// TaskParams carries the caller-settable task fields.
type TaskParams struct {
	Title    string
	Estimate time.Duration
	Priority int
}

// TaskService provides task-related operations.
type TaskService interface {
	// AddTask creates a new task on one of the identity's boards.
	AddTask(ctx context.Context, owner *domain.Identity, boardID uuid.UUID, params TaskParams) (*domain.Task, error)

	// GetTask retrieves one of the identity's tasks.
	GetTask(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) (*domain.Task, error)

	// ListTasks retrieves all tasks on one of the identity's boards.
	ListTasks(ctx context.Context, owner *domain.Identity, boardID uuid.UUID) ([]*domain.Task, error)

	// SetTaskStatus moves a task forward through its lifecycle.
	// Backward moves fail with domain.ErrInvalidTransition.
	SetTaskStatus(ctx context.Context, owner *domain.Identity, taskID uuid.UUID, to domain.TaskStatus) (*domain.Task, error)

	// ReopenTask moves a done task back to pending, the one sanctioned
	// backward transition.
	ReopenTask(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) (*domain.Task, error)

	// UpdateTask modifies a task's title, estimate, and priority.
	UpdateTask(ctx context.Context, owner *domain.Identity, taskID uuid.UUID, params TaskParams) (*domain.Task, error)

	// DeleteTask removes a task with its time entries.
	DeleteTask(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) error
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	db     *sql.DB
	boards store.BoardStore
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(db *sql.DB, boards store.BoardStore, tasks store.TaskStore, logger *slog.Logger) (TaskService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if boards == nil {
		return nil, domain.NewValidationError("boards", "cannot be nil", domain.ErrValidation)
	}
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		db:     db,
		boards: boards,
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_service")),
	}, nil
}

// AddTask implements TaskService.AddTask
func (s *taskServiceImpl) AddTask(ctx context.Context, owner *domain.Identity, boardID uuid.UUID, params TaskParams) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(boardID, params.Title, params.Estimate, params.Priority)
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.ownedBoard(ctx, s.boards.WithTx(tx), owner, boardID); err != nil {
			return err
		}
		if err := s.tasks.WithTx(tx).Create(ctx, task); err != nil {
			return NewTaskServiceError("add_task", "failed to save task", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("board_id", boardID.String()))
	return task, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) (*domain.Task, error) {
	return s.ownedTask(ctx, s.boards, s.tasks, owner, taskID)
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context, owner *domain.Identity, boardID uuid.UUID) ([]*domain.Task, error) {
	if err := s.ownedBoard(ctx, s.boards, owner, boardID); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// SetTaskStatus implements TaskService.SetTaskStatus
// The read-modify-write runs in one transaction so concurrent transitions
// serialize on the row instead of clobbering each other.
func (s *taskServiceImpl) SetTaskStatus(ctx context.Context, owner *domain.Identity, taskID uuid.UUID, to domain.TaskStatus) (*domain.Task, error) {
	return s.mutateTask(ctx, owner, taskID, "set_task_status", func(task *domain.Task) error {
		return task.Transition(to)
	})
}

// ReopenTask implements TaskService.ReopenTask
func (s *taskServiceImpl) ReopenTask(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) (*domain.Task, error) {
	return s.mutateTask(ctx, owner, taskID, "reopen_task", func(task *domain.Task) error {
		return task.Reopen()
	})
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(ctx context.Context, owner *domain.Identity, taskID uuid.UUID, params TaskParams) (*domain.Task, error) {
	return s.mutateTask(ctx, owner, taskID, "update_task", func(task *domain.Task) error {
		task.Title = params.Title
		task.Estimate = params.Estimate
		task.Priority = params.Priority
		return task.Validate()
	})
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		if _, err := s.ownedTask(ctx, s.boards.WithTx(tx), txTasks, owner, taskID); err != nil {
			return err
		}
		if err := txTasks.Delete(ctx, taskID); err != nil {
			return NewTaskServiceError("delete_task", "failed to delete task", err)
		}

		log.Debug("task deleted", slog.String("task_id", taskID.String()))
		return nil
	})
}

// mutateTask loads an owned task, applies the mutation, and persists the
// result, all in one transaction.
func (s *taskServiceImpl) mutateTask(
	ctx context.Context,
	owner *domain.Identity,
	taskID uuid.UUID,
	operation string,
	mutate func(*domain.Task) error,
) (*domain.Task, error) {
	var task *domain.Task

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		var err error
		task, err = s.ownedTask(ctx, s.boards.WithTx(tx), txTasks, owner, taskID)
		if err != nil {
			return err
		}

		if err := mutate(task); err != nil {
			return err
		}

		if err := txTasks.Update(ctx, task); err != nil {
			return NewTaskServiceError(operation, "failed to persist task", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// ownedBoard verifies the board exists and belongs to the identity.
func (s *taskServiceImpl) ownedBoard(ctx context.Context, boards store.BoardStore, owner *domain.Identity, boardID uuid.UUID) error {
	board, err := boards.GetByID(ctx, boardID)
	if err != nil {
		return err
	}
	if board.OwnerID != owner.ID {
		return store.ErrBoardNotFound
	}
	return nil
}

// ownedTask loads a task and verifies its board belongs to the identity.
// Another owner's task is indistinguishable from a missing one.
func (s *taskServiceImpl) ownedTask(ctx context.Context, boards store.BoardStore, tasks store.TaskStore, owner *domain.Identity, taskID uuid.UUID) (*domain.Task, error) {
	task, err := tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	board, err := boards.GetByID(ctx, task.BoardID)
	if err != nil {
		return nil, err
	}
	if board.OwnerID != owner.ID {
		return nil, store.ErrTaskNotFound
	}

	return task, nil
}
