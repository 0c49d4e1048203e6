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

// TimeTrackingServiceError is a custom error type for time tracking errors.
type TimeTrackingServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TimeTrackingServiceError.
func (e *TimeTrackingServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("time tracking %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("time tracking %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TimeTrackingServiceError) Unwrap() error {
	return e.Err
}

// NewTimeTrackingServiceError creates a new TimeTrackingServiceError.
func NewTimeTrackingServiceError(operation, message string, err error) *TimeTrackingServiceError {
	return &TimeTrackingServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// TimeTrackingService starts and stops time entries against tasks.
type TimeTrackingService interface {
	// StartTimeEntry opens a new entry on the task. A task can have at most
	// one open entry; a second start fails with store.ErrOpenEntryExists.
	// Starting a pending task also moves it to in_progress.
	StartTimeEntry(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) (*domain.TimeEntry, error)

	// StopTimeEntry closes the given open entry and returns the recorded
	// duration. Fails with store.ErrTimeEntryNotFound for an unknown entry
	// and domain.ErrInvalidState for one that is already closed.
	StopTimeEntry(ctx context.Context, owner *domain.Identity, entryID uuid.UUID) (*domain.TimeEntry, time.Duration, error)

	// ListTimeEntries retrieves all entries recorded against a task.
	ListTimeEntries(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) ([]*domain.TimeEntry, error)
}

// timeTrackingServiceImpl implements the TimeTrackingService interface
type timeTrackingServiceImpl struct {
	db      *sql.DB
	boards  store.BoardStore
	tasks   store.TaskStore
	entries store.TimeEntryStore
	now     func() time.Time // Injectable for testing
	logger  *slog.Logger
}

// NewTimeTrackingService creates a new TimeTrackingService.
// It returns an error if any of the required dependencies are nil.
func NewTimeTrackingService(
	db *sql.DB,
	boards store.BoardStore,
	tasks store.TaskStore,
	entries store.TimeEntryStore,
	logger *slog.Logger,
) (TimeTrackingService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if boards == nil {
		return nil, domain.NewValidationError("boards", "cannot be nil", domain.ErrValidation)
	}
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if entries == nil {
		return nil, domain.NewValidationError("entries", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &timeTrackingServiceImpl{
		db:      db,
		boards:  boards,
		tasks:   tasks,
		entries: entries,
		now:     time.Now,
		logger:  logger.With(slog.String("component", "time_tracking_service")),
	}, nil
}

// StartTimeEntry implements TimeTrackingService.StartTimeEntry
func (s *timeTrackingServiceImpl) StartTimeEntry(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) (*domain.TimeEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var entry *domain.TimeEntry

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		task, err := s.ownedTask(ctx, s.boards.WithTx(tx), txTasks, owner, taskID)
		if err != nil {
			return err
		}

		if task.Status == domain.TaskStatusDone {
			return fmt.Errorf("%w: cannot track time on a done task", domain.ErrInvalidState)
		}

		entry, err = domain.NewTimeEntry(taskID, s.now().UTC())
		if err != nil {
			return err
		}

		// The partial unique index rejects a second open entry; the error
		// arrives as store.ErrOpenEntryExists.
		if err := s.entries.WithTx(tx).Create(ctx, entry, owner.ID); err != nil {
			return err
		}

		if task.Status == domain.TaskStatusPending {
			if err := task.Transition(domain.TaskStatusInProgress); err != nil {
				return err
			}
			if err := txTasks.UpdateStatus(ctx, task.ID, task.Status); err != nil {
				return NewTimeTrackingServiceError("start", "failed to mark task in progress", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("time entry started",
		slog.String("entry_id", entry.ID.String()),
		slog.String("task_id", taskID.String()))
	return entry, nil
}

// StopTimeEntry implements TimeTrackingService.StopTimeEntry
func (s *timeTrackingServiceImpl) StopTimeEntry(ctx context.Context, owner *domain.Identity, entryID uuid.UUID) (*domain.TimeEntry, time.Duration, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		entry    *domain.TimeEntry
		duration time.Duration
	)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txEntries := s.entries.WithTx(tx)

		var err error
		entry, err = txEntries.GetByID(ctx, entryID)
		if err != nil {
			return err
		}

		// Someone else's entry is indistinguishable from a missing one.
		if _, err := s.ownedTask(ctx, s.boards.WithTx(tx), s.tasks.WithTx(tx), owner, entry.TaskID); err != nil {
			if store.IsNotFoundError(err) {
				return store.ErrTimeEntryNotFound
			}
			return err
		}

		if err := entry.Close(s.now().UTC()); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidState, err)
		}

		// The exclusion constraint rejects a close that would overlap
		// another closed entry of this owner.
		if err := txEntries.Close(ctx, entry.ID, *entry.EndedAt); err != nil {
			return err
		}

		duration = entry.Duration()
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	log.Debug("time entry stopped",
		slog.String("entry_id", entry.ID.String()),
		slog.String("task_id", entry.TaskID.String()),
		slog.Duration("duration", duration))
	return entry, duration, nil
}

// ListTimeEntries implements TimeTrackingService.ListTimeEntries
func (s *timeTrackingServiceImpl) ListTimeEntries(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) ([]*domain.TimeEntry, error) {
	if _, err := s.ownedTask(ctx, s.boards, s.tasks, owner, taskID); err != nil {
		return nil, err
	}

	entries, err := s.entries.ListByTask(ctx, taskID)
	if err != nil {
		return nil, NewTimeTrackingServiceError("list", "failed to list time entries", err)
	}
	return entries, nil
}

// ownedTask loads a task and verifies its board belongs to the identity.
func (s *timeTrackingServiceImpl) ownedTask(ctx context.Context, boards store.BoardStore, tasks store.TaskStore, owner *domain.Identity, taskID uuid.UUID) (*domain.Task, error) {
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
