package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/domain/schedule"
	"github.com/dayplan-app/dayplan-api/internal/platform/logger"
	"github.com/dayplan-app/dayplan-api/internal/store"
	"github.com/google/uuid"
)

// ScheduleServiceError is a custom error type for schedule service errors.
type ScheduleServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ScheduleServiceError.
func (e *ScheduleServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schedule service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("schedule service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ScheduleServiceError) Unwrap() error {
	return e.Err
}

// NewScheduleServiceError creates a new ScheduleServiceError.
func NewScheduleServiceError(operation, message string, err error) *ScheduleServiceError {
	return &ScheduleServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// ScheduleService composes work schedules from a board's tasks and
// recorded time.
type ScheduleService interface {
	// ComposeSchedule plans the board's unfinished tasks into the
	// [from, to) window. The underlying data is read as one consistent
	// snapshot; composition itself is pure and deterministic.
	// A board owned by someone else is reported as not found.
	ComposeSchedule(ctx context.Context, owner *domain.Identity, boardID uuid.UUID, from, to time.Time) (*schedule.Result, error)
}

// scheduleServiceImpl implements the ScheduleService interface
type scheduleServiceImpl struct {
	db      *sql.DB
	boards  store.BoardStore
	tasks   store.TaskStore
	entries store.TimeEntryStore
	logger  *slog.Logger
}

// NewScheduleService creates a new ScheduleService.
// It returns an error if any of the required dependencies are nil.
func NewScheduleService(db *sql.DB, boards store.BoardStore, tasks store.TaskStore, entries store.TimeEntryStore, logger *slog.Logger) (ScheduleService, error) {
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

	return &scheduleServiceImpl{
		db:      db,
		boards:  boards,
		tasks:   tasks,
		entries: entries,
		logger:  logger.With(slog.String("component", "schedule_service")),
	}, nil
}

// ComposeSchedule implements ScheduleService.ComposeSchedule
func (s *scheduleServiceImpl) ComposeSchedule(ctx context.Context, owner *domain.Identity, boardID uuid.UUID, from, to time.Time) (*schedule.Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !to.After(from) {
		return nil, schedule.ErrInvalidWindow
	}

	var (
		tasks   []*domain.Task
		entries []*domain.TimeEntry
	)

	// Tasks and entries must come from the same snapshot, or a concurrent
	// stop could yield an entry against a task state we never read.
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		board, err := s.boards.WithTx(tx).GetByID(ctx, boardID)
		if err != nil {
			return err
		}
		if board.OwnerID != owner.ID {
			return store.ErrBoardNotFound
		}

		tasks, err = s.tasks.WithTx(tx).ListByBoard(ctx, boardID)
		if err != nil {
			return NewScheduleServiceError("compose", "failed to read tasks", err)
		}
		entries, err = s.entries.WithTx(tx).ListByBoard(ctx, boardID)
		if err != nil {
			return NewScheduleServiceError("compose", "failed to read time entries", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := schedule.Compose(tasks, entries, from, to)
	if err != nil {
		return nil, err
	}

	log.Debug("schedule composed",
		slog.String("board_id", boardID.String()),
		slog.Int("slots", len(result.Slots)),
		slog.Bool("truncated", result.Truncated))
	return result, nil
}
