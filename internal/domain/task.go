package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskBoardIDEmpty is returned when a task's board ID is empty or nil.
	ErrTaskBoardIDEmpty = errors.New("task board ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskEstimateNegative is returned when a task's estimated duration is negative.
	ErrTaskEstimateNegative = errors.New("task estimate cannot be negative")

	// ErrTaskPriorityNegative is returned when a task's priority is negative.
	ErrTaskPriorityNegative = errors.New("task priority cannot be negative")

	// ErrUnknownTaskStatus is returned when a task status is not one of the
	// defined values.
	ErrUnknownTaskStatus = errors.New("unknown task status")
)

// TaskStatus represents the completion state of a task.
type TaskStatus string

// Valid task statuses. Transitions only move forward (pending -> in_progress
// -> done); the single sanctioned way back is Reopen.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// statusRank orders statuses for the monotonic transition check.
var statusRank = map[TaskStatus]int{
	TaskStatusPending:    0,
	TaskStatusInProgress: 1,
	TaskStatusDone:       2,
}

// IsValid reports whether the status is one of the defined values.
func (s TaskStatus) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// Task is a unit of work with an estimated duration and completion state,
// belonging to exactly one board. Priority zero means unset.
type Task struct {
	ID        uuid.UUID     `json:"id"`
	BoardID   uuid.UUID     `json:"board_id"`
	Title     string        `json:"title"`
	Estimate  time.Duration `json:"estimate"`
	Priority  int           `json:"priority"`
	Status    TaskStatus    `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewTask creates a new pending Task on the given board.
// It generates a new UUID for the task ID and sets the creation timestamp.
// Returns an error if validation fails.
func NewTask(boardID uuid.UUID, title string, estimate time.Duration, priority int) (*Task, error) {
	task := &Task{
		ID:        uuid.New(),
		BoardID:   boardID,
		Title:     title,
		Estimate:  estimate,
		Priority:  priority,
		Status:    TaskStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.BoardID == uuid.Nil {
		return ErrTaskBoardIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if t.Estimate < 0 {
		return ErrTaskEstimateNegative
	}

	if t.Priority < 0 {
		return ErrTaskPriorityNegative
	}

	if !t.Status.IsValid() {
		return ErrUnknownTaskStatus
	}

	return nil
}

// Transition moves the task to a new status, enforcing the monotonic rule:
// the status only advances. Done -> pending is rejected here; use Reopen.
// Transitioning to the current status is a no-op and is allowed.
func (t *Task) Transition(to TaskStatus) error {
	if !to.IsValid() {
		return ErrUnknownTaskStatus
	}

	if statusRank[to] < statusRank[t.Status] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, to)
	}

	t.Status = to
	return nil
}

// Reopen is the explicit done -> pending transition. Reopening a task that
// is not done fails with ErrInvalidTransition.
func (t *Task) Reopen() error {
	if t.Status != TaskStatusDone {
		return fmt.Errorf("%w: reopen requires done, task is %s", ErrInvalidTransition, t.Status)
	}

	t.Status = TaskStatusPending
	return nil
}
