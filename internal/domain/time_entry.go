package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TimeEntry-specific validation errors
var (
	// ErrTimeEntryIDEmpty is returned when a time entry ID is empty or nil.
	ErrTimeEntryIDEmpty = errors.New("time entry ID cannot be empty")

	// ErrTimeEntryTaskIDEmpty is returned when a time entry's task ID is empty or nil.
	ErrTimeEntryTaskIDEmpty = errors.New("time entry task ID cannot be empty")

	// ErrTimeEntryStartZero is returned when a time entry has no start timestamp.
	ErrTimeEntryStartZero = errors.New("time entry start cannot be zero")

	// ErrTimeEntryEndBeforeStart is returned when a closed time entry ends
	// before it starts.
	ErrTimeEntryEndBeforeStart = errors.New("time entry end cannot precede start")

	// ErrTimeEntryClosed is returned when closing a time entry that is
	// already closed.
	ErrTimeEntryClosed = errors.New("time entry already closed")
)

// TimeEntry is a recorded start/stop interval of work against a task.
// EndedAt is nil while the entry is running; at most one open entry may
// exist per task at any instant (enforced by the store).
type TimeEntry struct {
	ID        uuid.UUID  `json:"id"`
	TaskID    uuid.UUID  `json:"task_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// NewTimeEntry creates a new open TimeEntry against the given task,
// starting at the given instant. Returns an error if validation fails.
func NewTimeEntry(taskID uuid.UUID, startedAt time.Time) (*TimeEntry, error) {
	entry := &TimeEntry{
		ID:        uuid.New(),
		TaskID:    taskID,
		StartedAt: startedAt.UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the TimeEntry has valid data.
// Returns an error if any field fails validation.
func (e *TimeEntry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrTimeEntryIDEmpty
	}

	if e.TaskID == uuid.Nil {
		return ErrTimeEntryTaskIDEmpty
	}

	if e.StartedAt.IsZero() {
		return ErrTimeEntryStartZero
	}

	if e.EndedAt != nil && e.EndedAt.Before(e.StartedAt) {
		return ErrTimeEntryEndBeforeStart
	}

	return nil
}

// Open reports whether the entry is still running.
func (e *TimeEntry) Open() bool {
	return e.EndedAt == nil
}

// Close stops the entry at the given instant. Returns ErrTimeEntryClosed if
// the entry is already closed, or a validation error if the instant
// precedes the start.
func (e *TimeEntry) Close(at time.Time) error {
	if e.EndedAt != nil {
		return ErrTimeEntryClosed
	}

	at = at.UTC()
	if at.Before(e.StartedAt) {
		return ErrTimeEntryEndBeforeStart
	}

	e.EndedAt = &at
	return nil
}

// Duration returns end - start for a closed entry, and zero for an open one.
func (e *TimeEntry) Duration() time.Duration {
	if e.EndedAt == nil {
		return 0
	}
	return e.EndedAt.Sub(e.StartedAt)
}
