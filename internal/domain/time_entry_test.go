package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewTimeEntry(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	start := time.Now()

	entry, err := NewTimeEntry(taskID, start)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if entry.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if !entry.Open() {
		t.Error("Expected new entry to be open")
	}

	if entry.Duration() != 0 {
		t.Errorf("Expected zero duration for open entry, got %v", entry.Duration())
	}

	if _, err := NewTimeEntry(uuid.Nil, start); err != ErrTimeEntryTaskIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrTimeEntryTaskIDEmpty, err)
	}

	if _, err := NewTimeEntry(taskID, time.Time{}); err != ErrTimeEntryStartZero {
		t.Errorf("Expected error %v, got %v", ErrTimeEntryStartZero, err)
	}
}

func TestTimeEntryCloseRoundTrip(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	entry, err := NewTimeEntry(uuid.New(), start)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := entry.Close(end); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if entry.Open() {
		t.Error("Expected entry to be closed")
	}

	// Duration must equal end - start exactly.
	if entry.Duration() != 90*time.Minute {
		t.Errorf("Expected duration 90m, got %v", entry.Duration())
	}

	// Closing twice is an invalid-state error.
	if err := entry.Close(end.Add(time.Minute)); err != ErrTimeEntryClosed {
		t.Errorf("Expected ErrTimeEntryClosed, got %v", err)
	}
}

func TestTimeEntryCloseBeforeStart(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	entry, err := NewTimeEntry(uuid.New(), start)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := entry.Close(start.Add(-time.Second)); err != ErrTimeEntryEndBeforeStart {
		t.Errorf("Expected ErrTimeEntryEndBeforeStart, got %v", err)
	}

	if !entry.Open() {
		t.Error("Expected entry to remain open after failed close")
	}
}

func TestTimeEntryValidate(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	bad := start.Add(-time.Hour)

	entry := TimeEntry{
		ID:        uuid.New(),
		TaskID:    uuid.New(),
		StartedAt: start,
		EndedAt:   &bad,
	}

	if err := entry.Validate(); err != ErrTimeEntryEndBeforeStart {
		t.Errorf("Expected ErrTimeEntryEndBeforeStart, got %v", err)
	}
}
