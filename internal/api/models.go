package api

import (
	"time"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/domain/schedule"
)

// Common request/response structures

// ProvisionRequest defines the payload for the identity provisioning endpoint.
type ProvisionRequest struct {
	RegistrationKey string `json:"registration_key" validate:"required,min=64"`
	Login           string `json:"login"            validate:"required,min=3,max=64"`
}

// ProvisionResponse defines the successful response for provisioning.
// AccessKey is the raw key, returned exactly once; only its hash persists.
type ProvisionResponse struct {
	IdentityID string `json:"identity_id"`
	Login      string `json:"login"`
	AccessKey  string `json:"access_key"`
}

// SignInRequest defines the payload for the sign-in endpoint.
type SignInRequest struct {
	Login     string `json:"login"      validate:"required,min=1"`
	AccessKey string `json:"access_key" validate:"required,min=1"`
}

// SignInResponse defines the successful response for sign-in.
type SignInResponse struct {
	Token string `json:"token"`
}

// MintKeyResponse defines the response for the admin key-minting endpoint.
// The raw registration key is returned exactly once.
type MintKeyResponse struct {
	RegistrationKey string `json:"registration_key"`
}

// PaymentStatusResponse defines the response for the payment refresh endpoint.
type PaymentStatusResponse struct {
	Status string `json:"status"`
}

// CreateBoardRequest defines the payload for board creation.
type CreateBoardRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// UpdateBoardRequest defines the payload for renaming a board.
type UpdateBoardRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// BoardResponse represents the response data for a board.
type BoardResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTaskRequest defines the payload for task creation.
// EstimateSeconds zero means no estimate; Priority zero means unset.
type CreateTaskRequest struct {
	Title           string `json:"title"            validate:"required,min=1,max=500"`
	EstimateSeconds int64  `json:"estimate_seconds" validate:"min=0"`
	Priority        int    `json:"priority"         validate:"min=0"`
}

// UpdateTaskRequest defines the payload for task field updates. Nil fields
// are left unchanged.
type UpdateTaskRequest struct {
	Title           *string `json:"title,omitempty"            validate:"omitempty,min=1,max=500"`
	EstimateSeconds *int64  `json:"estimate_seconds,omitempty" validate:"omitempty,min=0"`
	Priority        *int    `json:"priority,omitempty"         validate:"omitempty,min=0"`
}

// SetTaskStatusRequest defines the payload for a task status change.
type SetTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress done"`
}

// TaskResponse represents the response data for a task.
type TaskResponse struct {
	ID              string    `json:"id"`
	BoardID         string    `json:"board_id"`
	Title           string    `json:"title"`
	EstimateSeconds int64     `json:"estimate_seconds"`
	Priority        int       `json:"priority"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// TimeEntryResponse represents the response data for a time entry.
// EndedAt is absent while the entry is still open.
type TimeEntryResponse struct {
	ID        string     `json:"id"`
	TaskID    string     `json:"task_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// StopTimeEntryResponse wraps the closed entry with its recorded duration.
type StopTimeEntryResponse struct {
	Entry           TimeEntryResponse `json:"entry"`
	DurationSeconds int64             `json:"duration_seconds"`
}

// SlotResponse represents one proposed slot in a composed schedule.
type SlotResponse struct {
	TaskID string    `json:"task_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// ScheduleResponse represents the outcome of a schedule composition.
type ScheduleResponse struct {
	Slots     []SlotResponse `json:"slots"`
	Truncated bool           `json:"truncated"`
	Excluded  []string       `json:"excluded,omitempty"`
}

func boardToResponse(board *domain.Board) BoardResponse {
	return BoardResponse{
		ID:        board.ID.String(),
		Title:     board.Title,
		CreatedAt: board.CreatedAt,
	}
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:              task.ID.String(),
		BoardID:         task.BoardID.String(),
		Title:           task.Title,
		EstimateSeconds: int64(task.Estimate / time.Second),
		Priority:        task.Priority,
		Status:          string(task.Status),
		CreatedAt:       task.CreatedAt,
	}
}

func timeEntryToResponse(entry *domain.TimeEntry) TimeEntryResponse {
	return TimeEntryResponse{
		ID:        entry.ID.String(),
		TaskID:    entry.TaskID.String(),
		StartedAt: entry.StartedAt,
		EndedAt:   entry.EndedAt,
	}
}

func scheduleToResponse(result *schedule.Result) ScheduleResponse {
	resp := ScheduleResponse{
		Slots:     make([]SlotResponse, 0, len(result.Slots)),
		Truncated: result.Truncated,
	}
	for _, slot := range result.Slots {
		resp.Slots = append(resp.Slots, SlotResponse{
			TaskID: slot.TaskID.String(),
			Start:  slot.Start,
			End:    slot.End,
		})
	}
	for _, id := range result.Excluded {
		resp.Excluded = append(resp.Excluded, id.String())
	}
	return resp
}
