package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/service"
	"github.com/dayplan-app/dayplan-api/internal/store"
)

// mockTaskService is a mock implementation of the TaskService interface
type mockTaskService struct {
	addFn       func(ctx context.Context, owner *domain.Identity, boardID uuid.UUID, params service.TaskParams) (*domain.Task, error)
	getFn       func(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) (*domain.Task, error)
	listFn      func(ctx context.Context, owner *domain.Identity, boardID uuid.UUID) ([]*domain.Task, error)
	setStatusFn func(ctx context.Context, owner *domain.Identity, taskID uuid.UUID, to domain.TaskStatus) (*domain.Task, error)
	reopenFn    func(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) (*domain.Task, error)
	updateFn    func(ctx context.Context, owner *domain.Identity, taskID uuid.UUID, params service.TaskParams) (*domain.Task, error)
	deleteFn    func(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) error
}

func (m *mockTaskService) AddTask(ctx context.Context, owner *domain.Identity, boardID uuid.UUID, params service.TaskParams) (*domain.Task, error) {
	return m.addFn(ctx, owner, boardID, params)
}

func (m *mockTaskService) GetTask(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) (*domain.Task, error) {
	return m.getFn(ctx, owner, taskID)
}

func (m *mockTaskService) ListTasks(ctx context.Context, owner *domain.Identity, boardID uuid.UUID) ([]*domain.Task, error) {
	return m.listFn(ctx, owner, boardID)
}

func (m *mockTaskService) SetTaskStatus(ctx context.Context, owner *domain.Identity, taskID uuid.UUID, to domain.TaskStatus) (*domain.Task, error) {
	return m.setStatusFn(ctx, owner, taskID, to)
}

func (m *mockTaskService) ReopenTask(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) (*domain.Task, error) {
	return m.reopenFn(ctx, owner, taskID)
}

func (m *mockTaskService) UpdateTask(ctx context.Context, owner *domain.Identity, taskID uuid.UUID, params service.TaskParams) (*domain.Task, error) {
	return m.updateFn(ctx, owner, taskID, params)
}

func (m *mockTaskService) DeleteTask(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) error {
	return m.deleteFn(ctx, owner, taskID)
}

func sampleTask(boardID uuid.UUID) *domain.Task {
	return &domain.Task{
		ID:        uuid.New(),
		BoardID:   boardID,
		Title:     "write report",
		Estimate:  90 * time.Minute,
		Priority:  1,
		Status:    domain.TaskStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

func TestCreateTask(t *testing.T) {
	identity := testIdentity()
	boardID := uuid.New()
	task := sampleTask(boardID)

	tests := []struct {
		name           string
		body           string
		serviceError   error
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           `{"title":"write report","estimate_seconds":5400,"priority":1}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing Title",
			body:           `{"estimate_seconds":5400}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Negative Estimate",
			body:           `{"title":"x","estimate_seconds":-10}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Board Not Found",
			body:           `{"title":"write report"}`,
			serviceError:   store.ErrBoardNotFound,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotParams service.TaskParams
			mockService := &mockTaskService{
				addFn: func(ctx context.Context, owner *domain.Identity, id uuid.UUID, params service.TaskParams) (*domain.Task, error) {
					gotParams = params
					return task, tc.serviceError
				},
			}
			handler := NewTaskHandler(mockService, testLogger())

			req := requestWithIdentity("POST", "/boards/"+boardID.String()+"/tasks", bytes.NewBufferString(tc.body), identity)
			req = withChiParam(req, "id", boardID.String())
			rr := httptest.NewRecorder()

			handler.CreateTask(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tc.expectedStatus)
			}

			if tc.name == "Success" {
				if gotParams.Estimate != 90*time.Minute {
					t.Errorf("wrong estimate passed to service: got %v want %v", gotParams.Estimate, 90*time.Minute)
				}
				var resp TaskResponse
				if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response body: %v", err)
				}
				if resp.EstimateSeconds != 5400 {
					t.Errorf("wrong estimate in response: got %d want 5400", resp.EstimateSeconds)
				}
			}
		})
	}
}

func TestSetTaskStatus(t *testing.T) {
	identity := testIdentity()
	task := sampleTask(uuid.New())

	tests := []struct {
		name           string
		body           string
		serviceError   error
		expectedStatus int
	}{
		{"Success", `{"status":"in_progress"}`, nil, http.StatusOK},
		{"Unknown Status", `{"status":"paused"}`, nil, http.StatusBadRequest},
		{"Backward Transition", `{"status":"pending"}`, domain.ErrInvalidTransition, http.StatusUnprocessableEntity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &mockTaskService{
				setStatusFn: func(ctx context.Context, owner *domain.Identity, taskID uuid.UUID, to domain.TaskStatus) (*domain.Task, error) {
					return task, tc.serviceError
				},
			}
			handler := NewTaskHandler(mockService, testLogger())

			req := requestWithIdentity("PUT", "/tasks/"+task.ID.String()+"/status", bytes.NewBufferString(tc.body), identity)
			req = withChiParam(req, "id", task.ID.String())
			rr := httptest.NewRecorder()

			handler.SetTaskStatus(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tc.expectedStatus)
			}
		})
	}
}

func TestUpdateTaskPartial(t *testing.T) {
	identity := testIdentity()
	task := sampleTask(uuid.New())

	var gotParams service.TaskParams
	mockService := &mockTaskService{
		getFn: func(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) (*domain.Task, error) {
			return task, nil
		},
		updateFn: func(ctx context.Context, owner *domain.Identity, taskID uuid.UUID, params service.TaskParams) (*domain.Task, error) {
			gotParams = params
			updated := *task
			updated.Priority = params.Priority
			return &updated, nil
		},
	}
	handler := NewTaskHandler(mockService, testLogger())

	// Only priority is provided; title and estimate must carry over.
	req := requestWithIdentity("PATCH", "/tasks/"+task.ID.String(), bytes.NewBufferString(`{"priority":5}`), identity)
	req = withChiParam(req, "id", task.ID.String())
	rr := httptest.NewRecorder()

	handler.UpdateTask(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}
	if gotParams.Title != task.Title {
		t.Errorf("title not carried over: got %q want %q", gotParams.Title, task.Title)
	}
	if gotParams.Estimate != task.Estimate {
		t.Errorf("estimate not carried over: got %v want %v", gotParams.Estimate, task.Estimate)
	}
	if gotParams.Priority != 5 {
		t.Errorf("priority not applied: got %d want 5", gotParams.Priority)
	}
}

func TestReopenTask(t *testing.T) {
	identity := testIdentity()
	task := sampleTask(uuid.New())
	task.Status = domain.TaskStatusPending

	mockService := &mockTaskService{
		reopenFn: func(ctx context.Context, owner *domain.Identity, taskID uuid.UUID) (*domain.Task, error) {
			return task, nil
		},
	}
	handler := NewTaskHandler(mockService, testLogger())

	req := requestWithIdentity("POST", "/tasks/"+task.ID.String()+"/reopen", nil, identity)
	req = withChiParam(req, "id", task.ID.String())
	rr := httptest.NewRecorder()

	handler.ReopenTask(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}

	var resp TaskResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if resp.Status != string(domain.TaskStatusPending) {
		t.Errorf("wrong status in response: got %v want %v", resp.Status, domain.TaskStatusPending)
	}
}
