package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dayplan-app/dayplan-api/internal/api/shared"
	"github.com/dayplan-app/dayplan-api/internal/platform/logger"
	"github.com/dayplan-app/dayplan-api/internal/service"
)

// TimeEntryHandler handles time-tracking HTTP requests
type TimeEntryHandler struct {
	trackingService service.TimeTrackingService
	logger          *slog.Logger
}

// NewTimeEntryHandler creates a new TimeEntryHandler
func NewTimeEntryHandler(trackingService service.TimeTrackingService, logger *slog.Logger) *TimeEntryHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TimeEntryHandler")
	}

	return &TimeEntryHandler{
		trackingService: trackingService,
		logger:          logger.With(slog.String("component", "time_entry_handler")),
	}
}

// StartTimeEntry handles POST /tasks/{id}/time/start requests
func (h *TimeEntryHandler) StartTimeEntry(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	identity, taskID, ok := requireIdentityAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	entry, err := h.trackingService.StartTimeEntry(r.Context(), identity, taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("time entry started",
		slog.String("entry_id", entry.ID.String()),
		slog.String("task_id", taskID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, timeEntryToResponse(entry))
}

// StopTimeEntry handles POST /time-entries/{id}/stop requests
func (h *TimeEntryHandler) StopTimeEntry(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	identity, entryID, ok := requireIdentityAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	entry, duration, err := h.trackingService.StopTimeEntry(r.Context(), identity, entryID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("time entry stopped",
		slog.String("entry_id", entry.ID.String()),
		slog.Duration("duration", duration))
	shared.RespondWithJSON(w, r, http.StatusOK, StopTimeEntryResponse{
		Entry:           timeEntryToResponse(entry),
		DurationSeconds: int64(duration / time.Second),
	})
}

// ListTimeEntries handles GET /tasks/{id}/time requests
func (h *TimeEntryHandler) ListTimeEntries(w http.ResponseWriter, r *http.Request) {
	identity, taskID, ok := requireIdentityAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.trackingService.ListTimeEntries(r.Context(), identity, taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	resp := make([]TimeEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, timeEntryToResponse(entry))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
