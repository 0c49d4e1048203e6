package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dayplan-app/dayplan-api/internal/api/shared"
	"github.com/dayplan-app/dayplan-api/internal/platform/logger"
	"github.com/dayplan-app/dayplan-api/internal/service"
)

// ScheduleHandler handles schedule composition HTTP requests
type ScheduleHandler struct {
	scheduleService service.ScheduleService
	logger          *slog.Logger
}

// NewScheduleHandler creates a new ScheduleHandler
func NewScheduleHandler(scheduleService service.ScheduleService, logger *slog.Logger) *ScheduleHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ScheduleHandler")
	}

	return &ScheduleHandler{
		scheduleService: scheduleService,
		logger:          logger.With(slog.String("component", "schedule_handler")),
	}
}

// ComposeSchedule handles GET /boards/{id}/schedule requests
// The window comes from the required "from" and "to" query parameters,
// both RFC 3339 timestamps.
func (h *ScheduleHandler) ComposeSchedule(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	identity, boardID, ok := requireIdentityAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	from, err := parseTimeParam(r, "from")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseTimeParam(r, "to")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.scheduleService.ComposeSchedule(r.Context(), identity, boardID, from, to)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("schedule composed",
		slog.String("board_id", boardID.String()),
		slog.Int("slots", len(result.Slots)),
		slog.Bool("truncated", result.Truncated))
	shared.RespondWithJSON(w, r, http.StatusOK, scheduleToResponse(result))
}

// parseTimeParam parses a required RFC 3339 query parameter.
func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, &missingParamError{name: name}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, &invalidParamError{name: name}
	}
	return t, nil
}

type missingParamError struct{ name string }

func (e *missingParamError) Error() string {
	return "Query parameter '" + e.name + "' is required"
}

type invalidParamError struct{ name string }

func (e *invalidParamError) Error() string {
	return "Query parameter '" + e.name + "' must be an RFC 3339 timestamp"
}
