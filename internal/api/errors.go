package api

import (
	"errors"
	"net/http"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/domain/schedule"
	"github.com/dayplan-app/dayplan-api/internal/service"
	"github.com/dayplan-app/dayplan-api/internal/service/auth"
	"github.com/dayplan-app/dayplan-api/internal/store"
)

// MapErrorToStatusCode translates service and store errors into HTTP status
// codes. Unknown errors map to 500 so internals never leak into responses.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	// Authentication and authorization.
	case errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingCredential):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrPaymentRequired),
		errors.Is(err, service.ErrBoardLimitReached):
		return http.StatusPaymentRequired

	// Missing entities. The entity-specific store errors all wrap
	// store.ErrNotFound, so one check covers them.
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// State conflicts surfaced by constraints or concurrent writers.
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict

	// Valid requests against entities in the wrong state.
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidState):
		return http.StatusUnprocessableEntity

	// Malformed input.
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, schedule.ErrInvalidWindow):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrStorageUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns an error message safe to expose to clients.
// Domain and store errors carry no internal detail, so their text passes
// through; anything unrecognized collapses to a generic message.
func GetSafeErrorMessage(err error) string {
	status := MapErrorToStatusCode(err)
	if status == http.StatusInternalServerError {
		return "An internal error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		return "Invalid credentials"
	case errors.Is(err, auth.ErrMissingCredential):
		return "Credentials required"
	case errors.Is(err, auth.ErrPaymentRequired):
		return "Payment required"
	case errors.Is(err, store.ErrStorageUnavailable):
		return "Service temporarily unavailable"
	default:
		return err.Error()
	}
}
