package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dayplan-app/dayplan-api/internal/api/shared"
	"github.com/dayplan-app/dayplan-api/internal/domain"
)

// getIdentityFromContext extracts the authenticated identity from the request
// context. The identity is placed there by the authentication middleware.
func getIdentityFromContext(r *http.Request) (*domain.Identity, bool) {
	identity, ok := shared.GetIdentity(r.Context())
	if !ok || identity == nil || identity.ID == uuid.Nil {
		return nil, false
	}
	return identity, true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// requireIdentityAndPathUUID extracts both the authenticated identity and a
// UUID path parameter, writing the error response itself when either is
// missing. Handlers bail out when ok is false.
func requireIdentityAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
) (*domain.Identity, uuid.UUID, bool) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Identity not found in request context")
		return nil, uuid.Nil, false
	}

	id, err := getPathUUID(r, paramName)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return nil, uuid.Nil, false
	}

	return identity, id, true
}
