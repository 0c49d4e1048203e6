package api

import (
	"log/slog"
	"net/http"

	"github.com/dayplan-app/dayplan-api/internal/api/shared"
	"github.com/dayplan-app/dayplan-api/internal/platform/logger"
	"github.com/dayplan-app/dayplan-api/internal/service"
)

// AuthHandler handles provisioning, sign-in, and payment refresh requests.
type AuthHandler struct {
	provisioningService service.ProvisioningService
	paymentService      service.PaymentService
	logger              *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(
	provisioningService service.ProvisioningService,
	paymentService service.PaymentService,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}

	return &AuthHandler{
		provisioningService: provisioningService,
		paymentService:      paymentService,
		logger:              logger.With(slog.String("component", "auth_handler")),
	}
}

// MintRegistrationKey handles POST /admin/registration-keys requests.
// The admin middleware has already authorized the caller.
func (h *AuthHandler) MintRegistrationKey(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	rawKey, err := h.provisioningService.MintRegistrationKey(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("registration key minted")
	shared.RespondWithJSON(w, r, http.StatusCreated, MintKeyResponse{RegistrationKey: rawKey})
}

// Provision handles POST /auth/provision requests.
// A valid unconsumed registration key becomes a new identity; the access
// key in the response is shown exactly once.
func (h *AuthHandler) Provision(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ProvisionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	identity, accessKey, err := h.provisioningService.ProvisionIdentity(r.Context(), req.RegistrationKey, req.Login)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("identity provisioned",
		slog.String("identity_id", identity.ID.String()),
		slog.String("login", identity.Login))
	shared.RespondWithJSON(w, r, http.StatusCreated, ProvisionResponse{
		IdentityID: identity.ID.String(),
		Login:      identity.Login,
		AccessKey:  accessKey,
	})
}

// SignIn handles POST /auth/sign-in requests.
// Sign-in is a pure credential check; payment status is not consulted.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	token, err := h.provisioningService.SignIn(r.Context(), req.Login, req.AccessKey)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SignInResponse{Token: token})
}

// RefreshPaymentStatus handles POST /payment/refresh requests.
// The authentication middleware placed the identity in the context without
// payment gating, so unpaid identities can still reach this route.
func (h *AuthHandler) RefreshPaymentStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	identity, ok := getIdentityFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Identity not found in request context")
		return
	}

	status, err := h.paymentService.RefreshPaymentStatus(r.Context(), identity.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("payment status refreshed",
		slog.String("identity_id", identity.ID.String()),
		slog.String("status", string(status)))
	shared.RespondWithJSON(w, r, http.StatusOK, PaymentStatusResponse{Status: string(status)})
}
