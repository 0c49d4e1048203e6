package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dayplan-app/dayplan-api/internal/api/shared"
	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/service/auth"
	"github.com/dayplan-app/dayplan-api/internal/store"
)

// Credential headers. A request authenticates with either a session token
// (Authorization: Bearer) or a raw access key (X-Access-Key); the admin key
// travels in its own header and never doubles as an account credential.
const (
	AccessKeyHeader = "X-Access-Key"
	AdminKeyHeader  = "X-Admin-Key"
)

// AuthMiddleware authenticates requests through the access guard and
// places the resolved identity in the request context. Each request is
// checked exactly once, with the capability derived from the method.
type AuthMiddleware struct {
	guard *auth.Guard
}

// NewAuthMiddleware creates a new AuthMiddleware with the given guard.
func NewAuthMiddleware(guard *auth.Guard) *AuthMiddleware {
	if guard == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("guard cannot be nil for AuthMiddleware")
	}
	return &AuthMiddleware{guard: guard}
}

// RequireCapability authorizes the request for the given capability.
func (m *AuthMiddleware) RequireCapability(capability auth.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := m.authorize(r, capability)
			if err != nil {
				respondAuthError(w, r, err)
				return
			}

			ctx := shared.WithIdentity(r.Context(), result.Identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authenticate verifies the credential without payment gating and places
// the identity in the context. Used by the payment refresh route, which
// must stay reachable for unpaid identities.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawKey := r.Header.Get(AccessKeyHeader)
		if rawKey == "" {
			respondAuthError(w, r, auth.ErrMissingCredential)
			return
		}

		identity, err := m.guard.Authenticate(r.Context(), rawKey)
		if err != nil {
			respondAuthError(w, r, err)
			return
		}

		ctx := shared.WithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin authorizes the request against the operator's admin key.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := m.guard.AuthorizeAdmin(r.Context(), r.Header.Get(AdminKeyHeader)); err != nil {
			respondAuthError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) authorize(r *http.Request, capability auth.Capability) (auth.AuthResult, error) {
	if rawKey := r.Header.Get(AccessKeyHeader); rawKey != "" {
		return m.guard.AuthorizeKey(r.Context(), rawKey, capability)
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return auth.AuthResult{}, auth.ErrMissingCredential
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return auth.AuthResult{}, auth.ErrInvalidToken
	}

	return m.guard.AuthorizeToken(r.Context(), parts[1], capability)
}

func respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrPaymentRequired):
		shared.RespondWithError(w, r, http.StatusPaymentRequired, "Payment required")
	case errors.Is(err, auth.ErrExpiredToken):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
	case errors.Is(err, auth.ErrMissingCredential):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Credentials required")
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, auth.ErrInvalidToken):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, store.ErrStorageUnavailable):
		// Retryable; the credential was never judged.
		shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
	}
}

// GetIdentity extracts the authenticated identity from the request.
// Returns the identity and a boolean indicating if it was found.
func GetIdentity(r *http.Request) (*domain.Identity, bool) {
	return shared.GetIdentity(r.Context())
}
