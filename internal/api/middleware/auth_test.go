package middleware_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayplan-app/dayplan-api/internal/api/middleware"
	"github.com/dayplan-app/dayplan-api/internal/api/shared"
	"github.com/dayplan-app/dayplan-api/internal/config"
	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/service/auth"
	"github.com/dayplan-app/dayplan-api/internal/store"
)

// fakeIdentityStore is an in-memory store.IdentityStore for middleware tests.
// A non-nil failWith makes every lookup fail with that error.
type fakeIdentityStore struct {
	byFingerprint map[string]*domain.Identity
	byID          map[uuid.UUID]*domain.Identity
	failWith      error
}

func newFakeIdentityStore(identities ...*domain.Identity) *fakeIdentityStore {
	s := &fakeIdentityStore{
		byFingerprint: make(map[string]*domain.Identity),
		byID:          make(map[uuid.UUID]*domain.Identity),
	}
	for _, id := range identities {
		s.byFingerprint[id.KeyFingerprint] = id
		s.byID[id.ID] = id
	}
	return s
}

func (s *fakeIdentityStore) Create(ctx context.Context, identity *domain.Identity) error {
	s.byFingerprint[identity.KeyFingerprint] = identity
	s.byID[identity.ID] = identity
	return nil
}

func (s *fakeIdentityStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	if identity, ok := s.byID[id]; ok {
		return identity, nil
	}
	return nil, store.ErrIdentityNotFound
}

func (s *fakeIdentityStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeIdentityStore) GetByFingerprint(ctx context.Context, fingerprint string) (*domain.Identity, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	if identity, ok := s.byFingerprint[fingerprint]; ok {
		return identity, nil
	}
	return nil, store.ErrIdentityNotFound
}

func (s *fakeIdentityStore) GetByLogin(ctx context.Context, login string) (*domain.Identity, error) {
	for _, identity := range s.byID {
		if identity.Login == login {
			return identity, nil
		}
	}
	return nil, store.ErrIdentityNotFound
}

func (s *fakeIdentityStore) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, verifiedAt time.Time) error {
	identity, ok := s.byID[id]
	if !ok {
		return store.ErrIdentityNotFound
	}
	identity.PaymentStatus = status
	identity.LastVerifiedAt = verifiedAt
	return nil
}

func (s *fakeIdentityStore) WithTx(tx store.DBTX) store.IdentityStore { return s }

func mintIdentity(t *testing.T, status domain.PaymentStatus) (*domain.Identity, string) {
	t.Helper()

	key, err := auth.GenerateKey(auth.MinKeyLength)
	require.NoError(t, err)
	hash, err := auth.HashKey(key)
	require.NoError(t, err)

	identity, err := domain.NewIdentity("user-"+uuid.NewString()[:8], hash, auth.Fingerprint(key))
	require.NoError(t, err)
	identity.PaymentStatus = status
	return identity, key
}

func newTestGuard(t *testing.T, s store.IdentityStore, jwtService auth.JWTService) (*auth.Guard, string) {
	t.Helper()

	adminKey, err := auth.GenerateKey(auth.MinKeyLength)
	require.NoError(t, err)
	adminHash, err := auth.HashKey(adminKey)
	require.NoError(t, err)

	guard := auth.NewGuard(s, auth.NewBcryptVerifier(), jwtService, nil, config.AuthConfig{
		AdminKeyHash: adminHash,
	}, nil)
	return guard, adminKey
}

// identityEcho records the identity the middleware placed in the context.
func identityEcho(captured **domain.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, ok := shared.GetIdentity(r.Context()); ok {
			*captured = identity
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireCapabilityWithAccessKey(t *testing.T) {
	t.Parallel()

	identity, key := mintIdentity(t, domain.PaymentStatusActive)
	guard, _ := newTestGuard(t, newFakeIdentityStore(identity), nil)
	m := middleware.NewAuthMiddleware(guard)

	var captured *domain.Identity
	handler := m.RequireCapability(auth.CapabilityMutate)(identityEcho(&captured))

	req := httptest.NewRequest("POST", "/boards", nil)
	req.Header.Set(middleware.AccessKeyHeader, key)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, captured)
	assert.Equal(t, identity.ID, captured.ID)
}

func TestRequireCapabilityRejections(t *testing.T) {
	t.Parallel()

	identity, key := mintIdentity(t, domain.PaymentStatusUnpaid)
	guard, _ := newTestGuard(t, newFakeIdentityStore(identity), nil)
	m := middleware.NewAuthMiddleware(guard)

	handler := m.RequireCapability(auth.CapabilityRead)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for rejected requests")
	}))

	tests := []struct {
		name           string
		setup          func(req *http.Request)
		expectedStatus int
	}{
		{
			name:           "No Credentials",
			setup:          func(req *http.Request) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Wrong Key",
			setup: func(req *http.Request) {
				req.Header.Set(middleware.AccessKeyHeader, "definitely-not-the-key")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Malformed Bearer",
			setup: func(req *http.Request) {
				req.Header.Set("Authorization", "Token abc")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Unpaid Identity",
			setup: func(req *http.Request) {
				req.Header.Set(middleware.AccessKeyHeader, key)
			},
			expectedStatus: http.StatusPaymentRequired,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest("GET", "/boards", nil)
			tc.setup(req)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}
}

func TestRequireCapabilityStorageOutageIsRetryable(t *testing.T) {
	t.Parallel()

	// An unreachable identity store is a 503, not a verdict on the key.
	identity, key := mintIdentity(t, domain.PaymentStatusActive)
	fake := newFakeIdentityStore(identity)
	fake.failWith = fmt.Errorf("%w: connection refused", store.ErrStorageUnavailable)

	guard, _ := newTestGuard(t, fake, nil)
	m := middleware.NewAuthMiddleware(guard)

	handler := m.RequireCapability(auth.CapabilityRead)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run when authentication cannot complete")
	}))

	req := httptest.NewRequest("GET", "/boards", nil)
	req.Header.Set(middleware.AccessKeyHeader, key)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestAuthenticateSkipsPaymentGating(t *testing.T) {
	t.Parallel()

	// An unpaid identity still gets through Authenticate so it can reach
	// the payment refresh route.
	identity, key := mintIdentity(t, domain.PaymentStatusUnpaid)
	guard, _ := newTestGuard(t, newFakeIdentityStore(identity), nil)
	m := middleware.NewAuthMiddleware(guard)

	var captured *domain.Identity
	handler := m.Authenticate(identityEcho(&captured))

	req := httptest.NewRequest("POST", "/payment/refresh", nil)
	req.Header.Set(middleware.AccessKeyHeader, key)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, captured)
	assert.Equal(t, identity.ID, captured.ID)
}

func TestRequireCapabilityWithToken(t *testing.T) {
	t.Parallel()

	identity, _ := mintIdentity(t, domain.PaymentStatusActive)
	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		TokenLifetimeMinutes: 5,
	})
	require.NoError(t, err)

	guard, _ := newTestGuard(t, newFakeIdentityStore(identity), jwtService)
	m := middleware.NewAuthMiddleware(guard)

	token, err := jwtService.GenerateToken(context.Background(), identity.ID)
	require.NoError(t, err)

	var captured *domain.Identity
	handler := m.RequireCapability(auth.CapabilityRead)(identityEcho(&captured))

	req := httptest.NewRequest("GET", "/boards", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, captured)
	assert.Equal(t, identity.ID, captured.ID)
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	guard, adminKey := newTestGuard(t, newFakeIdentityStore(), nil)
	m := middleware.NewAuthMiddleware(guard)

	handlerRan := false
	handler := m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest("POST", "/admin/registration-keys", nil)
	req.Header.Set(middleware.AdminKeyHeader, adminKey)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.True(t, handlerRan)

	// Wrong key is rejected before the handler.
	handlerRan = false
	req = httptest.NewRequest("POST", "/admin/registration-keys", nil)
	req.Header.Set(middleware.AdminKeyHeader, "nope")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, handlerRan)
}
