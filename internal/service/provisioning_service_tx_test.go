package service_test

import (
	"context"
	"testing"

	"github.com/dayplan-app/dayplan-api/internal/config"
	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/platform/postgres"
	"github.com/dayplan-app/dayplan-api/internal/service"
	"github.com/dayplan-app/dayplan-api/internal/service/auth"
	"github.com/dayplan-app/dayplan-api/internal/store"
	"github.com/dayplan-app/dayplan-api/internal/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvisioningFixture(t *testing.T) service.ProvisioningService {
	t.Helper()

	db := testutils.GetTestDB(t)

	jwtSvc, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	svc, err := service.NewProvisioningService(
		db,
		postgres.NewPostgresIdentityStore(db, nil),
		postgres.NewPostgresRegistrationKeyStore(db, nil),
		auth.NewBcryptVerifier(),
		jwtSvc,
		nil,
	)
	require.NoError(t, err)
	return svc
}

func TestProvisionIdentityConsumesKeyOnce(t *testing.T) {
	ctx := context.Background()
	svc := newProvisioningFixture(t)

	regKey, err := svc.MintRegistrationKey(ctx)
	require.NoError(t, err)

	login := "prov-" + uuid.NewString()[:13]
	identity, accessKey, err := svc.ProvisionIdentity(ctx, regKey, login)
	require.NoError(t, err)
	assert.Equal(t, login, identity.Login)
	assert.Equal(t, domain.PaymentStatusUnpaid, identity.PaymentStatus)
	assert.GreaterOrEqual(t, len(accessKey), auth.MinKeyLength)

	// The fresh access key signs in.
	token, err := svc.SignIn(ctx, login, accessKey)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// The registration key is spent.
	_, _, err = svc.ProvisionIdentity(ctx, regKey, "other-"+uuid.NewString()[:12])
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestProvisionIdentityRejectsBadKey(t *testing.T) {
	ctx := context.Background()
	svc := newProvisioningFixture(t)

	badKey, err := auth.GenerateKey(auth.MinKeyLength)
	require.NoError(t, err)

	_, _, err = svc.ProvisionIdentity(ctx, badKey, "nobody-"+uuid.NewString()[:11])
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestProvisionIdentityRejectsDuplicateLogin(t *testing.T) {
	ctx := context.Background()
	svc := newProvisioningFixture(t)

	login := "dup-" + uuid.NewString()[:14]

	first, err := svc.MintRegistrationKey(ctx)
	require.NoError(t, err)
	_, _, err = svc.ProvisionIdentity(ctx, first, login)
	require.NoError(t, err)

	second, err := svc.MintRegistrationKey(ctx)
	require.NoError(t, err)
	_, _, err = svc.ProvisionIdentity(ctx, second, login)
	assert.ErrorIs(t, err, store.ErrLoginExists)

	// The failed attempt must not have spent the key.
	_, _, err = svc.ProvisionIdentity(ctx, second, "dup2-"+uuid.NewString()[:13])
	assert.NoError(t, err)
}
