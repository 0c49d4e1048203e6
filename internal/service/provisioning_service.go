package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/platform/logger"
	"github.com/dayplan-app/dayplan-api/internal/service/auth"
	"github.com/dayplan-app/dayplan-api/internal/store"
)

// ProvisioningServiceError is a custom error type for provisioning errors.
type ProvisioningServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ProvisioningServiceError.
func (e *ProvisioningServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provisioning %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("provisioning %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ProvisioningServiceError) Unwrap() error {
	return e.Err
}

// NewProvisioningServiceError creates a new ProvisioningServiceError.
func NewProvisioningServiceError(operation, message string, err error) *ProvisioningServiceError {
	return &ProvisioningServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// ProvisioningService mints registration keys and turns them into accounts.
type ProvisioningService interface {
	// MintRegistrationKey creates a single-use registration key and returns
	// it in the clear, once. Only the admin may call this; the API layer
	// enforces that before invoking the service.
	MintRegistrationKey(ctx context.Context) (string, error)

	// ProvisionIdentity consumes a registration key and creates an identity
	// with a fresh access key, returned in the clear, once. The new identity
	// starts unpaid.
	ProvisionIdentity(ctx context.Context, registrationKey, login string) (*domain.Identity, string, error)

	// SignIn exchanges a login and access key for a session token.
	SignIn(ctx context.Context, login, accessKey string) (string, error)
}

// provisioningServiceImpl implements the ProvisioningService interface
type provisioningServiceImpl struct {
	db         *sql.DB
	identities store.IdentityStore
	regKeys    store.RegistrationKeyStore
	verifier   auth.KeyVerifier
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewProvisioningService creates a new ProvisioningService.
// It returns an error if any of the required dependencies are nil.
func NewProvisioningService(
	db *sql.DB,
	identities store.IdentityStore,
	regKeys store.RegistrationKeyStore,
	verifier auth.KeyVerifier,
	jwtService auth.JWTService,
	logger *slog.Logger,
) (ProvisioningService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if identities == nil {
		return nil, domain.NewValidationError("identities", "cannot be nil", domain.ErrValidation)
	}
	if regKeys == nil {
		return nil, domain.NewValidationError("regKeys", "cannot be nil", domain.ErrValidation)
	}
	if verifier == nil {
		return nil, domain.NewValidationError("verifier", "cannot be nil", domain.ErrValidation)
	}
	if jwtService == nil {
		return nil, domain.NewValidationError("jwtService", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &provisioningServiceImpl{
		db:         db,
		identities: identities,
		regKeys:    regKeys,
		verifier:   verifier,
		jwtService: jwtService,
		logger:     logger.With(slog.String("component", "provisioning_service")),
	}, nil
}

// MintRegistrationKey implements ProvisioningService.MintRegistrationKey
func (s *provisioningServiceImpl) MintRegistrationKey(ctx context.Context) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rawKey, err := auth.GenerateKey(auth.MinKeyLength)
	if err != nil {
		return "", NewProvisioningServiceError("mint_key", "failed to generate key", err)
	}

	hash, err := auth.HashKey(rawKey)
	if err != nil {
		return "", NewProvisioningServiceError("mint_key", "failed to hash key", err)
	}

	key, err := domain.NewRegistrationKey(hash, auth.Fingerprint(rawKey))
	if err != nil {
		return "", err
	}

	if err := s.regKeys.Create(ctx, key); err != nil {
		return "", NewProvisioningServiceError("mint_key", "failed to save key", err)
	}

	log.Info("registration key minted", slog.String("key_id", key.ID.String()))
	return rawKey, nil
}

// ProvisionIdentity implements ProvisioningService.ProvisionIdentity
// Key consumption and identity creation happen in one transaction: a
// registration key is either spent on exactly one account or not at all.
func (s *provisioningServiceImpl) ProvisionIdentity(ctx context.Context, registrationKey, login string) (*domain.Identity, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if registrationKey == "" || login == "" {
		return nil, "", auth.ErrUnauthorized
	}

	accessKey, err := auth.GenerateKey(auth.MinKeyLength)
	if err != nil {
		return nil, "", NewProvisioningServiceError("provision", "failed to generate access key", err)
	}
	accessHash, err := auth.HashKey(accessKey)
	if err != nil {
		return nil, "", NewProvisioningServiceError("provision", "failed to hash access key", err)
	}

	identity, err := domain.NewIdentity(login, accessHash, auth.Fingerprint(accessKey))
	if err != nil {
		return nil, "", err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txRegKeys := s.regKeys.WithTx(tx)

		regKey, err := txRegKeys.GetByFingerprint(ctx, auth.Fingerprint(registrationKey))
		if err != nil {
			if store.IsNotFoundError(err) {
				return auth.ErrUnauthorized
			}
			return err
		}

		if err := s.verifier.Compare(regKey.KeyHash, registrationKey); err != nil {
			return auth.ErrUnauthorized
		}

		if err := s.identities.WithTx(tx).Create(ctx, identity); err != nil {
			return err
		}

		if err := txRegKeys.Consume(ctx, regKey.ID, identity.ID); err != nil {
			if store.IsNotFoundError(err) {
				// Lost a race with another sign-up using the same key.
				return auth.ErrUnauthorized
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	log.Info("identity provisioned",
		slog.String("identity_id", identity.ID.String()))
	return identity, accessKey, nil
}

// SignIn implements ProvisioningService.SignIn
func (s *provisioningServiceImpl) SignIn(ctx context.Context, login, accessKey string) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if login == "" || accessKey == "" {
		return "", auth.ErrMissingCredential
	}

	identity, err := s.identities.GetByLogin(ctx, login)
	if err != nil {
		if store.IsNotFoundError(err) {
			return "", auth.ErrUnauthorized
		}
		return "", fmt.Errorf("failed to look up identity: %w", err)
	}

	if err := s.verifier.Compare(identity.KeyHash, accessKey); err != nil {
		log.Warn("sign-in key verification failed", slog.String("identity_id", identity.ID.String()))
		return "", auth.ErrUnauthorized
	}

	token, err := s.jwtService.GenerateToken(ctx, identity.ID)
	if err != nil {
		return "", NewProvisioningServiceError("sign_in", "failed to issue session token", err)
	}

	return token, nil
}
