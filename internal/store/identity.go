package store

import (
	"context"
	"time"

	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/google/uuid"
)

// IdentityStore defines the interface for identity persistence.
type IdentityStore interface {
	// Create saves a new identity.
	// Returns ErrLoginExists if the login is already taken.
	Create(ctx context.Context, identity *domain.Identity) error

	// GetByID retrieves an identity by its unique ID.
	// Returns ErrIdentityNotFound if no identity exists with the given ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error)

	// GetByIDForUpdate retrieves an identity by ID, taking a row lock so a
	// payment refresh can read and write the status atomically. Callers
	// must hold a transaction via WithTx.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Identity, error)

	// GetByFingerprint retrieves an identity by its access key fingerprint.
	// Returns ErrIdentityNotFound if no identity matches.
	GetByFingerprint(ctx context.Context, fingerprint string) (*domain.Identity, error)

	// GetByLogin retrieves an identity by its login.
	// Returns ErrIdentityNotFound if no identity matches.
	GetByLogin(ctx context.Context, login string) (*domain.Identity, error)

	// UpdatePaymentStatus persists the outcome of a payment verification.
	// Returns ErrIdentityNotFound if the identity does not exist.
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, verifiedAt time.Time) error

	// WithTx returns a copy of the store bound to an existing transaction,
	// so multi-store operations share one unit of work.
	WithTx(tx DBTX) IdentityStore
}

// RegistrationKeyStore defines the interface for registration key
// persistence. Keys are minted by the admin and consumed exactly once
// during sign-up.
type RegistrationKeyStore interface {
	// Create saves a freshly minted registration key.
	Create(ctx context.Context, key *domain.RegistrationKey) error

	// GetByFingerprint retrieves an unconsumed key by fingerprint.
	// Returns ErrRegistrationKeyNotFound if no live key matches.
	GetByFingerprint(ctx context.Context, fingerprint string) (*domain.RegistrationKey, error)

	// Consume marks a key as used by the given identity. Returns
	// ErrRegistrationKeyNotFound if the key is missing or already consumed.
	Consume(ctx context.Context, id uuid.UUID, identityID uuid.UUID) error

	// WithTx returns a copy of the store bound to an existing transaction.
	WithTx(tx DBTX) RegistrationKeyStore
}
