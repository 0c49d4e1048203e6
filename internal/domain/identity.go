package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Identity-specific validation errors
var (
	// ErrIdentityIDEmpty is returned when an identity ID is empty or nil.
	ErrIdentityIDEmpty = errors.New("identity ID cannot be empty")

	// ErrIdentityLoginEmpty is returned when an identity's login is empty.
	ErrIdentityLoginEmpty = errors.New("identity login cannot be empty")

	// ErrIdentityKeyHashEmpty is returned when an identity has no stored key hash.
	ErrIdentityKeyHashEmpty = errors.New("identity key hash cannot be empty")

	// ErrUnknownPaymentStatus is returned when a payment status is not one
	// of the defined values.
	ErrUnknownPaymentStatus = errors.New("unknown payment status")
)

// PaymentStatus gates access to mutating capabilities.
type PaymentStatus string

// Valid payment statuses. Transitions are driven only by the external
// payment verifier's results, never inferred locally.
const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusActive  PaymentStatus = "active"
	PaymentStatusExpired PaymentStatus = "expired"
)

// IsValid reports whether the status is one of the defined values.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusActive, PaymentStatusExpired:
		return true
	}
	return false
}

// Identity is an authenticated account. The presented admin key is verified
// against KeyHash (bcrypt); KeyFingerprint is a SHA-256 hex digest of the
// key used only to locate the row, never to authenticate it.
type Identity struct {
	ID             uuid.UUID     `json:"id"`
	Login          string        `json:"login"`
	KeyHash        string        `json:"-"`
	KeyFingerprint string        `json:"-"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	LastVerifiedAt time.Time     `json:"last_verified_at"`
	CreatedAt      time.Time     `json:"created_at"`
}

// NewIdentity creates a new unpaid Identity with the given login and key
// material. Returns an error if validation fails.
func NewIdentity(login, keyHash, keyFingerprint string) (*Identity, error) {
	identity := &Identity{
		ID:             uuid.New(),
		Login:          login,
		KeyHash:        keyHash,
		KeyFingerprint: keyFingerprint,
		PaymentStatus:  PaymentStatusUnpaid,
		CreatedAt:      time.Now().UTC(),
	}

	if err := identity.Validate(); err != nil {
		return nil, err
	}

	return identity, nil
}

// Validate checks if the Identity has valid data.
// Returns an error if any field fails validation.
func (i *Identity) Validate() error {
	if i.ID == uuid.Nil {
		return ErrIdentityIDEmpty
	}

	if i.Login == "" {
		return ErrIdentityLoginEmpty
	}

	if i.KeyHash == "" || i.KeyFingerprint == "" {
		return ErrIdentityKeyHashEmpty
	}

	if !i.PaymentStatus.IsValid() {
		return ErrUnknownPaymentStatus
	}

	return nil
}
