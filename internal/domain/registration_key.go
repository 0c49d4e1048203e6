package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Registration-key-specific validation errors
var (
	// ErrRegistrationKeyIDEmpty is returned when a registration key ID is empty.
	ErrRegistrationKeyIDEmpty = errors.New("registration key ID cannot be empty")

	// ErrRegistrationKeyHashEmpty is returned when a registration key has no
	// stored key material.
	ErrRegistrationKeyHashEmpty = errors.New("registration key hash cannot be empty")

	// ErrRegistrationKeyConsumed is returned when a key that was already used
	// for sign-up is presented again.
	ErrRegistrationKeyConsumed = errors.New("registration key already consumed")
)

// RegistrationKey is a single-use credential minted by the admin that
// entitles its holder to create one identity. KeyHash and KeyFingerprint
// work the same way as on Identity.
type RegistrationKey struct {
	ID             uuid.UUID  `json:"id"`
	KeyHash        string     `json:"-"`
	KeyFingerprint string     `json:"-"`
	ConsumedBy     *uuid.UUID `json:"consumed_by,omitempty"`
	ConsumedAt     *time.Time `json:"consumed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewRegistrationKey creates a new unconsumed RegistrationKey from the
// given key material. Returns an error if validation fails.
func NewRegistrationKey(keyHash, keyFingerprint string) (*RegistrationKey, error) {
	key := &RegistrationKey{
		ID:             uuid.New(),
		KeyHash:        keyHash,
		KeyFingerprint: keyFingerprint,
		CreatedAt:      time.Now().UTC(),
	}

	if err := key.Validate(); err != nil {
		return nil, err
	}

	return key, nil
}

// Validate checks if the RegistrationKey has valid data.
func (k *RegistrationKey) Validate() error {
	if k.ID == uuid.Nil {
		return ErrRegistrationKeyIDEmpty
	}

	if k.KeyHash == "" || k.KeyFingerprint == "" {
		return ErrRegistrationKeyHashEmpty
	}

	return nil
}

// Consumed reports whether the key has already been used for sign-up.
func (k *RegistrationKey) Consumed() bool {
	return k.ConsumedBy != nil
}
