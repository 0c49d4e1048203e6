package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinKeyLength is the minimum length, in characters, of any access key.
// Keys are random, never user-chosen, so the bound is generous.
const MinKeyLength = 64

// keyAlphabet deliberately omits characters that are easy to confuse when
// keys are read or typed by an operator.
const keyAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateKey returns a new random access key of the given length.
// Lengths below MinKeyLength are rejected.
func GenerateKey(length int) (string, error) {
	if length < MinKeyLength {
		return "", fmt.Errorf("%w: %d < %d", ErrKeyTooShort, length, MinKeyLength)
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = keyAlphabet[int(b)%len(keyAlphabet)]
	}

	return string(buf), nil
}

// HashKey returns the bcrypt hash of a key for storage. The raw key is
// never persisted.
func HashKey(key string) (string, error) {
	if len(key) < MinKeyLength {
		return "", fmt.Errorf("%w: %d < %d", ErrKeyTooShort, len(key), MinKeyLength)
	}

	// bcrypt only considers the first 72 bytes of input, so hash a digest
	// of the key rather than the key itself.
	digest := sha256.Sum256([]byte(key))
	hash, err := bcrypt.GenerateFromPassword(digest[:], bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}

	return string(hash), nil
}

// Fingerprint returns the SHA-256 hex digest of a key. Fingerprints locate
// the stored record for a presented key; they never authenticate it, the
// bcrypt hash does.
func Fingerprint(key string) string {
	sum := sha256.Sum256([]byte("fp:" + key))
	return hex.EncodeToString(sum[:])
}

// KeyVerifier defines the interface for comparing stored key hashes with
// presented keys.
type KeyVerifier interface {
	// Compare compares a stored hash with a presented raw key.
	// Returns nil on success, or an error on mismatch.
	Compare(storedHash, presentedKey string) error
}

// BcryptVerifier implements KeyVerifier using bcrypt.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare implements the KeyVerifier interface using bcrypt.
func (v *BcryptVerifier) Compare(storedHash, presentedKey string) error {
	digest := sha256.Sum256([]byte(presentedKey))
	return bcrypt.CompareHashAndPassword([]byte(storedHash), digest[:])
}
