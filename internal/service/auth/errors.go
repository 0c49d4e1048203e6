package auth

import "errors"

// Common authentication and authorization errors
var (
	// ErrUnauthorized indicates the presented credential does not identify
	// any account or fails verification. Callers must not reveal which.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPaymentRequired indicates the account is known but its payment
	// standing does not permit the requested capability.
	ErrPaymentRequired = errors.New("payment required")

	// ErrInvalidToken indicates the token format is invalid or the signature
	// doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingCredential indicates no credential was presented at all
	ErrMissingCredential = errors.New("authentication credential is missing")

	// ErrKeyTooShort indicates generated or presented key material is below
	// the minimum length
	ErrKeyTooShort = errors.New("access key too short")
)
