package auth

import (
	"context"

	"github.com/google/uuid"
)

// Claims represents the validated contents of a session token.
type Claims struct {
	IdentityID uuid.UUID
}

// JWTService defines the interface for session token operations.
// Tokens are issued at sign-in and authenticate subsequent requests in
// place of the raw access key.
type JWTService interface {
	// GenerateToken creates a signed session token for the given identity.
	GenerateToken(ctx context.Context, identityID uuid.UUID) (string, error)

	// ValidateToken verifies a session token and returns its claims.
	// Returns ErrExpiredToken for expired tokens and ErrInvalidToken for
	// anything else that fails verification.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}
