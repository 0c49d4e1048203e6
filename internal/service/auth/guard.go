package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dayplan-app/dayplan-api/internal/config"
	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/platform/logger"
	"github.com/dayplan-app/dayplan-api/internal/store"
	"github.com/google/uuid"
)

// Capability names the access level a request needs.
type Capability int

const (
	// CapabilityRead covers listing and retrieval operations.
	CapabilityRead Capability = iota

	// CapabilityMutate covers every operation that changes stored state.
	CapabilityMutate
)

// String returns the capability name for logging.
func (c Capability) String() string {
	switch c {
	case CapabilityRead:
		return "read"
	case CapabilityMutate:
		return "mutate"
	}
	return "unknown"
}

// AuthResult is the outcome of an authorization check. PaymentRequired
// marks a request blocked by payment standing; Identity is set whenever
// the credential was resolved against a stored identity, which a cached
// denial skips.
type AuthResult struct {
	Authorized      bool
	PaymentRequired bool
	Identity        *domain.Identity
}

// StatusCache is the payment status cache surface the guard needs.
// Satisfied by redcache.PaymentStatusCache.
type StatusCache interface {
	Get(ctx context.Context, identityID uuid.UUID) (domain.PaymentStatus, bool)
	Set(ctx context.Context, identityID uuid.UUID, status domain.PaymentStatus)
}

// Guard performs authentication and payment gating for every request.
// The check is stateless: it never mutates payment status, it only reads
// it. Refreshing the status is the payment service's job.
type Guard struct {
	identities       store.IdentityStore
	verifier         KeyVerifier
	jwtService       JWTService
	cache            StatusCache
	adminKeyHash     string
	expiredReadGrace bool
	logger           *slog.Logger
}

// NewGuard creates a Guard. cache may be nil when caching is disabled.
// If logger is nil, a default logger will be used.
func NewGuard(
	identities store.IdentityStore,
	verifier KeyVerifier,
	jwtService JWTService,
	cache StatusCache,
	cfg config.AuthConfig,
	logger *slog.Logger,
) *Guard {
	if identities == nil {
		panic("identities cannot be nil")
	}
	if verifier == nil {
		panic("verifier cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Guard{
		identities:       identities,
		verifier:         verifier,
		jwtService:       jwtService,
		cache:            cache,
		adminKeyHash:     cfg.AdminKeyHash,
		expiredReadGrace: cfg.ExpiredReadGrace,
		logger:           logger.With(slog.String("component", "auth_guard")),
	}
}

// AuthorizeKey checks a raw access key against the identity it fingerprints
// to and gates the requested capability by payment status.
func (g *Guard) AuthorizeKey(ctx context.Context, rawKey string, capability Capability) (AuthResult, error) {
	identity, err := g.Authenticate(ctx, rawKey)
	if err != nil {
		return AuthResult{}, err
	}

	return g.gate(ctx, identity, capability)
}

// Authenticate verifies a raw access key without applying payment gating.
// Used by sign-in and by the payment refresh operation, which must remain
// reachable for unpaid identities.
func (g *Guard) Authenticate(ctx context.Context, rawKey string) (*domain.Identity, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if rawKey == "" {
		return nil, ErrMissingCredential
	}

	identity, err := g.identities.GetByFingerprint(ctx, Fingerprint(rawKey))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}

	if err := g.verifier.Compare(identity.KeyHash, rawKey); err != nil {
		log.Warn("access key verification failed", "identity_id", identity.ID)
		return nil, ErrUnauthorized
	}

	return identity, nil
}

// AuthorizeToken checks a session token and gates the requested capability
// by payment status.
func (g *Guard) AuthorizeToken(ctx context.Context, tokenString string, capability Capability) (AuthResult, error) {
	if g.jwtService == nil {
		return AuthResult{}, ErrInvalidToken
	}
	if tokenString == "" {
		return AuthResult{}, ErrMissingCredential
	}

	claims, err := g.jwtService.ValidateToken(ctx, tokenString)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return AuthResult{}, err
		}
		return AuthResult{}, ErrUnauthorized
	}

	// A cached blocked status can deny before the identity load: the cache
	// only holds statuses written at the last gate, and a payment refresh
	// clears the entry, so a cached denial is never staler than the row.
	// Grants are always confirmed against the identity row itself.
	if g.cache != nil {
		if cached, ok := g.cache.Get(ctx, claims.IdentityID); ok && !g.allows(cached, capability) {
			return AuthResult{PaymentRequired: true}, ErrPaymentRequired
		}
	}

	identity, err := g.identities.GetByID(ctx, claims.IdentityID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("failed to look up identity: %w", err)
	}

	return g.gate(ctx, identity, capability)
}

// AuthorizeAdmin checks the raw key against the operator's configured admin
// key hash. The admin is not an Identity; it only mints registration keys.
func (g *Guard) AuthorizeAdmin(ctx context.Context, rawKey string) error {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if rawKey == "" {
		return ErrMissingCredential
	}
	if len(rawKey) < MinKeyLength {
		return ErrUnauthorized
	}

	if err := g.verifier.Compare(g.adminKeyHash, rawKey); err != nil {
		log.Warn("admin key verification failed")
		return ErrUnauthorized
	}

	return nil
}

// gate applies the payment policy for the capability. The decision always
// comes from the status on the identity row; the cache is written through
// so token authorization can deny without loading the row.
func (g *Guard) gate(ctx context.Context, identity *domain.Identity, capability Capability) (AuthResult, error) {
	status := identity.PaymentStatus
	if g.cache != nil {
		g.cache.Set(ctx, identity.ID, status)
	}

	if !g.allows(status, capability) {
		return AuthResult{PaymentRequired: true, Identity: identity}, ErrPaymentRequired
	}

	return AuthResult{Authorized: true, Identity: identity}, nil
}

// allows reports whether the payment status permits the capability.
// Mutations require an Active status. Reads are permitted under Expired
// only when the grace flag is on, and never under Unpaid.
func (g *Guard) allows(status domain.PaymentStatus, capability Capability) bool {
	switch capability {
	case CapabilityRead:
		return status == domain.PaymentStatusActive ||
			(status == domain.PaymentStatusExpired && g.expiredReadGrace)
	case CapabilityMutate:
		return status == domain.PaymentStatusActive
	}
	return false
}
