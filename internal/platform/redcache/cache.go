// Package redcache provides a Redis-backed cache for payment status
// lookups, keeping the hot authorization path off the database and the
// external verifier. A nil client disables caching; every method then
// degrades to a no-op or a miss, so callers never branch on whether
// caching is enabled.
package redcache

import (
	"context"
	"log/slog"
	"time"

	"github.com/dayplan-app/dayplan-api/internal/config"
	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PaymentStatusCache caches the payment status of identities with a short
// TTL. Redis failures never surface to the caller; a broken cache behaves
// like an empty one.
type PaymentStatusCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a PaymentStatusCache from configuration. An empty Addr
// returns a disabled cache. If logger is nil, a default logger is used.
func New(cfg config.RedisConfig, logger *slog.Logger) *PaymentStatusCache {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "payment_status_cache"))

	var client *redis.Client
	if cfg.Addr != "" {
		client = redis.NewClient(&redis.Options{Addr: cfg.Addr})
	}

	return &PaymentStatusCache{
		redis:  client,
		ttl:    time.Duration(cfg.TTLSeconds) * time.Second,
		logger: logger,
	}
}

// NewWithClient creates a PaymentStatusCache around an existing client.
// Used by tests and by callers that manage the client's lifecycle.
func NewWithClient(client *redis.Client, ttl time.Duration, logger *slog.Logger) *PaymentStatusCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentStatusCache{
		redis:  client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "payment_status_cache")),
	}
}

// Enabled reports whether the cache is backed by a live client.
func (c *PaymentStatusCache) Enabled() bool {
	return c.redis != nil
}

// Get returns the cached payment status for an identity, if present.
func (c *PaymentStatusCache) Get(ctx context.Context, identityID uuid.UUID) (domain.PaymentStatus, bool) {
	if c.redis == nil {
		return "", false
	}

	raw, err := c.redis.Get(ctx, statusKey(identityID)).Result()
	if err != nil {
		if err != redis.Nil {
			// Fall back to the source of truth without failing.
			c.logger.Warn("payment status cache read failed", "error", err)
		}
		return "", false
	}

	status := domain.PaymentStatus(raw)
	if !status.IsValid() {
		_ = c.redis.Del(ctx, statusKey(identityID)).Err()
		return "", false
	}

	return status, true
}

// Set stores the payment status for an identity.
func (c *PaymentStatusCache) Set(ctx context.Context, identityID uuid.UUID, status domain.PaymentStatus) {
	if c.redis == nil || c.ttl == 0 {
		return
	}

	if err := c.redis.Set(ctx, statusKey(identityID), string(status), c.ttl).Err(); err != nil {
		c.logger.Warn("payment status cache write failed", "error", err)
	}
}

// Invalidate drops the cached status for an identity. Called after every
// payment refresh so the next authorization reads the fresh status.
func (c *PaymentStatusCache) Invalidate(ctx context.Context, identityID uuid.UUID) {
	if c.redis == nil {
		return
	}

	if err := c.redis.Del(ctx, statusKey(identityID)).Err(); err != nil {
		c.logger.Warn("payment status cache invalidation failed", "error", err)
	}
}

// Close releases the underlying client, if any.
func (c *PaymentStatusCache) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}

func statusKey(identityID uuid.UUID) string {
	return "payment_status:" + identityID.String()
}
