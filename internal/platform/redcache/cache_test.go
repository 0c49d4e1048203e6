package redcache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dayplan-app/dayplan-api/internal/config"
	"github.com/dayplan-app/dayplan-api/internal/domain"
	"github.com/dayplan-app/dayplan-api/internal/platform/redcache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*redcache.PaymentStatusCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redcache.NewWithClient(client, time.Minute, nil)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestGetMissThenHit(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)
	id := uuid.New()

	_, ok := cache.Get(ctx, id)
	assert.False(t, ok, "expected miss before Set")

	cache.Set(ctx, id, domain.PaymentStatusActive)

	status, ok := cache.Get(ctx, id)
	require.True(t, ok)
	assert.Equal(t, domain.PaymentStatusActive, status)
}

func TestInvalidateDropsEntry(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)
	id := uuid.New()

	cache.Set(ctx, id, domain.PaymentStatusExpired)
	cache.Invalidate(ctx, id)

	_, ok := cache.Get(ctx, id)
	assert.False(t, ok, "expected miss after invalidation")
}

func TestEntriesExpire(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	id := uuid.New()

	cache.Set(ctx, id, domain.PaymentStatusActive)
	mr.FastForward(2 * time.Minute)

	_, ok := cache.Get(ctx, id)
	assert.False(t, ok, "expected miss after TTL")
}

func TestCorruptValueTreatedAsMiss(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	id := uuid.New()

	require.NoError(t, mr.Set("payment_status:"+id.String(), "bogus"))

	_, ok := cache.Get(ctx, id)
	assert.False(t, ok, "unknown status value must read as a miss")
}

func TestRedisFailureIsFailOpen(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	id := uuid.New()

	cache.Set(ctx, id, domain.PaymentStatusActive)
	mr.Close()

	// Reads and writes against a dead redis degrade to misses and no-ops.
	_, ok := cache.Get(ctx, id)
	assert.False(t, ok)
	cache.Set(ctx, id, domain.PaymentStatusUnpaid)
	cache.Invalidate(ctx, id)
}

func TestDisabledCacheIsInert(t *testing.T) {
	ctx := context.Background()
	cache := redcache.New(config.RedisConfig{}, nil)
	id := uuid.New()

	assert.False(t, cache.Enabled())
	cache.Set(ctx, id, domain.PaymentStatusActive)
	_, ok := cache.Get(ctx, id)
	assert.False(t, ok)
	assert.NoError(t, cache.Close())
}
