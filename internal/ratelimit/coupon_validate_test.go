package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, rate float64, burst int) (*CouponValidateLimiter, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := NewCouponValidateLimiterFromClient(client, rate, burst)
	require.NoError(t, err)
	return limiter, srv
}

func TestCouponValidateLimiterExhaustsBurst(t *testing.T) {
	limiter, _ := newTestLimiter(t, 0.001, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
	}

	res, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 3, res.Limit)
	assert.Positive(t, res.RetryAfter)
}

func TestCouponValidateLimiterKeysByIP(t *testing.T) {
	limiter, srv := newTestLimiter(t, 0.001, 1)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	assert.True(t, srv.Exists("coupon:validate:ip:10.0.0.1"))
	assert.True(t, srv.Exists("coupon:validate:ip:10.0.0.2"))
}

func TestNilLimiterAllows(t *testing.T) {
	var limiter *CouponValidateLimiter

	res, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.False(t, limiter.Enabled())
}

func TestCouponValidateLimiterRejectsBadSettings(t *testing.T) {
	_, err := NewCouponValidateLimiterFromClient(nil, 0, 10)
	assert.Error(t, err)
	_, err = NewCouponValidateLimiterFromClient(nil, 1, 0)
	assert.Error(t, err)
}

func TestTokenBucketValidatesArguments(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	bucket := NewTokenBucket(client)

	_, err := bucket.Allow(context.Background(), "", 1, 1)
	assert.Error(t, err)
	_, err = bucket.Allow(context.Background(), "k", -1, 1)
	assert.Error(t, err)
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, "20s", defaultBucketTTL(1, 10).String())
	assert.Equal(t, "1s", defaultBucketTTL(100, 1).String())
}
