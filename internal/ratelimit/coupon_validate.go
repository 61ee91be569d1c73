package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/airlink/internal/config"
	"go.uber.org/fx"
)

const keyCouponValidateIP = "coupon:validate:ip:%s"

// CouponValidateLimiter throttles coupon validation per client IP.
// A nil limiter allows everything.
type CouponValidateLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewCouponValidateLimiter(lc fx.Lifecycle, cfg config.Config) (*CouponValidateLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return NewCouponValidateLimiterFromClient(client, limitCfg.CouponValidateRate, limitCfg.CouponValidateBurst)
}

func NewCouponValidateLimiterFromClient(client redis.UniversalClient, rate float64, burst int) (*CouponValidateLimiter, error) {
	if rate <= 0 || burst <= 0 {
		return nil, errors.New("coupon validate rate limit must be positive")
	}
	return &CouponValidateLimiter{
		bucket: NewTokenBucket(client),
		rate:   rate,
		burst:  burst,
	}, nil
}

func (l *CouponValidateLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *CouponValidateLimiter) Allow(ctx context.Context, clientIP string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	ip := strings.TrimSpace(clientIP)
	if ip == "" {
		ip = "unknown"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyCouponValidateIP, ip), l.rate, l.burst)
}
