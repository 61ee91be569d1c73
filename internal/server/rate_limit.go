package server

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/airlink/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/airlink/internal/observability/metrics"
	"github.com/smallbiznis/airlink/internal/ratelimit"
	"go.uber.org/zap"
)

const rateLimitReasonClientIP = "client-ip"

// CouponValidateRateLimit throttles coupon validation per client IP. When
// redis is unreachable requests pass through.
func (s *Server) CouponValidateRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.couponLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		res, err := s.couponLimiter.Allow(ctx, c.ClientIP())
		if err != nil {
			logger.FromContext(ctx).Warn("coupon validate rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			denyRateLimit(c, normalizeRateLimitEndpoint(c), res, s.obsMetrics)
			return
		}

		c.Next()
	}
}

func denyRateLimit(c *gin.Context, endpoint string, res *ratelimit.RateLimitResult, metrics *obsmetrics.Metrics) {
	ctx := c.Request.Context()
	logger.FromContext(ctx).Warn("rate limit exceeded",
		zap.String("reason", rateLimitReasonClientIP),
		zap.String("endpoint", endpoint),
	)
	recordRateLimitDenied(ctx, endpoint, rateLimitReasonClientIP, metrics)

	c.Header("Retry-After", retryAfterSeconds(res))
	c.Header("X-Rate-Limited-Reason", rateLimitReasonClientIP)
	AbortWithError(c, ErrRateLimited)
}

func recordRateLimitDenied(ctx context.Context, endpoint, reason string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitDenied(ctx, endpoint, reason)
}

func retryAfterSeconds(res *ratelimit.RateLimitResult) string {
	if res == nil || res.RetryAfter <= 0 {
		return "1"
	}
	return strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds())))
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
