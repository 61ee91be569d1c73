package tracing

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/airlink/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeLimited  = "rate_limited"
	OutcomeError    = "error"
)

var routeOperations = map[string]string{
	"/api/coupons/validate":                     "coupon.validate",
	"/api/coupons/apply":                        "coupon.apply",
	"/api/coupons/active":                       "coupon.list_active",
	"/api/checkin/confirm":                      "checkin.confirm",
	"/api/checkin/boarding-pass/:reservationId": "checkin.boarding_pass",
	"/api/checkin/send-boarding-pass":           "checkin.send_boarding_pass",
}

// GinMiddleware opens a server span per request and tags it with the
// operation, its outcome, the decision reason and the reservation involved.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tracer := otel.Tracer("airlink/http")
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		ctx, span := tracer.Start(ctx, "HTTP "+strings.ToUpper(c.Request.Method), trace.WithSpanKind(trace.SpanKindServer))

		if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
			if member, err := baggage.NewMember("request_id", requestID); err == nil {
				if bag, err := baggage.New(member); err == nil {
					ctx = baggage.ContextWithBaggage(ctx, bag)
				}
			}
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		c.Request = c.Request.WithContext(ctx)
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		reason := strings.TrimSpace(c.GetString(obscontext.DecisionReasonKey))

		name := "HTTP " + strings.ToUpper(c.Request.Method) + " " + route
		attrs := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.Int64("http.server_duration_ms", time.Since(start).Milliseconds()),
			attribute.String("airlink.outcome", outcome(status, reason)),
		}
		if op, ok := routeOperations[route]; ok {
			name = op
			attrs = append(attrs, attribute.String("airlink.operation", op))
		}
		if reason != "" {
			attrs = append(attrs, attribute.String("airlink.decision_reason", reason))
		}
		if id, ok := reservationID(c); ok {
			attrs = append(attrs, attribute.Int64("airlink.reservation_id", id))
		}
		span.SetName(name)
		span.SetAttributes(SafeAttributes(attrs...)...)

		if status >= http.StatusInternalServerError {
			if lastErr := c.Errors.Last(); lastErr != nil {
				if safeErr := SafeError(lastErr.Err); safeErr != nil {
					span.RecordError(safeErr)
				}
			}
			span.SetStatus(codes.Error, "request error")
		}
		span.End()
	}
}

func outcome(status int, reason string) string {
	switch {
	case status == http.StatusTooManyRequests:
		return OutcomeLimited
	case status >= http.StatusInternalServerError:
		return OutcomeError
	case reason != "":
		return OutcomeRejected
	case status >= http.StatusBadRequest:
		return OutcomeError
	default:
		return OutcomeOK
	}
}

func reservationID(c *gin.Context) (int64, bool) {
	value, ok := c.Get(obscontext.ReservationIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok && id > 0
}
