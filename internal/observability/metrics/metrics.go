package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	couponValidations   metric.Int64Counter
	couponRedemptions   metric.Int64Counter
	checkIns            metric.Int64Counter
	boardingPassEmails  metric.Int64Counter
	rateLimitDenied     metric.Int64Counter
	activeCouponsCached metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "airlink"
	}
	meter := provider.Meter(name)

	couponValidations, err := meter.Int64Counter("airlink_coupon_validations_total")
	if err != nil {
		return nil, err
	}
	couponRedemptions, err := meter.Int64Counter("airlink_coupon_redemptions_total")
	if err != nil {
		return nil, err
	}
	checkIns, err := meter.Int64Counter("airlink_checkins_total")
	if err != nil {
		return nil, err
	}
	boardingPassEmails, err := meter.Int64Counter("airlink_boarding_pass_emails_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("airlink_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}
	activeCouponsCached, err := meter.Int64Counter("airlink_active_coupons_cache_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		couponValidations:   couponValidations,
		couponRedemptions:   couponRedemptions,
		checkIns:            checkIns,
		boardingPassEmails:  boardingPassEmails,
		rateLimitDenied:     rateLimitDenied,
		activeCouponsCached: activeCouponsCached,
	}, nil
}

// RecordCouponValidation counts validation outcomes by reason ("ok" on success).
func (m *Metrics) RecordCouponValidation(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.couponValidations.Add(ctx, 1, metric.WithAttributes(reasonAttrs(reason)...))
}

// RecordCouponRedemption counts redemption outcomes by reason.
func (m *Metrics) RecordCouponRedemption(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.couponRedemptions.Add(ctx, 1, metric.WithAttributes(reasonAttrs(reason)...))
}

// RecordCheckIn counts check-in outcomes by reason.
func (m *Metrics) RecordCheckIn(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.checkIns.Add(ctx, 1, metric.WithAttributes(reasonAttrs(reason)...))
}

// RecordBoardingPassEmail counts boarding pass delivery attempts.
func (m *Metrics) RecordBoardingPassEmail(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.boardingPassEmails.Add(ctx, 1, metric.WithAttributes(reasonAttrs(reason)...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordActiveCouponsCache counts cache lookups as "hit" or "miss".
func (m *Metrics) RecordActiveCouponsCache(ctx context.Context, result string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("result", strings.TrimSpace(result)))
	m.activeCouponsCached.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func reasonAttrs(reason string) []attribute.KeyValue {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "ok"
	}
	return FilterAttributes(attribute.String("reason", reason))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint":    {},
	"status_code": {},
	"method":      {},
	"route":       {},
	"reason":      {},
	"result":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
