package observability

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/airlink/internal/config"
	"github.com/smallbiznis/airlink/internal/observability/logger"
	gormlogger "gorm.io/gorm/logger"
)

const (
	defaultSamplingRatio    = 0.1
	defaultSlowQuery        = 200 * time.Millisecond
	defaultSlowQueryDevMode = 50 * time.Millisecond
)

// Config holds observability settings for the storefront backend. Values
// come from the application config, with OTEL_* and LOG_* variables taking
// precedence.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64

	// StoreCurrency and StoreTimezone are attached to every exported span.
	StoreCurrency string
	StoreTimezone string

	DBSlowQuery  time.Duration
	DBLogQueries bool
}

func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "airlink"
	}
	environment := strings.TrimSpace(getenv("DEPLOYMENT_ENV", cfg.Environment))
	dev := isDevEnv(environment)

	endpoint := strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint))
	protocol := getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	if tracesProtocol := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL")); tracesProtocol != "" {
		protocol = tracesProtocol
	}

	ratio := defaultSamplingRatio
	slowQuery := defaultSlowQuery
	if dev {
		ratio = 1
		slowQuery = defaultSlowQueryDevMode
	}

	return Config{
		ServiceName:          serviceName,
		Environment:          environment,
		Version:              strings.TrimSpace(getenv("SERVICE_VERSION", cfg.AppVersion)),
		LogLevel:             normalizeLevel(getenv("LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(getenv("LOG_FORMAT", "json")),
		OtelEnabled:          getenvBool("OTEL_ENABLED", endpoint != ""),
		OtelExporterEndpoint: endpoint,
		OtelExporterProtocol: normalizeProtocol(protocol),
		OtelSamplingRatio:    getenvFloat("OTEL_SAMPLING_RATIO", ratio),
		StoreCurrency:        strings.ToUpper(strings.TrimSpace(cfg.Store.Currency)),
		StoreTimezone:        strings.TrimSpace(cfg.Store.Timezone),
		DBSlowQuery:          time.Duration(getenvInt("DB_SLOW_QUERY_MS", int(slowQuery/time.Millisecond))) * time.Millisecond,
		DBLogQueries:         getenvBool("DB_LOG_QUERIES", dev),
	}
}

func (c Config) Debug() bool {
	return c.LogLevel == "debug" || isDevEnv(c.Environment)
}

// GormLogger returns the query logger settings. Statements are logged only
// when DBLogQueries is set; slow queries and errors always are.
func (c Config) GormLogger() logger.GormLoggerConfig {
	out := logger.DefaultGormLoggerConfig()
	if c.DBSlowQuery > 0 {
		out.SlowThreshold = c.DBSlowQuery
	}
	if c.DBLogQueries {
		out.Level = gormlogger.Info
	}
	return out
}

func normalizeLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "debug", "info", "warn", "error":
		return level
	case "warning":
		return "warn"
	default:
		return "info"
	}
}

// normalizeProtocol folds the OTLP protocol names onto the two exporters
// the tracing provider builds. Unknown names pass through and fail there.
func normalizeProtocol(protocol string) string {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		return "http"
	case "", "grpc", "grpc/protobuf":
		return "grpc"
	default:
		return protocol
	}
}

func isDevEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func getenv(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return def
}

func getenvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return def
	}
	return parsed
}
