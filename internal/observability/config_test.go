package observability

import (
	"testing"
	"time"

	"github.com/smallbiznis/airlink/internal/config"
	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func appConfig(env string) config.Config {
	return config.Config{
		AppName:      "airlink",
		AppVersion:   "1.2.3",
		Environment:  env,
		OTLPEndpoint: "collector:4317",
		Store:        config.StoreConfig{Currency: "clp", Timezone: " America/Santiago "},
	}
}

func TestLoadConfigProductionDefaults(t *testing.T) {
	cfg := LoadConfig(appConfig("production"))

	assert.Equal(t, "airlink", cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.False(t, cfg.Debug())
	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, "grpc", cfg.OtelExporterProtocol)
	assert.Equal(t, 0.1, cfg.OtelSamplingRatio)
	assert.Equal(t, "CLP", cfg.StoreCurrency)
	assert.Equal(t, "America/Santiago", cfg.StoreTimezone)

	gormCfg := cfg.GormLogger()
	assert.Equal(t, gormlogger.Warn, gormCfg.Level)
	assert.Equal(t, 200*time.Millisecond, gormCfg.SlowThreshold)
}

func TestLoadConfigDevelopmentSamplesEverything(t *testing.T) {
	cfg := LoadConfig(appConfig("development"))

	assert.True(t, cfg.Debug())
	assert.Equal(t, 1.0, cfg.OtelSamplingRatio)
	assert.True(t, cfg.DBLogQueries)
	assert.Equal(t, gormlogger.Info, cfg.GormLogger().Level)
	assert.Equal(t, 50*time.Millisecond, cfg.GormLogger().SlowThreshold)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "http/protobuf")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.5")
	t.Setenv("DB_SLOW_QUERY_MS", "750")
	t.Setenv("DB_LOG_QUERIES", "off")

	cfg := LoadConfig(appConfig("development"))

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.Equal(t, 0.5, cfg.OtelSamplingRatio)
	assert.Equal(t, 750*time.Millisecond, cfg.GormLogger().SlowThreshold)
	assert.Equal(t, gormlogger.Warn, cfg.GormLogger().Level)
}

func TestLoadConfigWithoutEndpointDisablesExport(t *testing.T) {
	app := appConfig("production")
	app.OTLPEndpoint = ""
	cfg := LoadConfig(app)
	assert.False(t, cfg.OtelEnabled)

	t.Setenv("OTEL_ENABLED", "true")
	assert.True(t, LoadConfig(app).OtelEnabled)
}

func TestNormalizeProtocol(t *testing.T) {
	assert.Equal(t, "grpc", normalizeProtocol(""))
	assert.Equal(t, "grpc", normalizeProtocol("GRPC"))
	assert.Equal(t, "http", normalizeProtocol("http"))
	assert.Equal(t, "thrift", normalizeProtocol("thrift"))
}
