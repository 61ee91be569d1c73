package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observedGormLogger(cfg GormLoggerConfig) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(cfg, zap.New(core)), logs
}

func statement(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestTraceTagsTableAndDomain(t *testing.T) {
	cfg := DefaultGormLoggerConfig()
	cfg.Level = gormlogger.Info
	l, logs := observedGormLogger(cfg)

	l.Trace(context.Background(), time.Now(), statement(`UPDATE coupons
		SET used_count = used_count + 1 WHERE id = ?`, 0), nil)
	l.Trace(context.Background(), time.Now(), statement(`SELECT p.id FROM passengers p JOIN seats s ON s.id = p.seat_id`, 2), nil)

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "UPDATE", first["operation"])
	assert.Equal(t, "coupons", first["table"])
	assert.Equal(t, "coupon", first["domain"])
	assert.Equal(t, int64(0), first["rows_affected"])
	assert.Equal(t, "UPDATE coupons SET used_count = used_count + 1 WHERE id = ?", first["sql"])

	second := entries[1].ContextMap()
	assert.Equal(t, "passengers", second["table"])
	assert.Equal(t, "checkin", second["domain"])
}

func TestTraceMasksQuotedLiterals(t *testing.T) {
	cfg := DefaultGormLoggerConfig()
	cfg.Level = gormlogger.Info
	l, logs := observedGormLogger(cfg)

	l.Trace(context.Background(), time.Now(), statement(`SELECT COUNT(*) FROM coupon_redemptions WHERE email = 'ana@example.com' AND note = 'o''brien'`, 1), nil)

	require.Equal(t, 1, logs.Len())
	sql := logs.All()[0].ContextMap()["sql"].(string)
	assert.NotContains(t, sql, "ana@example.com")
	assert.NotContains(t, sql, "brien")
	assert.Contains(t, sql, "email = '?'")
}

func TestTraceLevels(t *testing.T) {
	l, logs := observedGormLogger(DefaultGormLoggerConfig())
	ctx := context.Background()

	l.Trace(ctx, time.Now(), statement(`SELECT 1 FROM trips`, 1), nil)
	assert.Equal(t, 0, logs.Len())

	l.Trace(ctx, time.Now(), statement(`SELECT 1 FROM trips`, 0), gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	l.Trace(ctx, time.Now(), statement(`INSERT INTO coupons (code) VALUES (?)`, 0), errors.New("UNIQUE constraint failed"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)

	l.Trace(ctx, time.Now().Add(-time.Second), statement(`SELECT * FROM reservations`, 1), nil)
	require.Equal(t, 2, logs.Len())
	slow := logs.All()[1]
	assert.Equal(t, zapcore.WarnLevel, slow.Level)
	assert.Equal(t, true, slow.ContextMap()["slow"])

	l.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), statement(`SELECT 1`, 0), errors.New("boom"))
	assert.Equal(t, 2, logs.Len())
}

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("  (select 1)"))
	assert.Equal(t, "SAVEPOINT", operationFromSQL("SAVEPOINT sp1"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
	assert.Equal(t, "", tableFromSQL("SELECT 1"))
}
