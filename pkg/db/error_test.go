package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, IsDuplicateKeyErr(errors.New("Error 1062: Duplicate entry 'SAVE10' for key 'code'")))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: coupons.code")))
	assert.False(t, IsDuplicateKeyErr(errors.New("syntax error")))
}

func TestIsMissingTableErr(t *testing.T) {
	assert.True(t, IsMissingTableErr(&pgconn.PgError{Code: "42P01"}))
	assert.True(t, IsMissingTableErr(errors.New("Error 1146: Table 'airlink.reservation_coupons' doesn't exist")))
	assert.True(t, IsMissingTableErr(errors.New("no such table: reservation_coupons")))
	assert.False(t, IsMissingTableErr(errors.New("UNIQUE constraint failed")))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(fmt.Errorf("tx: %w", &pgconn.PgError{Code: "40001"})))
	assert.False(t, IsTransient(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsTransient(errors.New("Error 1213: Deadlock found")))
	assert.True(t, IsTransient(errors.New("database is locked")))
	assert.False(t, IsTransient(nil))
}

func TestSQLitePath(t *testing.T) {
	assert.Equal(t, "airlink.db", SQLitePath(Config{}))
	assert.Equal(t, "bookings.db", SQLitePath(Config{Name: "bookings"}))
	assert.Equal(t, ":memory:", SQLitePath(Config{Name: ":memory:"}))
}

func TestDialectRejectsUnknownType(t *testing.T) {
	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}
