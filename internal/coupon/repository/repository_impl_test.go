package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	coupondomain "github.com/smallbiznis/airlink/internal/coupon/domain"
	"github.com/smallbiznis/airlink/internal/testutil"
	"github.com/smallbiznis/airlink/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repoNow = time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)

func newCoupon(id int64, code string) *coupondomain.Coupon {
	return &coupondomain.Coupon{
		ID:                    snowflake.ID(id),
		Code:                  code,
		DiscountKind:          coupondomain.DiscountKindFixed,
		DiscountValue:         decimal.NewFromInt(10),
		MaxRedemptionsPerUser: 1,
		ValidFrom:             repoNow.AddDate(0, 0, -7),
		ValidUntil:            repoNow.AddDate(0, 0, 7),
		Active:                true,
		CreatedAt:             repoNow,
		UpdatedAt:             repoNow,
	}
}

func TestCreateNormalizesCode(t *testing.T) {
	conn := testutil.OpenSQLite(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	c := newCoupon(1, "  save10 ")
	require.NoError(t, repo.Create(ctx, c))
	assert.Equal(t, "SAVE10", c.Code)

	var stored string
	require.NoError(t, conn.Raw(`SELECT code FROM coupons WHERE id = ?`, 1).Scan(&stored).Error)
	assert.Equal(t, "SAVE10", stored)
}

func TestFindByCodeMatchesLowercaseRows(t *testing.T) {
	conn := testutil.OpenSQLite(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	require.NoError(t, conn.Exec(
		`INSERT INTO coupons (id, code, discount_kind, discount_value, used_count, max_redemptions_per_user,
			valid_from, valid_until, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, 1, ?, ?, ?, ?, ?)`,
		7, "save10", string(coupondomain.DiscountKindFixed), decimal.NewFromInt(10),
		repoNow.AddDate(0, 0, -7), repoNow.AddDate(0, 0, 7), true, repoNow, repoNow,
	).Error)

	for _, code := range []string{"SAVE10", "save10", " Save10 "} {
		c, err := repo.FindByCode(ctx, code)
		require.NoError(t, err, code)
		require.NotNil(t, c, code)
		assert.Equal(t, snowflake.ID(7), c.ID)

		active, err := repo.FindActiveByCode(ctx, code)
		require.NoError(t, err, code)
		require.NotNil(t, active, code)
	}
}

func TestCreateRejectsCodesDifferingOnlyInCase(t *testing.T) {
	conn := testutil.OpenSQLite(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newCoupon(1, "SAVE10")))

	err := repo.Create(ctx, newCoupon(2, "save10"))
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKeyErr(err))

	// Rows written outside Create are still covered by the index.
	err = conn.Exec(
		`INSERT INTO coupons (id, code, discount_kind, discount_value, used_count, max_redemptions_per_user,
			valid_from, valid_until, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, 1, ?, ?, ?, ?, ?)`,
		3, "Save10", string(coupondomain.DiscountKindFixed), decimal.NewFromInt(10),
		repoNow, repoNow.AddDate(0, 0, 7), true, repoNow, repoNow,
	).Error
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKeyErr(err))
}
