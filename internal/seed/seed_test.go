package seed_test

import (
	"context"
	"testing"
	"time"

	couponrepo "github.com/smallbiznis/airlink/internal/coupon/repository"
	"github.com/smallbiznis/airlink/internal/seed"
	"github.com/smallbiznis/airlink/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDemoCouponsIsIdempotent(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := couponrepo.NewRepository(db)
	node := testutil.Node(t)
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	created, err := seed.EnsureDemoCoupons(context.Background(), repo, node, now)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = seed.EnsureDemoCoupons(context.Background(), repo, node, now)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	save10, err := repo.FindByCode(context.Background(), "SAVE10")
	require.NoError(t, err)
	require.NotNil(t, save10)
	assert.True(t, save10.Active)
	assert.Equal(t, "10", save10.DiscountValue.String())
	assert.Nil(t, save10.UsageLimit)
	assert.Nil(t, save10.RemainingUses())

	pct20, err := repo.FindByCode(context.Background(), "PCT20")
	require.NoError(t, err)
	require.NotNil(t, pct20)
	assert.Nil(t, pct20.UsageLimit)
}
