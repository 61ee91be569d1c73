package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadReadsStoreSettings(t *testing.T) {
	t.Setenv("STORE_CURRENCY", "usd")
	t.Setenv("STORE_CURRENCY_DECIMALS", "2")
	t.Setenv("RATE_LIMIT_COUPON_VALIDATE_BURST", "not-a-number")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()

	assert.Equal(t, "USD", cfg.Store.Currency)
	assert.Equal(t, int32(2), cfg.Store.CurrencyDecimals)
	assert.Equal(t, 10, cfg.RateLimit.CouponValidateBurst)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.Bootstrap.SeedDemoData)
}

func TestLoadClampsNegativeDecimals(t *testing.T) {
	t.Setenv("STORE_CURRENCY_DECIMALS", "-3")

	cfg := Load()

	assert.Equal(t, int32(0), cfg.Store.CurrencyDecimals)
}

func TestStaticStorefrontHolderFillsDefaults(t *testing.T) {
	holder := NewStaticStorefrontHolder(StorefrontConfig{CarrierName: "SkyJet"})

	got := holder.Get()
	assert.Equal(t, "SkyJet", got.CarrierName)
	assert.Equal(t, "AL", got.FlightPrefix)
	assert.NotEmpty(t, got.Instructions)
}

func TestValidateStorefrontConfig(t *testing.T) {
	assert.Error(t, validateStorefrontConfig(StorefrontConfig{}))
	assert.Error(t, validateStorefrontConfig(StorefrontConfig{CarrierName: "x", EmailSubject: "%s %s"}))
	assert.NoError(t, validateStorefrontConfig(DefaultStorefrontConfig()))
}

func TestNilStorefrontHolderReturnsDefaults(t *testing.T) {
	var holder *StorefrontHolder
	assert.Equal(t, DefaultStorefrontConfig().CarrierName, holder.Get().CarrierName)
}
