package coupon

import (
	"time"

	"github.com/smallbiznis/airlink/internal/cache"
	"github.com/smallbiznis/airlink/internal/config"
	"github.com/smallbiznis/airlink/internal/coupon/repository"
	"github.com/smallbiznis/airlink/internal/coupon/service"
	"go.uber.org/fx"
)

var Module = fx.Module("coupon.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(provideActiveCouponsCache),
	fx.Provide(service.NewService),
)

func provideActiveCouponsCache(cfg config.Config) cache.ActiveCouponsCache {
	ttl := cfg.Store.ActiveCouponsCacheTTLSeconds
	if ttl < 0 {
		return cache.Disabled()
	}
	return cache.NewActiveCouponsCache(time.Duration(ttl) * time.Second)
}
