package cache

import (
	"time"

	coupondomain "github.com/smallbiznis/airlink/internal/coupon/domain"
)

const (
	defaultActiveCouponsTTL = 30 * time.Second
	activeCouponsKey        = "active"
)

// ActiveCouponsCache holds the public active-coupon listing between redemptions.
type ActiveCouponsCache interface {
	Get() ([]coupondomain.ActiveCoupon, bool)
	Set(items []coupondomain.ActiveCoupon)
	Invalidate()
}

type activeCouponsCache struct {
	items Cache[string, []coupondomain.ActiveCoupon]
	ttl   time.Duration
}

// NewActiveCouponsCache returns a cache with the given TTL; non-positive values use the default.
func NewActiveCouponsCache(ttl time.Duration) ActiveCouponsCache {
	if ttl <= 0 {
		ttl = defaultActiveCouponsTTL
	}
	return &activeCouponsCache{
		items: NewTTLCache[string, []coupondomain.ActiveCoupon](),
		ttl:   ttl,
	}
}

func (c *activeCouponsCache) Get() ([]coupondomain.ActiveCoupon, bool) {
	items, ok := c.items.Get(activeCouponsKey)
	if !ok {
		return nil, false
	}
	return append([]coupondomain.ActiveCoupon(nil), items...), true
}

func (c *activeCouponsCache) Set(items []coupondomain.ActiveCoupon) {
	cloned := append([]coupondomain.ActiveCoupon(nil), items...)
	c.items.Set(activeCouponsKey, cloned, c.ttl)
}

func (c *activeCouponsCache) Invalidate() {
	c.items.Delete(activeCouponsKey)
}

// Disabled returns a cache that never stores anything.
func Disabled() ActiveCouponsCache { return disabledCache{} }

type disabledCache struct{}

func (disabledCache) Get() ([]coupondomain.ActiveCoupon, bool) { return nil, false }
func (disabledCache) Set([]coupondomain.ActiveCoupon)         {}
func (disabledCache) Invalidate()                             {}
