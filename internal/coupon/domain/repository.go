package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, coupon *Coupon) error
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	FindActiveByCode(ctx context.Context, code string) (*Coupon, error)
	ListActive(ctx context.Context, endsOnOrAfter time.Time) ([]Coupon, error)

	CountRedemptions(ctx context.Context, couponID snowflake.ID, email string) (int64, error)
	InsertRedemption(ctx context.Context, redemption *Redemption) error
	// IncrementUsage bumps used_count unless the usage limit is reached.
	// It reports false when no row was updated.
	IncrementUsage(ctx context.Context, couponID snowflake.ID, now time.Time) (bool, error)
	InsertReservationLink(ctx context.Context, link *ReservationCoupon) error
}
