package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// DefaultMaxRedemptionsPerUser applies when a coupon row carries no per-user cap.
const DefaultMaxRedemptionsPerUser = 1

type Coupon struct {
	ID   snowflake.ID `gorm:"primaryKey"`
	Code string       `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name *string      `gorm:"type:varchar(128)"`

	DiscountKind  DiscountKind    `gorm:"column:discount_kind;type:varchar(16);not null"`
	DiscountValue decimal.Decimal `gorm:"column:discount_value;type:numeric(12,2);not null"`

	MinimumPurchase       decimal.NullDecimal `gorm:"column:minimum_purchase;type:numeric(12,2)"`
	UsageLimit            *int64              `gorm:"column:usage_limit"`
	UsedCount             int64               `gorm:"column:used_count;not null;default:0"`
	MaxRedemptionsPerUser int64               `gorm:"column:max_redemptions_per_user;not null;default:1"`

	ValidFrom  time.Time `gorm:"column:valid_from;not null"`
	ValidUntil time.Time `gorm:"column:valid_until;not null"`
	Active     bool      `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Coupon) TableName() string { return "coupons" }

// Discount returns the typed discount rule stored on the row.
func (c *Coupon) Discount() (Discount, error) {
	return NewDiscount(c.DiscountKind, c.DiscountValue)
}

// PerUserCap returns the effective per-email redemption cap.
func (c *Coupon) PerUserCap() int64 {
	if c.MaxRedemptionsPerUser <= 0 {
		return DefaultMaxRedemptionsPerUser
	}
	return c.MaxRedemptionsPerUser
}

// RemainingUses is nil for coupons without a usage limit.
func (c *Coupon) RemainingUses() *int64 {
	if c.UsageLimit == nil {
		return nil
	}
	remaining := *c.UsageLimit - c.UsedCount
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

func (c *Coupon) Public() PublicCoupon {
	name := c.Code
	if c.Name != nil && strings.TrimSpace(*c.Name) != "" {
		name = strings.TrimSpace(*c.Name)
	}
	return PublicCoupon{
		Code:  c.Code,
		Name:  name,
		Kind:  c.DiscountKind,
		Value: c.DiscountValue,
	}
}

// Redemption is the immutable record of one applied coupon.
type Redemption struct {
	ID             snowflake.ID    `gorm:"primaryKey"`
	CouponID       snowflake.ID    `gorm:"column:coupon_id;not null"`
	Email          string          `gorm:"type:varchar(255);not null"`
	ReservationID  *int64          `gorm:"column:reservation_id"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(12,2);not null"`
	OriginalAmount decimal.Decimal `gorm:"column:original_amount;type:numeric(12,2);not null"`
	FinalAmount    decimal.Decimal `gorm:"column:final_amount;type:numeric(12,2);not null"`
	RedeemedAt     time.Time       `gorm:"column:redeemed_at;not null"`
}

func (Redemption) TableName() string { return "coupon_redemptions" }

type ReservationCoupon struct {
	ReservationID int64           `gorm:"column:reservation_id;primaryKey"`
	CouponID      snowflake.ID    `gorm:"column:coupon_id;primaryKey"`
	AppliedAmount decimal.Decimal `gorm:"column:applied_amount;type:numeric(12,2);not null"`
	CreatedAt     time.Time       `gorm:"not null"`
}

func (ReservationCoupon) TableName() string { return "reservation_coupons" }

// PublicCoupon is the subset of a coupon shown to shoppers.
type PublicCoupon struct {
	Code  string
	Name  string
	Kind  DiscountKind
	Value decimal.Decimal
}

// ActiveCoupon is one entry of the public active-coupon listing.
type ActiveCoupon struct {
	Code          string
	Name          string
	Kind          DiscountKind
	Discount      decimal.Decimal
	ValidUntil    time.Time
	RemainingUses *int64
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
