package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	coupondomain "github.com/smallbiznis/airlink/internal/coupon/domain"
	"gorm.io/gorm"
)

const couponColumns = `id, code, name, discount_kind, discount_value, minimum_purchase, usage_limit,
		used_count, max_redemptions_per_user, valid_from, valid_until, active, created_at, updated_at`

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) coupondomain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) coupondomain.Repository {
	return &repository{db: tx}
}

// Create stores the code in its normalized form.
func (r *repository) Create(ctx context.Context, c *coupondomain.Coupon) error {
	c.Code = coupondomain.NormalizeCode(c.Code)
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO coupons (
			id, code, name, discount_kind, discount_value, minimum_purchase, usage_limit,
			used_count, max_redemptions_per_user, valid_from, valid_until, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.Code,
		c.Name,
		string(c.DiscountKind),
		c.DiscountValue,
		c.MinimumPurchase,
		c.UsageLimit,
		c.UsedCount,
		c.MaxRedemptionsPerUser,
		c.ValidFrom,
		c.ValidUntil,
		c.Active,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repository) FindByCode(ctx context.Context, code string) (*coupondomain.Coupon, error) {
	var c coupondomain.Coupon
	err := r.db.WithContext(ctx).Raw(
		`SELECT `+couponColumns+`
		 FROM coupons
		 WHERE UPPER(code) = ?
		 LIMIT 1`,
		coupondomain.NormalizeCode(code),
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repository) FindActiveByCode(ctx context.Context, code string) (*coupondomain.Coupon, error) {
	var c coupondomain.Coupon
	err := r.db.WithContext(ctx).Raw(
		`SELECT `+couponColumns+`
		 FROM coupons
		 WHERE UPPER(code) = ? AND active = ?
		 LIMIT 1`,
		coupondomain.NormalizeCode(code),
		true,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repository) ListActive(ctx context.Context, endsOnOrAfter time.Time) ([]coupondomain.Coupon, error) {
	var items []coupondomain.Coupon
	err := r.db.WithContext(ctx).Raw(
		`SELECT `+couponColumns+`
		 FROM coupons
		 WHERE active = ? AND valid_until >= ?
		 ORDER BY discount_value DESC, code ASC`,
		true,
		endsOnOrAfter,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CountRedemptions(ctx context.Context, couponID snowflake.ID, email string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_id = ? AND email = ?`,
		couponID,
		email,
	).Scan(&count).Error
	return count, err
}

func (r *repository) InsertRedemption(ctx context.Context, red *coupondomain.Redemption) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO coupon_redemptions (
			id, coupon_id, email, reservation_id, discount_amount, original_amount, final_amount, redeemed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		red.ID,
		red.CouponID,
		red.Email,
		red.ReservationID,
		red.DiscountAmount,
		red.OriginalAmount,
		red.FinalAmount,
		red.RedeemedAt,
	).Error
}

func (r *repository) IncrementUsage(ctx context.Context, couponID snowflake.ID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE coupons
		 SET used_count = used_count + 1, updated_at = ?
		 WHERE id = ? AND (usage_limit IS NULL OR used_count < usage_limit)`,
		now,
		couponID,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) InsertReservationLink(ctx context.Context, link *coupondomain.ReservationCoupon) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO reservation_coupons (reservation_id, coupon_id, applied_amount, created_at)
		 VALUES (?, ?, ?, ?)`,
		link.ReservationID,
		link.CouponID,
		link.AppliedAmount,
		link.CreatedAt,
	).Error
}
