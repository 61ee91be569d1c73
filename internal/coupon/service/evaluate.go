package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	coupondomain "github.com/smallbiznis/airlink/internal/coupon/domain"
)

const messageDateLayout = "2006-01-02"

// Policy carries the storefront settings that shape a decision.
type Policy struct {
	Currency string
	// Places is the number of minor-unit digits discounts are rounded to.
	Places   int32
	Location *time.Location
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func (p Policy) formatMoney(amount decimal.Decimal) string {
	formatted := amount.StringFixed(p.Places)
	if p.Currency == "" {
		return formatted
	}
	return formatted + " " + p.Currency
}

// Evaluate decides whether coupon applies to total at now. priorUses is the
// number of earlier redemptions by the same email. It performs no I/O.
// A stored discount that cannot be interpreted is an error, not a rejection.
func Evaluate(coupon *coupondomain.Coupon, priorUses int64, total decimal.Decimal, now time.Time, policy Policy) (coupondomain.Decision, error) {
	if coupon == nil {
		return coupondomain.Reject(coupondomain.ReasonNotFound, "Coupon code is not valid"), nil
	}
	rule, err := coupon.Discount()
	if err != nil {
		return coupondomain.Decision{}, fmt.Errorf("%w: coupon %s: %v", coupondomain.ErrCorruptCoupon, coupon.ID, err)
	}
	return evaluateRules(coupon, rule, priorUses, total, now, policy), nil
}

func evaluateRules(coupon *coupondomain.Coupon, rule coupondomain.Discount, priorUses int64, total decimal.Decimal, now time.Time, policy Policy) coupondomain.Decision {
	if !coupon.Active {
		return coupondomain.Reject(coupondomain.ReasonInactive, "This coupon is no longer available")
	}
	if now.Before(coupon.ValidFrom) {
		return coupondomain.Reject(coupondomain.ReasonNotYetValid,
			fmt.Sprintf("This coupon is valid from %s", coupon.ValidFrom.In(policy.location()).Format(messageDateLayout)))
	}
	if now.After(coupon.ValidUntil) {
		return coupondomain.Reject(coupondomain.ReasonExpired,
			fmt.Sprintf("This coupon expired on %s", coupon.ValidUntil.In(policy.location()).Format(messageDateLayout)))
	}
	if coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit {
		return coupondomain.Reject(coupondomain.ReasonExhausted, "This coupon has no uses left")
	}
	if priorUses >= coupon.PerUserCap() {
		return coupondomain.Reject(coupondomain.ReasonAlreadyUsed, "You have already used this coupon")
	}
	if coupon.MinimumPurchase.Valid && total.LessThan(coupon.MinimumPurchase.Decimal) {
		return coupondomain.Reject(coupondomain.ReasonBelowMinimum,
			fmt.Sprintf("This coupon requires a minimum purchase of %s", policy.formatMoney(coupon.MinimumPurchase.Decimal)))
	}

	discount, final := coupondomain.Apply(rule, total, policy.Places)
	return coupondomain.Accept(
		fmt.Sprintf("Coupon %s applied", coupon.Code),
		&coupondomain.Quote{
			Coupon:        coupon.Public(),
			Discount:      discount,
			OriginalTotal: total,
			FinalTotal:    final,
		},
	)
}
