package domain

import "github.com/shopspring/decimal"

// Reason is a machine-readable rejection code.
type Reason string

const (
	ReasonMissingFields      Reason = "missing_fields"
	ReasonNotFound           Reason = "not_found"
	ReasonInactive           Reason = "inactive"
	ReasonNotYetValid        Reason = "not_yet_valid"
	ReasonExpired            Reason = "expired"
	ReasonExhausted          Reason = "exhausted"
	ReasonAlreadyUsed        Reason = "already_used"
	ReasonBelowMinimum       Reason = "below_minimum"
	ReasonNotFoundOrInactive Reason = "not_found_or_inactive"
)

// Quote is the price breakdown of an accepted coupon.
type Quote struct {
	Coupon        PublicCoupon
	Discount      decimal.Decimal
	OriginalTotal decimal.Decimal
	FinalTotal    decimal.Decimal
}

// Savings equals the discount.
func (q Quote) Savings() decimal.Decimal { return q.Discount }

// Decision is the outcome of validating or redeeming a coupon. Rejections are
// values, not errors.
type Decision struct {
	Accepted bool
	Reason   Reason
	Message  string
	Quote    *Quote
}

func Reject(reason Reason, message string) Decision {
	return Decision{Reason: reason, Message: message}
}

func Accept(message string, quote *Quote) Decision {
	return Decision{Accepted: true, Message: message, Quote: quote}
}
