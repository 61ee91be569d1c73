package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type DiscountKind string

const (
	DiscountKindFixed      DiscountKind = "fixed"
	DiscountKindPercentage DiscountKind = "percentage"
)

var hundred = decimal.NewFromInt(100)

// Discount is either a FixedAmount or a Percentage.
type Discount interface {
	Kind() DiscountKind
	// Raw is the discount before capping and rounding.
	Raw(total decimal.Decimal) decimal.Decimal
	sealed()
}

type FixedAmount struct {
	Amount decimal.Decimal
}

func (FixedAmount) Kind() DiscountKind { return DiscountKindFixed }

func (f FixedAmount) Raw(decimal.Decimal) decimal.Decimal { return f.Amount }

func (FixedAmount) sealed() {}

// Percentage holds a rate in percent: 20 means 20%.
type Percentage struct {
	Rate decimal.Decimal
}

func (Percentage) Kind() DiscountKind { return DiscountKindPercentage }

func (p Percentage) Raw(total decimal.Decimal) decimal.Decimal {
	return total.Mul(p.Rate).Div(hundred)
}

func (Percentage) sealed() {}

func NewDiscount(kind DiscountKind, value decimal.Decimal) (Discount, error) {
	if value.IsNegative() {
		return nil, ErrInvalidDiscountValue
	}
	switch kind {
	case DiscountKindFixed:
		return FixedAmount{Amount: value}, nil
	case DiscountKindPercentage:
		if value.GreaterThan(hundred) {
			return nil, ErrInvalidDiscountValue
		}
		return Percentage{Rate: value}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDiscountKind, kind)
	}
}

// Apply rounds the raw discount to places decimal digits, half away from
// zero, then caps it at total. It returns the discount and the final total.
func Apply(d Discount, total decimal.Decimal, places int32) (decimal.Decimal, decimal.Decimal) {
	discount := d.Raw(total).Round(places)
	if discount.GreaterThan(total) {
		discount = total
	}
	return discount, total.Sub(discount)
}
