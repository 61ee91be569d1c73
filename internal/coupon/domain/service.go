package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type Service interface {
	Validate(ctx context.Context, req ValidateRequest) (Decision, error)
	Redeem(ctx context.Context, req RedeemRequest) (Decision, error)
	ListActive(ctx context.Context) ([]ActiveCoupon, error)
}

type ValidateRequest struct {
	Code          string
	Email         string
	PurchaseTotal *decimal.Decimal
}

type RedeemRequest struct {
	Code           string
	Email          string
	ReservationID  *int64
	DiscountAmount *decimal.Decimal
	OriginalAmount *decimal.Decimal
	FinalAmount    *decimal.Decimal
}
