package domain

import "errors"

var (
	ErrInvalidDiscountKind  = errors.New("invalid_discount_kind")
	ErrInvalidDiscountValue = errors.New("invalid_discount_value")
	ErrInvalidCode          = errors.New("invalid_code")
	ErrInvalidWindow        = errors.New("invalid_validity_window")
	ErrCorruptCoupon        = errors.New("corrupt_coupon")
)
