package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	coupondomain "github.com/smallbiznis/airlink/internal/coupon/domain"
	obscontext "github.com/smallbiznis/airlink/internal/observability/context"
)

type validateCouponRequest struct {
	Code          string           `json:"code"`
	Email         string           `json:"email"`
	PurchaseTotal *decimal.Decimal `json:"purchaseTotal"`
}

type applyCouponRequest struct {
	Code           string           `json:"code"`
	Email          string           `json:"email"`
	ReservationID  flexibleID       `json:"reservationId"`
	DiscountAmount *decimal.Decimal `json:"discountAmount"`
	OriginalAmount *decimal.Decimal `json:"originalAmount"`
	FinalAmount    *decimal.Decimal `json:"finalAmount"`
}

type couponView struct {
	Code  string      `json:"code"`
	Name  string      `json:"name"`
	Kind  string      `json:"kind"`
	Value json.Number `json:"value"`
}

type validateCouponResponse struct {
	Valid         bool        `json:"valid"`
	Message       string      `json:"message"`
	Coupon        couponView  `json:"coupon"`
	Discount      json.Number `json:"discount"`
	TotalOriginal json.Number `json:"totalOriginal"`
	TotalFinal    json.Number `json:"totalFinal"`
	Savings       json.Number `json:"savings"`
}

type activeCouponView struct {
	Code          string      `json:"code"`
	Name          string      `json:"name"`
	Kind          string      `json:"kind"`
	Discount      json.Number `json:"discount"`
	ValidUntil    string      `json:"validUntil"`
	RemainingUses *int64      `json:"remainingUses"`
}

func (s *Server) ValidateCoupon(c *gin.Context) {
	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	decision, err := s.couponSvc.Validate(c.Request.Context(), coupondomain.ValidateRequest{
		Code:          req.Code,
		Email:         req.Email,
		PurchaseTotal: req.PurchaseTotal,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if !decision.Accepted || decision.Quote == nil {
		status := http.StatusBadRequest
		if decision.Reason == coupondomain.ReasonNotFound {
			status = http.StatusNotFound
		}
		c.Set(obscontext.DecisionReasonKey, string(decision.Reason))
		c.JSON(status, gin.H{
			"valid":   false,
			"reason":  decision.Reason,
			"message": decision.Message,
		})
		return
	}

	quote := decision.Quote
	places := s.places()
	c.JSON(http.StatusOK, validateCouponResponse{
		Valid:   true,
		Message: decision.Message,
		Coupon: couponView{
			Code:  quote.Coupon.Code,
			Name:  quote.Coupon.Name,
			Kind:  string(quote.Coupon.Kind),
			Value: discountValue(quote.Coupon.Kind, quote.Coupon.Value, places),
		},
		Discount:      money(quote.Discount, places),
		TotalOriginal: money(quote.OriginalTotal, places),
		TotalFinal:    money(quote.FinalTotal, places),
		Savings:       money(quote.Savings(), places),
	})
}

func (s *Server) ApplyCoupon(c *gin.Context) {
	var req applyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if id := req.ReservationID.Int64(); id > 0 {
		c.Set(obscontext.ReservationIDKey, id)
	}

	decision, err := s.couponSvc.Redeem(c.Request.Context(), coupondomain.RedeemRequest{
		Code:           req.Code,
		Email:          req.Email,
		ReservationID:  req.ReservationID.Ptr(),
		DiscountAmount: req.DiscountAmount,
		OriginalAmount: req.OriginalAmount,
		FinalAmount:    req.FinalAmount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if !decision.Accepted {
		c.Set(obscontext.DecisionReasonKey, string(decision.Reason))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"reason":  decision.Reason,
			"message": decision.Message,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": decision.Message,
	})
}

func (s *Server) ListActiveCoupons(c *gin.Context) {
	items, err := s.couponSvc.ListActive(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	places := s.places()
	coupons := make([]activeCouponView, 0, len(items))
	for _, item := range items {
		coupons = append(coupons, activeCouponView{
			Code:          item.Code,
			Name:          item.Name,
			Kind:          string(item.Kind),
			Discount:      discountValue(item.Kind, item.Discount, places),
			ValidUntil:    item.ValidUntil.In(s.location).Format(dateOnlyLayout),
			RemainingUses: item.RemainingUses,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"coupons": coupons,
	})
}

// discountValue renders fixed amounts in the store's minor unit and
// percentages as written.
func discountValue(kind coupondomain.DiscountKind, value decimal.Decimal, places int32) json.Number {
	if kind == coupondomain.DiscountKindPercentage {
		return json.Number(value.String())
	}
	return money(value, places)
}
