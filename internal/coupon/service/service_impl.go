package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/airlink/internal/cache"
	"github.com/smallbiznis/airlink/internal/clock"
	"github.com/smallbiznis/airlink/internal/config"
	coupondomain "github.com/smallbiznis/airlink/internal/coupon/domain"
	"github.com/smallbiznis/airlink/internal/observability/logger"
	"github.com/smallbiznis/airlink/internal/observability/metrics"
	"github.com/smallbiznis/airlink/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errRedeemRejected = errors.New("redeem_rejected")

type serviceParams struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    coupondomain.Repository
	Clock   clock.Clock
	Cfg     config.Config
	Cache   cache.ActiveCouponsCache
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    coupondomain.Repository
	clock   clock.Clock
	policy  Policy
	cache   cache.ActiveCouponsCache
	metrics *metrics.Metrics
}

func NewService(p serviceParams) coupondomain.Service {
	log := p.Log.Named("coupon.service")

	activeCache := p.Cache
	if activeCache == nil {
		activeCache = cache.Disabled()
	}

	return &Service{
		db:      p.DB,
		log:     log,
		genID:   p.GenID,
		repo:    p.Repo,
		clock:   p.Clock,
		policy:  PolicyFromConfig(p.Cfg.Store, log),
		cache:   activeCache,
		metrics: p.Metrics,
	}
}

// PolicyFromConfig falls back to UTC when the store timezone cannot be loaded.
func PolicyFromConfig(cfg config.StoreConfig, log *zap.Logger) Policy {
	loc := time.UTC
	if name := strings.TrimSpace(cfg.Timezone); name != "" {
		loaded, err := time.LoadLocation(name)
		if err != nil {
			if log != nil {
				log.Warn("unknown store timezone, using UTC", zap.String("timezone", name), zap.Error(err))
			}
		} else {
			loc = loaded
		}
	}
	return Policy{
		Currency: strings.ToUpper(strings.TrimSpace(cfg.Currency)),
		Places:   cfg.CurrencyDecimals,
		Location: loc,
	}
}

func (s *Service) Validate(ctx context.Context, req coupondomain.ValidateRequest) (coupondomain.Decision, error) {
	code := coupondomain.NormalizeCode(req.Code)
	email := coupondomain.NormalizeEmail(req.Email)
	if code == "" || email == "" || req.PurchaseTotal == nil || req.PurchaseTotal.IsNegative() {
		return s.validationResult(ctx, coupondomain.Reject(coupondomain.ReasonMissingFields,
			"Missing required fields (code, email, purchaseTotal)")), nil
	}

	// Totals are quoted in the store's minor unit.
	total := req.PurchaseTotal.Round(s.policy.Places)

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return coupondomain.Decision{}, fmt.Errorf("find coupon: %w", err)
	}

	var priorUses int64
	if coupon != nil {
		priorUses, err = s.repo.CountRedemptions(ctx, coupon.ID, email)
		if err != nil {
			return coupondomain.Decision{}, fmt.Errorf("count redemptions: %w", err)
		}
	}

	decision, err := Evaluate(coupon, priorUses, total, s.now(), s.policy)
	if err != nil {
		logger.WithContext(ctx, s.log).Error("stored coupon cannot be evaluated",
			zap.String("code", code),
			zap.Error(err),
		)
		return coupondomain.Decision{}, err
	}
	return s.validationResult(ctx, decision), nil
}

func (s *Service) Redeem(ctx context.Context, req coupondomain.RedeemRequest) (coupondomain.Decision, error) {
	code := coupondomain.NormalizeCode(req.Code)
	email := coupondomain.NormalizeEmail(req.Email)
	if code == "" || email == "" || req.DiscountAmount == nil || req.OriginalAmount == nil || req.FinalAmount == nil {
		return s.redemptionResult(ctx, coupondomain.Reject(coupondomain.ReasonMissingFields, "Missing required fields")), nil
	}

	now := s.now()
	var decision coupondomain.Decision
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		coupon, err := repo.FindActiveByCode(ctx, code)
		if err != nil {
			return fmt.Errorf("find coupon: %w", err)
		}
		if coupon == nil {
			decision = coupondomain.Reject(coupondomain.ReasonNotFoundOrInactive, "Coupon not found or inactive")
			return errRedeemRejected
		}

		redemption := &coupondomain.Redemption{
			ID:             s.genID.Generate(),
			CouponID:       coupon.ID,
			Email:          email,
			ReservationID:  req.ReservationID,
			DiscountAmount: *req.DiscountAmount,
			OriginalAmount: *req.OriginalAmount,
			FinalAmount:    *req.FinalAmount,
			RedeemedAt:     now,
		}
		if err := repo.InsertRedemption(ctx, redemption); err != nil {
			return fmt.Errorf("insert redemption: %w", err)
		}

		updated, err := repo.IncrementUsage(ctx, coupon.ID, now)
		if err != nil {
			return fmt.Errorf("increment usage: %w", err)
		}
		if !updated {
			decision = coupondomain.Reject(coupondomain.ReasonExhausted, "This coupon has no uses left")
			return errRedeemRejected
		}

		if req.ReservationID != nil {
			s.linkReservation(ctx, tx, &coupondomain.ReservationCoupon{
				ReservationID: *req.ReservationID,
				CouponID:      coupon.ID,
				AppliedAmount: *req.DiscountAmount,
				CreatedAt:     now,
			})
		}

		decision = coupondomain.Accept("Coupon applied", nil)
		return nil
	})
	if errors.Is(err, errRedeemRejected) {
		return s.redemptionResult(ctx, decision), nil
	}
	if err != nil {
		return coupondomain.Decision{}, err
	}

	s.cache.Invalidate()
	return s.redemptionResult(ctx, decision), nil
}

// linkReservation runs inside a savepoint so a missing or rejecting link
// table leaves the surrounding redemption intact.
func (s *Service) linkReservation(ctx context.Context, tx *gorm.DB, link *coupondomain.ReservationCoupon) {
	err := tx.Transaction(func(sp *gorm.DB) error {
		return s.repo.WithTx(sp).InsertReservationLink(ctx, link)
	})
	if err != nil {
		logger.WithContext(ctx, s.log).Warn("reservation coupon link skipped",
			zap.Int64("reservation_id", link.ReservationID),
			zap.String("coupon_id", link.CouponID.String()),
			zap.Bool("missing_table", db.IsMissingTableErr(err)),
			zap.Error(err),
		)
	}
}

func (s *Service) ListActive(ctx context.Context) ([]coupondomain.ActiveCoupon, error) {
	if items, ok := s.cache.Get(); ok {
		s.metrics.RecordActiveCouponsCache(ctx, "hit")
		return items, nil
	}
	s.metrics.RecordActiveCouponsCache(ctx, "miss")

	rows, err := s.repo.ListActive(ctx, s.startOfToday())
	if err != nil {
		return nil, fmt.Errorf("list active coupons: %w", err)
	}

	items := make([]coupondomain.ActiveCoupon, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		public := row.Public()
		items = append(items, coupondomain.ActiveCoupon{
			Code:          row.Code,
			Name:          public.Name,
			Kind:          row.DiscountKind,
			Discount:      row.DiscountValue,
			ValidUntil:    row.ValidUntil,
			RemainingUses: row.RemainingUses(),
		})
	}

	s.cache.Set(items)
	return items, nil
}

func (s *Service) Policy() Policy { return s.policy }

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *Service) startOfToday() time.Time {
	local := s.clock.Now().In(s.policy.location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location()).UTC()
}

func (s *Service) validationResult(ctx context.Context, d coupondomain.Decision) coupondomain.Decision {
	s.metrics.RecordCouponValidation(ctx, string(d.Reason))
	if !d.Accepted {
		logger.WithContext(ctx, s.log).Info("coupon rejected",
			zap.String("reason", string(d.Reason)),
		)
	}
	return d
}

func (s *Service) redemptionResult(ctx context.Context, d coupondomain.Decision) coupondomain.Decision {
	s.metrics.RecordCouponRedemption(ctx, string(d.Reason))
	logger.WithContext(ctx, s.log).Info("coupon redemption",
		zap.Bool("accepted", d.Accepted),
		zap.String("reason", string(d.Reason)),
	)
	return d
}
