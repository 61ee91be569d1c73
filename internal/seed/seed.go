package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	coupondomain "github.com/smallbiznis/airlink/internal/coupon/domain"
	"github.com/smallbiznis/airlink/pkg/db"
)

type demoCoupon struct {
	code  string
	name  string
	kind  coupondomain.DiscountKind
	value int64
}

func demoCoupons() []demoCoupon {
	return []demoCoupon{
		{code: "SAVE10", name: "Save 10", kind: coupondomain.DiscountKindFixed, value: 10},
		{code: "PCT20", name: "20% off", kind: coupondomain.DiscountKindPercentage, value: 20},
	}
}

// EnsureDemoCoupons inserts the demo coupons that do not exist yet and
// returns how many were created.
func EnsureDemoCoupons(ctx context.Context, repo coupondomain.Repository, node *snowflake.Node, now time.Time) (int, error) {
	if repo == nil || node == nil {
		return 0, errors.New("seed repository and id generator are required")
	}

	now = now.UTC()
	created := 0
	for _, demo := range demoCoupons() {
		existing, err := repo.FindByCode(ctx, demo.code)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}

		name := demo.name
		coupon := &coupondomain.Coupon{
			ID:                    node.Generate(),
			Code:                  demo.code,
			Name:                  &name,
			DiscountKind:          demo.kind,
			DiscountValue:         decimal.NewFromInt(demo.value),
			MaxRedemptionsPerUser: coupondomain.DefaultMaxRedemptionsPerUser,
			ValidFrom:             now.Add(-24 * time.Hour),
			ValidUntil:            now.AddDate(1, 0, 0),
			Active:                true,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		if err := repo.Create(ctx, coupon); err != nil {
			if db.IsDuplicateKeyErr(err) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}
