package migration

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/airlink/internal/clock"
	"github.com/smallbiznis/airlink/internal/config"
	coupondomain "github.com/smallbiznis/airlink/internal/coupon/domain"
	"github.com/smallbiznis/airlink/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type migrateParams struct {
	fx.In

	DB      *gorm.DB
	Cfg     config.Config
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Coupons coupondomain.Repository
}

var Module = fx.Module("migrations",
	fx.Invoke(func(p migrateParams) error {
		if err := RunMigrations(p.DB, p.Cfg.DBType); err != nil {
			return err
		}
		p.Log.Info("database schema is up to date", zap.String("type", p.Cfg.DBType))

		if !p.Cfg.Bootstrap.SeedDemoData {
			return nil
		}
		created, err := seed.EnsureDemoCoupons(context.Background(), p.Coupons, p.GenID, p.Clock.Now())
		if err != nil {
			return err
		}
		if created > 0 {
			p.Log.Info("demo coupons seeded", zap.Int("count", created))
		}
		return nil
	}),
)
