package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/airlink/internal/checkin"
	checkindomain "github.com/smallbiznis/airlink/internal/checkin/domain"
	"github.com/smallbiznis/airlink/internal/config"
	"github.com/smallbiznis/airlink/internal/coupon"
	coupondomain "github.com/smallbiznis/airlink/internal/coupon/domain"
	"github.com/smallbiznis/airlink/internal/observability"
	obsmiddleware "github.com/smallbiznis/airlink/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/airlink/internal/observability/metrics"
	obstracing "github.com/smallbiznis/airlink/internal/observability/tracing"
	"github.com/smallbiznis/airlink/internal/providers"
	"github.com/smallbiznis/airlink/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	coupon.Module,
	checkin.Module,
	providers.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if httpMetrics != nil {
		r.Use(httpMetrics.GinMiddleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if httpMetrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(httpMetrics.Registry(), promhttp.HandlerOpts{})))
	}

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	couponSvc     coupondomain.Service
	checkinSvc    checkindomain.Service
	couponLimiter *ratelimit.CouponValidateLimiter
	obsMetrics    *obsmetrics.Metrics
	location      *time.Location
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	CouponSvc     coupondomain.Service
	CheckinSvc    checkindomain.Service
	CouponLimiter *ratelimit.CouponValidateLimiter `optional:"true"`
	ObsMetrics    *obsmetrics.Metrics              `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	loc := time.UTC
	if name := strings.TrimSpace(p.Cfg.Store.Timezone); name != "" {
		if loaded, err := time.LoadLocation(name); err == nil {
			loc = loaded
		}
	}

	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		couponSvc:     p.CouponSvc,
		checkinSvc:    p.CheckinSvc,
		couponLimiter: p.CouponLimiter,
		obsMetrics:    p.ObsMetrics,
		location:      loc,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Coupons --------
	api.POST("/coupons/validate", s.CouponValidateRateLimit(), s.ValidateCoupon)
	api.POST("/coupons/apply", s.ApplyCoupon)
	api.GET("/coupons/active", s.ListActiveCoupons)

	// -------- Check-in --------
	api.POST("/checkin/confirm", s.ConfirmCheckIn)
	api.GET("/checkin/boarding-pass/:reservationId", s.DownloadBoardingPass)
	api.POST("/checkin/send-boarding-pass", s.SendBoardingPass)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}

func (s *Server) places() int32 {
	return s.cfg.Store.CurrencyDecimals
}
