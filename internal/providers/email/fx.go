package email

import (
	"strings"

	"github.com/smallbiznis/airlink/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, storefront *config.StorefrontHolder, log *zap.Logger) Provider {
	if strings.TrimSpace(cfg.Email.SMTPHost) == "" || strings.TrimSpace(cfg.Email.SMTPFrom) == "" {
		log.Warn("smtp is not configured, boarding pass emails are discarded")
		return &NoOpProvider{}
	}
	emailCfg := Config{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		Username: cfg.Email.SMTPUsername,
		Password: cfg.Email.SMTPPassword,
		From:     cfg.Email.SMTPFrom,
		FromName: storefront.Get().CarrierName,
	}
	return NewSMTP(emailCfg)
}
