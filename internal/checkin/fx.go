package checkin

import (
	"github.com/smallbiznis/airlink/internal/checkin/repository"
	"github.com/smallbiznis/airlink/internal/checkin/service"
	"go.uber.org/fx"
)

var Module = fx.Module("checkin.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
