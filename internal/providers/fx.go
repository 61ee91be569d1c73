package providers

import (
	"github.com/smallbiznis/airlink/internal/providers/email"
	"github.com/smallbiznis/airlink/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
