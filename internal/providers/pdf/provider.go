package pdf

import (
	"context"
	"io"

	"go.uber.org/fx"
)

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)

type Provider interface {
	GenerateBoardingPass(ctx context.Context, data BoardingPassData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateBoardingPass(ctx context.Context, data BoardingPassData) (io.Reader, error) {
	return nil, nil
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}
