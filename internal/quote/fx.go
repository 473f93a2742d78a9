package quote

import (
	"github.com/quipuerp/quipu/internal/quote/repository"
	"github.com/quipuerp/quipu/internal/quote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quote.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
