package product

import (
	"github.com/quipuerp/quipu/internal/product/repository"
	"github.com/quipuerp/quipu/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
