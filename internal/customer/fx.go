package customer

import (
	"github.com/quipuerp/quipu/internal/credit"
	"github.com/quipuerp/quipu/internal/customer/domain"
	"github.com/quipuerp/quipu/internal/customer/repository"
	"github.com/quipuerp/quipu/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(
		service.New,
		func(s *service.Service) domain.Service { return s },
		func(s *service.Service) credit.SnapshotStore { return s },
	),
)
