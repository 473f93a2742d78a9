package notification

import (
	"github.com/quipuerp/quipu/internal/notification/hub"
	"github.com/quipuerp/quipu/internal/notification/repository"
	"github.com/quipuerp/quipu/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(hub.New),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
