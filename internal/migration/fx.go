package migration

import (
	"github.com/quipuerp/quipu/internal/config"
	customerdomain "github.com/quipuerp/quipu/internal/customer/domain"
	notificationdomain "github.com/quipuerp/quipu/internal/notification/domain"
	productdomain "github.com/quipuerp/quipu/internal/product/domain"
	quotedomain "github.com/quipuerp/quipu/internal/quote/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Versioned SQL migrations run on postgres. Other dialects (local
		// sqlite, mysql) bootstrap from the models directly.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(
				&customerdomain.Customer{},
				&productdomain.Product{},
				&quotedomain.Document{},
				&quotedomain.Line{},
				&notificationdomain.Notification{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
