package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quipuerp/quipu/internal/config"
	"github.com/quipuerp/quipu/internal/credit"
	"github.com/quipuerp/quipu/internal/customer"
	customerdomain "github.com/quipuerp/quipu/internal/customer/domain"
	"github.com/quipuerp/quipu/internal/exchange"
	"github.com/quipuerp/quipu/internal/notification"
	notificationdomain "github.com/quipuerp/quipu/internal/notification/domain"
	"github.com/quipuerp/quipu/internal/notification/hub"
	"github.com/quipuerp/quipu/internal/observability"
	obslogger "github.com/quipuerp/quipu/internal/observability/logger"
	obsmetrics "github.com/quipuerp/quipu/internal/observability/metrics"
	obstracing "github.com/quipuerp/quipu/internal/observability/tracing"
	"github.com/quipuerp/quipu/internal/permission"
	"github.com/quipuerp/quipu/internal/pricing"
	"github.com/quipuerp/quipu/internal/product"
	productdomain "github.com/quipuerp/quipu/internal/product/domain"
	"github.com/quipuerp/quipu/internal/providers/pdf"
	"github.com/quipuerp/quipu/internal/quote"
	quotedomain "github.com/quipuerp/quipu/internal/quote/domain"
	"github.com/quipuerp/quipu/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	pricing.Module,
	credit.Module,
	exchange.Module,
	permission.Module,
	pdf.Module,
	customer.Module,
	product.Module,
	quote.Module,
	notification.Module,
	ratelimit.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterAPIRoutes() }),
	fx.Invoke(runHeartbeat),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, log *zap.Logger) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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

func runHeartbeat(lc fx.Lifecycle, h *hub.Hub) {
	stop := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go h.Heartbeat(30*time.Second, stop)
			return nil
		},
		OnStop: func(context.Context) error {
			close(stop)
			return nil
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	customerSvc     customerdomain.Service
	productSvc      productdomain.Service
	documentSvc     quotedomain.Service
	notificationSvc notificationdomain.Service
	permissionSvc   permission.Service
	exchangeSvc     *exchange.Service
	hub             *hub.Hub
	bucket          *ratelimit.TokenBucket
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	CustomerSvc     customerdomain.Service
	ProductSvc      productdomain.Service
	DocumentSvc     quotedomain.Service
	NotificationSvc notificationdomain.Service
	PermissionSvc   permission.Service
	ExchangeSvc     *exchange.Service
	Hub             *hub.Hub
	Bucket          *ratelimit.TokenBucket `optional:"true"`
	ObsMetrics      *obsmetrics.Metrics    `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("http.server"),
		customerSvc:     p.CustomerSvc,
		productSvc:      p.ProductSvc,
		documentSvc:     p.DocumentSvc,
		notificationSvc: p.NotificationSvc,
		permissionSvc:   p.PermissionSvc,
		exchangeSvc:     p.ExchangeSvc,
		hub:             p.Hub,
		bucket:          p.Bucket,
		obsMetrics:      p.ObsMetrics,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api", s.SessionFromHeaders())

	api.GET("/navigation", s.SessionRequired(), s.ResolveNavigation)

	// -------- Customers --------
	customers := api.Group("/customers", s.SessionRequired(), s.RequireModule(permission.ModuleCustomers))
	{
		customers.GET("", s.ListCustomers)
		customers.POST("", s.CreateCustomer)
		customers.GET("/:id", s.GetCustomerByID)
		customers.PATCH("/:id/credit", s.UpdateCustomerCredit)
	}

	// -------- Products --------
	products := api.Group("/products", s.SessionRequired(), s.RequireModule(permission.ModuleInventory))
	{
		products.GET("", s.ListProducts)
		products.POST("", s.CreateProduct)
		products.GET("/:id", s.GetProductByID)
		products.POST("/:id/stock", s.AdjustProductStock)
	}

	// -------- Quotes --------
	quotes := api.Group("/quotes", s.SessionRequired(), s.RequireModule(permission.ModuleQuotes))
	{
		quotes.GET("", s.ListQuotes)
		quotes.POST("", s.CreateQuote)
		quotes.GET("/:id", s.GetDocumentByID)
		quotes.PUT("/:id/lines", s.UpdateDocumentLines)
		quotes.POST("/:id/submit", s.SubmitDocument)
		quotes.POST("/:id/convert", s.ConvertQuote)
		quotes.GET("/:id/pdf", s.RenderQuotePDF)
	}

	// -------- Sales orders --------
	orders := api.Group("/orders", s.SessionRequired(), s.RequireModule(permission.ModuleOrders))
	{
		orders.GET("", s.ListOrders)
		orders.POST("", s.CreateOrder)
		orders.GET("/:id", s.GetDocumentByID)
		orders.PUT("/:id/lines", s.UpdateDocumentLines)
		orders.POST("/:id/submit", s.SubmitDocument)
	}

	// -------- Notifications --------
	notifications := api.Group("/notifications", s.SessionRequired(), s.RequireModule(permission.ModuleNotifications),
		ratelimit.PerUser(s.bucket, s.log, "notifications", 5, 20))
	{
		notifications.GET("", s.ListNotifications)
		notifications.POST("/:id/read", s.MarkNotificationRead)
		notifications.POST("/read-all", s.MarkAllNotificationsRead)
	}

	// Exchange lookups hit an external provider, so they sit behind the
	// per-user token bucket.
	api.GET("/exchange-rate", s.SessionRequired(), ratelimit.PerUser(s.bucket, s.log, "exchange", 1, 5), s.GetExchangeRate)

	s.engine.GET("/ws", s.SessionFromHeaders(), s.NotificationSocket)
}
