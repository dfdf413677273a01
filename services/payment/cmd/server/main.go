package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/creatorhub/support-backend/pkg/logger"
	pkgmessaging "github.com/creatorhub/support-backend/pkg/messaging"
	handlers "github.com/creatorhub/support-backend/services/payment/internal/adapter/handler/http"
	"github.com/creatorhub/support-backend/services/payment/internal/config"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/service"
	"github.com/creatorhub/support-backend/services/payment/internal/infrastructure/database"
	"github.com/creatorhub/support-backend/services/payment/internal/infrastructure/geoip"
	grpcServer "github.com/creatorhub/support-backend/services/payment/internal/infrastructure/grpc"
	httpServer "github.com/creatorhub/support-backend/services/payment/internal/infrastructure/http"
	"github.com/creatorhub/support-backend/services/payment/internal/infrastructure/messaging"
	"github.com/creatorhub/support-backend/services/payment/internal/infrastructure/metrics"
	"github.com/creatorhub/support-backend/services/payment/internal/infrastructure/provider"
	"github.com/creatorhub/support-backend/services/payment/internal/infrastructure/routing"
	"github.com/creatorhub/support-backend/services/payment/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		FilePath:    cfg.Log.FilePath,
		Development: cfg.Log.Development,
	})
	if err != nil {
		zapLogger = logger.DefaultZapLogger()
		zapLogger.Warn("Invalid log configuration, using defaults", zap.Error(err))
	}
	defer func() { _ = zapLogger.Sync() }()

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	repos := database.NewRepositories(db, zapLogger)

	// Region table and payment method catalog
	table, err := routing.Load(cfg.Routing.File, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to load routing table", zap.Error(err))
	}

	// Event publisher
	var publisher usecase.EventPublisher = messaging.NoopPublisher{}
	if cfg.Redis.Addr != "" {
		redisClient, err := pkgmessaging.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
		publisher = messaging.NewEventPublisher(redisClient, cfg.Redis.Channel, zapLogger)
	} else {
		zapLogger.Info("Redis not configured, payment events are not published")
	}

	// GeoIP is optional; without it country comes from the token only
	var geo *geoip.Resolver
	if cfg.GeoIP.DatabasePath != "" {
		geo, err = geoip.Open(cfg.GeoIP.DatabasePath, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to open GeoIP database", zap.Error(err))
		}
		defer func() {
			if err := geo.Close(); err != nil {
				zapLogger.Error("Failed to close GeoIP database", zap.Error(err))
			}
		}()
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(registry)

	// Providers and usecases
	factory := provider.NewFactory(cfg, zapLogger)
	razorpayGateway := factory.Razorpay()
	commission := service.NewCommissionCalculator(cfg.Commission.Rate)

	stripeUsecase := usecase.NewStripeUsecase(factory.Stripe(), commission, repos.SupportPayment, recorder, zapLogger)
	razorpayUsecase := usecase.NewRazorpayUsecase(razorpayGateway, commission, repos.SupportPayment, publisher, recorder, zapLogger)
	supportUsecase := usecase.NewSupportUsecase(service.NewProviderSelector(table), stripeUsecase, razorpayUsecase, zapLogger)
	webhookUsecase := usecase.NewWebhookUsecase(cfg.Stripe.WebhookSecret, repos.SupportPayment, repos.WebhookEvent, publisher, recorder, zapLogger)

	h := &handlers.Handlers{
		Health:   handlers.NewHealthHandler(cfg.Service.Name, true, razorpayUsecase.Configured()),
		Stripe:   handlers.NewStripeHandler(stripeUsecase, zapLogger),
		Razorpay: handlers.NewRazorpayHandler(razorpayUsecase, zapLogger),
		Support:  handlers.NewSupportHandler(supportUsecase, geo, zapLogger),
		Webhook:  handlers.NewWebhookHandler(webhookUsecase, zapLogger),
	}

	// Initialize servers
	grpcSrv := grpcServer.NewServer(cfg, zapLogger)
	httpSrv := httpServer.NewServer(cfg, zapLogger, h, registry)

	go func() {
		if err := grpcSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start gRPC server", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	zapLogger.Info("Shutting down servers...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	if err := grpcSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
	}

	zapLogger.Info("Servers shut down successfully")
}
