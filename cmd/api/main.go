package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chokistore/backend/api/routes"
	"github.com/chokistore/backend/internal/cart"
	"github.com/chokistore/backend/internal/checkout"
	"github.com/chokistore/backend/internal/landings"
	"github.com/chokistore/backend/internal/ledger"
	"github.com/chokistore/backend/internal/notifications"
	"github.com/chokistore/backend/internal/orders"
	"github.com/chokistore/backend/internal/pricing"
	product "github.com/chokistore/backend/internal/products"
	"github.com/chokistore/backend/internal/promotions"
	"github.com/chokistore/backend/internal/users"
	"github.com/chokistore/backend/pkg/config"
	"github.com/chokistore/backend/pkg/db"
	"github.com/chokistore/backend/pkg/instance"
	"github.com/chokistore/backend/pkg/logger"
	"github.com/chokistore/backend/pkg/metrics"
	"github.com/chokistore/backend/pkg/migrate"
	"github.com/chokistore/backend/pkg/outbox"
	"github.com/chokistore/backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	services, err := buildServices(cfg, logg, dbClient, redisClient, metrics.NewShopMetrics(prometheus.DefaultRegisterer))
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":         cfg.App.Env,
		"addr":        addr,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, prometheus.DefaultGatherer, services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server shutting down gracefully")
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, shopMetrics *metrics.ShopMetrics) (routes.Services, error) {
	conn := dbClient.DB()
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)

	productRepo := product.NewRepository(conn)
	productService, err := product.NewService(productRepo)
	if err != nil {
		return routes.Services{}, err
	}

	usersRepo := users.NewRepository(conn)
	usersService, err := users.NewService(usersRepo)
	if err != nil {
		return routes.Services{}, err
	}

	params := promotions.ServiceParams{
		Repo:    promotions.NewRepository(conn),
		Logger:  logg,
		Metrics: shopMetrics,
	}
	if cfg.FeatureFlags.PromotionsCache {
		params.Cache = redisClient
		params.CacheTTL = cfg.Cache.PromotionsTTL
	}
	promotionsService, err := promotions.NewService(params)
	if err != nil {
		return routes.Services{}, err
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(conn), emitter, shopMetrics)
	if err != nil {
		return routes.Services{}, err
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(conn), emitter, cfg.Loyalty.NotificationTTL)
	if err != nil {
		return routes.Services{}, err
	}

	policy := orders.Policy{
		Pricing:           pricing.Policy{PointsPerCurrencyUnit: cfg.Loyalty.PointsPerCurrencyUnit},
		HistoryLimit:      cfg.Loyalty.HistoryLimit,
		LateCancelWindow:  cfg.Loyalty.LateCancelWindow,
		LateCancelPenalty: cfg.Loyalty.LateCancelPenalty,
	}
	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:          orders.NewRepository(conn),
		Tx:            dbClient,
		Outbox:        emitter,
		Ledger:        ledgerService,
		Notifications: notificationsService,
		Profiles:      usersRepo,
		Products:      productRepo,
		Policy:        policy,
		Metrics:       shopMetrics,
		Logger:        logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	resolver, err := cart.NewResolver(productService)
	if err != nil {
		return routes.Services{}, err
	}
	checkoutService, err := checkout.NewService(resolver, promotionsService, ordersService, policy.Pricing)
	if err != nil {
		return routes.Services{}, err
	}

	landingsService, err := landings.NewService(landings.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Products:      productService,
		Promotions:    promotionsService,
		Users:         usersService,
		Checkout:      checkoutService,
		Orders:        ordersService,
		Ledger:        ledgerService,
		Notifications: notificationsService,
		Landings:      landingsService,
	}, nil
}
