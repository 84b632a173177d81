package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/jvegav/EcoTrade/internal/api/http"
	"github.com/jvegav/EcoTrade/internal/api/http/handlers"
	"github.com/jvegav/EcoTrade/internal/auth"
	"github.com/jvegav/EcoTrade/internal/config"
	"github.com/jvegav/EcoTrade/internal/events"
	"github.com/jvegav/EcoTrade/internal/observability"
	"github.com/jvegav/EcoTrade/internal/persistence"
	"github.com/jvegav/EcoTrade/internal/repository"
	"github.com/jvegav/EcoTrade/internal/service"
	"github.com/jvegav/EcoTrade/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var userRepo repository.UserRepository
	var productRepo repository.ProductRepository
	if pool := pg.PoolHandle(); pool != nil {
		userRepo = repository.NewUserRepository(pool)
		productRepo = repository.NewProductRepository(pool)
	} else {
		userRepo = repository.NewInMemoryUserRepository()
		productRepo = repository.NewInMemoryProductRepository()
	}

	dispatcher := events.NewInMemoryDispatcher()
	emailCache := service.NewEmailExistsCache(redis.Client, logger)
	worker.StartCacheWorker(emailCache, dispatcher)

	userService := service.NewUserService(*cfg, service.UserDependencies{
		UserRepo:   userRepo,
		Cache:      emailCache,
		Dispatcher: dispatcher,
	})
	productService := service.NewProductService(service.ProductDependencies{
		ProductRepo: productRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	bearerFilter := auth.NewBearerFilter(tokens, logger)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:       handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:        handlers.NewUsersHandler(userService),
		Products:     handlers.NewProductsHandler(productService),
		BearerFilter: bearerFilter,
		Metrics:      metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
