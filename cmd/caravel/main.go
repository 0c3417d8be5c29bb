package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/caravel-dist/caravel-dist/internal/activity"
	"github.com/caravel-dist/caravel-dist/internal/app"
	"github.com/caravel-dist/caravel-dist/internal/auth"
	"github.com/caravel-dist/caravel-dist/internal/customers"
	"github.com/caravel-dist/caravel-dist/internal/orders"
	"github.com/caravel-dist/caravel-dist/internal/platform/db"
	"github.com/caravel-dist/caravel-dist/internal/products"
	"github.com/caravel-dist/caravel-dist/internal/reports"
	"github.com/caravel-dist/caravel-dist/internal/shared"
	"github.com/caravel-dist/caravel-dist/internal/stock"
	"github.com/caravel-dist/caravel-dist/internal/users"
	"github.com/caravel-dist/caravel-dist/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	activityLogger := shared.NewActivityLogger(pool)

	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo, activityLogger)
	productsHandler := products.NewHandler(logger, productsService)

	customersRepo := customers.NewRepository(pool)
	customersService := customers.NewService(customersRepo, activityLogger)
	customersHandler := customers.NewHandler(logger, customersService)

	reportsRepo := reports.NewRepository(pool)
	reportsCache := reports.NewCache(redisClient, cfg.DashboardCacheTTL)
	reportsService := reports.NewService(reportsRepo, reportsCache)
	reportsHandler := reports.NewHandler(logger, reportsService)

	stockRepo := stock.NewRepository(pool)
	stockService := stock.NewService(stockRepo, productsRepo, activityLogger)
	stockHandler := stock.NewHandler(logger, stockService)

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(ordersRepo, productsRepo, customersRepo, activityLogger, reportsCache, cfg.OrderCancelDelivered)
	ordersHandler := orders.NewHandler(logger, ordersService)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, activityLogger)
	usersHandler := users.NewHandler(logger, usersService)

	tokenStore := auth.NewTokenStore(redisClient, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := auth.NewService(usersRepo, tokenStore)
	authHandler := auth.NewHandler(logger, authService)

	activityRepo := activity.NewRepository(pool)
	activityHandler := activity.NewHandler(logger, activityRepo)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		TokenStore:       tokenStore,
		AuthHandler:      authHandler,
		ProductsHandler:  productsHandler,
		CustomersHandler: customersHandler,
		OrdersHandler:    ordersHandler,
		StockHandler:     stockHandler,
		UsersHandler:     usersHandler,
		ReportsHandler:   reportsHandler,
		ActivityHandler:  activityHandler,
		JobHandler:       jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
