package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/handcrafted-haven/marketplace/internal/adapter/handler"
	"github.com/handcrafted-haven/marketplace/internal/adapter/payment"
	"github.com/handcrafted-haven/marketplace/internal/adapter/storage"
	"github.com/handcrafted-haven/marketplace/internal/config"
	"github.com/handcrafted-haven/marketplace/internal/core/service"
	"github.com/handcrafted-haven/marketplace/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Config{
		ServiceName: "marketplace",
		Env:         cfg.AppEnv,
		Level:       cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logging.Sync(logger)

	logger.Info("config loaded",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("mysql_dsn", config.MaskDSN(cfg.MySQLDSN)),
		zap.String("redis_addr", cfg.RedisAddr),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("failed to connect mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping mysql", zap.Error(err))
	}
	logger.Info("connected to mysql")

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	logger.Info("connected to redis")

	// Adapters
	productRepo := storage.NewMySQLProductRepository(db)
	categoryRepo := storage.NewMySQLCategoryRepository(db)
	userRepo := storage.NewMySQLUserRepository(db)
	orderRepo := storage.NewMySQLOrderRepository(db)
	reviewRepo := storage.NewMySQLReviewRepository(db)
	stockReserver := storage.NewRedisStockReserver(rdb)
	stateStore := storage.NewRedisStateStore(rdb)
	sessionStore := storage.NewRedisSessionStore(rdb)
	payments := payment.NewMockProcessor(logger, cfg.PaymentDelay)

	// Services
	authService := service.NewAuthService(userRepo, sessionStore, logger, cfg.SessionTTL)
	catalogService := service.NewCatalogService(productRepo, categoryRepo, stockReserver, logger, cfg.BrowseLimit)
	cartService := service.NewCartService(stateStore, logger, cfg.CartTTL)
	checkoutService := service.NewCheckoutService(cartService, orderRepo, stockReserver, payments, logger)
	reviewService := service.NewReviewService(reviewRepo, productRepo)
	adminService := service.NewAdminService(userRepo, productRepo, orderRepo, logger)

	h := handler.New(authService, catalogService, cartService, checkoutService, reviewService, adminService, logger)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.NewRouter(h),
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", zap.Error(err))
	}
	logger.Info("http server stopped")

	rdb.Close()
	db.Close()
	logger.Info("connections closed")
}
