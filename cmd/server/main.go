package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopit-admin/internal/config"
	"shopit-admin/internal/infrastructure/logger"
	redisinfra "shopit-admin/internal/infrastructure/redis"
	"shopit-admin/internal/notification"
	"shopit-admin/internal/orders"
	"shopit-admin/internal/server"
	"shopit-admin/internal/store"

	"go.uber.org/zap"
)

func main() {
	// Config failure is fatal: without the push credential the console
	// cannot serve its purpose, so there is no partial-service mode.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	redisClient, err := redisinfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("connecting to redis", zap.Error(err))
	}
	defer redisClient.Close()
	zapLogger.Info("realtime store connected")

	orderStore := store.NewRedisStore(redisClient)

	notificationCtrl, sendUC := notification.NewModule(cfg, zapLogger)
	ordersCtrl, aggregator := orders.NewModule(orderStore, sendUC, zapLogger)

	if err := aggregator.Start(context.Background()); err != nil {
		zapLogger.Fatal("starting order aggregation", zap.Error(err))
	}
	defer aggregator.Close()

	go func() {
		for streamErr := range aggregator.Errors() {
			zapLogger.Warn("order stream error", zap.Error(streamErr))
		}
	}()

	router := server.NewRouter(notificationCtrl, ordersCtrl, cfg.Server.StaticDir, zapLogger)
	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
