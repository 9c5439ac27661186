package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"microshop/internal/cache"
	"microshop/internal/config"
	"microshop/internal/db"
	"microshop/internal/events"
	"microshop/internal/httpserver"
	"microshop/internal/logging"
	"microshop/internal/metrics"
	basketrepo "microshop/internal/repository/basket"
	basketsvc "microshop/internal/service/basket"
	discountsvc "microshop/internal/service/discount"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := logging.New(cfg.Env, "basket-api")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer dbpool.Close()

	basketCache, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		if basketCache == nil {
			logger.Fatal("parse redis url", zap.Error(err))
		}
		logger.Warn("redis unreachable at startup, serving from database until it recovers", zap.Error(err))
	}
	defer func() { _ = basketCache.Close() }()

	reg := prometheus.NewRegistry()
	pipelineMetrics := metrics.NewPipeline(reg, "basket")

	basketRepo := basketrepo.NewPostgres(dbpool)
	store := basketsvc.NewStore(basketRepo, basketCache, cfg.BasketCacheTTL, logger, pipelineMetrics)

	discountClient := discountsvc.NewClient(cfg.DiscountBaseURL, cfg.DiscountTimeout, logger)

	kafkaClient := events.NewClient(cfg.KafkaBrokers)
	publisher := events.NewPublisher(kafkaClient.NewWriter(cfg.CheckoutTopic), cfg.PublishTimeout)
	defer func() { _ = publisher.Close() }()

	checkout := basketsvc.NewService(store, discountClient, publisher, logger, pipelineMetrics)

	srv := httpserver.New(cfg.HTTPAddr, logger, httpserver.BasketRouter(logger, dbpool, reg, store, checkout))

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
