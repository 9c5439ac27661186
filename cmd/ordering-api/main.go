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

	"microshop/internal/config"
	"microshop/internal/db"
	"microshop/internal/events"
	"microshop/internal/httpserver"
	"microshop/internal/logging"
	"microshop/internal/metrics"
	orderrepo "microshop/internal/repository/order"
	ordersvc "microshop/internal/service/order"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := logging.New(cfg.Env, "ordering-api")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer dbpool.Close()

	reg := prometheus.NewRegistry()
	pipelineMetrics := metrics.NewPipeline(reg, "ordering")

	orderRepo := orderrepo.NewPostgres(dbpool)
	orders := ordersvc.NewService(orderRepo, logger, pipelineMetrics)

	kafkaClient := events.NewClient(cfg.KafkaBrokers)
	reader := kafkaClient.NewReader(cfg.CheckoutTopic, cfg.ConsumerGroup)
	defer func() { _ = reader.Close() }()

	consumer := ordersvc.NewConsumer(reader, orders, logger, pipelineMetrics)

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		logger.Info("starting checkout consumer",
			zap.String("topic", cfg.CheckoutTopic),
			zap.String("group", cfg.ConsumerGroup))
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("consumer stopped", zap.Error(err))
		}
	}()

	srv := httpserver.New(cfg.HTTPAddr, logger, httpserver.OrderRouter(logger, dbpool, reg, orders))

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

	cancel()
	<-consumerDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
