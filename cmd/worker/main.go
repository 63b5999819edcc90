package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/insurance-onboarding/internal/bootstrap"
	"github.com/kirillkom/insurance-onboarding/internal/config"
	"github.com/kirillkom/insurance-onboarding/internal/observability/logging"
	"github.com/kirillkom/insurance-onboarding/internal/observability/metrics"
)

const reviewTimeout = 30 * time.Second

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, nil)
	if err != nil {
		logger.Error("bootstrap error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker metrics server error", "error", err)
		}
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject, "metrics_port", cfg.WorkerMetricsPort)
	err = app.Queue.SubscribeRecordUpdated(ctx, func(handlerCtx context.Context, recordID int64) error {
		reviewCtx, cancel := context.WithTimeout(handlerCtx, reviewTimeout)
		defer cancel()

		start := time.Now()
		workerMetrics.StartReview()
		err := app.Reviewer.ReviewByID(reviewCtx, recordID)
		workerMetrics.FinishReview(time.Since(start), err)
		if err != nil {
			return err
		}
		logger.Info("record reviewed", "record_id", recordID)
		return nil
	})
	if err != nil {
		logger.Error("worker subscribe error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}
