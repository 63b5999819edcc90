package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	httpadapter "github.com/kirillkom/insurance-onboarding/internal/adapters/http"
	"github.com/kirillkom/insurance-onboarding/internal/bootstrap"
	"github.com/kirillkom/insurance-onboarding/internal/config"
	"github.com/kirillkom/insurance-onboarding/internal/observability/logging"
	"github.com/kirillkom/insurance-onboarding/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	app, err := bootstrap.New(ctx, cfg, logger, httpMetrics)
	if err != nil {
		logger.Error("bootstrap error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, httpadapter.Services{
		Uploads:  app.Uploads,
		Chat:     app.Chat,
		Records:  app.Records,
		Sessions: app.Sessions,
	}, httpMetrics).Handler()

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		// Uploads can wait on two sequential OCR calls per file.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", ":"+cfg.APIPort)
	if err != nil {
		logger.Error("api listen error", "error", err)
		os.Exit(1)
	}
	if cfg.APIMaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.APIMaxConnections)
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort, "max_connections", cfg.APIMaxConnections)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
}
