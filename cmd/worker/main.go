package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medreview/slide-compliance/internal/bootstrap"
	"github.com/medreview/slide-compliance/internal/config"
	"github.com/medreview/slide-compliance/internal/observability/logging"
	"github.com/medreview/slide-compliance/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		slog.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeAnalysisRequested(ctx, func(handlerCtx context.Context, deckID string) error {
		analyzeCtx, cancel := context.WithTimeout(handlerCtx, 10*time.Minute)
		defer cancel()

		workerMetrics.StartAnalysis()
		start := time.Now()
		analyzeErr := app.AnalyzeUC.AnalyzeByID(analyzeCtx, deckID)
		workerMetrics.FinishAnalysis("worker", time.Since(start), analyzeErr)
		return analyzeErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
