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

	"github.com/joho/godotenv"

	"github.com/kirillkom/medreport-assistant/internal/bootstrap"
	"github.com/kirillkom/medreport-assistant/internal/config"
	"github.com/kirillkom/medreport-assistant/internal/core/domain"
	"github.com/kirillkom/medreport-assistant/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("medreport-worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewWorker(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	logRecentOutcomes(ctx, app)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", app.Metrics.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject, "queue", cfg.NATSQueue)
	err = app.Subscriber.SubscribeReportProcessed(ctx, func(handlerCtx context.Context, event domain.ReportProcessed) error {
		recordCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()
		return app.Recorder.Record(recordCtx, event)
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}

func logRecentOutcomes(ctx context.Context, app *bootstrap.Worker) {
	counts, err := app.Runs.CountByOutcome(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		slog.Warn("report_run_summary_failed", "error", err)
		return
	}
	slog.Info("report_runs_last_24h",
		"ok", counts[domain.OutcomeOK],
		"degraded", counts[domain.OutcomeDegraded],
		"failed", counts[domain.OutcomeFailed],
	)
}
