package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirillkom/medreport-assistant/internal/config"
	"github.com/kirillkom/medreport-assistant/internal/core/ports"
	"github.com/kirillkom/medreport-assistant/internal/core/usecase"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/medreport-assistant/internal/observability/metrics"
)

const workerService = "medreport-worker"

// Worker holds the wired audit consumer.
type Worker struct {
	Config config.Config

	Subscriber ports.EventSubscriber
	Recorder   ports.AuditRecorder
	Runs       *postgres.ReportRunRepository
	Metrics    *metrics.WorkerMetrics

	closeFn func()
}

func NewWorker(ctx context.Context, cfg config.Config) (*Worker, error) {
	if cfg.NATSURL == "" {
		return nil, errors.New("NATS_URL is required for the worker")
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	runs := postgres.NewReportRunRepository(db)
	if err := runs.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		Name:               workerService,
		QueueGroup:         cfg.NATSQueue,
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	workerMetrics := metrics.NewWorkerMetrics(workerService)

	return &Worker{
		Config:     cfg,
		Subscriber: queue,
		Recorder:   usecase.NewRecordAuditUseCase(runs, workerMetrics),
		Runs:       runs,
		Metrics:    workerMetrics,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (w *Worker) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}
