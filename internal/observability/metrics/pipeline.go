package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
)

// PipelineMetrics observes report processing stages, per-file results and LLM calls.
type PipelineMetrics struct {
	service string

	filesTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	llmCallsTotal *prometheus.CounterVec
	llmDuration   *prometheus.HistogramVec
	breakerState  *prometheus.GaugeVec
}

func NewPipelineMetrics(service string, registerer prometheus.Registerer) *PipelineMetrics {
	filesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "files_total",
			Help:      "Processed report files by document type, severity and outcome.",
		},
		[]string{"service", "document_type", "severity", "outcome"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage by status.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"service", "stage", "status"},
	)
	llmCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "LLM calls by provider and status.",
		},
		[]string{"service", "provider", "status"},
	)
	llmDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "LLM call latency in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"service", "provider"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "circuit_open",
			Help:      "1 while the circuit breaker of an operation is open or half-open.",
		},
		[]string{"service", "operation"},
	)

	registerer.MustRegister(filesTotal, stageDuration, llmCallsTotal, llmDuration, breakerState)

	return &PipelineMetrics{
		service:       service,
		filesTotal:    filesTotal,
		stageDuration: stageDuration,
		llmCallsTotal: llmCallsTotal,
		llmDuration:   llmDuration,
		breakerState:  breakerState,
	}
}

func (m *PipelineMetrics) ObserveStage(stage string, duration time.Duration, err error) {
	m.stageDuration.WithLabelValues(m.service, stage, status(err)).Observe(duration.Seconds())
}

func (m *PipelineMetrics) RecordResult(result domain.DocumentResult) {
	severity := string(result.Severity)
	if severity == "" {
		severity = "none"
	}
	m.filesTotal.WithLabelValues(m.service, string(result.DocumentType), severity, string(result.Outcome)).Inc()
}

func (m *PipelineMetrics) ObserveLLMCall(provider string, duration time.Duration, err error) {
	m.llmCallsTotal.WithLabelValues(m.service, provider, status(err)).Inc()
	m.llmDuration.WithLabelValues(m.service, provider).Observe(duration.Seconds())
}

// BreakerStateChanged matches resilience.StateListener.
func (m *PipelineMetrics) BreakerStateChanged(operation, _ string, to string) {
	value := 1.0
	if to == "closed" {
		value = 0
	}
	m.breakerState.WithLabelValues(m.service, operation).Set(value)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
